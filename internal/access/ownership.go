package access

// Authored is implemented by resources that carry an author, i.e. reviews and comments.
type Authored interface {
	AuthoredBy() int64
}

// Relation describes how the caller relates to the target resource.
type Relation string

const (
	RelationNone  Relation = "none"
	RelationOwn   Relation = "own"
	RelationOther Relation = "other"
)

// Owns reports whether caller is the author of resource.
func Owns(caller *Caller, resource Authored) bool {
	if caller == nil || resource == nil {
		return false
	}
	return resource.AuthoredBy() == caller.UserID
}

// RelationOf is none for anonymous callers and for resources without an author.
func RelationOf(caller *Caller, resource Authored) Relation {
	if caller == nil || resource == nil {
		return RelationNone
	}
	if Owns(caller, resource) {
		return RelationOwn
	}
	return RelationOther
}

// Account is the caller's own user record seen as a resource of the self family.
type Account int64

func (a Account) AuthoredBy() int64 { return int64(a) }
