package access

import "strings"

// Role is the stored privilege of a user account.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole accepts any letter case and rejects unknown values.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.IsValid()
}

// Level is a rung of the privilege lattice: anonymous < user < moderator < admin.
type Level string

const (
	LevelAnonymous Level = "anonymous"
	LevelUser      Level = "user"
	LevelModerator Level = "moderator"
	LevelAdmin     Level = "admin"
)

// Caller is the identity attached to a request. A nil *Caller is an anonymous reader.
type Caller struct {
	UserID      int64
	Username    string
	Role        Role
	IsSuperuser bool
}

func (c *Caller) IsAuthenticated() bool { return c != nil }

func (c *Caller) IsAdmin() bool {
	return c != nil && (c.Role == RoleAdmin || c.IsSuperuser)
}

func (c *Caller) IsModerator() bool {
	return c != nil && c.Role == RoleModerator
}

// Level folds role and superuser flag into a lattice position.
func (c *Caller) Level() Level {
	switch {
	case c == nil:
		return LevelAnonymous
	case c.IsAdmin():
		return LevelAdmin
	case c.IsModerator():
		return LevelModerator
	default:
		return LevelUser
	}
}
