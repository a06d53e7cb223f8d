// Package access decides whether a caller may perform an action on a resource family.
//
// Decisions come from a capability table keyed by (level, family, action, relation)
// and evaluated by casbin. Levels inherit downward through grouping rules, so an
// admin holds every moderator, user and anonymous permission.
package access

import (
	_ "embed"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/rs/zerolog/log"

	"yamdb-backend/internal/shared/apperr"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

type Family string

const (
	FamilyCategory Family = "category"
	FamilyGenre    Family = "genre"
	FamilyTitle    Family = "title"
	FamilyReview   Family = "review"
	FamilyComment  Family = "comment"
	FamilyAccount  Family = "account"
	FamilySelf     Family = "self"
)

type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// ActionForMethod maps an HTTP verb to an action. Unknown verbs map to update so
// they are never treated as safe.
func ActionForMethod(method string) Action {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return ActionRead
	case http.MethodPost:
		return ActionCreate
	case http.MethodDelete:
		return ActionDelete
	default:
		return ActionUpdate
	}
}

var (
	ErrUnauthenticated  = apperr.Unauthenticated("AUTH_REQUIRED", "authentication credentials were not provided")
	ErrPermissionDenied = apperr.PermissionDenied("PERMISSION_DENIED", "you do not have permission to perform this action")
)

// Authorizer is what services and middleware depend on.
type Authorizer interface {
	// Authorize returns nil on allow. resource may be nil for families without an author.
	Authorize(caller *Caller, family Family, action Action, resource Authored) error
}

// Evaluator is the casbin-backed Authorizer.
type Evaluator struct {
	enforcer *casbin.SyncedEnforcer
}

var _ Authorizer = (*Evaluator)(nil)

// NewEvaluator loads the embedded model and capability table.
func NewEvaluator() (*Evaluator, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	if err := loadPolicy(enforcer, embeddedPolicy); err != nil {
		return nil, err
	}

	return &Evaluator{enforcer: enforcer}, nil
}

func loadPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch ptype, rule := parts[0], parts[1:]; ptype {
		case "p":
			if len(rule) != 4 {
				return fmt.Errorf("malformed policy line %q", line)
			}
			if _, err := enforcer.AddPolicy(rule); err != nil {
				return fmt.Errorf("failed to add policy %v: %w", rule, err)
			}
		case "g":
			if len(rule) != 2 {
				return fmt.Errorf("malformed grouping line %q", line)
			}
			if _, err := enforcer.AddGroupingPolicy(rule); err != nil {
				return fmt.Errorf("failed to add grouping policy %v: %w", rule, err)
			}
		default:
			return fmt.Errorf("unknown policy type %q", ptype)
		}
	}
	return nil
}

// Allowed reports the raw decision. Enforcer errors deny.
func (e *Evaluator) Allowed(caller *Caller, family Family, action Action, resource Authored) bool {
	start := time.Now()
	level := caller.Level()
	relation := relationFor(caller, family, resource)

	allowed, err := e.enforcer.Enforce(string(level), string(family), string(action), string(relation))
	if err != nil {
		log.Error().Err(err).
			Str("family", string(family)).
			Str("action", string(action)).
			Msg("authorization enforcement failed")
		allowed = false
	}

	recordDecision(level, family, action, allowed, time.Since(start))
	return allowed
}

func (e *Evaluator) Authorize(caller *Caller, family Family, action Action, resource Authored) error {
	if e.Allowed(caller, family, action, resource) {
		return nil
	}
	if !caller.IsAuthenticated() {
		return ErrUnauthenticated
	}
	return ErrPermissionDenied
}

// relationFor treats the self family as always owned by an authenticated caller,
// since the route only ever targets the caller's own account.
func relationFor(caller *Caller, family Family, resource Authored) Relation {
	if family == FamilySelf && caller != nil && resource == nil {
		return RelationOwn
	}
	return RelationOf(caller, resource)
}
