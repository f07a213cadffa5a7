package tenant

import (
	"context"

	"github.com/safeharbor-io/safeharbor/pkg/errors"
	"github.com/safeharbor-io/safeharbor/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// Access scope resolver
// ─────────────────────────────────────────────────────────────────────────────

// Scope is the set of tenant ids an authenticated principal may operate on.
// Order is the membership order from storage; Allowed preserves it because
// the first entry doubles as the substitution target when a requested tenant
// is outside the set.
type Scope struct {
	UserID  common.UserID
	Allowed []common.TenantID
}

// IsEmpty reports whether the principal has no memberships. An empty scope
// must translate to zero rows on every report query, never to "no filter".
func (s Scope) IsEmpty() bool {
	return len(s.Allowed) == 0
}

// Contains reports whether id is inside the scope.
func (s Scope) Contains(id common.TenantID) bool {
	for _, t := range s.Allowed {
		if t == id {
			return true
		}
	}
	return false
}

// Select validates a requested tenant id against the scope. A requested id
// inside the scope is returned as-is; anything else (including an empty
// request) is substituted with the first allowed tenant, never silently
// granted. An empty scope returns ErrCodeNoMemberships.
func (s Scope) Select(requested common.TenantID) (common.TenantID, error) {
	if s.IsEmpty() {
		return "", errors.New(errors.ErrCodeNoMemberships, "user has no tenant memberships")
	}
	if requested != "" && s.Contains(requested) {
		return requested, nil
	}
	return s.Allowed[0], nil
}

// Resolver maps an authenticated principal to its Scope via the membership
// relation. It is the mandatory pre-condition for every report read and
// write; handlers resolve once per request and thread the result down.
type Resolver struct {
	repo Repository
}

// NewResolver builds a Resolver on top of the membership repository.
func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve loads the principal's memberships. A user with no memberships gets
// a valid, empty Scope; callers decide whether that is an error (mutations)
// or just zero rows (listings).
func (r *Resolver) Resolve(ctx context.Context, userID common.UserID) (Scope, error) {
	if userID == "" {
		return Scope{}, errors.Unauthorized("missing principal")
	}
	allowed, err := r.repo.MembershipsOf(ctx, userID)
	if err != nil {
		return Scope{}, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to resolve memberships")
	}
	return Scope{UserID: userID, Allowed: allowed}, nil
}

//Personal.AI order the ending
