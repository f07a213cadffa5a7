package tenant

import (
	"context"

	"github.com/safeharbor-io/safeharbor/pkg/types/common"
)

// Repository defines persistence for tenants and memberships.
type Repository interface {
	// GetByID fetches one tenant.
	GetByID(ctx context.Context, id common.TenantID) (*Tenant, error)

	// ListByIDs fetches the tenants for the given ids, preserving input
	// order and skipping unknown ids.
	ListByIDs(ctx context.Context, ids []common.TenantID) ([]*Tenant, error)

	// MembershipsOf returns the tenant ids the user is a member of, in a
	// stable order. An empty result means the user may see nothing.
	MembershipsOf(ctx context.Context, userID common.UserID) ([]common.TenantID, error)
}

//Personal.AI order the ending
