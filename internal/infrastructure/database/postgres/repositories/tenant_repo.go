package repositories

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/safeharbor-io/safeharbor/internal/domain/tenant"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/database/postgres"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/monitoring/logging"
	"github.com/safeharbor-io/safeharbor/pkg/errors"
	"github.com/safeharbor-io/safeharbor/pkg/types/common"
)

type postgresTenantRepo struct {
	baseRepo
}

// NewPostgresTenantRepo builds the tenant.Repository implementation.
func NewPostgresTenantRepo(conn *postgres.Connection, log logging.Logger) tenant.Repository {
	return &postgresTenantRepo{baseRepo: baseRepo{conn: conn, log: log}}
}

func (r *postgresTenantRepo) GetByID(ctx context.Context, id common.TenantID) (*tenant.Tenant, error) {
	var t tenant.Tenant
	var tid string
	err := r.executor().QueryRowContext(ctx,
		`SELECT id, label FROM tenants WHERE id = $1`, string(id),
	).Scan(&tid, &t.Label)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodeTenantNotFound, "tenant not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query tenant")
	}
	t.ID = common.TenantID(tid)
	return &t, nil
}

func (r *postgresTenantRepo) ListByIDs(ctx context.Context, ids []common.TenantID) ([]*tenant.Tenant, error) {
	if len(ids) == 0 {
		return []*tenant.Tenant{}, nil
	}
	arr := make(pq.StringArray, len(ids))
	for i, id := range ids {
		arr[i] = string(id)
	}
	rows, err := r.executor().QueryContext(ctx,
		`SELECT id, label FROM tenants WHERE id = ANY($1)`, arr)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list tenants")
	}
	defer rows.Close()

	byID := make(map[common.TenantID]*tenant.Tenant, len(ids))
	for rows.Next() {
		var t tenant.Tenant
		var tid string
		if err := rows.Scan(&tid, &t.Label); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan tenant row")
		}
		t.ID = common.TenantID(tid)
		byID[t.ID] = &t
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate tenant rows")
	}

	// Preserve the input order, skipping unknown ids.
	out := make([]*tenant.Tenant, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *postgresTenantRepo) MembershipsOf(ctx context.Context, userID common.UserID) ([]common.TenantID, error) {
	// Stable order: the first membership doubles as the substitution target
	// of the access-scope resolver, so it must not change between requests.
	rows, err := r.executor().QueryContext(ctx,
		`SELECT tenant_id FROM tenant_memberships WHERE user_id = $1 ORDER BY created_at ASC, tenant_id ASC`,
		string(userID))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query memberships")
	}
	defer rows.Close()

	var out []common.TenantID
	for rows.Next() {
		var tid string
		if err := rows.Scan(&tid); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan membership row")
		}
		out = append(out, common.TenantID(tid))
	}
	return out, rows.Err()
}

//Personal.AI order the ending
