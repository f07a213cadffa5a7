// Package repositories implements the domain persistence ports on top of
// PostgreSQL.
package repositories

import (
	"context"
	"database/sql"

	"github.com/safeharbor-io/safeharbor/internal/infrastructure/database/postgres"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/monitoring/logging"
)

// queryExecutor abstracts sql.DB and sql.Tx.
type queryExecutor interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// scanner abstracts sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

type baseRepo struct {
	conn *postgres.Connection
	tx   *sql.Tx
	log  logging.Logger
}

func (r *baseRepo) executor() queryExecutor {
	if r.tx != nil {
		return r.tx
	}
	return r.conn.DB()
}

//Personal.AI order the ending
