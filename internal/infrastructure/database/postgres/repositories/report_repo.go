package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/safeharbor-io/safeharbor/internal/domain/report"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/database/postgres"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/monitoring/logging"
	"github.com/safeharbor-io/safeharbor/pkg/errors"
	"github.com/safeharbor-io/safeharbor/pkg/types/common"
)

const reportColumns = `id, tracking_code, description, is_anonymous, encrypted_contact,
	severity, status, tenant_id, created_at, acknowledged_at, admin_response`

type postgresReportRepo struct {
	baseRepo
}

// NewPostgresReportRepo builds the report.Repository implementation.
func NewPostgresReportRepo(conn *postgres.Connection, log logging.Logger) report.Repository {
	return &postgresReportRepo{baseRepo: baseRepo{conn: conn, log: log}}
}

// scopeValues converts the caller's tenant scope for a `= ANY($n)` clause.
// Callers must have rejected empty scopes already; an empty array here still
// matches zero rows, which is the safe direction.
func scopeValues(scope []common.TenantID) pq.StringArray {
	out := make(pq.StringArray, len(scope))
	for i, t := range scope {
		out[i] = string(t)
	}
	return out
}

func notFound() error {
	return errors.New(errors.ErrCodeReportNotFound, "report not found")
}

func (r *postgresReportRepo) Create(ctx context.Context, rep *report.Report) error {
	query := `
		INSERT INTO reports (
			id, tracking_code, description, is_anonymous, encrypted_contact,
			severity, status, tenant_id, created_at, acknowledged_at, admin_response
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	var severity *string
	if rep.Severity != nil {
		s := string(*rep.Severity)
		severity = &s
	}
	_, err := r.executor().ExecContext(ctx, query,
		string(rep.ID), rep.TrackingCode, rep.Description, rep.IsAnonymous, rep.EncryptedContact,
		severity, string(rep.Status), string(rep.TenantID), rep.CreatedAt, rep.AcknowledgedAt, rep.AdminResponse,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert report")
	}
	return nil
}

func scanReport(s scanner) (*report.Report, error) {
	var (
		rep              report.Report
		id, tenantID     string
		status           string
		severity         sql.NullString
		encryptedContact sql.NullString
		acknowledgedAt   sql.NullTime
		adminResponse    sql.NullString
	)
	err := s.Scan(&id, &rep.TrackingCode, &rep.Description, &rep.IsAnonymous, &encryptedContact,
		&severity, &status, &tenantID, &rep.CreatedAt, &acknowledgedAt, &adminResponse)
	if err != nil {
		return nil, err
	}
	rep.ID = common.ID(id)
	rep.TenantID = common.TenantID(tenantID)
	rep.Status = report.Status(status)
	if severity.Valid {
		sev := report.Severity(severity.String)
		rep.Severity = &sev
	}
	if encryptedContact.Valid {
		rep.EncryptedContact = &encryptedContact.String
	}
	if acknowledgedAt.Valid {
		ts := acknowledgedAt.Time
		rep.AcknowledgedAt = &ts
	}
	if adminResponse.Valid {
		rep.AdminResponse = &adminResponse.String
	}
	return &rep, nil
}

func (r *postgresReportRepo) GetByID(ctx context.Context, id common.ID, scope []common.TenantID) (*report.Report, error) {
	// tenant_id = ANY(scope) is the mandatory isolation intersection. A
	// report outside the scope scans as no rows, indistinguishable from a
	// missing one.
	query := fmt.Sprintf(`SELECT %s FROM reports WHERE id = $1 AND tenant_id = ANY($2)`, reportColumns)
	rep, err := scanReport(r.executor().QueryRowContext(ctx, query, string(id), scopeValues(scope)))
	if err == sql.ErrNoRows {
		return nil, notFound()
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query report")
	}
	return rep, nil
}

func (r *postgresReportRepo) GetByTrackingCode(ctx context.Context, code string) (*report.Report, error) {
	query := fmt.Sprintf(`SELECT %s FROM reports WHERE tracking_code = $1`, reportColumns)
	rep, err := scanReport(r.executor().QueryRowContext(ctx, query, code))
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodeTrackingCodeNotFound, "no report matches this tracking code")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query report by tracking code")
	}
	return rep, nil
}

func (r *postgresReportRepo) List(ctx context.Context, filter report.ListFilter) ([]*report.Report, error) {
	var (
		where = []string{"tenant_id = ANY($1)"}
		args  = []interface{}{scopeValues(filter.TenantIDs)}
	)
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Severity != nil {
		args = append(args, string(*filter.Severity))
		where = append(where, fmt.Sprintf("severity = $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM reports WHERE %s ORDER BY created_at DESC`,
		reportColumns, strings.Join(where, " AND "))
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		if filter.Offset > 0 {
			args = append(args, filter.Offset)
			query += fmt.Sprintf(" OFFSET $%d", len(args))
		}
	}

	rows, err := r.executor().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list reports")
	}
	defer rows.Close()

	var reports []*report.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan report row")
		}
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate report rows")
	}
	return reports, nil
}

func (r *postgresReportRepo) ListUnestimated(ctx context.Context, limit int) ([]*report.Report, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM reports WHERE severity IS NULL ORDER BY created_at ASC LIMIT $1`,
		reportColumns)
	rows, err := r.executor().QueryContext(ctx, query, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list unestimated reports")
	}
	defer rows.Close()

	var reports []*report.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan report row")
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

// execScoped runs a scoped mutation and maps zero affected rows to
// not-found. Missing and out-of-scope rows are deliberately reported the
// same way.
func (r *postgresReportRepo) execScoped(ctx context.Context, query string, args ...interface{}) error {
	res, err := r.executor().ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update report")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to read affected rows")
	}
	if affected == 0 {
		return notFound()
	}
	return nil
}

func (r *postgresReportRepo) UpdateStatus(ctx context.Context, id common.ID, scope []common.TenantID, status report.Status) error {
	return r.execScoped(ctx,
		`UPDATE reports SET status = $1 WHERE id = $2 AND tenant_id = ANY($3)`,
		string(status), string(id), scopeValues(scope))
}

func (r *postgresReportRepo) SetAcknowledged(ctx context.Context, id common.ID, scope []common.TenantID, ts *time.Time) error {
	return r.execScoped(ctx,
		`UPDATE reports SET acknowledged_at = $1 WHERE id = $2 AND tenant_id = ANY($3)`,
		ts, string(id), scopeValues(scope))
}

func (r *postgresReportRepo) SetAdminResponse(ctx context.Context, id common.ID, scope []common.TenantID, response string) error {
	return r.execScoped(ctx,
		`UPDATE reports SET admin_response = $1 WHERE id = $2 AND tenant_id = ANY($3)`,
		response, string(id), scopeValues(scope))
}

func (r *postgresReportRepo) SetSeverity(ctx context.Context, id common.ID, severity report.Severity, force bool) error {
	// Without force, the write is conditional on severity still being NULL
	// so a concurrent estimate cannot overwrite an earlier one. A zero-row
	// outcome then just means the estimate arrived late, not an error.
	if force {
		return r.execScoped(ctx,
			`UPDATE reports SET severity = $1 WHERE id = $2`,
			string(severity), string(id))
	}
	_, err := r.executor().ExecContext(ctx,
		`UPDATE reports SET severity = $1 WHERE id = $2 AND severity IS NULL`,
		string(severity), string(id))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to set severity")
	}
	return nil
}

//Personal.AI order the ending
