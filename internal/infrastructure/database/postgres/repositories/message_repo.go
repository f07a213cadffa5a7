package repositories

import (
	"context"

	"github.com/safeharbor-io/safeharbor/internal/domain/report"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/database/postgres"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/monitoring/logging"
	"github.com/safeharbor-io/safeharbor/pkg/errors"
	"github.com/safeharbor-io/safeharbor/pkg/types/common"
)

type postgresMessageRepo struct {
	baseRepo
}

// NewPostgresMessageRepo builds the report.MessageRepository implementation.
func NewPostgresMessageRepo(conn *postgres.Connection, log logging.Logger) report.MessageRepository {
	return &postgresMessageRepo{baseRepo: baseRepo{conn: conn, log: log}}
}

func (r *postgresMessageRepo) Append(ctx context.Context, m *report.Message) error {
	query := `
		INSERT INTO report_messages (id, report_id, role, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.executor().ExecContext(ctx, query,
		string(m.ID), string(m.ReportID), string(m.Role), m.Body, m.CreatedAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert message")
	}
	return nil
}

func (r *postgresMessageRepo) ListByReport(ctx context.Context, reportID common.ID) ([]*report.Message, error) {
	// Creation-timestamp order is the display order; the id tiebreak keeps
	// same-timestamp rows stable.
	query := `
		SELECT id, report_id, role, body, created_at
		FROM report_messages
		WHERE report_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.executor().QueryContext(ctx, query, string(reportID))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list messages")
	}
	defer rows.Close()

	var messages []*report.Message
	for rows.Next() {
		var (
			m         report.Message
			id, repID string
			role      string
		)
		if err := rows.Scan(&id, &repID, &role, &m.Body, &m.CreatedAt); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan message row")
		}
		m.ID = common.ID(id)
		m.ReportID = common.ID(repID)
		m.Role = report.MessageRole(role)
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}

//Personal.AI order the ending
