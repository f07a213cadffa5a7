package repositories

import (
	"context"
	"database/sql"

	"github.com/safeharbor-io/safeharbor/internal/domain/report"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/database/postgres"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/monitoring/logging"
	"github.com/safeharbor-io/safeharbor/pkg/errors"
	"github.com/safeharbor-io/safeharbor/pkg/types/common"
)

type postgresAttachmentRepo struct {
	baseRepo
}

// NewPostgresAttachmentRepo builds the report.AttachmentRepository
// implementation.
func NewPostgresAttachmentRepo(conn *postgres.Connection, log logging.Logger) report.AttachmentRepository {
	return &postgresAttachmentRepo{baseRepo: baseRepo{conn: conn, log: log}}
}

func (r *postgresAttachmentRepo) Create(ctx context.Context, a *report.Attachment) error {
	query := `
		INSERT INTO report_attachments (id, report_id, filename, content_type, size_bytes, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.executor().ExecContext(ctx, query,
		string(a.ID), string(a.ReportID), a.Filename, a.ContentType, a.Size, a.UploadedAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert attachment")
	}
	return nil
}

func (r *postgresAttachmentRepo) ListByReport(ctx context.Context, reportID common.ID) ([]*report.Attachment, error) {
	query := `
		SELECT id, report_id, filename, content_type, size_bytes, uploaded_at
		FROM report_attachments
		WHERE report_id = $1
		ORDER BY uploaded_at ASC, id ASC
	`
	rows, err := r.executor().QueryContext(ctx, query, string(reportID))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list attachments")
	}
	defer rows.Close()

	var attachments []*report.Attachment
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan attachment row")
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}

func (r *postgresAttachmentRepo) GetByID(ctx context.Context, reportID, attachmentID common.ID) (*report.Attachment, error) {
	query := `
		SELECT id, report_id, filename, content_type, size_bytes, uploaded_at
		FROM report_attachments
		WHERE id = $1 AND report_id = $2
	`
	row := r.executor().QueryRowContext(ctx, query, string(attachmentID), string(reportID))
	a, err := scanAttachment(row)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodeNotFound, "attachment not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to get attachment")
	}
	return a, nil
}

func scanAttachment(s scanner) (*report.Attachment, error) {
	var (
		a         report.Attachment
		id, repID string
	)
	if err := s.Scan(&id, &repID, &a.Filename, &a.ContentType, &a.Size, &a.UploadedAt); err != nil {
		return nil, err
	}
	a.ID = common.ID(id)
	a.ReportID = common.ID(repID)
	return &a, nil
}

//Personal.AI order the ending
