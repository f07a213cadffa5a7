package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/suite"

	"github.com/safeharbor-io/safeharbor/internal/domain/report"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/database/postgres"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/safeharbor-io/safeharbor/pkg/errors"
	"github.com/safeharbor-io/safeharbor/pkg/types/common"
)

type AttachmentRepoTestSuite struct {
	suite.Suite
	mock sqlmock.Sqlmock
	db   *sql.DB
	repo report.AttachmentRepository
}

func (s *AttachmentRepoTestSuite) SetupTest() {
	var err error
	s.db, s.mock, err = sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	s.NoError(err)

	conn := postgres.NewConnectionWithDB(s.db, logging.NewNopLogger())
	s.repo = NewPostgresAttachmentRepo(conn, logging.NewNopLogger())
}

func (s *AttachmentRepoTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	s.db.Close()
}

func (s *AttachmentRepoTestSuite) TestCreate() {
	now := time.Now().UTC()
	s.mock.ExpectExec(`INSERT INTO report_attachments`).
		WithArgs("a-1", "r-1", "invoice.pdf", "application/pdf", int64(42), now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.repo.Create(context.Background(), &report.Attachment{
		ID:          "a-1",
		ReportID:    "r-1",
		Filename:    "invoice.pdf",
		ContentType: "application/pdf",
		Size:        42,
		UploadedAt:  now,
	})
	s.NoError(err)
}

func (s *AttachmentRepoTestSuite) TestListByReport_OrderedByUpload() {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "report_id", "filename", "content_type", "size_bytes", "uploaded_at"}).
		AddRow("a-1", "r-1", "first.pdf", "application/pdf", int64(10), t0).
		AddRow("a-2", "r-1", "second.png", "image/png", int64(20), t0.Add(time.Minute))

	s.mock.ExpectQuery(`SELECT .+ FROM report_attachments WHERE report_id = \$1 ORDER BY uploaded_at ASC, id ASC`).
		WithArgs("r-1").
		WillReturnRows(rows)

	attachments, err := s.repo.ListByReport(context.Background(), common.ID("r-1"))
	s.NoError(err)
	s.Len(attachments, 2)
	s.Equal("first.pdf", attachments[0].Filename)
	s.Equal(int64(20), attachments[1].Size)
}

func (s *AttachmentRepoTestSuite) TestGetByID() {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "report_id", "filename", "content_type", "size_bytes", "uploaded_at"}).
		AddRow("a-1", "r-1", "invoice.pdf", "application/pdf", int64(42), t0)

	s.mock.ExpectQuery(`SELECT .+ FROM report_attachments WHERE id = \$1 AND report_id = \$2`).
		WithArgs("a-1", "r-1").
		WillReturnRows(rows)

	att, err := s.repo.GetByID(context.Background(), common.ID("r-1"), common.ID("a-1"))
	s.NoError(err)
	s.Equal(common.ID("a-1"), att.ID)
	s.Equal("invoice.pdf", att.Filename)
}

func (s *AttachmentRepoTestSuite) TestGetByID_NotFound() {
	s.mock.ExpectQuery(`SELECT .+ FROM report_attachments WHERE id = \$1 AND report_id = \$2`).
		WithArgs("a-gone", "r-1").
		WillReturnError(sql.ErrNoRows)

	_, err := s.repo.GetByID(context.Background(), common.ID("r-1"), common.ID("a-gone"))
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeNotFound))
}

func TestAttachmentRepoTestSuite(t *testing.T) {
	suite.Run(t, new(AttachmentRepoTestSuite))
}

//Personal.AI order the ending
