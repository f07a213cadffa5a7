package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/safeharbor-io/safeharbor/internal/domain/report"
	"github.com/safeharbor-io/safeharbor/internal/domain/tenant"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/monitoring/logging"
	"github.com/safeharbor-io/safeharbor/internal/interfaces/http/middleware"
	pkgerrors "github.com/safeharbor-io/safeharbor/pkg/errors"
	"github.com/safeharbor-io/safeharbor/pkg/types/common"
)

type mockAttachmentRepo struct{ mock.Mock }

func (m *mockAttachmentRepo) Create(ctx context.Context, a *report.Attachment) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockAttachmentRepo) ListByReport(ctx context.Context, reportID common.ID) ([]*report.Attachment, error) {
	args := m.Called(ctx, reportID)
	if atts, ok := args.Get(0).([]*report.Attachment); ok {
		return atts, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAttachmentRepo) GetByID(ctx context.Context, reportID, attachmentID common.ID) (*report.Attachment, error) {
	args := m.Called(ctx, reportID, attachmentID)
	if a, ok := args.Get(0).(*report.Attachment); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

// fakeBlobStore records uploads in memory and presigns deterministic URLs.
type fakeBlobStore struct {
	uploaded []string
}

func (f *fakeBlobStore) Upload(ctx context.Context, reportID common.ID, filename, contentType string, content io.Reader, size int64) (*report.Attachment, error) {
	f.uploaded = append(f.uploaded, filename)
	return &report.Attachment{
		ID:          "a-1",
		ReportID:    reportID,
		Filename:    filename,
		ContentType: contentType,
		Size:        size,
		UploadedAt:  handlerNow,
	}, nil
}

func (f *fakeBlobStore) PresignedDownloadURL(ctx context.Context, reportID, attachmentID common.ID, filename string) (string, error) {
	return "https://storage.local/reports/" + string(reportID) + "/" + string(attachmentID) + "/" + filename, nil
}

func (f *fakeBlobStore) Delete(ctx context.Context, reportID, attachmentID common.ID, filename string) error {
	return nil
}

type attachmentFixture struct {
	repo    *mockReportRepo
	meta    *mockAttachmentRepo
	blobs   *fakeBlobStore
	tenants *mockTenantRepo
	router  chi.Router
}

func newAttachmentFixture(t *testing.T) *attachmentFixture {
	t.Helper()
	f := &attachmentFixture{
		repo:    &mockReportRepo{},
		meta:    &mockAttachmentRepo{},
		blobs:   &fakeBlobStore{},
		tenants: &mockTenantRepo{},
	}
	svc := report.NewService(f.repo, &mockMessageRepo{}, nil, nil, logging.NewNopLogger()).
		WithClock(func() time.Time { return handlerNow }).
		WithAttachments(f.meta, f.blobs)
	h := NewAttachmentHandler(svc, tenant.NewResolver(f.tenants), 1<<20, logging.NewNopLogger())

	r := chi.NewRouter()
	r.Post("/api/v1/track/{code}/attachments", h.Upload)
	r.Get("/api/v1/reports/{reportID}/attachments", h.List)
	r.Get("/api/v1/reports/{reportID}/attachments/{attachmentID}", h.Download)
	f.router = r
	return f
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestAttachmentUpload_ByTrackingCode(t *testing.T) {
	f := newAttachmentFixture(t)
	stored := sampleReport("acme")
	f.repo.On("GetByTrackingCode", mock.Anything, "WB-ABC123DE").Return(stored, nil)
	f.meta.On("Create", mock.Anything, mock.MatchedBy(func(a *report.Attachment) bool {
		return a.ReportID == stored.ID && a.Filename == "invoice.pdf"
	})).Return(nil)

	body, contentType := multipartBody(t, "invoice.pdf", "evidence bytes")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/track/WB-ABC123DE/attachments", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"invoice.pdf"`)
	assert.Equal(t, []string{"invoice.pdf"}, f.blobs.uploaded)
	f.meta.AssertExpectations(t)
}

func TestAttachmentUpload_MissingFilePart(t *testing.T) {
	f := newAttachmentFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/track/WB-ABC123DE/attachments",
		bytes.NewBufferString("not a multipart form"))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.repo.AssertNotCalled(t, "GetByTrackingCode", mock.Anything, mock.Anything)
}

func TestAttachmentList_ScopedToMemberTenants(t *testing.T) {
	f := newAttachmentFixture(t)
	stored := sampleReport("acme")
	f.tenants.On("MembershipsOf", mock.Anything, common.UserID("u-1")).
		Return([]common.TenantID{"acme"}, nil)
	f.repo.On("GetByID", mock.Anything, stored.ID, []common.TenantID{"acme"}).Return(stored, nil)
	f.meta.On("ListByReport", mock.Anything, stored.ID).Return([]*report.Attachment{
		{ID: "a-1", ReportID: stored.ID, Filename: "invoice.pdf", ContentType: "application/pdf", Size: 42, UploadedAt: handlerNow},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/"+string(stored.ID)+"/attachments", nil)
	req = req.WithContext(middleware.ContextWithPrincipal(req.Context(), admin))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"invoice.pdf"`)
}

func TestAttachmentDownload_ReturnsPresignedURL(t *testing.T) {
	f := newAttachmentFixture(t)
	stored := sampleReport("acme")
	att := &report.Attachment{ID: "a-1", ReportID: stored.ID, Filename: "invoice.pdf"}
	f.tenants.On("MembershipsOf", mock.Anything, common.UserID("u-1")).
		Return([]common.TenantID{"acme"}, nil)
	f.repo.On("GetByID", mock.Anything, stored.ID, []common.TenantID{"acme"}).Return(stored, nil)
	f.meta.On("GetByID", mock.Anything, stored.ID, common.ID("a-1")).Return(att, nil)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/reports/"+string(stored.ID)+"/attachments/a-1", nil)
	req = req.WithContext(middleware.ContextWithPrincipal(req.Context(), admin))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "https://storage.local/reports/")
	assert.Contains(t, rec.Body.String(), "invoice.pdf")
}

func TestAttachmentDownload_OutOfScopeReport(t *testing.T) {
	f := newAttachmentFixture(t)
	f.tenants.On("MembershipsOf", mock.Anything, common.UserID("u-1")).
		Return([]common.TenantID{"acme"}, nil)
	f.repo.On("GetByID", mock.Anything, common.ID("r-other"), []common.TenantID{"acme"}).
		Return(nil, pkgerrors.New(pkgerrors.ErrCodeReportNotFound, "report not found"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/r-other/attachments/a-1", nil)
	req = req.WithContext(middleware.ContextWithPrincipal(req.Context(), admin))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

//Personal.AI order the ending
