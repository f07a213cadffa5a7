package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/safeharbor-io/safeharbor/internal/domain/report"
	"github.com/safeharbor-io/safeharbor/internal/domain/tenant"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/safeharbor-io/safeharbor/pkg/errors"
	"github.com/safeharbor-io/safeharbor/pkg/types/common"
)

// multipartOverhead is headroom on top of the object-size cap for multipart
// framing and form fields.
const multipartOverhead = 64 << 10

// AttachmentHandler serves the evidence-upload endpoint on the public
// tracking surface and the attachment listing/download endpoints on the
// case-manager surface.
type AttachmentHandler struct {
	service       *report.Service
	resolver      *tenant.Resolver
	maxUploadSize int64
	logger        logging.Logger
}

// NewAttachmentHandler creates an AttachmentHandler. maxUploadSize bounds a
// single uploaded file in bytes.
func NewAttachmentHandler(
	service *report.Service,
	resolver *tenant.Resolver,
	maxUploadSize int64,
	logger logging.Logger,
) *AttachmentHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = 5 << 20
	}
	return &AttachmentHandler{
		service:       service,
		resolver:      resolver,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// Upload handles POST /track/{code}/attachments. The file arrives as the
// "file" part of a multipart form; possession of a valid tracking code is
// the only credential, same as the tracking lookup.
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, string(pkgerrors.ErrCodeBadRequest),
			"multipart form with a \"file\" part is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	att, err := h.service.Attach(r.Context(), code, header.Filename, contentType, file, header.Size)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"attachment": att})
}

// List handles GET /reports/{reportID}/attachments.
func (h *AttachmentHandler) List(w http.ResponseWriter, r *http.Request) {
	scope, err := resolveScope(r, h.resolver)
	if err != nil {
		writeAppError(w, err)
		return
	}
	id := common.ID(chi.URLParam(r, "reportID"))

	attachments, err := h.service.Attachments(r.Context(), id, scope)
	if err != nil {
		writeAppError(w, err)
		return
	}
	if attachments == nil {
		attachments = []*report.Attachment{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"attachments": attachments})
}

// Download handles GET /reports/{reportID}/attachments/{attachmentID}. The
// response carries a short-lived presigned URL rather than the bytes; the
// client fetches the object directly.
func (h *AttachmentHandler) Download(w http.ResponseWriter, r *http.Request) {
	scope, err := resolveScope(r, h.resolver)
	if err != nil {
		writeAppError(w, err)
		return
	}
	id := common.ID(chi.URLParam(r, "reportID"))
	attachmentID := common.ID(chi.URLParam(r, "attachmentID"))

	url, err := h.service.AttachmentURL(r.Context(), id, attachmentID, scope)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

//Personal.AI order the ending
