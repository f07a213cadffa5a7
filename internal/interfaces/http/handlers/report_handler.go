package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/safeharbor-io/safeharbor/internal/domain/report"
	"github.com/safeharbor-io/safeharbor/internal/domain/tenant"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/database/redis"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/monitoring/logging"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/monitoring/prometheus"
	pkgerrors "github.com/safeharbor-io/safeharbor/pkg/errors"
	"github.com/safeharbor-io/safeharbor/pkg/types/common"
)

// ReportHandler serves both the public intake/tracking endpoints and the
// authenticated case-manager endpoints.
// trackingCacheTTL bounds how stale a cached public tracking lookup can be.
// Admin actions become visible to the reporter within this window.
const trackingCacheTTL = 30 * time.Second

type ReportHandler struct {
	service  *report.Service
	resolver *tenant.Resolver
	metrics  *prometheus.Metrics
	cache    redis.Cache
	logger   logging.Logger
	now      func() time.Time
}

// NewReportHandler creates a ReportHandler. metrics may be nil.
func NewReportHandler(
	service *report.Service,
	resolver *tenant.Resolver,
	metrics *prometheus.Metrics,
	logger logging.Logger,
) *ReportHandler {
	return &ReportHandler{
		service:  service,
		resolver: resolver,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// WithTrackingCache enables read-through caching of public tracking lookups.
func (h *ReportHandler) WithTrackingCache(cache redis.Cache) *ReportHandler {
	h.cache = cache
	return h
}

// ─────────────────────────────────────────────────────────────────────────────
// Views
// ─────────────────────────────────────────────────────────────────────────────

// reportView is the case-manager projection of a report: the entity plus a
// deadline evaluation rendered against a single reference time.
type reportView struct {
	*report.Report
	SLA          report.SLASnapshot `json:"sla"`
	InitialLabel string             `json:"initial_label"`
	FinalLabel   string             `json:"final_label"`
}

func newReportView(r *report.Report, now time.Time) reportView {
	snap := report.EvaluateSLA(r, now)
	initial, final := report.SLALabels(r, snap)
	return reportView{Report: r, SLA: snap, InitialLabel: initial, FinalLabel: final}
}

// ─────────────────────────────────────────────────────────────────────────────
// Public intake and tracking
// ─────────────────────────────────────────────────────────────────────────────

type submitRequest struct {
	TenantID    string `json:"tenant_id"`
	Description string `json:"description"`
	IsAnonymous bool   `json:"is_anonymous"`
	Contact     string `json:"contact,omitempty"`
}

type submitResponse struct {
	ID           common.ID `json:"id"`
	TrackingCode string    `json:"tracking_code"`
	CreatedAt    time.Time `json:"created_at"`
}

// Submit handles POST /api/v1/reports. It returns only the tracking code
// projection; the reporter never sees the internal case record.
func (h *ReportHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}
	if req.TenantID == "" {
		writeAppError(w, pkgerrors.New(pkgerrors.ErrCodeTenantRequired, "tenant_id is required"))
		return
	}

	created, err := h.service.Submit(r.Context(), report.SubmitInput{
		TenantID:    common.TenantID(req.TenantID),
		Description: req.Description,
		IsAnonymous: req.IsAnonymous,
		Contact:     req.Contact,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.ReportsSubmittedTotal.WithLabelValues(string(created.TenantID), boolLabel(created.IsAnonymous)).Inc()
	}

	writeJSON(w, http.StatusCreated, submitResponse{
		ID:           created.ID,
		TrackingCode: created.TrackingCode,
		CreatedAt:    created.CreatedAt,
	})
}

// Track handles GET /api/v1/track/{code}.
func (h *ReportHandler) Track(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if h.cache != nil {
		var status report.TrackingStatus
		err := h.cache.GetOrSet(r.Context(), "track:"+report.NormalizeTrackingCode(code),
			&status, trackingCacheTTL, func(ctx context.Context) (interface{}, error) {
				return h.service.Track(ctx, code)
			})
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, &status)
		return
	}

	status, err := h.service.Track(r.Context(), code)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

type messageRequest struct {
	Message string `json:"message"`
}

// ReporterReply handles POST /api/v1/track/{code}/messages. Possession of a
// valid tracking code is the only credential.
func (h *ReportHandler) ReporterReply(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}
	m, err := h.service.ReporterReply(r.Context(), chi.URLParam(r, "code"), req.Message)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// ─────────────────────────────────────────────────────────────────────────────
// Authenticated list and detail
// ─────────────────────────────────────────────────────────────────────────────

type listResponse struct {
	TenantID common.TenantID   `json:"tenant_id"`
	Reports  []reportView      `json:"reports"`
	Stats    report.TenantStats `json:"stats"`
}

// List handles GET /api/v1/reports. The tenant query parameter selects one
// of the caller's tenants; a requested tenant outside the scope falls back
// to the first membership rather than erroring, and an out-of-scope id is
// never honored. Optional filters: status, severity; sort=severity re-ranks
// the page by severity.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	scope, err := resolveScope(r, h.resolver)
	if err != nil {
		writeAppError(w, err)
		return
	}

	selected, err := scope.Select(common.TenantID(r.URL.Query().Get("tenant")))
	if err != nil {
		writeAppError(w, err)
		return
	}
	narrowed := tenant.Scope{UserID: scope.UserID, Allowed: []common.TenantID{selected}}

	var statusFilter *report.Status
	if v := r.URL.Query().Get("status"); v != "" {
		s := report.Status(v)
		if !report.ValidStatus(s) {
			writeAppError(w, pkgerrors.New(pkgerrors.ErrCodeInvalidStatus, "unknown lifecycle status"))
			return
		}
		statusFilter = &s
	}
	var severityFilter *report.Severity
	if v := r.URL.Query().Get("severity"); v != "" {
		s := report.Severity(v)
		if !report.ValidSeverity(s) {
			writeAppError(w, pkgerrors.New(pkgerrors.ErrCodeInvalidSeverity, "unknown severity level"))
			return
		}
		severityFilter = &s
	}

	limit, offset := parseLimitOffset(r)
	reports, err := h.service.List(r.Context(), narrowed, statusFilter, severityFilter, limit, offset)
	if err != nil {
		writeAppError(w, err)
		return
	}

	now := h.now()
	views := make([]reportView, 0, len(reports))
	for _, rep := range reports {
		views = append(views, newReportView(rep, now))
	}
	if r.URL.Query().Get("sort") == "severity" {
		sortBySeverity(views)
	}

	stats, err := h.service.Stats(r.Context(), narrowed)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{
		TenantID: selected,
		Reports:  views,
		Stats:    stats[selected],
	})
}

type detailResponse struct {
	reportView
	Messages []*report.Message `json:"messages"`
}

// Get handles GET /api/v1/reports/{reportID}.
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	scope, err := resolveScope(r, h.resolver)
	if err != nil {
		writeAppError(w, err)
		return
	}
	id := common.ID(chi.URLParam(r, "reportID"))

	rep, err := h.service.Get(r.Context(), id, scope)
	if err != nil {
		writeAppError(w, err)
		return
	}
	msgs, err := h.service.Messages(r.Context(), id, scope)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, detailResponse{
		reportView: newReportView(rep, h.now()),
		Messages:   msgs,
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Authenticated mutations
// ─────────────────────────────────────────────────────────────────────────────

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PUT /api/v1/reports/{reportID}/status.
func (h *ReportHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	scope, err := resolveScope(r, h.resolver)
	if err != nil {
		writeAppError(w, err)
		return
	}
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}
	id := common.ID(chi.URLParam(r, "reportID"))
	if err := h.service.UpdateStatus(r.Context(), id, scope, report.Status(req.Status)); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Acknowledge handles POST /api/v1/reports/{reportID}/acknowledge.
func (h *ReportHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	scope, err := resolveScope(r, h.resolver)
	if err != nil {
		writeAppError(w, err)
		return
	}
	id := common.ID(chi.URLParam(r, "reportID"))
	if err := h.service.Acknowledge(r.Context(), id, scope); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// RevokeAcknowledgment handles DELETE /api/v1/reports/{reportID}/acknowledge.
func (h *ReportHandler) RevokeAcknowledgment(w http.ResponseWriter, r *http.Request) {
	scope, err := resolveScope(r, h.resolver)
	if err != nil {
		writeAppError(w, err)
		return
	}
	id := common.ID(chi.URLParam(r, "reportID"))
	if err := h.service.RevokeAcknowledgment(r.Context(), id, scope); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type respondRequest struct {
	Response string `json:"response"`
}

// Respond handles PUT /api/v1/reports/{reportID}/response.
func (h *ReportHandler) Respond(w http.ResponseWriter, r *http.Request) {
	scope, err := resolveScope(r, h.resolver)
	if err != nil {
		writeAppError(w, err)
		return
	}
	var req respondRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}
	id := common.ID(chi.URLParam(r, "reportID"))
	if err := h.service.Respond(r.Context(), id, scope, req.Response); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// AdminReply handles POST /api/v1/reports/{reportID}/messages.
func (h *ReportHandler) AdminReply(w http.ResponseWriter, r *http.Request) {
	scope, err := resolveScope(r, h.resolver)
	if err != nil {
		writeAppError(w, err)
		return
	}
	var req messageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}
	id := common.ID(chi.URLParam(r, "reportID"))
	m, err := h.service.AdminReply(r.Context(), id, scope, req.Message)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// RevealContact handles GET /api/v1/reports/{reportID}/contact. Anonymous
// reports and reports without contact surface as 404.
func (h *ReportHandler) RevealContact(w http.ResponseWriter, r *http.Request) {
	scope, err := resolveScope(r, h.resolver)
	if err != nil {
		writeAppError(w, err)
		return
	}
	id := common.ID(chi.URLParam(r, "reportID"))
	contact, err := h.service.RevealContact(r.Context(), id, scope)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"contact": contact})
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

var severityRank = map[report.Severity]int{
	report.SeverityCritical: 0,
	report.SeverityHigh:     1,
	report.SeverityMedium:   2,
	report.SeverityLow:      3,
}

// sortBySeverity re-ranks a page by severity, unrated last, preserving the
// newest-first order within each severity band.
func sortBySeverity(views []reportView) {
	rank := func(v reportView) int {
		if v.Severity == nil {
			return len(severityRank)
		}
		return severityRank[*v.Severity]
	}
	sort.SliceStable(views, func(i, j int) bool {
		return rank(views[i]) < rank(views[j])
	})
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

//Personal.AI order the ending
