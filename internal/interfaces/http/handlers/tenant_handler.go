package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/safeharbor-io/safeharbor/internal/domain/report"
	"github.com/safeharbor-io/safeharbor/internal/domain/tenant"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/database/redis"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/monitoring/logging"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/monitoring/prometheus"
	"github.com/safeharbor-io/safeharbor/pkg/types/common"
)

// statsCacheTTL bounds how stale the tenant switcher may be. Deadline day
// counts only move at midnight, so a short TTL is purely about absorbing
// burst traffic.
const statsCacheTTL = 30 * time.Second

// TenantHandler serves the tenant switcher: the caller's memberships with
// per-tenant urgency rollups.
type TenantHandler struct {
	service  *report.Service
	tenants  tenant.Repository
	resolver *tenant.Resolver
	cache    redis.Cache
	metrics  *prometheus.Metrics
	logger   logging.Logger
}

// NewTenantHandler creates a TenantHandler. cache and metrics may be nil.
func NewTenantHandler(
	service *report.Service,
	tenants tenant.Repository,
	resolver *tenant.Resolver,
	cache redis.Cache,
	metrics *prometheus.Metrics,
	logger logging.Logger,
) *TenantHandler {
	return &TenantHandler{
		service:  service,
		tenants:  tenants,
		resolver: resolver,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
	}
}

// tenantView is one entry in the switcher payload.
type tenantView struct {
	ID         common.TenantID    `json:"id"`
	Label      string             `json:"label"`
	Stats      report.TenantStats `json:"stats"`
	HasUrgency bool               `json:"has_urgency"`
}

type tenantsResponse struct {
	Tenants []tenantView `json:"tenants"`
}

// List handles GET /api/v1/tenants. Every membership appears exactly once,
// zero-filled when it has no reports, urgent tenants first.
func (h *TenantHandler) List(w http.ResponseWriter, r *http.Request) {
	scope, err := resolveScope(r, h.resolver)
	if err != nil {
		writeAppError(w, err)
		return
	}
	if scope.IsEmpty() {
		writeJSON(w, http.StatusOK, tenantsResponse{Tenants: []tenantView{}})
		return
	}

	var resp tenantsResponse
	load := func(ctx context.Context) (interface{}, error) {
		built, err := h.build(ctx, scope)
		if err != nil {
			return nil, err
		}
		return built, nil
	}

	if h.cache != nil {
		err = h.cache.GetOrSet(r.Context(), "tenants:"+string(scope.UserID), &resp, statsCacheTTL, load)
	} else {
		var built interface{}
		if built, err = load(r.Context()); err == nil {
			resp = built.(tenantsResponse)
		}
	}
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// build assembles the switcher payload and refreshes the SLA gauges as a
// side effect, so the metrics track whatever the dashboards last computed.
func (h *TenantHandler) build(ctx context.Context, scope tenant.Scope) (tenantsResponse, error) {
	members, err := h.tenants.ListByIDs(ctx, scope.Allowed)
	if err != nil {
		return tenantsResponse{}, err
	}
	stats, err := h.service.Stats(ctx, scope)
	if err != nil {
		return tenantsResponse{}, err
	}

	views := make([]tenantView, 0, len(members))
	for _, t := range members {
		st := stats[t.ID]
		views = append(views, tenantView{
			ID:         t.ID,
			Label:      t.Label,
			Stats:      st,
			HasUrgency: st.HasUrgency(),
		})
		if h.metrics != nil {
			h.metrics.SetTenantStats(t.ID, st)
		}
	}

	// Urgent tenants first; membership order is preserved within each band.
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].HasUrgency && !views[j].HasUrgency
	})

	return tenantsResponse{Tenants: views}, nil
}

//Personal.AI order the ending
