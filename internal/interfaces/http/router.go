// Package http wires the handler and middleware stack into the route tree
// served by the API process.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/safeharbor-io/safeharbor/internal/interfaces/http/handlers"
	"github.com/safeharbor-io/safeharbor/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies for the
// complete route tree. Nil middleware entries are skipped, which is how
// tests exercise handlers without a Redis or a JWT secret.
type RouterConfig struct {
	// Handlers
	ReportHandler     *handlers.ReportHandler
	TenantHandler     *handlers.TenantHandler
	AttachmentHandler *handlers.AttachmentHandler
	HealthHandler     *handlers.HealthHandler

	// Middleware
	AuthMiddleware      *middleware.AuthMiddleware
	CORSMiddleware      *middleware.CORSMiddleware
	RateLimitMiddleware *middleware.RateLimitMiddleware
	RequestLogging      func(http.Handler) http.Handler

	// MetricsHandler serves the Prometheus exposition endpoint.
	MetricsHandler http.Handler
}

// NewRouter constructs the route tree: public intake and tracking, probes
// and metrics, then the authenticated case-manager API under JWT.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if cfg.CORSMiddleware != nil {
		r.Use(cfg.CORSMiddleware.Handler)
	}
	if cfg.RequestLogging != nil {
		r.Use(cfg.RequestLogging)
	}
	if cfg.RateLimitMiddleware != nil {
		r.Use(cfg.RateLimitMiddleware.Handler)
	}

	// Probes and metrics, outside auth.
	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(api chi.Router) {
		registerPublicRoutes(api, cfg.ReportHandler, cfg.AttachmentHandler)

		// Case-manager surface.
		api.Group(func(priv chi.Router) {
			if cfg.AuthMiddleware != nil {
				priv.Use(cfg.AuthMiddleware.Handler)
			}
			registerReportRoutes(priv, cfg.ReportHandler, cfg.AttachmentHandler)
			if cfg.TenantHandler != nil {
				priv.Get("/tenants", cfg.TenantHandler.List)
			}
		})
	})

	return r
}

// registerPublicRoutes mounts intake and tracking. The tracking code is the
// reporter's only credential, so no auth middleware applies here.
func registerPublicRoutes(r chi.Router, h *handlers.ReportHandler, att *handlers.AttachmentHandler) {
	if h == nil {
		return
	}
	r.Post("/reports", h.Submit)
	r.Route("/track/{code}", func(tr chi.Router) {
		tr.Get("/", h.Track)
		tr.Post("/messages", h.ReporterReply)
		if att != nil {
			tr.Post("/attachments", att.Upload)
		}
	})
}

// registerReportRoutes mounts the authenticated case-manager endpoints.
func registerReportRoutes(r chi.Router, h *handlers.ReportHandler, att *handlers.AttachmentHandler) {
	if h == nil {
		return
	}
	r.Get("/reports", h.List)
	r.Route("/reports/{reportID}", func(item chi.Router) {
		item.Get("/", h.Get)
		item.Put("/status", h.UpdateStatus)
		item.Post("/acknowledge", h.Acknowledge)
		item.Delete("/acknowledge", h.RevokeAcknowledgment)
		item.Put("/response", h.Respond)
		item.Post("/messages", h.AdminReply)
		item.Get("/contact", h.RevealContact)
		if att != nil {
			item.Get("/attachments", att.List)
			item.Get("/attachments/{attachmentID}", att.Download)
		}
	})
}

//Personal.AI order the ending
