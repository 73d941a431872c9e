package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"assetcli/internal/config"
	"assetcli/internal/middleware"
)

// NewRouter assembles the service router: request-ID, structured logging,
// panic recovery, and rate limiting around the cleanup, health, and metrics
// endpoints.
func NewRouter(cfg config.ServerConfig, cleaner ReportCleaner, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger).Handler)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/healthz", HealthHandler)
	r.Method(http.MethodGet, "/metrics", MetricsHandler())

	cleanHandler := NewCleanHandler(cleaner, logger, cfg.MaxUploadBytes, nil)
	r.Mount("/api", cleanHandler.Routes())

	return r
}
