// Package httpapi assembles the gateway's HTTP surface: the violation
// routes, health, and Prometheus metrics.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"multa-gateway/internal/platform/middleware"
	violationHandler "multa-gateway/internal/violation/handler"
)

// NewRouter wires all endpoints behind the shared middleware stack.
func NewRouter(h *violationHandler.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(60 * time.Second))

	r.Group(func(api chi.Router) {
		api.Use(middleware.ContentTypeJSON)
		h.Register(api)
	})

	r.Get("/salud", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
