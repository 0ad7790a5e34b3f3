// Package httpapi assembles the service's HTTP surface.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/genesisbarrios/senfiltro/internal/registry"
	"github.com/genesisbarrios/senfiltro/pkg/platform/middleware"
)

// NewRouter wires the shared middleware chain, operational endpoints, and the
// registry routes.
func NewRouter(logger *slog.Logger, reg *registry.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	reg.Register(r)
	return r
}
