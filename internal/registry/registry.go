package registry

import (
	"log/slog"

	"github.com/genesisbarrios/senfiltro/internal/registry/handler"
	"github.com/genesisbarrios/senfiltro/internal/registry/service"
	"github.com/genesisbarrios/senfiltro/internal/registry/store"
)

// Service exposes the registry operations.
type Service = service.Service

// Handler wires HTTP endpoints to the registry service.
type Handler = handler.Handler

// NewService constructs the registry service with required dependencies.
func NewService(st store.TxStore, opts ...service.Option) (*Service, error) {
	return service.New(st, opts...)
}

// NewHandler constructs an HTTP handler for the registry routes.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
