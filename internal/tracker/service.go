// Package tracker owns the vessel position store, the read-only query layer
// over it, and the periodic refresh controller that re-runs ingestion. The
// Service is an explicitly constructed object — no package-level state — so
// tests can run independent instances side by side.
package tracker

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/vessel-tracking-service/internal/domain"
	"github.com/couchcryptid/vessel-tracking-service/internal/observability"
)

// Ingester runs one ingestion cycle and returns the records now stored.
// Satisfied by ingest.Loader.
type Ingester interface {
	Load(ctx context.Context) ([]domain.VesselPosition, error)
}

// Service is the vessel tracking service: a position store plus queries and
// a refresh controller.
type Service struct {
	store   *PositionStore
	loader  Ingester
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics

	refreshMu sync.Mutex
	loop      *refreshLoop
}

// NewService creates a Service reading from store and refreshing via loader.
func NewService(store *PositionStore, loader Ingester, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		store:   store,
		loader:  loader,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}
}

// Store exposes the underlying position store.
func (s *Service) Store() *PositionStore {
	return s.store
}

// CheckReadiness returns nil once the store holds at least one position.
func (s *Service) CheckReadiness(_ context.Context) error {
	if s.store.Len() == 0 {
		return errors.New("no vessel positions ingested yet")
	}
	return nil
}
