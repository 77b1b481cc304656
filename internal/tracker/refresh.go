package tracker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/vessel-tracking-service/internal/domain"
)

// SnapshotCallback receives the refreshed today-snapshot after each cycle.
type SnapshotCallback func([]domain.VesselPosition)

// refreshLoop is one generation of the refresh timer. Restarting replaces
// the whole handle, so a stale goroutine can never race a fresh one.
type refreshLoop struct {
	ticker   clockwork.Ticker
	callback SnapshotCallback
	stop     chan struct{}
	stopped  atomic.Bool
	inFlight atomic.Bool
}

// StartRefresh begins periodic ingestion at the given interval, pushing each
// cycle's snapshot to callback. A second call replaces the previous loop;
// there is never more than one active timer.
func (s *Service) StartRefresh(callback SnapshotCallback, interval time.Duration) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	s.stopLocked()

	loop := &refreshLoop{
		ticker:   s.clock.NewTicker(interval),
		callback: callback,
		stop:     make(chan struct{}),
	}
	s.loop = loop
	s.metrics.RefreshRunning.Set(1)
	s.logger.Info("refresh started", "interval", interval)

	go s.run(loop)
}

// StopRefresh cancels the active timer and deregisters the callback. No
// callback fires after StopRefresh returns; an in-flight cycle still applies
// its store replacement. Calling StopRefresh while idle is a no-op.
func (s *Service) StopRefresh() {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	s.stopLocked()
}

func (s *Service) stopLocked() {
	if s.loop == nil {
		return
	}
	s.loop.stopped.Store(true)
	close(s.loop.stop)
	s.loop = nil
	s.metrics.RefreshRunning.Set(0)
	s.logger.Info("refresh stopped")
}

// RefreshActive reports whether the periodic refresh loop is running.
func (s *Service) RefreshActive() bool {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	return s.loop != nil
}

// ManualRefresh runs one ingestion cycle outside the timer cadence and
// returns the resulting snapshot. It works whether or not the periodic loop
// is running; if a callback is registered it is notified as well.
func (s *Service) ManualRefresh(ctx context.Context) ([]domain.VesselPosition, error) {
	if _, err := s.loader.Load(ctx); err != nil {
		return nil, err
	}

	snapshot := s.TodaysSnapshot()
	s.metrics.VesselsTracked.Set(float64(len(snapshot)))

	s.refreshMu.Lock()
	loop := s.loop
	s.refreshMu.Unlock()
	if loop != nil && loop.callback != nil {
		loop.callback(snapshot)
	}
	return snapshot, nil
}

func (s *Service) run(loop *refreshLoop) {
	defer loop.ticker.Stop()

	for {
		select {
		case <-loop.stop:
			return
		case <-loop.ticker.Chan():
			// Skip-on-overlap: a tick that fires while the previous cycle is
			// still in flight is dropped, so the store is never replaced by
			// two cycles concurrently.
			if !loop.inFlight.CompareAndSwap(false, true) {
				s.metrics.RefreshSkipped.Inc()
				s.logger.Debug("refresh tick skipped, previous cycle in flight")
				continue
			}
			go func() {
				defer loop.inFlight.Store(false)
				s.runCycle(loop)
			}()
		}
	}
}

// runCycle executes one scheduled ingest-and-notify cycle. Errors are logged
// and the cycle skipped; the timer keeps ticking.
func (s *Service) runCycle(loop *refreshLoop) {
	if _, err := s.loader.Load(context.Background()); err != nil {
		s.logger.Error("refresh cycle failed", "error", err)
		return
	}
	s.metrics.RefreshCycles.Inc()

	snapshot := s.TodaysSnapshot()
	s.metrics.VesselsTracked.Set(float64(len(snapshot)))

	// The store replacement above stands even after a stop, but the
	// callback must not fire once StopRefresh has been called.
	if loop.stopped.Load() || loop.callback == nil {
		return
	}
	loop.callback(snapshot)
}
