// Package http exposes the tracking service over HTTP: operational endpoints
// (health, readiness, metrics) plus the vessel query API consumed by the map
// frontend.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/vessel-tracking-service/internal/domain"
	"github.com/couchcryptid/vessel-tracking-service/internal/schedule"
	"github.com/couchcryptid/vessel-tracking-service/internal/tracker"
)

// defaultLookback bounds history and movement queries when the client does
// not pass an hours parameter.
const defaultLookback = 24 * time.Hour

// VesselService is the query surface the API serves.
type VesselService interface {
	CheckReadiness(ctx context.Context) error
	AllSnapshot() []domain.VesselPosition
	TodaysSnapshot() []domain.VesselPosition
	ByMMSI(mmsi string) (domain.VesselPosition, bool)
	ByRoute(route string) []domain.VesselPosition
	ByShipType(typeSubstring string) []domain.VesselPosition
	ByArea(centerLat, centerLng, radiusKm float64) []domain.VesselPosition
	History(vesselID string, lookback time.Duration) []domain.VesselPosition
	Dimensions(vesselID string) (tracker.VesselDimensions, bool)
	MovementAnalysis(vesselID string, lookback time.Duration) *tracker.MovementReport
	Traffic() tracker.TrafficSummary
	ManualRefresh(ctx context.Context) ([]domain.VesselPosition, error)
}

// Server exposes the vessel API plus health, readiness, and metrics routes.
type Server struct {
	httpServer *http.Server
	service    VesselService
	clock      clockwork.Clock
	logger     *slog.Logger
}

// NewServer creates the HTTP server with all routes registered.
func NewServer(addr string, service VesselService, clock clockwork.Clock, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		service: service,
		clock:   clock,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/vessels", s.handleVessels)
	mux.HandleFunc("GET /api/vessels/all", s.handleVesselsAll)
	mux.HandleFunc("GET /api/vessels/{mmsi}", s.handleVessel)
	mux.HandleFunc("GET /api/vessels/{mmsi}/history", s.handleHistory)
	mux.HandleFunc("GET /api/vessels/{mmsi}/dimensions", s.handleDimensions)
	mux.HandleFunc("GET /api/vessels/{mmsi}/movement", s.handleMovement)
	mux.HandleFunc("GET /api/area", s.handleArea)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	mux.HandleFunc("GET /api/schedules/{terminal}", s.handleScheduleBoard)
	mux.HandleFunc("GET /api/schedules/{terminal}/next", s.handleNextDepartures)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.service.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleVessels serves the current-day snapshot, optionally narrowed by
// route or ship type.
func (s *Server) handleVessels(w http.ResponseWriter, r *http.Request) {
	var vessels []domain.VesselPosition
	switch {
	case r.URL.Query().Get("route") != "":
		vessels = s.service.ByRoute(r.URL.Query().Get("route"))
	case r.URL.Query().Get("type") != "":
		vessels = s.service.ByShipType(r.URL.Query().Get("type"))
	default:
		vessels = s.service.TodaysSnapshot()
	}
	writeVesselList(w, vessels)
}

func (s *Server) handleVesselsAll(w http.ResponseWriter, _ *http.Request) {
	writeVesselList(w, s.service.AllSnapshot())
}

func (s *Server) handleVessel(w http.ResponseWriter, r *http.Request) {
	mmsi := r.PathValue("mmsi")
	vessel, ok := s.service.ByMMSI(mmsi)
	if !ok {
		writeError(w, http.StatusNotFound, "vessel not found")
		return
	}
	writeJSON(w, http.StatusOK, vessel)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	lookback, err := lookbackParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeVesselList(w, s.service.History(r.PathValue("mmsi"), lookback))
}

func (s *Server) handleDimensions(w http.ResponseWriter, r *http.Request) {
	dims, ok := s.service.Dimensions(r.PathValue("mmsi"))
	if !ok {
		writeError(w, http.StatusNotFound, "vessel not found")
		return
	}
	writeJSON(w, http.StatusOK, dims)
}

func (s *Server) handleMovement(w http.ResponseWriter, r *http.Request) {
	lookback, err := lookbackParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	report := s.service.MovementAnalysis(r.PathValue("mmsi"), lookback)
	if report == nil {
		writeError(w, http.StatusNotFound, "not enough positions for analysis")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleArea(w http.ResponseWriter, r *http.Request) {
	lat, err := floatParam(r, "lat")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	lng, err := floatParam(r, "lng")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	radius, err := floatParam(r, "radius")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeVesselList(w, s.service.ByArea(lat, lng, radius))
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Traffic())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.service.ManualRefresh(r.Context())
	if err != nil {
		s.logger.Error("manual refresh failed", "error", err)
		writeError(w, http.StatusBadGateway, "refresh failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"vessels": len(snapshot)})
}

func (s *Server) handleScheduleBoard(w http.ResponseWriter, r *http.Request) {
	terminal := r.PathValue("terminal")
	board, ok := schedule.Board(terminal)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown terminal")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"terminal":   terminal,
		"departures": board,
	})
}

func (s *Server) handleNextDepartures(w http.ResponseWriter, r *http.Request) {
	destination := r.URL.Query().Get("destination")
	if destination == "" {
		writeError(w, http.StatusBadRequest, "destination parameter is required")
		return
	}
	times := schedule.NextDepartures(destination, s.clock.Now())
	writeJSON(w, http.StatusOK, map[string]any{
		"destination": destination,
		"times":       times,
	})
}

func lookbackParam(r *http.Request) (time.Duration, error) {
	raw := r.URL.Query().Get("hours")
	if raw == "" {
		return defaultLookback, nil
	}
	hours, err := strconv.ParseFloat(raw, 64)
	if err != nil || hours <= 0 {
		return 0, errInvalidParam("hours")
	}
	return time.Duration(hours * float64(time.Hour)), nil
}

func floatParam(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, errInvalidParam(name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errInvalidParam(name)
	}
	return v, nil
}

type errInvalidParam string

func (e errInvalidParam) Error() string {
	return "invalid or missing parameter: " + string(e)
}

// writeVesselList always serializes an array, never null, so clients can
// iterate without a nil check.
func writeVesselList(w http.ResponseWriter, vessels []domain.VesselPosition) {
	if vessels == nil {
		vessels = []domain.VesselPosition{}
	}
	writeJSON(w, http.StatusOK, vessels)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}
