package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/vessel-tracking-service/internal/adapter/http"
	"github.com/couchcryptid/vessel-tracking-service/internal/domain"
	"github.com/couchcryptid/vessel-tracking-service/internal/observability"
	"github.com/couchcryptid/vessel-tracking-service/internal/tracker"
)

var apiNow = time.Date(2025, 7, 20, 15, 0, 0, 0, time.UTC)

// stubIngester replaces the store with canned positions, or fails.
type stubIngester struct {
	store     *tracker.PositionStore
	positions []domain.VesselPosition
	err       error
}

func (s *stubIngester) Load(_ context.Context) ([]domain.VesselPosition, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.store.Replace(s.positions)
	return s.positions, nil
}

func seedPositions() []domain.VesselPosition {
	return []domain.VesselPosition{
		{
			VesselID: "563000001", IMO: "9100001", Name: "MSF HAPPY",
			Timestamp: apiNow.Add(-5 * time.Minute),
			Latitude:  1.2585, Longitude: 103.8605,
			SOG: 8.2, COG: 120, Heading: 118,
			ShipType: "Passenger Ship", Destination: "Kusu Island",
			AISDimA: 20, AISDimB: 15, AISDimC: 4, AISDimD: 4,
			VesselCategory: domain.CategoryFerry, Route: domain.RouteKusu,
		},
		{
			VesselID: "563000001", IMO: "9100001", Name: "MSF HAPPY",
			Timestamp: apiNow.Add(-2 * time.Minute),
			Latitude:  1.2590, Longitude: 103.8610,
			SOG: 8.5, COG: 121, Heading: 119,
			ShipType: "Passenger Ship", Destination: "Kusu Island",
			AISDimA: 20, AISDimB: 15, AISDimC: 4, AISDimD: 4,
			VesselCategory: domain.CategoryFerry, Route: domain.RouteKusu,
		},
		{
			VesselID: "563000002", Name: "BULK HERO",
			Timestamp: apiNow.Add(-10 * time.Minute),
			Latitude:  1.2100, Longitude: 103.7200,
			SOG: 11.2, ShipType: "General Cargo",
			VesselCategory: domain.CategoryCargo,
		},
	}
}

type apiFixture struct {
	srv    *httpadapter.Server
	loader *stubIngester
}

func newAPIFixture(t *testing.T, positions []domain.VesselPosition) *apiFixture {
	t.Helper()
	store := tracker.NewPositionStore()
	store.Replace(positions)
	loader := &stubIngester{store: store, positions: positions}
	clock := clockwork.NewFakeClockAt(apiNow)
	svc := tracker.NewService(store, loader, clock, slog.Default(), observability.NewMetricsForTesting())
	return &apiFixture{
		srv:    httpadapter.NewServer(":0", svc, clock, slog.Default()),
		loader: loader,
	}
}

func (f *apiFixture) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []domain.VesselPosition {
	t.Helper()
	var out []domain.VesselPosition
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthz(t *testing.T) {
	f := newAPIFixture(t, seedPositions())
	rec := f.get(t, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyz(t *testing.T) {
	t.Run("ready with data", func(t *testing.T) {
		f := newAPIFixture(t, seedPositions())
		rec := f.get(t, "/readyz")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not ready before first load", func(t *testing.T) {
		f := newAPIFixture(t, nil)
		rec := f.get(t, "/readyz")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "not ready", body["status"])
	})
}

func TestMetricsEndpoint(t *testing.T) {
	f := newAPIFixture(t, seedPositions())
	rec := f.get(t, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestVessels(t *testing.T) {
	f := newAPIFixture(t, seedPositions())
	rec := f.get(t, "/api/vessels")

	require.Equal(t, http.StatusOK, rec.Code)
	vessels := decodeList(t, rec)
	require.Len(t, vessels, 2)

	// Latest record per vessel only.
	for _, v := range vessels {
		if v.VesselID == "563000001" {
			assert.Equal(t, apiNow.Add(-2*time.Minute), v.Timestamp)
		}
	}
}

func TestVessels_RouteFilter(t *testing.T) {
	f := newAPIFixture(t, seedPositions())
	rec := f.get(t, "/api/vessels?route=MSP-KUSU")

	require.Equal(t, http.StatusOK, rec.Code)
	vessels := decodeList(t, rec)
	require.Len(t, vessels, 1)
	assert.Equal(t, "MSF HAPPY", vessels[0].Name)
}

func TestVessels_TypeFilter(t *testing.T) {
	f := newAPIFixture(t, seedPositions())
	rec := f.get(t, "/api/vessels?type=cargo")

	require.Equal(t, http.StatusOK, rec.Code)
	vessels := decodeList(t, rec)
	require.Len(t, vessels, 1)
	assert.Equal(t, "BULK HERO", vessels[0].Name)
}

func TestVessels_EmptyStoreSerializesArray(t *testing.T) {
	f := newAPIFixture(t, nil)
	rec := f.get(t, "/api/vessels")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestVesselsAll(t *testing.T) {
	f := newAPIFixture(t, seedPositions())
	rec := f.get(t, "/api/vessels/all")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 2)
}

func TestVesselByMMSI(t *testing.T) {
	f := newAPIFixture(t, seedPositions())

	t.Run("found", func(t *testing.T) {
		rec := f.get(t, "/api/vessels/563000002")
		require.Equal(t, http.StatusOK, rec.Code)

		var v domain.VesselPosition
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
		assert.Equal(t, "BULK HERO", v.Name)
	})

	t.Run("unknown", func(t *testing.T) {
		rec := f.get(t, "/api/vessels/999999999")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestVesselHistory(t *testing.T) {
	f := newAPIFixture(t, seedPositions())

	rec := f.get(t, "/api/vessels/563000001/history?hours=1")
	require.Equal(t, http.StatusOK, rec.Code)

	history := decodeList(t, rec)
	require.Len(t, history, 2)
	assert.True(t, history[0].Timestamp.Before(history[1].Timestamp))
}

func TestVesselHistory_BadHours(t *testing.T) {
	f := newAPIFixture(t, seedPositions())

	rec := f.get(t, "/api/vessels/563000001/history?hours=yesterday")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVesselDimensions(t *testing.T) {
	f := newAPIFixture(t, seedPositions())

	rec := f.get(t, "/api/vessels/563000001/dimensions")
	require.Equal(t, http.StatusOK, rec.Code)

	var dims tracker.VesselDimensions
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dims))
	assert.Equal(t, 35.0, dims.OverallLength)
	assert.Equal(t, 8.0, dims.OverallBeam)
}

func TestVesselMovement(t *testing.T) {
	f := newAPIFixture(t, seedPositions())

	t.Run("enough history", func(t *testing.T) {
		rec := f.get(t, "/api/vessels/563000001/movement")
		require.Equal(t, http.StatusOK, rec.Code)

		var report tracker.MovementReport
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		assert.Equal(t, 2, report.Points)
	})

	t.Run("single point", func(t *testing.T) {
		rec := f.get(t, "/api/vessels/563000002/movement")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestArea(t *testing.T) {
	f := newAPIFixture(t, seedPositions())

	rec := f.get(t, "/api/area?lat=1.2590&lng=103.8610&radius=1")
	require.Equal(t, http.StatusOK, rec.Code)

	vessels := decodeList(t, rec)
	require.Len(t, vessels, 1)
	assert.Equal(t, "MSF HAPPY", vessels[0].Name)
}

func TestArea_MissingParams(t *testing.T) {
	f := newAPIFixture(t, seedPositions())

	rec := f.get(t, "/api/area?lat=1.2590")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummary(t *testing.T) {
	f := newAPIFixture(t, seedPositions())

	rec := f.get(t, "/api/summary")
	require.Equal(t, http.StatusOK, rec.Code)

	var summary tracker.TrafficSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.Vessels)
}

func TestRefresh(t *testing.T) {
	t.Run("reloads and reports count", func(t *testing.T) {
		f := newAPIFixture(t, seedPositions())
		rec := httptest.NewRecorder()
		f.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]int
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, 2, body["vessels"])
	})

	t.Run("load failure", func(t *testing.T) {
		f := newAPIFixture(t, seedPositions())
		f.loader.err = errors.New("feed unavailable")

		rec := httptest.NewRecorder()
		f.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestScheduleBoard(t *testing.T) {
	f := newAPIFixture(t, nil)

	t.Run("known terminal", func(t *testing.T) {
		rec := f.get(t, "/api/schedules/MSP")
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Terminal   string `json:"terminal"`
			Departures []struct {
				Ferry  string `json:"ferry"`
				Status string `json:"status"`
			} `json:"departures"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "MSP", body.Terminal)
		assert.NotEmpty(t, body.Departures)
	})

	t.Run("unknown terminal", func(t *testing.T) {
		rec := f.get(t, "/api/schedules/Atlantis")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestNextDepartures(t *testing.T) {
	f := newAPIFixture(t, nil)

	t.Run("with destination", func(t *testing.T) {
		rec := f.get(t, "/api/schedules/MSP/next?destination=Kusu+Island")
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Destination string   `json:"destination"`
			Times       []string `json:"times"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Kusu Island", body.Destination)
		assert.Len(t, body.Times, 3)
	})

	t.Run("missing destination", func(t *testing.T) {
		rec := f.get(t, "/api/schedules/MSP/next")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
