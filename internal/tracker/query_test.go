package tracker_test

import (
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/vessel-tracking-service/internal/domain"
	"github.com/couchcryptid/vessel-tracking-service/internal/observability"
	"github.com/couchcryptid/vessel-tracking-service/internal/tracker"
)

var queryNow = time.Date(2025, 7, 20, 15, 0, 0, 0, time.UTC)

func newQueryService(t *testing.T, records []domain.VesselPosition) *tracker.Service {
	t.Helper()
	store := tracker.NewPositionStore()
	store.Replace(records)
	return tracker.NewService(
		store,
		nil, // queries never ingest
		clockwork.NewFakeClockAt(queryNow),
		slog.Default(),
		observability.NewMetricsForTesting(),
	)
}

func pos(id string, at time.Time, lat, lng float64) domain.VesselPosition {
	return domain.VesselPosition{
		VesselID:       id,
		Name:           "TEST " + id,
		Timestamp:      at,
		Latitude:       lat,
		Longitude:      lng,
		VesselCategory: domain.CategoryFerry,
	}
}

func TestLatestPerVessel(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, tracker.LatestPerVessel(nil))
	})

	t.Run("keeps max timestamp per vessel", func(t *testing.T) {
		records := []domain.VesselPosition{
			pos("A", queryNow.Add(-3*time.Minute), 1.25, 103.85),
			pos("B", queryNow.Add(-1*time.Minute), 1.26, 103.86),
			pos("A", queryNow.Add(-1*time.Minute), 1.27, 103.87),
			pos("A", queryNow.Add(-2*time.Minute), 1.28, 103.88),
		}

		got := tracker.LatestPerVessel(records)

		require.Len(t, got, 2)
		// Output order follows first appearance.
		assert.Equal(t, "A", got[0].VesselID)
		assert.Equal(t, "B", got[1].VesselID)
		assert.Equal(t, 1.27, got[0].Latitude)
	})
}

func TestSnapshotForDay(t *testing.T) {
	t.Run("day window wins", func(t *testing.T) {
		svc := newQueryService(t, []domain.VesselPosition{
			pos("A", queryNow.Add(-time.Hour), 1.25, 103.85),
			pos("B", queryNow.AddDate(0, 0, -3), 1.26, 103.86), // outside the day
		})

		got := svc.SnapshotForDay(queryNow)

		require.Len(t, got, 1)
		assert.Equal(t, "A", got[0].VesselID)
	})

	t.Run("falls back to trailing 24h", func(t *testing.T) {
		// Reference day matches nothing, but yesterday evening is within
		// 24 hours of now.
		svc := newQueryService(t, []domain.VesselPosition{
			pos("A", queryNow.Add(-20*time.Hour), 1.25, 103.85),
		})

		got := svc.SnapshotForDay(queryNow.AddDate(0, 0, 5))

		require.Len(t, got, 1)
		assert.Equal(t, "A", got[0].VesselID)
	})

	t.Run("falls back to first records", func(t *testing.T) {
		var records []domain.VesselPosition
		for i := 0; i < 15; i++ {
			records = append(records, pos("OLD", queryNow.AddDate(-2, 0, i), 1.25, 103.85))
		}
		svc := newQueryService(t, records)

		got := svc.SnapshotForDay(queryNow)

		// First 10 records, collapsed to one vessel.
		require.Len(t, got, 1)
		assert.Equal(t, "OLD", got[0].VesselID)
	})

	t.Run("empty store is empty not an error", func(t *testing.T) {
		svc := newQueryService(t, nil)
		assert.Empty(t, svc.SnapshotForDay(queryNow))
	})
}

func TestAllSnapshot(t *testing.T) {
	svc := newQueryService(t, []domain.VesselPosition{
		pos("A", queryNow.Add(-2*time.Minute), 1.25, 103.85),
		pos("A", queryNow.Add(-1*time.Minute), 1.26, 103.86),
		pos("B", queryNow.Add(-5*time.Minute), 1.27, 103.87),
	})

	got := svc.AllSnapshot()

	require.Len(t, got, 2)
	for _, p := range got {
		if p.VesselID == "A" {
			assert.Equal(t, queryNow.Add(-time.Minute), p.Timestamp)
		}
	}
}

func TestSnapshotFilters(t *testing.T) {
	ferry := pos("FERRY1", queryNow, 1.2580, 103.8600)
	ferry.Route = domain.RouteKusu
	ferry.ShipType = "Passenger Ship"
	ferry.IMO = "9000001"
	ferry.AISStatus = "0"

	tanker := pos("TANKER1", queryNow, 1.20, 103.70)
	tanker.Route = "Port Klang"
	tanker.ShipType = "Crude Oil Tanker"
	tanker.VesselCategory = domain.CategoryTanker
	tanker.AISStatus = "1"

	svc := newQueryService(t, []domain.VesselPosition{ferry, tanker})

	t.Run("by route", func(t *testing.T) {
		got := svc.ByRoute(domain.RouteKusu)
		require.Len(t, got, 1)
		assert.Equal(t, "FERRY1", got[0].VesselID)

		assert.Empty(t, svc.ByRoute("MSP-NOWHERE"))
	})

	t.Run("by area", func(t *testing.T) {
		got := svc.ByArea(1.2580, 103.8600, 1)
		require.Len(t, got, 1)
		assert.Equal(t, "FERRY1", got[0].VesselID)

		// Wide radius catches both.
		assert.Len(t, svc.ByArea(1.2580, 103.8600, 50), 2)

		// Degenerate radius must not panic.
		assert.NotPanics(t, func() { svc.ByArea(1.2580, 103.8600, 0.0001) })
	})

	t.Run("by ship type", func(t *testing.T) {
		assert.Len(t, svc.ByShipType("tanker"), 1)
		assert.Len(t, svc.ByShipType("passenger"), 1)
		assert.Len(t, svc.ByShipType("ferry"), 1) // matches derived category
		assert.Empty(t, svc.ByShipType("dredger"))
	})

	t.Run("by MMSI", func(t *testing.T) {
		got, ok := svc.ByMMSI("FERRY1")
		require.True(t, ok)
		assert.Equal(t, domain.RouteKusu, got.Route)

		_, ok = svc.ByMMSI("MISSING")
		assert.False(t, ok)
	})

	t.Run("by IMO", func(t *testing.T) {
		got, ok := svc.ByIMO("9000001")
		require.True(t, ok)
		assert.Equal(t, "FERRY1", got.VesselID)

		_, ok = svc.ByIMO("0000000")
		assert.False(t, ok)
	})

	t.Run("by AIS status", func(t *testing.T) {
		assert.Len(t, svc.ByAISStatus("0"), 1)
		assert.Len(t, svc.ByAISStatus("1"), 1)
		assert.Empty(t, svc.ByAISStatus("5"))
	})
}

func TestHistory(t *testing.T) {
	svc := newQueryService(t, []domain.VesselPosition{
		pos("A", queryNow.Add(-30*time.Minute), 1.25, 103.85),
		pos("A", queryNow.Add(-10*time.Minute), 1.27, 103.87),
		pos("A", queryNow.Add(-20*time.Minute), 1.26, 103.86),
		pos("A", queryNow.Add(-2*time.Hour), 1.20, 103.80), // outside window
		pos("B", queryNow.Add(-5*time.Minute), 1.30, 103.90),
	})

	got := svc.History("A", time.Hour)

	require.Len(t, got, 3)
	assert.True(t, got[0].Timestamp.Before(got[1].Timestamp))
	assert.True(t, got[1].Timestamp.Before(got[2].Timestamp))
}

func TestDimensions(t *testing.T) {
	p := pos("A", queryNow, 1.25, 103.85)
	p.Length = 35
	p.Beam = 8
	p.Draught = 2.2
	p.AISDimA = 20
	p.AISDimB = 15
	p.AISDimC = 4
	p.AISDimD = 4
	svc := newQueryService(t, []domain.VesselPosition{p})

	got, ok := svc.Dimensions("A")
	require.True(t, ok)

	want := tracker.VesselDimensions{
		VesselID:      "A",
		Name:          "TEST A",
		Length:        35,
		Beam:          8,
		Draught:       2.2,
		OverallLength: 35, // 20 + 15
		OverallBeam:   8,  // 4 + 4
	}
	assert.Empty(t, cmp.Diff(want, got))

	_, ok = svc.Dimensions("MISSING")
	assert.False(t, ok)
}

func TestMovementAnalysis(t *testing.T) {
	t.Run("insufficient history returns nil", func(t *testing.T) {
		svc := newQueryService(t, []domain.VesselPosition{
			pos("A", queryNow.Add(-5*time.Minute), 1.25, 103.85),
		})
		assert.Nil(t, svc.MovementAnalysis("A", time.Hour))
		assert.Nil(t, svc.MovementAnalysis("MISSING", time.Hour))
	})

	t.Run("computes track statistics", func(t *testing.T) {
		a := pos("A", queryNow.Add(-10*time.Minute), 1.2500, 103.8500)
		a.SOG = 6
		a.Heading = 90
		b := pos("A", queryNow.Add(-5*time.Minute), 1.2500, 103.8600)
		b.SOG = 10
		b.Heading = 90
		svc := newQueryService(t, []domain.VesselPosition{a, b})

		report := svc.MovementAnalysis("A", time.Hour)

		require.NotNil(t, report)
		assert.Equal(t, 2, report.Points)
		assert.Equal(t, 8.0, report.AvgSpeed)
		assert.Equal(t, 10.0, report.MaxSpeed)
		assert.InDelta(t, 90.0, report.AvgHeading, 1e-9)
		// 0.01 degrees of longitude near the equator is ~1.11 km.
		assert.InDelta(t, 1.11, report.PathKm, 0.02)
		assert.Equal(t, a.Timestamp, report.First.Timestamp)
		assert.Equal(t, b.Timestamp, report.Last.Timestamp)
	})

	t.Run("heading mean wraps around north", func(t *testing.T) {
		a := pos("A", queryNow.Add(-10*time.Minute), 1.2500, 103.8500)
		a.Heading = 350
		b := pos("A", queryNow.Add(-5*time.Minute), 1.2501, 103.8500)
		b.Heading = 10
		svc := newQueryService(t, []domain.VesselPosition{a, b})

		report := svc.MovementAnalysis("A", time.Hour)

		require.NotNil(t, report)
		// The mean of 350 and 10 degrees is due north, not due south. The
		// result may sit a hair on either side of 0/360.
		fromNorth := math.Min(report.AvgHeading, 360-report.AvgHeading)
		assert.Less(t, fromNorth, 1e-6)
	})
}

func TestTraffic(t *testing.T) {
	ferry := pos("F1", queryNow, 1.25, 103.85)
	ferry.Status = "Under way using engine"
	ferry.Flag = "SG"
	ferry.SOG = 8

	moored := pos("F2", queryNow, 1.26, 103.86)
	moored.Status = "Moored"
	moored.Flag = "SG"
	moored.SOG = 0

	tanker := pos("T1", queryNow, 1.20, 103.70)
	tanker.VesselCategory = domain.CategoryTanker
	tanker.Flag = "PA"
	tanker.SOG = 12

	svc := newQueryService(t, []domain.VesselPosition{ferry, moored, tanker})

	got := svc.Traffic()

	assert.Equal(t, 3, got.Vessels)
	assert.Equal(t, 2, got.ByCategory[domain.CategoryFerry])
	assert.Equal(t, 1, got.ByCategory[domain.CategoryTanker])
	assert.Equal(t, 1, got.ByStatus["Moored"])
	assert.Equal(t, 2, got.ByFlag["SG"])
	// Average over moving vessels only: (8 + 12) / 2.
	assert.Equal(t, 10.0, got.AvgSpeed)
}

func TestStoreClear(t *testing.T) {
	store := tracker.NewPositionStore()
	store.Replace([]domain.VesselPosition{pos("A", queryNow, 1.25, 103.85)})
	require.Equal(t, 1, store.Len())

	store.Clear()
	assert.Zero(t, store.Len())
	assert.Empty(t, store.All())
}
