package tracker

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/couchcryptid/vessel-tracking-service/internal/domain"
)

// snapshotFallbackSize is the number of leading records returned when neither
// the reference-day window nor the trailing 24 hours match anything. The
// guarantee is "some non-empty result whenever the store is non-empty", not
// any particular selection.
const snapshotFallbackSize = 10

// LatestPerVessel reduces a record sequence to the most recent position per
// vessel ID. Output order follows the first appearance of each vessel.
func LatestPerVessel(records []domain.VesselPosition) []domain.VesselPosition {
	latest := make(map[string]int, len(records))
	var out []domain.VesselPosition

	for _, rec := range records {
		i, seen := latest[rec.VesselID]
		if !seen {
			latest[rec.VesselID] = len(out)
			out = append(out, rec)
			continue
		}
		if rec.Timestamp.After(out[i].Timestamp) {
			out[i] = rec
		}
	}
	return out
}

// AllSnapshot returns the latest position per vessel over the entire store.
func (s *Service) AllSnapshot() []domain.VesselPosition {
	return LatestPerVessel(s.store.All())
}

// TodaysSnapshot returns the latest-per-vessel view for the current day,
// falling back per SnapshotForDay.
func (s *Service) TodaysSnapshot() []domain.VesselPosition {
	return s.SnapshotForDay(s.clock.Now())
}

// SnapshotForDay returns the latest position per vessel among records whose
// timestamp falls on the reference day [00:00, 24:00) in UTC. Fallback
// strategies run in order until one yields records: the trailing 24 hours
// from now, then the first stored records. An empty store yields an empty
// snapshot; the chain never fails.
func (s *Service) SnapshotForDay(day time.Time) []domain.VesselPosition {
	records := s.store.All()

	strategies := []func() []domain.VesselPosition{
		func() []domain.VesselPosition { return filterDayWindow(records, day) },
		func() []domain.VesselPosition { return filterTrailing(records, s.clock.Now(), 24*time.Hour) },
		func() []domain.VesselPosition { return headRecords(records, snapshotFallbackSize) },
	}

	for _, strategy := range strategies {
		if matched := strategy(); len(matched) > 0 {
			return LatestPerVessel(matched)
		}
	}
	return nil
}

func filterDayWindow(records []domain.VesselPosition, day time.Time) []domain.VesselPosition {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	var out []domain.VesselPosition
	for _, rec := range records {
		if !rec.Timestamp.Before(dayStart) && rec.Timestamp.Before(dayEnd) {
			out = append(out, rec)
		}
	}
	return out
}

func filterTrailing(records []domain.VesselPosition, now time.Time, window time.Duration) []domain.VesselPosition {
	cutoff := now.Add(-window)

	var out []domain.VesselPosition
	for _, rec := range records {
		if rec.Timestamp.After(cutoff) && !rec.Timestamp.After(now) {
			out = append(out, rec)
		}
	}
	return out
}

func headRecords(records []domain.VesselPosition, n int) []domain.VesselPosition {
	if len(records) <= n {
		return records
	}
	return records[:n]
}

// ByRoute returns snapshot vessels tagged with the given route code.
func (s *Service) ByRoute(route string) []domain.VesselPosition {
	return filterSnapshot(s.AllSnapshot(), func(p domain.VesselPosition) bool {
		return strings.EqualFold(p.Route, route)
	})
}

// ByArea returns snapshot vessels within radiusKm (inclusive) of the center.
func (s *Service) ByArea(centerLat, centerLng, radiusKm float64) []domain.VesselPosition {
	return filterSnapshot(s.AllSnapshot(), func(p domain.VesselPosition) bool {
		return domain.DistanceKm(centerLat, centerLng, p.Latitude, p.Longitude) <= radiusKm
	})
}

// ByShipType returns snapshot vessels whose ship type or derived category
// contains the given substring, case-insensitively.
func (s *Service) ByShipType(typeSubstring string) []domain.VesselPosition {
	sub := strings.ToLower(typeSubstring)
	return filterSnapshot(s.AllSnapshot(), func(p domain.VesselPosition) bool {
		return strings.Contains(strings.ToLower(p.ShipType), sub) ||
			strings.Contains(strings.ToLower(p.VesselCategory), sub)
	})
}

// ByMMSI returns the snapshot position for the given vessel ID.
func (s *Service) ByMMSI(mmsi string) (domain.VesselPosition, bool) {
	for _, p := range s.AllSnapshot() {
		if p.VesselID == mmsi {
			return p, true
		}
	}
	return domain.VesselPosition{}, false
}

// ByIMO returns the snapshot position for the given IMO number.
func (s *Service) ByIMO(imo string) (domain.VesselPosition, bool) {
	for _, p := range s.AllSnapshot() {
		if p.IMO == imo {
			return p, true
		}
	}
	return domain.VesselPosition{}, false
}

// ByAISStatus returns snapshot vessels with the given AIS navigational
// status code.
func (s *Service) ByAISStatus(status string) []domain.VesselPosition {
	return filterSnapshot(s.AllSnapshot(), func(p domain.VesselPosition) bool {
		return p.AISStatus == status
	})
}

func filterSnapshot(snapshot []domain.VesselPosition, keep func(domain.VesselPosition) bool) []domain.VesselPosition {
	var out []domain.VesselPosition
	for _, p := range snapshot {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// History returns all stored positions for a vessel within the trailing
// lookback window, sorted ascending by timestamp.
func (s *Service) History(vesselID string, lookback time.Duration) []domain.VesselPosition {
	cutoff := s.clock.Now().Add(-lookback)

	var out []domain.VesselPosition
	for _, rec := range s.store.All() {
		if rec.VesselID == vesselID && rec.Timestamp.After(cutoff) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// VesselDimensions describes a vessel's physical size: the reported hull
// dimensions plus the envelope implied by the AIS antenna offsets.
type VesselDimensions struct {
	VesselID      string  `json:"vesselId"`
	Name          string  `json:"name"`
	Length        float64 `json:"length"`
	Beam          float64 `json:"beam"`
	Draught       float64 `json:"draught"`
	OverallLength float64 `json:"overallLength"` // AIS A + B
	OverallBeam   float64 `json:"overallBeam"`   // AIS C + D
}

// Dimensions returns the size profile for a vessel, or false when the vessel
// is not in the snapshot.
func (s *Service) Dimensions(vesselID string) (VesselDimensions, bool) {
	p, ok := s.ByMMSI(vesselID)
	if !ok {
		return VesselDimensions{}, false
	}
	return VesselDimensions{
		VesselID:      p.VesselID,
		Name:          p.Name,
		Length:        p.Length,
		Beam:          p.Beam,
		Draught:       p.Draught,
		OverallLength: p.AISDimA + p.AISDimB,
		OverallBeam:   p.AISDimC + p.AISDimD,
	}, true
}

// MovementReport summarizes a vessel's recent track.
type MovementReport struct {
	VesselID   string                `json:"vesselId"`
	Points     int                   `json:"points"`
	AvgSpeed   float64               `json:"avgSpeed"` // knots
	MaxSpeed   float64               `json:"maxSpeed"` // knots
	AvgHeading float64               `json:"avgHeading"`
	PathKm     float64               `json:"pathKm"` // cumulative great-circle distance
	First      domain.VesselPosition `json:"first"`
	Last       domain.VesselPosition `json:"last"`
}

// MovementAnalysis computes speed, heading, and cumulative path statistics
// over a vessel's history. Returns nil when fewer than two points exist in
// the window — not enough track to analyze.
func (s *Service) MovementAnalysis(vesselID string, lookback time.Duration) *MovementReport {
	history := s.History(vesselID, lookback)
	if len(history) < 2 {
		return nil
	}

	var speedSum, maxSpeed, sinSum, cosSum, pathKm float64
	for i, p := range history {
		speedSum += p.SOG
		if p.SOG > maxSpeed {
			maxSpeed = p.SOG
		}
		rad := p.Heading * math.Pi / 180
		sinSum += math.Sin(rad)
		cosSum += math.Cos(rad)
		if i > 0 {
			prev := history[i-1]
			pathKm += domain.DistanceKm(prev.Latitude, prev.Longitude, p.Latitude, p.Longitude)
		}
	}

	// Circular mean, so headings straddling north average to north instead
	// of south.
	avgHeading := math.Atan2(sinSum, cosSum) * 180 / math.Pi
	if avgHeading < 0 {
		avgHeading += 360
	}

	n := float64(len(history))
	return &MovementReport{
		VesselID:   vesselID,
		Points:     len(history),
		AvgSpeed:   speedSum / n,
		MaxSpeed:   maxSpeed,
		AvgHeading: avgHeading,
		PathKm:     pathKm,
		First:      history[0],
		Last:       history[len(history)-1],
	}
}

// TrafficSummary aggregates the snapshot by category, status, and flag.
type TrafficSummary struct {
	Vessels    int            `json:"vessels"`
	ByCategory map[string]int `json:"byCategory"`
	ByStatus   map[string]int `json:"byStatus"`
	ByFlag     map[string]int `json:"byFlag"`
	AvgSpeed   float64        `json:"avgSpeed"` // over vessels with nonzero SOG
}

// Traffic returns fleet-wide aggregate counts over the snapshot.
func (s *Service) Traffic() TrafficSummary {
	snapshot := s.AllSnapshot()

	summary := TrafficSummary{
		Vessels:    len(snapshot),
		ByCategory: make(map[string]int),
		ByStatus:   make(map[string]int),
		ByFlag:     make(map[string]int),
	}

	var speedSum float64
	var moving int
	for _, p := range snapshot {
		summary.ByCategory[p.VesselCategory]++
		if p.Status != "" {
			summary.ByStatus[p.Status]++
		}
		if p.Flag != "" {
			summary.ByFlag[p.Flag]++
		}
		if p.SOG > 0 {
			speedSum += p.SOG
			moving++
		}
	}
	if moving > 0 {
		summary.AvgSpeed = speedSum / float64(moving)
	}
	return summary
}
