// Package simulator generates a deterministic synthetic vessel trajectory.
//
// The generator is the default and fallback data source for the tracking
// pipeline: a single ferry, MSF HAPPY, circling a fixed point in Singapore
// waters near Marina South Pier. Output is CSV in the same aggregator export
// shape the real feed uses, so the rest of the pipeline cannot tell the two
// apart. Everything is a pure function of the supplied instant.
package simulator

import (
	"encoding/csv"
	"fmt"
	"math"
	"strings"
	"time"
)

// Trajectory geometry. The radius of 0.008 degrees is roughly 900 m, and one
// revolution takes RevolutionPeriod of wall-clock time, which works out to a
// plausible harbor-ferry speed.
const (
	VesselName     = "MSF HAPPY"
	VesselMMSI     = "563000001"
	CenterLat      = 1.2580
	CenterLng      = 103.8600
	RadiusDeg      = 0.008
	SampleInterval = 10 * time.Second
	WindowHalf     = 10 * time.Minute

	RevolutionPeriod = 20 * time.Minute
)

var header = []string{
	"Local Time", "UTC Time", "MMSI", "IMO", "Name", "Call Sign",
	"Ship Type", "Length", "Beam", "Draught", "SOG", "COG", "Heading",
	"Latitude", "Longitude", "Destination", "Status", "Flag",
	"AIS Ship Type", "AIS Status", "AIS A", "AIS B", "AIS C", "AIS D",
}

// sgt is the local-time zone for the "Local Time" column.
var sgt = time.FixedZone("SGT", 8*60*60)

// GenerateCSV returns a CSV document of MSF HAPPY positions sampled every
// 10 seconds across [now-10m, now+10m]. The trajectory is a circle around
// (CenterLat, CenterLng); the phase advances with wall-clock time so
// successive calls show the vessel progressing around the loop.
func GenerateCSV(now time.Time) string {
	var buf strings.Builder
	w := csv.NewWriter(&buf)

	w.Write(header) //nolint:errcheck // strings.Builder writes cannot fail

	total := int(2 * WindowHalf / SampleInterval)
	start := now.Add(-WindowHalf)
	phase := wallClockPhase(now)

	for i := 0; i < total; i++ {
		sampleTime := start.Add(time.Duration(i) * SampleInterval)
		w.Write(sampleRow(i, total, sampleTime, phase)) //nolint:errcheck
	}

	w.Flush()
	return buf.String()
}

// sampleRow computes the i-th sample of the trajectory. The window's samples
// sweep the circle exactly once; phase rotates the whole pattern.
func sampleRow(i, total int, sampleTime time.Time, phase float64) []string {
	angle := float64(i)/float64(total)*2*math.Pi + phase

	lat := CenterLat + RadiusDeg*math.Cos(angle)
	lng := CenterLng + RadiusDeg*math.Sin(angle)

	// Motion is tangent to the circle: the position angle plus 90 degrees.
	// Rounded to the emitted precision before normalizing so 359.96 does not
	// format as "360.0".
	course := normalizeDeg(roundTenth(angle*180/math.Pi + 90))
	sog := 8 + 2*math.Sin(angle)
	heading := normalizeDeg(roundTenth(course + 10*math.Sin(2*angle)))

	return []string{
		sampleTime.In(sgt).Format("2006-01-02 15:04:05"),
		sampleTime.UTC().Format("2006-01-02 15:04:05"),
		VesselMMSI,
		"9000001",
		VesselName,
		"9VMF1",
		"Passenger Ship",
		"35", "8", "2.2",
		fmt.Sprintf("%.1f", sog),
		fmt.Sprintf("%.1f", course),
		fmt.Sprintf("%.1f", heading),
		fmt.Sprintf("%.6f", lat),
		fmt.Sprintf("%.6f", lng),
		"Kusu Island",
		"Under way using engine",
		"SG",
		"Passenger",
		"0",
		"20", "15", "4", "4",
	}
}

// wallClockPhase maps the generation instant onto a starting angle so that
// successive calls show the vessel progressing, one revolution per
// RevolutionPeriod.
func wallClockPhase(now time.Time) float64 {
	period := int64(RevolutionPeriod / time.Second)
	return float64(now.Unix()%period) / float64(period) * 2 * math.Pi
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

func normalizeDeg(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
