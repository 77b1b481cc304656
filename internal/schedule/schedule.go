// Package schedule holds the static ferry departure boards and timetables for
// the Marina South Pier network and answers "next departures after arrival"
// queries against them.
package schedule

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Departure statuses as shown on the terminal boards.
const (
	StatusOnTime    = "On time"
	StatusDelayed   = "Delayed"
	StatusCancelled = "Cancelled"
)

// Departure is one row of a terminal departure board.
type Departure struct {
	Ferry       string `json:"ferry"`
	Destination string `json:"destination"`
	ETA         string `json:"eta"`
	Status      string `json:"status"`
}

// nextListSize is how many upcoming departure times a timetable query returns.
const nextListSize = 3

// boards maps terminal name to its current departure board. The data is
// static; a live feed would replace this map wholesale.
var boards = map[string][]Departure{
	"MSP": {
		{Ferry: "Nº 112", Destination: "Lazarus", ETA: "5 min", Status: StatusOnTime},
		{Ferry: "Nº 24", Destination: "Sisters", ETA: "10 min", Status: StatusDelayed},
		{Ferry: "Nº 6", Destination: "Lazarus", ETA: "20 min", Status: StatusOnTime},
		{Ferry: "Nº 8", Destination: "Sisters", ETA: "25 min", Status: StatusCancelled},
	},
	"Lazarus": {
		{Ferry: "Nº 3", Destination: "MSP", ETA: "8 min", Status: StatusOnTime},
		{Ferry: "Nº 15", Destination: "Sisters", ETA: "12 min", Status: StatusOnTime},
		{Ferry: "Nº 21", Destination: "MSP", ETA: "30 min", Status: StatusDelayed},
	},
	"Kusu": {
		{Ferry: "Nº 7", Destination: "MSP", ETA: "6 min", Status: StatusOnTime},
		{Ferry: "Nº 14", Destination: "Lazarus", ETA: "15 min", Status: StatusOnTime},
		{Ferry: "Nº 22", Destination: "MSP", ETA: "25 min", Status: StatusOnTime},
	},
}

// timetables lists the scheduled departure times (HH:MM, local) from Marina
// South Pier per island destination.
var timetables = map[string][]string{
	"Kusu Island": {
		"09:00", "10:00", "11:00", "12:00", "13:00",
		"14:00", "15:00", "16:00", "17:00",
	},
	"Lazarus Island": {
		"09:15", "10:15", "11:15", "12:15", "13:15",
		"14:15", "15:15", "16:15", "17:15",
	},
	"St John Island": {
		"09:30", "11:30", "13:30", "15:30", "17:00",
	},
	"Sisters Island": {
		"10:00", "12:00", "14:00", "16:00",
	},
}

// defaultTimes is the fallback shown when a timetable query produces nothing.
var defaultTimes = []string{"09:00", "10:00", "11:00"}

// Terminals returns the known terminal names, sorted.
func Terminals() []string {
	names := make([]string, 0, len(boards))
	for name := range boards {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Board returns the departure board for a terminal. Lookup is
// case-insensitive. The second return is false for unknown terminals.
func Board(terminal string) ([]Departure, bool) {
	for name, rows := range boards {
		if strings.EqualFold(name, terminal) {
			out := make([]Departure, len(rows))
			copy(out, rows)
			return out, true
		}
	}
	return nil, false
}

// Destinations returns the destinations with a published timetable, sorted.
func Destinations() []string {
	names := make([]string, 0, len(timetables))
	for name := range timetables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NextDepartures returns the next few scheduled departures to destination for
// a passenger arriving at the pier at the given local time. Times already
// missed roll over to tomorrow and carry a "+1" marker. The result is never
// empty: destinations without a timetable get the default times.
func NextDepartures(destination string, arrival time.Time) []string {
	var timetable []string
	for name, times := range timetables {
		if strings.EqualFold(name, destination) {
			timetable = times
			break
		}
	}
	if len(timetable) == 0 {
		return append([]string(nil), defaultTimes...)
	}

	arrivalHHMM := fmt.Sprintf("%02d:%02d", arrival.Hour(), arrival.Minute())

	// Timetable entries are zero-padded HH:MM, so string order is time order.
	var today []string
	for _, tm := range timetable {
		if tm >= arrivalHHMM {
			today = append(today, tm)
		}
	}
	if len(today) > nextListSize {
		today = today[:nextListSize]
	}

	out := append([]string(nil), today...)
	for i := 0; len(out) < nextListSize && i < len(timetable); i++ {
		out = append(out, timetable[i]+" +1")
	}
	if len(out) == 0 {
		return append([]string(nil), defaultTimes...)
	}
	return out
}

// NormalizeStatus maps free-form status text onto the board vocabulary.
// Unrecognized values pass through trimmed.
func NormalizeStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "on time", "ontime", "on-time", "scheduled":
		return StatusOnTime
	case "delayed", "late", "delay":
		return StatusDelayed
	case "cancelled", "canceled":
		return StatusCancelled
	default:
		return strings.TrimSpace(status)
	}
}
