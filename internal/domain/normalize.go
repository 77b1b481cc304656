package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Candidate column names per logical field, tried in priority order. AIS CSV
// exports are inconsistent about casing and spacing, so each list carries the
// canonical header plus the lowercase/no-space variants seen in the wild.
var (
	mmsiKeys        = []string{"MMSI", "mmsi"}
	imoKeys         = []string{"IMO", "imo"}
	nameKeys        = []string{"Name", "name", "Vessel Name", "vessel name"}
	callSignKeys    = []string{"Call Sign", "CallSign", "callsign", "call sign"}
	utcTimeKeys     = []string{"UTC Time", "utc time", "UTCTime", "Timestamp", "timestamp"}
	localTimeKeys   = []string{"Local Time", "local time", "LocalTime"}
	shipTypeKeys    = []string{"Ship Type", "ShipType", "shiptype", "ship type"}
	lengthKeys      = []string{"Length", "length"}
	beamKeys        = []string{"Beam", "beam"}
	draughtKeys     = []string{"Draught", "draught", "Draft", "draft"}
	sogKeys         = []string{"SOG", "sog", "Speed", "speed"}
	cogKeys         = []string{"COG", "cog", "Course", "course"}
	headingKeys     = []string{"Heading", "heading"}
	latitudeKeys    = []string{"Latitude", "latitude", "Lat", "lat"}
	longitudeKeys   = []string{"Longitude", "longitude", "Lon", "lon", "Lng", "lng"}
	destinationKeys = []string{"Destination", "destination"}
	statusKeys      = []string{"Status", "status"}
	flagKeys        = []string{"Flag", "flag"}
	aisShipTypeKeys = []string{"AIS Ship Type", "ais ship type", "AISShipType"}
	aisStatusKeys   = []string{"AIS Status", "ais status", "AISStatus"}
	aisDimAKeys     = []string{"AIS A", "ais a", "AISA"}
	aisDimBKeys     = []string{"AIS B", "ais b", "AISB"}
	aisDimCKeys     = []string{"AIS C", "ais c", "AISC"}
	aisDimDKeys     = []string{"AIS D", "ais d", "AISD"}
)

// Timestamp plausibility window. A parsed time outside [now-1y, now+30d] is
// treated as a feed artifact and replaced with the current instant.
const (
	maxTimestampAge    = 365 * 24 * time.Hour
	maxTimestampFuture = 30 * 24 * time.Hour
)

// Normalize maps a raw CSV row into a canonical VesselPosition. Missing fields
// get defaults ("Unknown Vessel", 0, empty); the timestamp always resolves to
// a valid instant. index identifies the row within its batch and is used to
// synthesize a vessel ID for named vessels whose MMSI column is empty. Rows
// with neither MMSI nor name keep an empty VesselID and fail the ingestion
// filter. Coordinate validation is the caller's job, not Normalize's.
func Normalize(raw RawRow, index int) VesselPosition {
	name := lookupOr(raw, nameKeys, "Unknown Vessel")
	destination := lookup(raw, destinationKeys)
	shipType := lookup(raw, shipTypeKeys)

	vesselID := lookup(raw, mmsiKeys)
	if vesselID == "" && lookup(raw, nameKeys) != "" {
		vesselID = fmt.Sprintf("VESSEL-%d", index)
	}

	return VesselPosition{
		VesselID:  vesselID,
		IMO:       lookup(raw, imoKeys),
		Name:      name,
		CallSign:  lookup(raw, callSignKeys),
		Timestamp: resolveTimestamp(lookup(raw, utcTimeKeys), lookup(raw, localTimeKeys)),
		Latitude:  parseFloatOrZero(lookup(raw, latitudeKeys)),
		Longitude: parseFloatOrZero(lookup(raw, longitudeKeys)),
		SOG:       parseFloatOrZero(lookup(raw, sogKeys)),
		COG:       parseFloatOrZero(lookup(raw, cogKeys)),
		Heading:   parseFloatOrZero(lookup(raw, headingKeys)),
		ShipType:  shipType,
		Length:    parseFloatOrZero(lookup(raw, lengthKeys)),
		Beam:      parseFloatOrZero(lookup(raw, beamKeys)),
		Draught:   parseFloatOrZero(lookup(raw, draughtKeys)),

		Destination: destination,
		Status:      lookup(raw, statusKeys),
		Flag:        lookup(raw, flagKeys),

		AISShipType: lookup(raw, aisShipTypeKeys),
		AISStatus:   lookup(raw, aisStatusKeys),
		AISDimA:     parseFloatOrZero(lookup(raw, aisDimAKeys)),
		AISDimB:     parseFloatOrZero(lookup(raw, aisDimBKeys)),
		AISDimC:     parseFloatOrZero(lookup(raw, aisDimCKeys)),
		AISDimD:     parseFloatOrZero(lookup(raw, aisDimDKeys)),

		VesselCategory: DeriveCategory(shipType),
		Route:          DeriveRoute(destination, name),
	}
}

// lookup returns the first non-empty value among the candidate keys.
func lookup(raw RawRow, keys []string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(raw[k]); v != "" {
			return v
		}
	}
	return ""
}

func lookupOr(raw RawRow, keys []string, fallback string) string {
	if v := lookup(raw, keys); v != "" {
		return v
	}
	return fallback
}

// parseFloatOrZero parses a string as float64, returning 0 on failure.
func parseFloatOrZero(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// timestampLayouts are the direct-parse layouts tried before the DD/MM/YYYY
// reinterpretation.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// resolveTimestamp parses the UTC time string, falling back to the local time
// string, then to a DD/MM/YYYY HH:mm:ss reinterpretation of either. A result
// outside the plausibility window, or no parseable value at all, resolves to
// the current instant — a stored record never carries an invalid time.
func resolveTimestamp(utcTime, localTime string) time.Time {
	for _, s := range []string{utcTime, localTime} {
		if t, ok := parseTimestamp(s); ok && isPlausible(t) {
			return t
		}
	}
	return clock.Now()
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if t, err := time.Parse("02/01/2006 15:04:05", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func isPlausible(t time.Time) bool {
	now := clock.Now()
	return t.After(now.Add(-maxTimestampAge)) && t.Before(now.Add(maxTimestampFuture))
}

// DeriveRoute tags a position with a Marina South Pier route code based on a
// case-insensitive substring match of the destination. A vessel whose name
// suggests a ferry but whose destination matches no known stop gets the
// generic FERRY-ROUTE tag; anything else passes the raw destination through.
func DeriveRoute(destination, name string) string {
	dest := strings.ToLower(destination)
	switch {
	case strings.Contains(dest, "kusu"):
		return RouteKusu
	case strings.Contains(dest, "lazarus"):
		return RouteLazarus
	case strings.Contains(dest, "st john"), strings.Contains(dest, "stjohn"):
		return RouteStJohn
	case strings.Contains(dest, "sentosa"):
		return RouteSentosa
	case strings.Contains(dest, "marina") && strings.Contains(dest, "south"):
		return RouteMarina
	}

	n := strings.ToLower(name)
	if strings.Contains(n, "ferry") || strings.Contains(n, "passenger") {
		return RouteFerry
	}
	return destination
}

// DeriveCategory maps a free-text ship type onto the marker category
// vocabulary. Empty input yields Unknown; an unmatched non-empty type passes
// through verbatim.
func DeriveCategory(shipType string) string {
	s := strings.ToLower(strings.TrimSpace(shipType))
	if s == "" {
		return CategoryUnknown
	}

	switch {
	case strings.Contains(s, "passenger"), strings.Contains(s, "ferry"):
		return CategoryFerry
	case strings.Contains(s, "cargo"), strings.Contains(s, "container"):
		return CategoryCargo
	case strings.Contains(s, "tanker"):
		return CategoryTanker
	case strings.Contains(s, "tug"):
		return CategoryTug
	case strings.Contains(s, "pilot"):
		return CategoryPilot
	case strings.Contains(s, "pleasure"), strings.Contains(s, "yacht"):
		return CategoryRecreational
	case strings.Contains(s, "fishing"):
		return CategoryFishing
	}
	return shipType
}
