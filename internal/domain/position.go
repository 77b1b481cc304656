package domain

import "time"

// RawRow is one parsed CSV row, keyed by whitespace-normalized header name.
// Values are untyped strings; numeric coercion happens in the normalizer.
type RawRow map[string]string

// Vessel categories derived from the free-text ship type. An unrecognized
// non-empty type passes through verbatim so the map layer can still label it.
const (
	CategoryFerry        = "Ferry"
	CategoryCargo        = "Cargo"
	CategoryTanker       = "Tanker"
	CategoryTug          = "Tug"
	CategoryPilot        = "Pilot"
	CategoryRecreational = "Recreational"
	CategoryFishing      = "Fishing"
	CategoryUnknown      = "Unknown"
)

// Route codes for the Marina South Pier ferry network.
const (
	RouteKusu    = "MSP-KUSU"
	RouteLazarus = "MSP-LAZARUS"
	RouteStJohn  = "MSP-STJOHN"
	RouteSentosa = "MSP-SENTOSA"
	RouteMarina  = "MSP-MARINA"
	RouteFerry   = "FERRY-ROUTE"
)

// VesselPosition is the canonical position record produced by the normalizer.
// Every stored record has a non-empty VesselID, in-range non-zero coordinates,
// and a valid Timestamp (the normalizer never emits a zero or implausible time).
type VesselPosition struct {
	VesselID  string    `json:"vesselId"` // MMSI
	IMO       string    `json:"imo,omitempty"`
	Name      string    `json:"name"`
	CallSign  string    `json:"callSign,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	SOG       float64   `json:"sog"`     // knots
	COG       float64   `json:"cog"`     // degrees
	Heading   float64   `json:"heading"` // degrees
	ShipType  string    `json:"shipType,omitempty"`
	Length    float64   `json:"length,omitempty"`  // meters
	Beam      float64   `json:"beam,omitempty"`    // meters
	Draught   float64   `json:"draught,omitempty"` // meters

	Destination string `json:"destination,omitempty"`
	Status      string `json:"status,omitempty"`
	Flag        string `json:"flag,omitempty"`

	AISShipType string  `json:"aisShipType,omitempty"`
	AISStatus   string  `json:"aisStatus,omitempty"`
	AISDimA     float64 `json:"aisDimA,omitempty"` // bow offset, meters
	AISDimB     float64 `json:"aisDimB,omitempty"` // stern offset, meters
	AISDimC     float64 `json:"aisDimC,omitempty"` // port offset, meters
	AISDimD     float64 `json:"aisDimD,omitempty"` // starboard offset, meters

	// Derived tags.
	VesselCategory string `json:"vesselCategory"`
	Route          string `json:"route,omitempty"`
}

// HasValidCoordinates reports whether the position is inside the WGS-84 range
// and not the (0,0) null-island sentinel.
func (p VesselPosition) HasValidCoordinates() bool {
	if p.Latitude == 0 && p.Longitude == 0 {
		return false
	}
	return p.Latitude >= -90 && p.Latitude <= 90 &&
		p.Longitude >= -180 && p.Longitude <= 180
}

// Storable reports whether the record passes the post-normalization filter:
// valid coordinates and a non-empty vessel ID.
func (p VesselPosition) Storable() bool {
	return p.VesselID != "" && p.HasValidCoordinates()
}
