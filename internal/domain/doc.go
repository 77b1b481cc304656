// Package domain models AIS-style vessel position data for the Singapore
// ferry tracking overlay.
//
// # Data Source
//
// Position reports arrive as CSV exports in the shape produced by commercial
// AIS aggregators. The canonical header is:
//
//	Local Time, UTC Time, MMSI, IMO, Name, Call Sign, Ship Type, Length,
//	Beam, Draught, SOG, COG, Heading, Latitude, Longitude, Destination,
//	Status, Flag, AIS Ship Type, AIS Status, AIS A, AIS B, AIS C, AIS D
//
// Exports from different providers disagree on header casing and spacing
// ("Call Sign" vs "callsign"), so every logical field is resolved through an
// ordered list of candidate column names. See [Normalize].
//
// # AIS Conventions
//
// MMSI (Maritime Mobile Service Identity) is the per-vessel transponder ID
// and our primary key. SOG/COG are speed over ground in knots and course
// over ground in degrees. AIS A/B/C/D are the antenna-offset dimensions:
// A+B is the vessel's overall length, C+D its overall beam.
//
// Timestamps:
//
//	Providers emit either RFC 3339-style strings or "DD/MM/YYYY HH:mm:ss".
//	Both are tried; a parsed time more than a year in the past or more than
//	30 days in the future is treated as garbage. Unparseable or implausible
//	timestamps fall back to the current instant so a stored record always
//	carries a valid time. See [resolveTimestamp].
//
// Coordinates:
//
//	(0, 0) is the null-island sentinel AIS feeds emit when a vessel has no
//	GPS fix. Records with (0, 0) or out-of-range coordinates are dropped by
//	the ingestion filter, not by the normalizer.
//
// # Derived Tags
//
// Route codes ("MSP-KUSU", "MSP-LAZARUS", ...) are derived by substring
// matching the destination against the known Marina South Pier ferry stops.
// Vessel categories (Ferry, Cargo, Tanker, ...) are derived from the
// free-text ship type the same way. Unmatched values pass through so the
// map layer can still label the marker.
package domain
