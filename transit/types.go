package transit

import (
	"time"

	"github.com/theoremus-urban-solutions/transit-arrivals/geo"
)

// Stop is a static transit stop.
type Stop struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Position geo.Coordinate `json:"position"`
}

// Trip is one scheduled run of a vehicle along a route.
type Trip struct {
	ID       string `json:"id"`
	RouteID  string `json:"routeId"`
	ShapeID  string `json:"shapeId,omitempty"`
	Headsign string `json:"headsign,omitempty"`
}

// TripStopTime places a stop in a trip's ordered sequence. Sequence is
// strictly increasing per trip; gaps are allowed. It carries order only,
// not scheduled times.
type TripStopTime struct {
	TripID   string `json:"tripId"`
	StopID   string `json:"stopId"`
	Sequence int    `json:"sequence"`
}

// Vehicle is the last API-reported state of a vehicle. Snapshots are
// replaced wholesale on each polling cycle, never mutated in place. SpeedKmh
// is nil when the feed did not report a speed.
type Vehicle struct {
	ID        int            `json:"id"`
	Position  geo.Coordinate `json:"position"`
	SpeedKmh  *float64       `json:"speedKmh,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	TripID    string         `json:"tripId,omitempty"`
	RouteID   string         `json:"routeId,omitempty"`
}
