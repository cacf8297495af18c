package predict

import (
	"time"

	"github.com/theoremus-urban-solutions/transit-arrivals/geo"
	"github.com/theoremus-urban-solutions/transit-arrivals/shape"
	"github.com/theoremus-urban-solutions/transit-arrivals/transit"
)

// PredictionMetadata is the derived state attached to a vehicle by one
// enhancement pass. It is recomputed fresh per cycle and never cached.
type PredictionMetadata struct {
	PredictedPosition      geo.Coordinate  `json:"predictedPosition"`
	PredictedSpeedKmh      float64         `json:"predictedSpeedKmh"`
	SpeedMethod            SpeedMethod     `json:"speedMethod"`
	SpeedConfidence        SpeedConfidence `json:"speedConfidence"`
	DistanceTraveledMeters float64         `json:"distanceTraveledMeters"`
	StationsEncountered    int             `json:"stationsEncountered"`
	TotalDwellTimeMs       float64         `json:"totalDwellTimeMs"`
	PositionApplied        bool            `json:"positionApplied"`
	TimestampAgeMs         float64         `json:"timestampAgeMs"`
}

// EnhancedVehicle is a vehicle snapshot plus its prediction metadata.
type EnhancedVehicle struct {
	transit.Vehicle
	Prediction PredictionMetadata `json:"prediction"`
}

// Enhancer produces EnhancedVehicle records for display layers that want a
// smoothed, simulated-forward position instead of the raw last-reported fix.
type Enhancer struct {
	Speed   SpeedConfig
	Sim     SimConfig
	Density *DensityCenterCache
}

// NewEnhancer wires an enhancer with default tunables and a fresh density
// cache.
func NewEnhancer() Enhancer {
	return Enhancer{
		Speed:   DefaultSpeedConfig(),
		Sim:     DefaultSimConfig(),
		Density: NewDensityCenterCache(),
	}
}

// Enhance computes prediction metadata for every vehicle. shapes is keyed by
// trip ID; vehicles without a usable shape keep their reported position with
// PositionApplied false. now anchors the timestamp-age computation so the
// pass is a pure function of its inputs.
func (e Enhancer) Enhance(vehicles []transit.Vehicle, shapes map[string]*shape.RouteShape, stopTimesByTrip map[string][]transit.TripStopTime, stops []transit.Stop, now time.Time) []EnhancedVehicle {
	stopIdx := transit.StopsByID(stops)
	var center *geo.Coordinate
	if e.Density != nil {
		if c, ok := e.Density.Center(stops); ok {
			center = &c
		}
	}

	out := make([]EnhancedVehicle, 0, len(vehicles))
	for _, v := range vehicles {
		ageMs := float64(now.Sub(v.Timestamp)) / float64(time.Millisecond)
		if ageMs < 0 {
			ageMs = 0
		}
		speed := PredictSpeed(v, vehicles, center, e.Speed)
		meta := PredictionMetadata{
			PredictedPosition: v.Position,
			PredictedSpeedKmh: speed.SpeedKmh,
			SpeedMethod:       speed.Method,
			SpeedConfidence:   speed.Confidence,
			TimestampAgeMs:    ageMs,
		}
		if rs := shapes[v.TripID]; !rs.Empty() {
			sim := Simulate(v, rs, stopTimesByTrip[v.TripID], stopIdx, speed.SpeedKmh, ageMs, e.Sim)
			meta.PredictedPosition = sim.EndPosition
			meta.DistanceTraveledMeters = sim.DistanceTraveledMeters
			meta.StationsEncountered = len(sim.StationsEncountered)
			meta.TotalDwellTimeMs = sim.TotalDwellTimeMs
			meta.PositionApplied = sim.DistanceTraveledMeters > 0
		}
		out = append(out, EnhancedVehicle{Vehicle: v, Prediction: meta})
	}
	return out
}
