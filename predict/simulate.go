package predict

import (
	"sort"

	"github.com/theoremus-urban-solutions/transit-arrivals/geo"
	"github.com/theoremus-urban-solutions/transit-arrivals/shape"
	"github.com/theoremus-urban-solutions/transit-arrivals/transit"
)

// SimConfig carries the movement-simulation tunables.
type SimConfig struct {
	// MinMovingKmh is the speed at or below which the vehicle is treated as
	// idle.
	MinMovingKmh float64
	// StopProximityM is the radius within which an idle vehicle counts as
	// dwelling at a stop.
	StopProximityM float64
	// DwellTimeMs is the fixed time spent stationary at each intermediate
	// stop.
	DwellTimeMs float64
}

// DefaultSimConfig returns the standard simulation tunables.
func DefaultSimConfig() SimConfig {
	return SimConfig{MinMovingKmh: 1, StopProximityM: 50, DwellTimeMs: 30000}
}

// Simulation is the outcome of advancing a vehicle forward in time.
type Simulation struct {
	EndPosition            geo.Coordinate
	DistanceTraveledMeters float64
	StationsEncountered    []transit.TripStopTime
	TotalDwellTimeMs       float64
}

// aheadStop pairs a trip stop with its scalar route position.
type aheadStop struct {
	stopTime transit.TripStopTime
	routePos float64
}

// Simulate advances the vehicle along the route shape for elapsedMs of
// simulated time at speedKmh, dwelling at each intermediate stop it reaches.
// The walk runs in the time domain: moving to the next stop costs the travel
// time at the given speed, each stop visit costs up to DwellTimeMs, and any
// leftover time after the final stop is converted back into distance along
// the remaining shape. Degenerate inputs (nil or empty shape, failed
// projection) are a no-op returning the original position.
func Simulate(v transit.Vehicle, rs *shape.RouteShape, stopTimes []transit.TripStopTime, stops map[string]transit.Stop, speedKmh, elapsedMs float64, cfg SimConfig) Simulation {
	noop := Simulation{EndPosition: v.Position}
	if elapsedMs <= 0 {
		return noop
	}

	if speedKmh <= cfg.MinMovingKmh {
		// Idle vehicle: a full dwell credit if it is sitting at some stop,
		// otherwise nothing happens.
		for _, st := range stopTimes {
			stop, ok := stops[st.StopID]
			if !ok {
				continue
			}
			if geo.HaversineMeters(v.Position, stop.Position) <= cfg.StopProximityM {
				noop.TotalDwellTimeMs = cfg.DwellTimeMs
				break
			}
		}
		return noop
	}

	if rs.Empty() {
		return noop
	}

	vehPr, err := rs.Project(v.Position)
	if err != nil {
		return noop
	}
	startPos := rs.RoutePositionMeters(vehPr)

	ahead := make([]aheadStop, 0, len(stopTimes))
	for _, st := range stopTimes {
		stop, ok := stops[st.StopID]
		if !ok {
			continue
		}
		pr, err := rs.Project(stop.Position)
		if err != nil {
			continue
		}
		pos := rs.RoutePositionMeters(pr)
		if pos > startPos {
			ahead = append(ahead, aheadStop{stopTime: st, routePos: pos})
		}
	}
	sort.Slice(ahead, func(i, j int) bool { return ahead[i].routePos < ahead[j].routePos })

	speedMps := speedKmh / 3.6
	remainingMs := elapsedMs
	curPos := startPos
	result := Simulation{}

	for _, next := range ahead {
		travelMs := (next.routePos - curPos) / speedMps * 1000
		if travelMs > remainingMs {
			curPos += speedMps * remainingMs / 1000
			remainingMs = 0
			break
		}
		remainingMs -= travelMs
		curPos = next.routePos
		result.StationsEncountered = append(result.StationsEncountered, next.stopTime)
		dwell := cfg.DwellTimeMs
		if dwell > remainingMs {
			dwell = remainingMs
		}
		result.TotalDwellTimeMs += dwell
		remainingMs -= dwell
		if remainingMs <= 0 {
			break
		}
	}

	// Past the last stop with time left: keep moving along the shape.
	if remainingMs > 0 {
		curPos += speedMps * remainingMs / 1000
	}
	if total := rs.TotalDistanceMeters(); curPos > total {
		curPos = total
	}

	result.EndPosition = rs.PointAtRoutePosition(curPos)
	result.DistanceTraveledMeters = curPos - startPos
	return result
}
