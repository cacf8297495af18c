package transitarrivals

import (
	"log"
	"sort"

	"github.com/theoremus-urban-solutions/transit-arrivals/geo"
	"github.com/theoremus-urban-solutions/transit-arrivals/shape"
	"github.com/theoremus-urban-solutions/transit-arrivals/transit"
)

// projectedStop pairs a trip stop with its scalar position along the shape.
type projectedStop struct {
	stop     transit.Stop
	routePos float64
}

// DetermineNextStop resolves which stop the vehicle is currently heading to.
//
// With a usable route shape and an on-route GPS fix, the vehicle and every
// trip stop are projected onto the shape and the first stop strictly ahead
// of the vehicle's route position wins. Without a shape, or with an
// off-route fix, a distance heuristic takes over: the closest stop if it is
// within the next-stop radius, else the first stop of the trip. A vehicle
// past every stop returns the last stop while still within the radius of
// it, and nil once it has truly left the trip behind.
//
// stopTimes must belong to the vehicle's trip and be sorted by sequence.
// The function is pure and deterministic; a nil return means "past all
// stops".
func (e *Engine) DetermineNextStop(v transit.Vehicle, stopTimes []transit.TripStopTime, stops map[string]transit.Stop, rs *shape.RouteShape) *transit.Stop {
	tripStops := make([]transit.Stop, 0, len(stopTimes))
	for _, st := range stopTimes {
		if s, ok := stops[st.StopID]; ok {
			tripStops = append(tripStops, s)
		}
	}
	if len(tripStops) == 0 {
		return nil
	}

	if rs.Empty() {
		return e.nearestStopHeuristic(v, tripStops)
	}
	vehPr, err := rs.Project(v.Position)
	if err != nil || vehPr.DistanceToShapeMeters > e.cfg.OffRouteThresholdM {
		return e.nearestStopHeuristic(v, tripStops)
	}

	next := e.nextStopByRoutePosition(v, vehPr, tripStops, rs)
	if next == nil {
		return nil
	}
	// Guard against shape/trip mismatches: the GPS answer must be one of the
	// trip's own stops, otherwise it is discarded in favor of the heuristic.
	if !stopInSet(*next, stopTimes) {
		log.Printf("next-stop: GPS result stop %s not in trip %s stop set, using distance heuristic", next.ID, v.TripID)
		return e.nearestStopHeuristic(v, tripStops)
	}
	return next
}

// nextStopByRoutePosition implements the GPS-based path: order stops by
// route position and pick the first strictly ahead of the vehicle.
func (e *Engine) nextStopByRoutePosition(v transit.Vehicle, vehPr shape.Projection, tripStops []transit.Stop, rs *shape.RouteShape) *transit.Stop {
	vehPos := rs.RoutePositionMeters(vehPr)

	projected := make([]projectedStop, 0, len(tripStops))
	for _, s := range tripStops {
		pr, err := rs.Project(s.Position)
		if err != nil {
			continue
		}
		projected = append(projected, projectedStop{stop: s, routePos: rs.RoutePositionMeters(pr)})
	}
	if len(projected) == 0 {
		return nil
	}
	sort.Slice(projected, func(i, j int) bool { return projected[i].routePos < projected[j].routePos })

	for i := range projected {
		if projected[i].routePos > vehPos {
			return &projected[i].stop
		}
	}

	// Past the last stop along the shape. Still approaching or sitting at it
	// while within the next-stop radius; otherwise the trip is done.
	last := projected[len(projected)-1].stop
	if geo.HaversineMeters(v.Position, last.Position) <= e.cfg.NextStopRadiusM {
		return &last
	}
	return nil
}

// nearestStopHeuristic is the shape-less fallback: the closest stop when it
// is near enough, else the start of the trip as the conservative default.
func (e *Engine) nearestStopHeuristic(v transit.Vehicle, tripStops []transit.Stop) *transit.Stop {
	bestIdx := 0
	bestDist := geo.HaversineMeters(v.Position, tripStops[0].Position)
	for i := 1; i < len(tripStops); i++ {
		if d := geo.HaversineMeters(v.Position, tripStops[i].Position); d < bestDist {
			bestDist = d
			bestIdx = i
		}
	}
	if bestDist <= e.cfg.NextStopRadiusM {
		return &tripStops[bestIdx]
	}
	return &tripStops[0]
}

func stopInSet(stop transit.Stop, stopTimes []transit.TripStopTime) bool {
	for _, st := range stopTimes {
		if st.StopID == stop.ID {
			return true
		}
	}
	return false
}
