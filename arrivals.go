package transitarrivals

import (
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"github.com/theoremus-urban-solutions/transit-arrivals/geo"
	"github.com/theoremus-urban-solutions/transit-arrivals/predict"
	"github.com/theoremus-urban-solutions/transit-arrivals/shape"
	"github.com/theoremus-urban-solutions/transit-arrivals/transit"
)

// ArrivalStatus classifies a vehicle's relationship to a target stop. The
// numeric values define the fixed sort order used to group results.
type ArrivalStatus int

const (
	StatusAtStop ArrivalStatus = iota
	StatusArrivingSoon
	StatusInMinutes
	StatusJustLeft
	StatusDeparted
	StatusOffRoute
)

// SortOrder returns the status rank used for grouping results.
func (s ArrivalStatus) SortOrder() int { return int(s) }

// MarshalJSON renders the status as its string form.
func (s ArrivalStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

func (s ArrivalStatus) String() string {
	switch s {
	case StatusAtStop:
		return "at_stop"
	case StatusArrivingSoon:
		return "arriving_soon"
	case StatusInMinutes:
		return "in_minutes"
	case StatusJustLeft:
		return "just_left"
	case StatusDeparted:
		return "departed"
	case StatusOffRoute:
		return "off_route"
	}
	return "unknown"
}

// statusMessage derives the human message for a status; minutes is only
// consulted for StatusInMinutes.
func statusMessage(s ArrivalStatus, minutes float64) string {
	switch s {
	case StatusAtStop:
		return "At stop"
	case StatusArrivingSoon:
		return "Arriving soon"
	case StatusInMinutes:
		n := int(math.Round(minutes))
		if n <= 1 {
			return "In 1 minute"
		}
		return fmt.Sprintf("In %d minutes", n)
	case StatusJustLeft:
		return "Just left"
	case StatusDeparted:
		return "Departed"
	case StatusOffRoute:
		return "Off route"
	}
	return ""
}

// ArrivalResult is one vehicle's estimated arrival at a target stop.
// Results are recomputed every polling cycle; correctness depends on
// freshness, so nothing here is cached.
type ArrivalResult struct {
	VehicleID         int              `json:"vehicleId"`
	EstimatedMinutes  float64          `json:"estimatedMinutes"`
	Status            ArrivalStatus    `json:"status"`
	StatusMessage     string           `json:"statusMessage"`
	Confidence        shape.Confidence `json:"confidence"`
	CalculationMethod shape.Method     `json:"calculationMethod"`
}

// SortVehiclesByArrival stable-sorts results by (status order, estimated
// minutes, vehicle ID) ascending.
func SortVehiclesByArrival(results []ArrivalResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Status != results[j].Status {
			return results[i].Status.SortOrder() < results[j].Status.SortOrder()
		}
		if results[i].EstimatedMinutes != results[j].EstimatedMinutes {
			return results[i].EstimatedMinutes < results[j].EstimatedMinutes
		}
		return results[i].VehicleID < results[j].VehicleID
	})
}

// CalculateVehicleArrivalTime estimates when the vehicle reaches the target
// stop. stopTimes must be the vehicle's trip stop sequence sorted by
// sequence; fleet is used for the nearby-average speed tier and stops for
// the density centroid. The vehicle's trip is expected to serve the target
// stop; violating that precondition yields a logged "departed" result, never
// an error.
func (e *Engine) CalculateVehicleArrivalTime(v transit.Vehicle, target transit.Stop, stopTimes []transit.TripStopTime, stops []transit.Stop, rs *shape.RouteShape, fleet []transit.Vehicle) ArrivalResult {
	return e.vehicleArrival(v, target, stopTimes, transit.StopsByID(stops), rs, fleet, stops)
}

func (e *Engine) vehicleArrival(v transit.Vehicle, target transit.Stop, stopTimes []transit.TripStopTime, stopIdx map[string]transit.Stop, rs *shape.RouteShape, fleet []transit.Vehicle, allStops []transit.Stop) ArrivalResult {
	res := ArrivalResult{
		VehicleID:         v.ID,
		Status:            StatusDeparted,
		Confidence:        shape.ConfidenceLow,
		CalculationMethod: shape.MethodStopSegments,
	}

	if !transit.TripServesStop(stopTimes, target.ID) {
		log.Printf("arrivals: vehicle %d trip %q does not serve stop %s, returning departed", v.ID, v.TripID, target.ID)
		res.StatusMessage = statusMessage(res.Status, 0)
		return res
	}

	next := e.DetermineNextStop(v, stopTimes, stopIdx, rs)

	// Intermediate chain from next (inclusive) to target (exclusive), used
	// both for the stop-segments fallback distance and the dwell count.
	chain, intermediates := e.stopChain(next, target, stopTimes, stopIdx)

	dist := e.calc.Distance(v.Position, target.Position, rs, chain)

	var center *geo.Coordinate
	if c, ok := e.density.Center(allStops); ok {
		center = &c
	}
	speed := predict.PredictSpeed(v, fleet, center, e.speed)
	minutes := e.estimateMinutes(dist.TotalDistanceMeters, speed.SpeedKmh, intermediates)

	res.Confidence = dist.Confidence
	res.CalculationMethod = dist.Method

	offRoute := false
	if !rs.Empty() {
		if pr, err := rs.Project(v.Position); err == nil {
			offRoute = pr.DistanceToShapeMeters > e.cfg.OffRouteThresholdM
		}
	}

	dTarget := geo.HaversineMeters(v.Position, target.Position)
	switch {
	case dTarget <= e.cfg.StopProximityM:
		if v.SpeedKmh != nil && *v.SpeedKmh == 0 {
			res.Status = StatusAtStop
			res.EstimatedMinutes = 0
		} else if next != nil && next.ID == target.ID {
			res.Status = StatusArrivingSoon
			res.EstimatedMinutes = minutes
		} else {
			res.Status = StatusJustLeft
			res.EstimatedMinutes = 0
		}
	case offRoute && dTarget > e.cfg.JustLeftWindowM:
		// The GPS fix is too far from the shape to trust any route-based
		// ordering; report the straight-line fallback estimate.
		fallback := e.calc.ViaStops(v.Position, target.Position, chain)
		res.Status = StatusOffRoute
		res.EstimatedMinutes = e.estimateMinutes(fallback.TotalDistanceMeters, speed.SpeedKmh, intermediates)
		res.Confidence = fallback.Confidence
		res.CalculationMethod = fallback.Method
	case next == nil:
		res.Status = StatusDeparted
		res.EstimatedMinutes = 0
	case e.targetAhead(target, *next, stopTimes, stopIdx, rs):
		res.Status = StatusInMinutes
		res.EstimatedMinutes = minutes
	case dTarget <= e.cfg.JustLeftWindowM:
		res.Status = StatusJustLeft
		res.EstimatedMinutes = 0
	default:
		res.Status = StatusDeparted
		res.EstimatedMinutes = 0
	}

	res.StatusMessage = statusMessage(res.Status, res.EstimatedMinutes)
	return res
}

// stopChain returns the coordinates of the trip stops from next (inclusive)
// to target (exclusive) in sequence order, plus their count. The chain is
// empty when next is nil, next equals the target, or the target is behind
// next.
func (e *Engine) stopChain(next *transit.Stop, target transit.Stop, stopTimes []transit.TripStopTime, stopIdx map[string]transit.Stop) ([]geo.Coordinate, int) {
	if next == nil || next.ID == target.ID {
		return nil, 0
	}
	idxNext, idxTarget := -1, -1
	for i, st := range stopTimes {
		if idxNext < 0 && st.StopID == next.ID {
			idxNext = i
		}
		if idxTarget < 0 && st.StopID == target.ID {
			idxTarget = i
		}
	}
	if idxNext < 0 || idxTarget < 0 || idxNext >= idxTarget {
		return nil, 0
	}
	chain := make([]geo.Coordinate, 0, idxTarget-idxNext)
	for i := idxNext; i < idxTarget; i++ {
		if s, ok := stopIdx[stopTimes[i].StopID]; ok {
			chain = append(chain, s.Position)
		}
	}
	return chain, idxTarget - idxNext
}

// targetAhead reports whether the target stop lies at or ahead of the next
// stop along the route. Shape route positions take precedence over trip
// sequence numbers when a usable shape exists.
func (e *Engine) targetAhead(target, next transit.Stop, stopTimes []transit.TripStopTime, stopIdx map[string]transit.Stop, rs *shape.RouteShape) bool {
	if !rs.Empty() {
		tPr, tErr := rs.Project(target.Position)
		nPr, nErr := rs.Project(next.Position)
		if tErr == nil && nErr == nil {
			return !tPr.Before(nPr)
		}
	}
	tSeq, nSeq := -1, -1
	for _, st := range stopTimes {
		if st.StopID == target.ID && tSeq < 0 {
			tSeq = st.Sequence
		}
		if st.StopID == next.ID && nSeq < 0 {
			nSeq = st.Sequence
		}
	}
	return tSeq >= nSeq
}

// estimateMinutes converts a route distance and intermediate-stop count into
// minutes at the effective speed, adding a dwell per intermediate stop.
func (e *Engine) estimateMinutes(distMeters, speedKmh float64, intermediateStops int) float64 {
	if speedKmh <= 0 || math.IsNaN(speedKmh) {
		speedKmh = e.cfg.AverageSpeedKmh
	}
	minutes := distMeters/1000/speedKmh*60 + float64(intermediateStops)*(e.cfg.DwellTimeMs/1000)/60
	if minutes < 0 || math.IsNaN(minutes) {
		return 0
	}
	return minutes
}

// CalculateArrivalsForStop computes sorted arrival results for every vehicle
// whose trip serves the target stop. shapes is keyed by trip ID; when a trip
// ID misses, the trip's shape ID (resolved through trips) is tried as a
// secondary key. Vehicles without a trip, and vehicles whose trip does not
// serve the stop, are filtered out before the per-vehicle pipeline runs.
func (e *Engine) CalculateArrivalsForStop(target transit.Stop, vehicles []transit.Vehicle, trips map[string]transit.Trip, stopTimes []transit.TripStopTime, stops []transit.Stop, shapes map[string]*shape.RouteShape) []ArrivalResult {
	byTrip := transit.StopTimesByTrip(stopTimes)
	stopIdx := transit.StopsByID(stops)

	results := make([]ArrivalResult, 0)
	for _, v := range vehicles {
		if v.TripID == "" {
			continue
		}
		tripSts := byTrip[v.TripID]
		if !transit.TripServesStop(tripSts, target.ID) {
			continue
		}
		rs := shapes[v.TripID]
		if rs == nil {
			if tr, ok := trips[v.TripID]; ok {
				rs = shapes[tr.ShapeID]
			}
		}
		results = append(results, e.vehicleArrival(v, target, tripSts, stopIdx, rs, vehicles, stops))
	}
	SortVehiclesByArrival(results)
	return results
}

// EnhanceVehiclesWithPredictions returns vehicles with simulated-forward
// positions and speed prediction metadata, for display layers that want a
// smoothed view rather than the raw fixes. shapes is keyed by trip ID.
func (e *Engine) EnhanceVehiclesWithPredictions(vehicles []transit.Vehicle, shapes map[string]*shape.RouteShape, stopTimesByTrip map[string][]transit.TripStopTime, stops []transit.Stop, now time.Time) []predict.EnhancedVehicle {
	enh := predict.Enhancer{Speed: e.speed, Sim: e.sim, Density: e.density}
	return enh.Enhance(vehicles, shapes, stopTimesByTrip, stops, now)
}
