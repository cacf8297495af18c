package shape

import (
	"math"

	"github.com/theoremus-urban-solutions/transit-arrivals/geo"
)

// Method identifies which strategy produced a distance result.
type Method int

const (
	// MethodRouteShape measures along the route polyline.
	MethodRouteShape Method = iota
	// MethodStopSegments chains straight-line legs through intermediate stops.
	MethodStopSegments
)

// MarshalJSON renders the method as its string form.
func (m Method) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

func (m Method) String() string {
	switch m {
	case MethodRouteShape:
		return "route_shape"
	case MethodStopSegments:
		return "stop_segments"
	}
	return "unknown"
}

// Confidence grades how trustworthy a distance result is.
type Confidence int

const (
	ConfidenceHigh Confidence = iota
	ConfidenceMedium
	ConfidenceLow
)

// MarshalJSON renders the confidence as its string form.
func (c Confidence) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceLow:
		return "low"
	}
	return "unknown"
}

// DistanceResult is a route-following distance between two points plus
// metadata about how it was obtained.
type DistanceResult struct {
	TotalDistanceMeters float64
	Method              Method
	Confidence          Confidence
}

// Calculator computes route-following distances. The confidence thresholds
// are the maximum distance-to-shape, in meters, for a projection to count as
// high or medium confidence.
type Calculator struct {
	HighConfidenceMaxM   float64
	MediumConfidenceMaxM float64
}

// NewCalculator returns a Calculator with the default 25 m / 100 m
// confidence thresholds.
func NewCalculator() Calculator {
	return Calculator{HighConfidenceMaxM: 25, MediumConfidenceMaxM: 100}
}

// AlongShape projects both points onto the shape and measures the
// shape-following distance between the two projections. Returns ErrEmptyShape
// when the shape has no segments.
func (c Calculator) AlongShape(from, to geo.Coordinate, s *RouteShape) (DistanceResult, error) {
	fromPr, err := s.Project(from)
	if err != nil {
		return DistanceResult{}, err
	}
	toPr, err := s.Project(to)
	if err != nil {
		return DistanceResult{}, err
	}
	dist := math.Abs(s.RoutePositionMeters(toPr) - s.RoutePositionMeters(fromPr))
	worst := math.Max(fromPr.DistanceToShapeMeters, toPr.DistanceToShapeMeters)
	conf := ConfidenceLow
	if worst <= c.HighConfidenceMaxM {
		conf = ConfidenceHigh
	} else if worst <= c.MediumConfidenceMaxM {
		conf = ConfidenceMedium
	}
	return DistanceResult{
		TotalDistanceMeters: dist,
		Method:              MethodRouteShape,
		Confidence:          conf,
	}, nil
}

// ViaStops chains haversine legs from -> stop1 -> ... -> to. With no
// intermediate stops this degrades to a straight line and confidence drops
// to low.
func (c Calculator) ViaStops(from, to geo.Coordinate, intermediate []geo.Coordinate) DistanceResult {
	total := 0.0
	cur := from
	for _, stop := range intermediate {
		total += geo.HaversineMeters(cur, stop)
		cur = stop
	}
	total += geo.HaversineMeters(cur, to)
	conf := ConfidenceMedium
	if len(intermediate) == 0 {
		conf = ConfidenceLow
	}
	return DistanceResult{
		TotalDistanceMeters: total,
		Method:              MethodStopSegments,
		Confidence:          conf,
	}
}

// Distance selects the route-shape strategy whenever a non-empty shape is
// supplied and falls back to stop segments otherwise. Pure dispatch, no
// retries or caching.
func (c Calculator) Distance(from, to geo.Coordinate, s *RouteShape, intermediate []geo.Coordinate) DistanceResult {
	if !s.Empty() {
		if res, err := c.AlongShape(from, to, s); err == nil {
			return res
		}
	}
	return c.ViaStops(from, to, intermediate)
}
