package shape

import (
	"errors"

	"github.com/theoremus-urban-solutions/transit-arrivals/geo"
)

// ErrEmptyShape is returned when a projection is attempted against a shape
// with no segments.
var ErrEmptyShape = errors.New("shape has no segments")

// Segment is one leg of a route shape with its precomputed haversine length.
type Segment struct {
	Start          geo.Coordinate
	End            geo.Coordinate
	DistanceMeters float64
}

// RouteShape is an ordered polyline approximating a vehicle's physical path.
// Segments are consecutive point pairs; segment i ends where segment i+1
// starts. Cumulative lengths are precomputed so route positions are O(1).
type RouteShape struct {
	ID       string
	Points   []geo.Coordinate
	Segments []Segment

	// cumulative[i] is the distance in meters from the shape start to the
	// start of segment i; cumulative[len(Segments)] is the total length.
	cumulative []float64
}

// New builds a RouteShape from an ordered point sequence, precomputing
// segment lengths and cumulative distances. Fewer than two points yields an
// empty shape.
func New(id string, points []geo.Coordinate) *RouteShape {
	s := &RouteShape{ID: id, Points: points}
	if len(points) < 2 {
		s.cumulative = []float64{0}
		return s
	}
	s.Segments = make([]Segment, 0, len(points)-1)
	s.cumulative = make([]float64, 0, len(points))
	s.cumulative = append(s.cumulative, 0)
	total := 0.0
	for i := 1; i < len(points); i++ {
		d := geo.HaversineMeters(points[i-1], points[i])
		s.Segments = append(s.Segments, Segment{
			Start:          points[i-1],
			End:            points[i],
			DistanceMeters: d,
		})
		total += d
		s.cumulative = append(s.cumulative, total)
	}
	return s
}

// Empty reports whether the shape has no usable segments.
func (s *RouteShape) Empty() bool {
	return s == nil || len(s.Segments) == 0
}

// TotalDistanceMeters is the full length of the shape.
func (s *RouteShape) TotalDistanceMeters() float64 {
	if s.Empty() {
		return 0
	}
	return s.cumulative[len(s.Segments)]
}

// Projection places an arbitrary coordinate onto the shape.
type Projection struct {
	ClosestPoint          geo.Coordinate
	DistanceToShapeMeters float64
	SegmentIndex          int
	PositionAlongSegment  float64 // in [0,1]
}

// Before reports whether p lies earlier along the shape than other. Segment
// index is compared first, then the fractional position within the segment.
func (p Projection) Before(other Projection) bool {
	if p.SegmentIndex != other.SegmentIndex {
		return p.SegmentIndex < other.SegmentIndex
	}
	return p.PositionAlongSegment < other.PositionAlongSegment
}

// Project finds the segment minimizing the distance from p to the shape.
// Ties go to the lowest segment index. Returns ErrEmptyShape when the shape
// has no segments.
func (s *RouteShape) Project(p geo.Coordinate) (Projection, error) {
	if s.Empty() {
		return Projection{}, ErrEmptyShape
	}
	best := Projection{SegmentIndex: -1}
	for i, seg := range s.Segments {
		sp := geo.ProjectPointToSegment(p, seg.Start, seg.End)
		d := geo.HaversineMeters(p, sp.Point)
		if best.SegmentIndex < 0 || d < best.DistanceToShapeMeters {
			best = Projection{
				ClosestPoint:          sp.Point,
				DistanceToShapeMeters: d,
				SegmentIndex:          i,
				PositionAlongSegment:  sp.Position,
			}
		}
	}
	return best, nil
}

// RoutePositionMeters converts a projection to a scalar distance from the
// shape start, the ordering value used to compare points along the route.
func (s *RouteShape) RoutePositionMeters(p Projection) float64 {
	if s.Empty() || p.SegmentIndex < 0 || p.SegmentIndex >= len(s.Segments) {
		return 0
	}
	return s.cumulative[p.SegmentIndex] + p.PositionAlongSegment*s.Segments[p.SegmentIndex].DistanceMeters
}

// PointAtRoutePosition maps a scalar route position back to a coordinate on
// the shape, interpolating within the containing segment. Positions outside
// [0, total] clamp to the shape endpoints.
func (s *RouteShape) PointAtRoutePosition(meters float64) geo.Coordinate {
	if s.Empty() {
		if len(s.Points) > 0 {
			return s.Points[0]
		}
		return geo.Coordinate{}
	}
	if meters <= 0 {
		return s.Points[0]
	}
	total := s.TotalDistanceMeters()
	if meters >= total {
		return s.Points[len(s.Points)-1]
	}
	// cumulative is ascending; find the segment containing meters.
	lo, hi := 0, len(s.Segments)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if s.cumulative[mid+1] < meters {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	seg := s.Segments[lo]
	t := 0.0
	if seg.DistanceMeters > 0 {
		t = (meters - s.cumulative[lo]) / seg.DistanceMeters
	}
	return geo.Coordinate{
		Lat: seg.Start.Lat + t*(seg.End.Lat-seg.Start.Lat),
		Lon: seg.Start.Lon + t*(seg.End.Lon-seg.Start.Lon),
	}
}
