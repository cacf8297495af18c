package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used for all great-circle math.
const EarthRadiusMeters = 6371000.0

// Coordinate is a WGS84 position in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the coordinate is a real lat/lon pair.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// HaversineMeters returns the great-circle distance between a and b in meters.
func HaversineMeters(a, b Coordinate) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	la1 := a.Lat * math.Pi / 180
	la2 := b.Lat * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(la1)*math.Cos(la2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return EarthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// SegmentProjection is the result of projecting a point onto a single segment.
// Position is the fractional location of the projected point on the segment,
// always clamped to [0,1].
type SegmentProjection struct {
	Point    Coordinate
	Position float64
}

// ProjectPointToSegment projects p orthogonally onto the segment from segStart
// to segEnd, treating lat/lon as a locally flat plane. The perpendicular foot
// is clamped to the segment endpoints. A degenerate segment (start == end)
// yields position 0 at segStart.
func ProjectPointToSegment(p, segStart, segEnd Coordinate) SegmentProjection {
	vLat := segEnd.Lat - segStart.Lat
	vLon := segEnd.Lon - segStart.Lon
	denom := vLat*vLat + vLon*vLon
	if denom == 0 {
		return SegmentProjection{Point: segStart, Position: 0}
	}
	wLat := p.Lat - segStart.Lat
	wLon := p.Lon - segStart.Lon
	t := (wLat*vLat + wLon*vLon) / denom
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return SegmentProjection{
		Point: Coordinate{
			Lat: segStart.Lat + t*vLat,
			Lon: segStart.Lon + t*vLon,
		},
		Position: t,
	}
}

// DistancePointToSegment returns the haversine distance in meters from p to
// its clamped projection on the segment.
func DistancePointToSegment(p, segStart, segEnd Coordinate) float64 {
	pr := ProjectPointToSegment(p, segStart, segEnd)
	return HaversineMeters(p, pr.Point)
}

// ProgressAlongSegment returns the unclamped scalar progress of p along the
// segment. Values below 0 mean p lies before segStart, values above 1 past
// segEnd. Used for direction and ordering decisions only, never for position
// interpolation.
func ProgressAlongSegment(p, segStart, segEnd Coordinate) float64 {
	vLat := segEnd.Lat - segStart.Lat
	vLon := segEnd.Lon - segStart.Lon
	denom := vLat*vLat + vLon*vLon
	if denom == 0 {
		return 0
	}
	wLat := p.Lat - segStart.Lat
	wLon := p.Lon - segStart.Lon
	return (wLat*vLat + wLon*vLon) / denom
}
