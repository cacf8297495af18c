package transitarrivals

import (
	"testing"

	"github.com/theoremus-urban-solutions/transit-arrivals/geo"
	"github.com/theoremus-urban-solutions/transit-arrivals/shape"
	"github.com/theoremus-urban-solutions/transit-arrivals/transit"
)

const metersPerDegree = 111194.9266

// testShape runs east along the equator for roughly 3336 m.
func testShape() *shape.RouteShape {
	return shape.New("sh1", []geo.Coordinate{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 0.01},
		{Lat: 0, Lon: 0.02},
		{Lat: 0, Lon: 0.03},
	})
}

// testStops places three stops on the shape at ~556 m, ~1668 m and ~2780 m.
func testStops() []transit.Stop {
	return []transit.Stop{
		{ID: "s1", Name: "First", Position: geo.Coordinate{Lat: 0, Lon: 0.005}},
		{ID: "s2", Name: "Middle", Position: geo.Coordinate{Lat: 0, Lon: 0.015}},
		{ID: "s3", Name: "Last", Position: geo.Coordinate{Lat: 0, Lon: 0.025}},
	}
}

func testStopTimes() []transit.TripStopTime {
	return []transit.TripStopTime{
		{TripID: "t1", StopID: "s1", Sequence: 1},
		{TripID: "t1", StopID: "s2", Sequence: 2},
		{TripID: "t1", StopID: "s3", Sequence: 3},
	}
}

func vehicleOnTrip(id int, lat, lon float64) transit.Vehicle {
	return transit.Vehicle{ID: id, TripID: "t1", Position: geo.Coordinate{Lat: lat, Lon: lon}}
}

func TestDetermineNextStopAlongShape(t *testing.T) {
	engine := NewDefaultEngine()
	stopIdx := transit.StopsByID(testStops())
	rs := testShape()

	tests := []struct {
		name string
		lon  float64
		want string
	}{
		{name: "before first stop", lon: 0.001, want: "s1"},
		{name: "between first and middle", lon: 0.01, want: "s2"},
		{name: "just short of last", lon: 0.0249, want: "s3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := vehicleOnTrip(1, 0, tt.lon)
			next := engine.DetermineNextStop(v, testStopTimes(), stopIdx, rs)
			if next == nil {
				t.Fatal("expected a next stop, got nil")
			}
			if next.ID != tt.want {
				t.Errorf("expected %s, got %s", tt.want, next.ID)
			}
		})
	}
}

func TestDetermineNextStopPastEnd(t *testing.T) {
	engine := NewDefaultEngine()
	stopIdx := transit.StopsByID(testStops())
	rs := testShape()

	t.Run("within radius still returns last stop", func(t *testing.T) {
		// ~55 m past the last stop.
		v := vehicleOnTrip(1, 0, 0.0255)
		next := engine.DetermineNextStop(v, testStopTimes(), stopIdx, rs)
		if next == nil || next.ID != "s3" {
			t.Errorf("expected s3, got %+v", next)
		}
	})

	t.Run("beyond radius returns nil", func(t *testing.T) {
		// ~333 m past the last stop.
		v := vehicleOnTrip(1, 0, 0.028)
		if next := engine.DetermineNextStop(v, testStopTimes(), stopIdx, rs); next != nil {
			t.Errorf("expected nil, got %s", next.ID)
		}
	})
}

func TestDetermineNextStopOffRouteHeuristic(t *testing.T) {
	engine := NewDefaultEngine()
	stopIdx := transit.StopsByID(testStops())
	rs := testShape()

	// ~334 m off the shape, past the off-route threshold. The heuristic finds
	// no stop within the next-stop radius and defaults to the trip's first.
	v := vehicleOnTrip(1, 0.003, 0.015)
	next := engine.DetermineNextStop(v, testStopTimes(), stopIdx, rs)
	if next == nil || next.ID != "s1" {
		t.Errorf("expected fallback to first stop, got %+v", next)
	}
}

func TestDetermineNextStopWithoutShape(t *testing.T) {
	engine := NewDefaultEngine()
	stopIdx := transit.StopsByID(testStops())

	t.Run("close stop wins", func(t *testing.T) {
		// ~33 m from the middle stop.
		v := vehicleOnTrip(1, 0.0003, 0.015)
		next := engine.DetermineNextStop(v, testStopTimes(), stopIdx, nil)
		if next == nil || next.ID != "s2" {
			t.Errorf("expected s2, got %+v", next)
		}
	})

	t.Run("no close stop falls back to first", func(t *testing.T) {
		v := vehicleOnTrip(1, 0.01, 0.01)
		next := engine.DetermineNextStop(v, testStopTimes(), stopIdx, nil)
		if next == nil || next.ID != "s1" {
			t.Errorf("expected s1, got %+v", next)
		}
	})
}

func TestDetermineNextStopNoStops(t *testing.T) {
	engine := NewDefaultEngine()
	v := vehicleOnTrip(1, 0, 0.001)
	if next := engine.DetermineNextStop(v, nil, nil, testShape()); next != nil {
		t.Errorf("expected nil for empty stop set, got %+v", next)
	}
}
