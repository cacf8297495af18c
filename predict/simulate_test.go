package predict

import (
	"math"
	"testing"

	"github.com/theoremus-urban-solutions/transit-arrivals/geo"
	"github.com/theoremus-urban-solutions/transit-arrivals/shape"
	"github.com/theoremus-urban-solutions/transit-arrivals/transit"
)

const metersPerDegree = 111194.9266

// simShape runs east along the equator, roughly 3336 m long.
func simShape() *shape.RouteShape {
	return shape.New("sh1", []geo.Coordinate{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 0.01},
		{Lat: 0, Lon: 0.02},
		{Lat: 0, Lon: 0.03},
	})
}

func simStops(lons ...float64) (map[string]transit.Stop, []transit.TripStopTime) {
	stops := make(map[string]transit.Stop, len(lons))
	var times []transit.TripStopTime
	for i, lon := range lons {
		id := string(rune('a' + i))
		stops[id] = transit.Stop{ID: id, Position: geo.Coordinate{Lat: 0, Lon: lon}}
		times = append(times, transit.TripStopTime{TripID: "t1", StopID: id, Sequence: i + 1})
	}
	return stops, times
}

func TestSimulateNoElapsedTime(t *testing.T) {
	v := transit.Vehicle{ID: 1, Position: geo.Coordinate{Lat: 0, Lon: 0.001}}
	sim := Simulate(v, simShape(), nil, nil, 36, 0, DefaultSimConfig())
	if sim.DistanceTraveledMeters != 0 || sim.EndPosition != v.Position {
		t.Errorf("expected no movement, got %+v", sim)
	}
}

func TestSimulateIdleVehicle(t *testing.T) {
	cfg := DefaultSimConfig()
	stops, times := simStops(0.01)

	t.Run("dwell credit at a stop", func(t *testing.T) {
		v := transit.Vehicle{ID: 1, Position: geo.Coordinate{Lat: 0, Lon: 0.0100001}}
		sim := Simulate(v, simShape(), times, stops, 0, 60000, cfg)
		if sim.TotalDwellTimeMs != cfg.DwellTimeMs {
			t.Errorf("expected full dwell credit %f, got %f", cfg.DwellTimeMs, sim.TotalDwellTimeMs)
		}
		if sim.DistanceTraveledMeters != 0 {
			t.Errorf("idle vehicle moved %f m", sim.DistanceTraveledMeters)
		}
	})

	t.Run("no credit away from stops", func(t *testing.T) {
		v := transit.Vehicle{ID: 1, Position: geo.Coordinate{Lat: 0, Lon: 0.005}}
		sim := Simulate(v, simShape(), times, stops, 0, 60000, cfg)
		if sim.TotalDwellTimeMs != 0 {
			t.Errorf("expected no dwell credit, got %f", sim.TotalDwellTimeMs)
		}
	})

	t.Run("dwell credit needs no shape", func(t *testing.T) {
		v := transit.Vehicle{ID: 1, Position: geo.Coordinate{Lat: 0, Lon: 0.01}}
		sim := Simulate(v, nil, times, stops, 0.5, 60000, cfg)
		if sim.TotalDwellTimeMs != cfg.DwellTimeMs {
			t.Errorf("expected dwell credit without a shape, got %f", sim.TotalDwellTimeMs)
		}
	})
}

func TestSimulateEmptyShape(t *testing.T) {
	v := transit.Vehicle{ID: 1, Position: geo.Coordinate{Lat: 0, Lon: 0.005}}
	sim := Simulate(v, shape.New("empty", nil), nil, nil, 36, 60000, DefaultSimConfig())
	if sim.DistanceTraveledMeters != 0 || sim.EndPosition != v.Position {
		t.Errorf("expected no-op for empty shape, got %+v", sim)
	}
}

func TestSimulateMidSegment(t *testing.T) {
	// 36 km/h is 10 m/s; 50 s of travel is 500 m, short of the first stop.
	stops, times := simStops(0.01)
	v := transit.Vehicle{ID: 1, Position: geo.Coordinate{Lat: 0, Lon: 0}}
	sim := Simulate(v, simShape(), times, stops, 36, 50000, DefaultSimConfig())
	if math.Abs(sim.DistanceTraveledMeters-500) > 2 {
		t.Errorf("expected ~500 m, got %f", sim.DistanceTraveledMeters)
	}
	if len(sim.StationsEncountered) != 0 {
		t.Errorf("expected no stations, got %d", len(sim.StationsEncountered))
	}
	if sim.TotalDwellTimeMs != 0 {
		t.Errorf("expected no dwell, got %f", sim.TotalDwellTimeMs)
	}
}

func TestSimulateStopEncounter(t *testing.T) {
	// Stop at ~556 m. Travel there takes ~55.6 s, dwell 30 s, and the
	// remaining ~14.4 s covers another ~144 m.
	stops, times := simStops(0.005)
	v := transit.Vehicle{ID: 1, Position: geo.Coordinate{Lat: 0, Lon: 0}}
	sim := Simulate(v, simShape(), times, stops, 36, 100000, DefaultSimConfig())

	if len(sim.StationsEncountered) != 1 {
		t.Fatalf("expected 1 station, got %d", len(sim.StationsEncountered))
	}
	if sim.StationsEncountered[0].StopID != "a" {
		t.Errorf("unexpected station %q", sim.StationsEncountered[0].StopID)
	}
	if sim.TotalDwellTimeMs != 30000 {
		t.Errorf("expected 30000 ms dwell, got %f", sim.TotalDwellTimeMs)
	}
	stopDist := 0.005 * metersPerDegree
	want := stopDist + (100000-stopDist/10*1000-30000)/1000*10
	if math.Abs(sim.DistanceTraveledMeters-want) > 3 {
		t.Errorf("expected ~%f m, got %f", want, sim.DistanceTraveledMeters)
	}
}

func TestSimulateDwellTruncated(t *testing.T) {
	// 60 s budget: ~55.6 s to reach the stop leaves only ~4.4 s of dwell.
	stops, times := simStops(0.005)
	v := transit.Vehicle{ID: 1, Position: geo.Coordinate{Lat: 0, Lon: 0}}
	sim := Simulate(v, simShape(), times, stops, 36, 60000, DefaultSimConfig())

	if len(sim.StationsEncountered) != 1 {
		t.Fatalf("expected 1 station, got %d", len(sim.StationsEncountered))
	}
	stopDist := 0.005 * metersPerDegree
	wantDwell := 60000 - stopDist/10*1000
	if math.Abs(sim.TotalDwellTimeMs-wantDwell) > 300 {
		t.Errorf("expected ~%f ms dwell, got %f", wantDwell, sim.TotalDwellTimeMs)
	}
	if math.Abs(sim.DistanceTraveledMeters-stopDist) > 2 {
		t.Errorf("expected to halt at the stop (~%f m), got %f", stopDist, sim.DistanceTraveledMeters)
	}
}

func TestSimulateClampsAtShapeEnd(t *testing.T) {
	rs := simShape()
	v := transit.Vehicle{ID: 1, Position: geo.Coordinate{Lat: 0, Lon: 0.02}}
	sim := Simulate(v, rs, nil, nil, 72, 3600000, DefaultSimConfig())

	end := rs.PointAtRoutePosition(rs.TotalDistanceMeters())
	if geo.HaversineMeters(sim.EndPosition, end) > 1 {
		t.Errorf("expected end of shape %+v, got %+v", end, sim.EndPosition)
	}
	wantDist := 0.01 * metersPerDegree
	if math.Abs(sim.DistanceTraveledMeters-wantDist) > 2 {
		t.Errorf("expected ~%f m, got %f", wantDist, sim.DistanceTraveledMeters)
	}
}

func TestSimulateSkipsStopsBehind(t *testing.T) {
	stops, times := simStops(0.001, 0.015)
	v := transit.Vehicle{ID: 1, Position: geo.Coordinate{Lat: 0, Lon: 0.01}}
	sim := Simulate(v, simShape(), times, stops, 36, 120000, DefaultSimConfig())

	if len(sim.StationsEncountered) != 1 || sim.StationsEncountered[0].StopID != "b" {
		t.Fatalf("expected only the stop ahead, got %+v", sim.StationsEncountered)
	}
}
