package predict

import (
	"math"
	"testing"

	"github.com/theoremus-urban-solutions/transit-arrivals/geo"
	"github.com/theoremus-urban-solutions/transit-arrivals/transit"
)

func TestDensityCenterCache(t *testing.T) {
	stops := []transit.Stop{
		{ID: "a", Position: geo.Coordinate{Lat: 0, Lon: 0}},
		{ID: "b", Position: geo.Coordinate{Lat: 2, Lon: 4}},
	}
	cache := NewDensityCenterCache()

	center, ok := cache.Center(stops)
	if !ok {
		t.Fatal("expected a centroid")
	}
	if math.Abs(center.Lat-1) > 1e-9 || math.Abs(center.Lon-2) > 1e-9 {
		t.Errorf("expected (1,2), got %+v", center)
	}

	// Cached value survives a different stop list until invalidated.
	other := []transit.Stop{{ID: "c", Position: geo.Coordinate{Lat: 10, Lon: 10}}}
	center, ok = cache.Center(other)
	if !ok || center.Lat != 1 || center.Lon != 2 {
		t.Errorf("expected cached (1,2), got %+v ok=%t", center, ok)
	}

	cache.Invalidate()
	center, ok = cache.Center(other)
	if !ok || center.Lat != 10 || center.Lon != 10 {
		t.Errorf("expected recomputed (10,10), got %+v ok=%t", center, ok)
	}
}

func TestDensityCenterSkipsInvalidPositions(t *testing.T) {
	stops := []transit.Stop{
		{ID: "bad", Position: geo.Coordinate{Lat: math.NaN(), Lon: 0}},
		{ID: "good", Position: geo.Coordinate{Lat: 3, Lon: 6}},
	}
	center, ok := NewDensityCenterCache().Center(stops)
	if !ok {
		t.Fatal("expected a centroid")
	}
	if center.Lat != 3 || center.Lon != 6 {
		t.Errorf("expected (3,6), got %+v", center)
	}
}

func TestDensityCenterNoValidStops(t *testing.T) {
	cache := NewDensityCenterCache()
	if _, ok := cache.Center(nil); ok {
		t.Error("expected no centroid for empty stop list")
	}
	bad := []transit.Stop{{ID: "x", Position: geo.Coordinate{Lat: 200, Lon: 200}}}
	if _, ok := cache.Center(bad); ok {
		t.Error("expected no centroid when all positions are invalid")
	}
}
