package predict

import (
	"sync"

	"github.com/theoremus-urban-solutions/transit-arrivals/geo"
	"github.com/theoremus-urban-solutions/transit-arrivals/transit"
)

// DensityCenterCache memoizes the geographic centroid of an agency's stops.
// The centroid is an aggregate over the full stop list, so it is computed
// lazily on first use and reused until Invalidate is called after a static
// data refresh. Concurrent readers are safe; invalidation is a single-writer
// operation.
type DensityCenterCache struct {
	mu     sync.RWMutex
	center *geo.Coordinate
}

// NewDensityCenterCache returns an empty cache.
func NewDensityCenterCache() *DensityCenterCache {
	return &DensityCenterCache{}
}

// Center returns the stop centroid, computing it from stops on first call.
// The second return is false when no valid stop coordinates exist.
func (c *DensityCenterCache) Center(stops []transit.Stop) (geo.Coordinate, bool) {
	c.mu.RLock()
	if c.center != nil {
		center := *c.center
		c.mu.RUnlock()
		return center, true
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.center != nil {
		return *c.center, true
	}
	center, ok := centroid(stops)
	if !ok {
		return geo.Coordinate{}, false
	}
	c.center = &center
	return center, true
}

// Invalidate drops the cached centroid. Call after the stop list changes.
func (c *DensityCenterCache) Invalidate() {
	c.mu.Lock()
	c.center = nil
	c.mu.Unlock()
}

func centroid(stops []transit.Stop) (geo.Coordinate, bool) {
	sumLat, sumLon := 0.0, 0.0
	n := 0
	for _, s := range stops {
		if !s.Position.Valid() {
			continue
		}
		sumLat += s.Position.Lat
		sumLon += s.Position.Lon
		n++
	}
	if n == 0 {
		return geo.Coordinate{}, false
	}
	return geo.Coordinate{Lat: sumLat / float64(n), Lon: sumLon / float64(n)}, true
}
