package predict

import (
	"math"

	"github.com/theoremus-urban-solutions/transit-arrivals/geo"
	"github.com/theoremus-urban-solutions/transit-arrivals/transit"
)

// SpeedMethod identifies which cascade tier produced a speed prediction.
type SpeedMethod int

const (
	SpeedMethodAPI SpeedMethod = iota
	SpeedMethodNearbyAverage
	SpeedMethodLocationBased
	SpeedMethodStaticFallback
)

// MarshalJSON renders the method as its string form.
func (m SpeedMethod) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

func (m SpeedMethod) String() string {
	switch m {
	case SpeedMethodAPI:
		return "api_speed"
	case SpeedMethodNearbyAverage:
		return "nearby_average"
	case SpeedMethodLocationBased:
		return "location_based"
	case SpeedMethodStaticFallback:
		return "static_fallback"
	}
	return "unknown"
}

// SpeedConfidence grades a speed prediction.
type SpeedConfidence int

const (
	SpeedConfidenceHigh SpeedConfidence = iota
	SpeedConfidenceMedium
	SpeedConfidenceLow
	SpeedConfidenceVeryLow
)

// MarshalJSON renders the confidence as its string form.
func (c SpeedConfidence) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

func (c SpeedConfidence) String() string {
	switch c {
	case SpeedConfidenceHigh:
		return "high"
	case SpeedConfidenceMedium:
		return "medium"
	case SpeedConfidenceLow:
		return "low"
	case SpeedConfidenceVeryLow:
		return "very_low"
	}
	return "unknown"
}

// SpeedPrediction is a best-effort current speed for a vehicle.
type SpeedPrediction struct {
	SpeedKmh   float64
	Method     SpeedMethod
	Confidence SpeedConfidence
}

// SpeedConfig carries the tunables of the prediction cascade.
type SpeedConfig struct {
	// MinMovingKmh is the threshold below which a reported speed counts as
	// not moving.
	MinMovingKmh float64
	// NearbyRadiusM bounds the neighborhood for the nearby-average tier.
	NearbyRadiusM float64
	// NearbyMinCount is the minimum number of qualifying neighbors for the
	// nearby-average tier to fire; NearbyHighCount upgrades its confidence.
	NearbyMinCount  int
	NearbyHighCount int
	// BaseSpeedKmh, DensityFactor and DensityMaxDistanceM drive the
	// location-based tier: vehicles close to the stop-density center move
	// slower than vehicles further out.
	BaseSpeedKmh        float64
	DensityFactor       float64
	DensityMaxDistanceM float64
	// FallbackKmh is the terminal static speed; the cascade always succeeds.
	FallbackKmh float64
}

// DefaultSpeedConfig returns the standard cascade tunables.
func DefaultSpeedConfig() SpeedConfig {
	return SpeedConfig{
		MinMovingKmh:        1,
		NearbyRadiusM:       500,
		NearbyMinCount:      2,
		NearbyHighCount:     5,
		BaseSpeedKmh:        40,
		DensityFactor:       0.5,
		DensityMaxDistanceM: 5000,
		FallbackKmh:         20,
	}
}

// validSpeed reports whether a reported speed is a usable moving speed.
func validSpeed(s *float64, minMoving float64) bool {
	if s == nil {
		return false
	}
	v := *s
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= minMoving
}

// PredictSpeed resolves a usable speed for v through the priority cascade:
// validated API speed, average of nearby moving vehicles, location-density
// estimate, static fallback. The terminal tier always succeeds, so the
// function never fails to produce a positive speed. densityCenter may be nil
// when no stop centroid is available; the location tier is then skipped.
func PredictSpeed(v transit.Vehicle, nearby []transit.Vehicle, densityCenter *geo.Coordinate, cfg SpeedConfig) SpeedPrediction {
	if validSpeed(v.SpeedKmh, cfg.MinMovingKmh) {
		return SpeedPrediction{SpeedKmh: *v.SpeedKmh, Method: SpeedMethodAPI, Confidence: SpeedConfidenceHigh}
	}
	if p, ok := nearbyAverage(v, nearby, cfg); ok {
		return p
	}
	if p, ok := locationBased(v, densityCenter, cfg); ok {
		return p
	}
	return SpeedPrediction{SpeedKmh: cfg.FallbackKmh, Method: SpeedMethodStaticFallback, Confidence: SpeedConfidenceVeryLow}
}

// nearbyAverage averages the speeds of moving vehicles within the radius,
// excluding v itself. Not enough qualifying neighbors means the tier does
// not fire.
func nearbyAverage(v transit.Vehicle, nearby []transit.Vehicle, cfg SpeedConfig) (SpeedPrediction, bool) {
	if !v.Position.Valid() {
		return SpeedPrediction{}, false
	}
	sum := 0.0
	count := 0
	for _, other := range nearby {
		if other.ID == v.ID {
			continue
		}
		if !validSpeed(other.SpeedKmh, cfg.MinMovingKmh) || !other.Position.Valid() {
			continue
		}
		if geo.HaversineMeters(v.Position, other.Position) > cfg.NearbyRadiusM {
			continue
		}
		sum += *other.SpeedKmh
		count++
	}
	if count < cfg.NearbyMinCount {
		return SpeedPrediction{}, false
	}
	conf := SpeedConfidenceMedium
	if count >= cfg.NearbyHighCount {
		conf = SpeedConfidenceHigh
	}
	return SpeedPrediction{SpeedKmh: sum / float64(count), Method: SpeedMethodNearbyAverage, Confidence: conf}, true
}

// locationBased scales the base speed down near the stop-density center:
// speed = base * (1 - factor * clamp((maxDist - d)/maxDist, 0, 1)), floored
// at the moving threshold.
func locationBased(v transit.Vehicle, center *geo.Coordinate, cfg SpeedConfig) (SpeedPrediction, bool) {
	if center == nil || !center.Valid() || !v.Position.Valid() || cfg.DensityMaxDistanceM <= 0 {
		return SpeedPrediction{}, false
	}
	d := geo.HaversineMeters(v.Position, *center)
	proximity := (cfg.DensityMaxDistanceM - d) / cfg.DensityMaxDistanceM
	if proximity < 0 {
		proximity = 0
	} else if proximity > 1 {
		proximity = 1
	}
	speed := cfg.BaseSpeedKmh * (1 - cfg.DensityFactor*proximity)
	if speed < cfg.MinMovingKmh {
		speed = cfg.MinMovingKmh
	}
	if math.IsNaN(speed) || speed <= 0 {
		return SpeedPrediction{}, false
	}
	return SpeedPrediction{SpeedKmh: speed, Method: SpeedMethodLocationBased, Confidence: SpeedConfidenceMedium}, true
}
