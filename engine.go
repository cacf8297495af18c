package transitarrivals

import (
	"github.com/theoremus-urban-solutions/transit-arrivals/config"
	"github.com/theoremus-urban-solutions/transit-arrivals/predict"
	"github.com/theoremus-urban-solutions/transit-arrivals/shape"
)

// Engine computes arrival estimates and vehicle predictions. It owns the
// configured thresholds and the stop-density cache; everything else is
// passed in per call, so an Engine is safe to share across concurrent
// callers.
type Engine struct {
	cfg     config.EngineConfig
	calc    shape.Calculator
	speed   predict.SpeedConfig
	sim     predict.SimConfig
	density *predict.DensityCenterCache
}

// NewEngine builds an engine from the given tunables.
func NewEngine(cfg config.EngineConfig) *Engine {
	return &Engine{
		cfg: cfg,
		calc: shape.Calculator{
			HighConfidenceMaxM:   cfg.HighConfidenceM,
			MediumConfidenceMaxM: cfg.MediumConfidenceM,
		},
		speed: predict.SpeedConfig{
			MinMovingKmh:        cfg.MinMovingSpeedKmh,
			NearbyRadiusM:       cfg.NearbyRadiusM,
			NearbyMinCount:      cfg.NearbyMinCount,
			NearbyHighCount:     cfg.NearbyHighCount,
			BaseSpeedKmh:        cfg.BaseSpeedKmh,
			DensityFactor:       cfg.DensityFactor,
			DensityMaxDistanceM: cfg.DensityMaxDistanceM,
			FallbackKmh:         cfg.AverageSpeedKmh,
		},
		sim: predict.SimConfig{
			MinMovingKmh:   cfg.MinMovingSpeedKmh,
			StopProximityM: cfg.StopProximityM,
			DwellTimeMs:    cfg.DwellTimeMs,
		},
		density: predict.NewDensityCenterCache(),
	}
}

// NewDefaultEngine builds an engine with the tuned default thresholds.
func NewDefaultEngine() *Engine {
	return NewEngine(config.DefaultEngineConfig())
}

// Config returns the engine's tunables.
func (e *Engine) Config() config.EngineConfig { return e.cfg }

// InvalidateDensityCenter drops the cached stop centroid. Call whenever the
// static stop list is refreshed.
func (e *Engine) InvalidateDensityCenter() {
	e.density.Invalidate()
}
