package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultEngineConfig returns the engine tunables the estimation logic was
// tuned with.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		OffRouteThresholdM:  200,
		StopProximityM:      50,
		NextStopRadiusM:     100,
		JustLeftWindowM:     200,
		HighConfidenceM:     25,
		MediumConfidenceM:   100,
		MinMovingSpeedKmh:   1,
		NearbyRadiusM:       500,
		NearbyMinCount:      2,
		NearbyHighCount:     5,
		BaseSpeedKmh:        40,
		DensityFactor:       0.5,
		DensityMaxDistanceM: 5000,
		AverageSpeedKmh:     20,
		DwellTimeMs:         30000,
	}
}

// Default returns a complete AppConfig with engine defaults and no feeds.
func Default() AppConfig {
	return AppConfig{
		Server: ServerConfig{Port: 16180},
		Feed:   FeedConfig{ReadIntervalMS: 30000, TimeoutMS: 10000},
		Engine: DefaultEngineConfig(),
	}
}

// Load reads and validates an AppConfig from a yaml file. Absent engine
// fields fall back to the defaults, so a partial override file is enough.
func Load(path string) (AppConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	fillEngineDefaults(&cfg.Engine)
	v := validator.New()
	if err := v.Struct(cfg.Engine); err != nil {
		return cfg, fmt.Errorf("invalid engine config: %w", err)
	}
	if err := v.Struct(cfg.Server); err != nil {
		return cfg, fmt.Errorf("invalid server config: %w", err)
	}
	if err := v.Struct(cfg.Feed); err != nil {
		return cfg, fmt.Errorf("invalid feed config: %w", err)
	}
	return cfg, nil
}

// fillEngineDefaults replaces zero-valued fields with the tuned defaults.
// Yaml has no way to distinguish "absent" from zero for these, and zero is
// never a meaningful value for any of them.
func fillEngineDefaults(e *EngineConfig) {
	def := DefaultEngineConfig()
	if e.OffRouteThresholdM == 0 {
		e.OffRouteThresholdM = def.OffRouteThresholdM
	}
	if e.StopProximityM == 0 {
		e.StopProximityM = def.StopProximityM
	}
	if e.NextStopRadiusM == 0 {
		e.NextStopRadiusM = def.NextStopRadiusM
	}
	if e.JustLeftWindowM == 0 {
		e.JustLeftWindowM = def.JustLeftWindowM
	}
	if e.HighConfidenceM == 0 {
		e.HighConfidenceM = def.HighConfidenceM
	}
	if e.MediumConfidenceM == 0 {
		e.MediumConfidenceM = def.MediumConfidenceM
	}
	if e.MinMovingSpeedKmh == 0 {
		e.MinMovingSpeedKmh = def.MinMovingSpeedKmh
	}
	if e.NearbyRadiusM == 0 {
		e.NearbyRadiusM = def.NearbyRadiusM
	}
	if e.NearbyMinCount == 0 {
		e.NearbyMinCount = def.NearbyMinCount
	}
	if e.NearbyHighCount == 0 {
		e.NearbyHighCount = def.NearbyHighCount
	}
	if e.BaseSpeedKmh == 0 {
		e.BaseSpeedKmh = def.BaseSpeedKmh
	}
	if e.DensityFactor == 0 {
		e.DensityFactor = def.DensityFactor
	}
	if e.DensityMaxDistanceM == 0 {
		e.DensityMaxDistanceM = def.DensityMaxDistanceM
	}
	if e.AverageSpeedKmh == 0 {
		e.AverageSpeedKmh = def.AverageSpeedKmh
	}
	if e.DwellTimeMs == 0 {
		e.DwellTimeMs = def.DwellTimeMs
	}
}
