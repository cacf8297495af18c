package config

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port int `yaml:"port" validate:"gte=0"`
}

// FeedConfig describes the external data sources the engine consumes:
// a static GTFS bundle (URL or local path) and a GTFS-RT VehiclePositions
// feed polled on readIntervalMS.
type FeedConfig struct {
	StaticGTFS          string `yaml:"staticGTFS" validate:"omitempty"`
	VehiclePositionsURL string `yaml:"vehiclePositionsURL" validate:"omitempty"`
	ReadIntervalMS      int    `yaml:"readIntervalMS" validate:"gte=0"`
	TimeoutMS           int    `yaml:"timeoutMS" validate:"gte=0"`
}

// EngineConfig carries every tunable of the arrival estimation engine.
// The defaults preserve the thresholds the estimation logic was tuned with;
// they are named here so deployments can override them without re-deriving
// the values.
type EngineConfig struct {
	// OffRouteThresholdM is the distance-to-shape beyond which a GPS fix no
	// longer counts as on-route.
	OffRouteThresholdM float64 `yaml:"offRouteThresholdM" validate:"gt=0"`
	// StopProximityM is the radius within which a vehicle counts as being at
	// a stop.
	StopProximityM float64 `yaml:"stopProximityM" validate:"gt=0"`
	// NextStopRadiusM is the radius for the distance-based next-stop
	// heuristic and the end-of-trip check.
	NextStopRadiusM float64 `yaml:"nextStopRadiusM" validate:"gt=0"`
	// JustLeftWindowM is how far behind a passed stop a vehicle may be and
	// still report "just left" rather than "departed".
	JustLeftWindowM float64 `yaml:"justLeftWindowM" validate:"gt=0"`

	// HighConfidenceM / MediumConfidenceM grade shape-projection quality.
	HighConfidenceM   float64 `yaml:"highConfidenceM" validate:"gt=0"`
	MediumConfidenceM float64 `yaml:"mediumConfidenceM" validate:"gt=0"`

	// Speed prediction cascade tunables.
	MinMovingSpeedKmh   float64 `yaml:"minMovingSpeedKmh" validate:"gte=0"`
	NearbyRadiusM       float64 `yaml:"nearbyRadiusM" validate:"gt=0"`
	NearbyMinCount      int     `yaml:"nearbyMinCount" validate:"gte=1"`
	NearbyHighCount     int     `yaml:"nearbyHighCount" validate:"gte=1"`
	BaseSpeedKmh        float64 `yaml:"baseSpeedKmh" validate:"gt=0"`
	DensityFactor       float64 `yaml:"densityFactor" validate:"gte=0,lte=1"`
	DensityMaxDistanceM float64 `yaml:"densityMaxDistanceM" validate:"gt=0"`
	AverageSpeedKmh     float64 `yaml:"averageSpeedKmh" validate:"gt=0"`

	// DwellTimeMs is the assumed stationary time per intermediate stop.
	DwellTimeMs float64 `yaml:"dwellTimeMs" validate:"gte=0"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server ServerConfig `yaml:"server"`
	Feed   FeedConfig   `yaml:"feed"`
	Engine EngineConfig `yaml:"engine"`
}
