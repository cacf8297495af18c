package transitarrivals

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the server's Prometheus instruments on a private
// registry. The core engine stays metrics-free; the server records around
// its calls.
type Collector struct {
	reg *prometheus.Registry

	VehiclesTracked  prometheus.Gauge
	ArrivalsComputed prometheus.Counter
	ArrivalStatuses  *prometheus.CounterVec // status label: at_stop|arriving_soon|...
	FeedRefreshErrs  prometheus.Counter

	ComputeDuration prometheus.Histogram
	RequestCount    *prometheus.CounterVec // endpoint label
}

// NewCollector builds and registers all instruments.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		reg: reg,
		VehiclesTracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "arrivals_vehicles_tracked",
			Help: "Number of vehicles in the latest feed snapshot.",
		}),
		ArrivalsComputed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arrivals_results_total",
			Help: "Total arrival results computed.",
		}),
		ArrivalStatuses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arrivals_status_total",
			Help: "Arrival results by status.",
		}, []string{"status"}),
		FeedRefreshErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arrivals_feed_refresh_errors_total",
			Help: "Vehicle feed refresh failures.",
		}),
		ComputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "arrivals_compute_duration_seconds",
			Help:    "Duration of one stop's arrival computation.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		RequestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arrivals_http_requests_total",
			Help: "HTTP requests by endpoint.",
		}, []string{"endpoint"}),
	}
	reg.MustRegister(
		c.VehiclesTracked,
		c.ArrivalsComputed,
		c.ArrivalStatuses,
		c.FeedRefreshErrs,
		c.ComputeDuration,
		c.RequestCount,
	)
	return c
}

// Handler exposes the registry for the /metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

// ObserveResults records one computation pass.
func (c *Collector) ObserveResults(results []ArrivalResult, seconds float64) {
	c.ArrivalsComputed.Add(float64(len(results)))
	for _, r := range results {
		c.ArrivalStatuses.WithLabelValues(r.Status.String()).Inc()
	}
	c.ComputeDuration.Observe(seconds)
}
