package transitarrivals

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/theoremus-urban-solutions/transit-arrivals/shape"
	"github.com/theoremus-urban-solutions/transit-arrivals/transit"
)

// Server exposes arrival estimates over HTTP. Static data and vehicle
// snapshots are replaced wholesale by the owning process (SetStaticData /
// SetVehicles); handlers read them under a shared lock and never mutate.
type Server struct {
	engine  *Engine
	metrics *Collector

	mu              sync.RWMutex
	stops           []transit.Stop
	stopsByID       map[string]transit.Stop
	trips           map[string]transit.Trip
	stopTimes       []transit.TripStopTime
	stopTimesByTrip map[string][]transit.TripStopTime
	shapesByTrip    map[string]*shape.RouteShape
	vehicles        []transit.Vehicle
	lastRefresh     time.Time

	httpServer *http.Server
}

// NewServer wires a server around an engine.
func NewServer(engine *Engine) *Server {
	return &Server{
		engine:  engine,
		metrics: NewCollector(),
	}
}

// SetStaticData replaces the reference data and invalidates the stop-density
// centroid.
func (s *Server) SetStaticData(stops []transit.Stop, trips map[string]transit.Trip, stopTimes []transit.TripStopTime, shapesByTrip map[string]*shape.RouteShape) {
	s.mu.Lock()
	s.stops = stops
	s.stopsByID = transit.StopsByID(stops)
	s.trips = trips
	s.stopTimes = stopTimes
	s.stopTimesByTrip = transit.StopTimesByTrip(stopTimes)
	s.shapesByTrip = shapesByTrip
	s.mu.Unlock()
	s.engine.InvalidateDensityCenter()
}

// SetVehicles replaces the live vehicle snapshot.
func (s *Server) SetVehicles(vehicles []transit.Vehicle) {
	s.mu.Lock()
	s.vehicles = vehicles
	s.lastRefresh = time.Now()
	s.mu.Unlock()
	s.metrics.VehiclesTracked.Set(float64(len(vehicles)))
}

// Metrics returns the server's collector so the polling loop can record
// refresh failures.
func (s *Server) Metrics() *Collector { return s.metrics }

// Start begins serving on the given port. Non-blocking; the listener runs
// in its own goroutine.
func (s *Server) Start(port int) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/arrivals", s.handleArrivals)
	mux.HandleFunc("/api/vehicles", s.handleVehicles)
	mux.Handle("/metrics", s.metrics.Handler())

	addr := fmt.Sprintf(":%d", port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()
	log.Printf("server listening on %s", addr)
}

// Shutdown stops the listener gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RequestCount.WithLabelValues("health").Inc()
	s.mu.RLock()
	resp := map[string]any{
		"status":      "ok",
		"stops":       len(s.stops),
		"trips":       len(s.trips),
		"vehicles":    len(s.vehicles),
		"lastRefresh": s.lastRefresh.UTC().Format(time.RFC3339),
	}
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleArrivals(w http.ResponseWriter, r *http.Request) {
	s.metrics.RequestCount.WithLabelValues("arrivals").Inc()
	stopID := r.URL.Query().Get("stop")
	if stopID == "" {
		http.Error(w, "stop query parameter required", http.StatusBadRequest)
		return
	}
	s.mu.RLock()
	target, ok := s.stopsByID[stopID]
	vehicles := s.vehicles
	trips := s.trips
	stopTimes := s.stopTimes
	stops := s.stops
	shapes := s.shapesByTrip
	s.mu.RUnlock()
	if !ok {
		http.Error(w, "unknown stop "+strconv.Quote(stopID), http.StatusNotFound)
		return
	}

	started := time.Now()
	results := s.engine.CalculateArrivalsForStop(target, vehicles, trips, stopTimes, stops, shapes)
	s.metrics.ObserveResults(results, time.Since(started).Seconds())

	writeJSON(w, http.StatusOK, map[string]any{
		"stop":     target,
		"arrivals": results,
	})
}

func (s *Server) handleVehicles(w http.ResponseWriter, r *http.Request) {
	s.metrics.RequestCount.WithLabelValues("vehicles").Inc()
	s.mu.RLock()
	vehicles := s.vehicles
	shapes := s.shapesByTrip
	stopTimesByTrip := s.stopTimesByTrip
	stops := s.stops
	s.mu.RUnlock()

	enhanced := s.engine.EnhanceVehiclesWithPredictions(vehicles, shapes, stopTimesByTrip, stops, time.Now())
	writeJSON(w, http.StatusOK, map[string]any{"vehicles": enhanced})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
