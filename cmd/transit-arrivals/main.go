package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	lib "github.com/theoremus-urban-solutions/transit-arrivals"
	"github.com/theoremus-urban-solutions/transit-arrivals/config"
	"github.com/theoremus-urban-solutions/transit-arrivals/gtfs"
	"github.com/theoremus-urban-solutions/transit-arrivals/gtfsrt"
	"github.com/theoremus-urban-solutions/transit-arrivals/transit"
)

func main() {
	mode := flag.String("mode", "oneshot", "oneshot|serve")
	configPath := flag.String("config", "config.yml", "path to config.yml")
	stopID := flag.String("stop", "", "stop_id to compute arrivals for (oneshot)")
	staticGTFS := flag.String("static", "", "GTFS static zip URL or path (overrides config)")
	vehiclePositions := flag.String("vehiclePositions", "", "GTFS-RT VehiclePositions URL or path (overrides config)")
	flag.Parse()

	lib.InitLogging()

	// .env overrides are optional; missing file is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("config: %v, using defaults", err)
		cfg = config.Default()
	}
	if v := os.Getenv("STATIC_GTFS"); v != "" {
		cfg.Feed.StaticGTFS = v
	}
	if v := os.Getenv("VEHICLE_POSITIONS_URL"); v != "" {
		cfg.Feed.VehiclePositionsURL = v
	}
	if *staticGTFS != "" {
		cfg.Feed.StaticGTFS = *staticGTFS
	}
	if *vehiclePositions != "" {
		cfg.Feed.VehiclePositionsURL = *vehiclePositions
	}
	if cfg.Feed.StaticGTFS == "" {
		log.Fatal("no static GTFS source configured")
	}

	dataset, err := gtfs.Load(cfg.Feed.StaticGTFS)
	if err != nil {
		log.Fatalf("load static GTFS: %v", err)
	}
	log.Printf("loaded %d stops, %d trips, %d stop times", len(dataset.Stops), len(dataset.Trips), len(dataset.StopTimes))

	engine := lib.NewEngine(cfg.Engine)
	client := gtfsrt.NewClient(time.Duration(cfg.Feed.TimeoutMS) * time.Millisecond)

	switch *mode {
	case "oneshot":
		runOneshot(engine, dataset, client, cfg, *stopID)
	case "serve":
		runServe(engine, dataset, client, cfg)
	default:
		log.Fatalf("unknown mode %q", *mode)
	}
}

func runOneshot(engine *lib.Engine, dataset *gtfs.Dataset, client *gtfsrt.Client, cfg config.AppConfig, stopID string) {
	vehicles := fetchVehicles(client, cfg.Feed.VehiclePositionsURL)
	if stopID == "" {
		if len(dataset.Stops) == 0 {
			log.Fatal("dataset has no stops")
		}
		stopID = dataset.Stops[0].ID
	}
	var target transit.Stop
	found := false
	for _, s := range dataset.Stops {
		if s.ID == stopID {
			target = s
			found = true
			break
		}
	}
	if !found {
		log.Fatalf("unknown stop %q", stopID)
	}

	results := engine.CalculateArrivalsForStop(target, vehicles, dataset.Trips, dataset.StopTimes, dataset.Stops, dataset.ShapesByTrip())
	buf, err := json.MarshalIndent(map[string]any{"stop": target, "arrivals": results}, "", "  ")
	if err != nil {
		log.Fatalf("encode results: %v", err)
	}
	fmt.Println(string(buf))
}

func runServe(engine *lib.Engine, dataset *gtfs.Dataset, client *gtfsrt.Client, cfg config.AppConfig) {
	server := lib.NewServer(engine)
	server.SetStaticData(dataset.Stops, dataset.Trips, dataset.StopTimes, dataset.ShapesByTrip())
	server.SetVehicles(fetchVehicles(client, cfg.Feed.VehiclePositionsURL))
	server.Start(cfg.Server.Port)

	interval := time.Duration(cfg.Feed.ReadIntervalMS) * time.Millisecond
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			fm, err := client.FetchFeed(cfg.Feed.VehiclePositionsURL)
			if err != nil {
				server.Metrics().FeedRefreshErrs.Inc()
				log.Printf("vehicle feed refresh: %v", err)
				continue
			}
			server.SetVehicles(gtfsrt.VehiclesFromFeed(fm))
		case <-sigs:
			log.Printf("shutdown signal received")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				log.Printf("server shutdown error: %v", err)
			} else {
				log.Printf("server shut down successfully")
			}
			return
		}
	}
}

func fetchVehicles(client *gtfsrt.Client, url string) []transit.Vehicle {
	fm, err := client.FetchFeed(url)
	if err != nil {
		log.Printf("vehicle feed: %v", err)
		return nil
	}
	return gtfsrt.VehiclesFromFeed(fm)
}
