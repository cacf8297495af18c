package gtfs

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/theoremus-urban-solutions/transit-arrivals/geo"
	"github.com/theoremus-urban-solutions/transit-arrivals/shape"
	"github.com/theoremus-urban-solutions/transit-arrivals/transit"
)

// Dataset is the static reference data the arrival engine consumes: stops,
// trips, stop sequences and route shapes, loaded once per agency and
// refreshed on a long cycle.
type Dataset struct {
	Stops     []transit.Stop
	Trips     map[string]transit.Trip
	StopTimes []transit.TripStopTime

	shapesByID map[string]*shape.RouteShape
}

// ShapeForTrip resolves the route shape for a trip, or nil when the trip has
// no spatial data.
func (d *Dataset) ShapeForTrip(tripID string) *shape.RouteShape {
	tr, ok := d.Trips[tripID]
	if !ok || tr.ShapeID == "" {
		return nil
	}
	return d.shapesByID[tr.ShapeID]
}

// ShapesByTrip builds the tripID -> shape lookup the engine entry points
// take.
func (d *Dataset) ShapesByTrip() map[string]*shape.RouteShape {
	out := make(map[string]*shape.RouteShape, len(d.Trips))
	for id := range d.Trips {
		if rs := d.ShapeForTrip(id); rs != nil {
			out[id] = rs
		}
	}
	return out
}

// Load reads a GTFS zip from an HTTP URL or a local path.
func Load(urlOrPath string) (*Dataset, error) {
	if strings.HasPrefix(urlOrPath, "http://") || strings.HasPrefix(urlOrPath, "https://") {
		resp, err := http.Get(urlOrPath)
		if err != nil {
			return nil, fmt.Errorf("fetch GTFS: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, urlOrPath)
		}
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read GTFS body: %w", err)
		}
		return LoadFromZipBytes(b)
	}
	b, err := os.ReadFile(urlOrPath)
	if err != nil {
		return nil, fmt.Errorf("read GTFS zip: %w", err)
	}
	return LoadFromZipBytes(b)
}

// LoadFromZipBytes parses stops.txt, trips.txt, stop_times.txt and
// shapes.txt from raw GTFS zip bytes.
func LoadFromZipBytes(b []byte) (*Dataset, error) {
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("open GTFS zip: %w", err)
	}
	d := &Dataset{
		Trips:      map[string]transit.Trip{},
		shapesByID: map[string]*shape.RouteShape{},
	}
	shapePts := map[string][]shapePoint{}
	for _, f := range zr.File {
		switch strings.ToLower(f.Name) {
		case "stops.txt":
			err = consumeCSV(f, d.consumeStops)
		case "trips.txt":
			err = consumeCSV(f, d.consumeTrips)
		case "stop_times.txt":
			err = consumeCSV(f, d.consumeStopTimes)
		case "shapes.txt":
			err = consumeCSV(f, func(rows [][]string, idx colIndex) error {
				return consumeShapes(rows, idx, shapePts)
			})
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
	}
	for shapeID, pts := range shapePts {
		sort.Slice(pts, func(i, j int) bool { return pts[i].seq < pts[j].seq })
		coords := make([]geo.Coordinate, len(pts))
		for i, p := range pts {
			coords[i] = p.coord
		}
		d.shapesByID[shapeID] = shape.New(shapeID, coords)
	}
	return d, nil
}

type shapePoint struct {
	seq   int
	coord geo.Coordinate
}

type colIndex func(col string) int

func consumeCSV(f *zip.File, consume func(rows [][]string, idx colIndex) error) error {
	r, err := f.Open()
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1
	rec, err := csvr.ReadAll()
	if err != nil {
		return err
	}
	if len(rec) < 2 {
		return nil
	}
	head := rec[0]
	idx := func(col string) int {
		for i, h := range head {
			if strings.EqualFold(strings.TrimSpace(h), col) {
				return i
			}
		}
		return -1
	}
	return consume(rec[1:], idx)
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (d *Dataset) consumeStops(rows [][]string, idx colIndex) error {
	id := idx("stop_id")
	name := idx("stop_name")
	lat := idx("stop_lat")
	lon := idx("stop_lon")
	if id < 0 || lat < 0 || lon < 0 {
		return fmt.Errorf("missing required stop columns")
	}
	for _, row := range rows {
		la, err1 := strconv.ParseFloat(field(row, lat), 64)
		lo, err2 := strconv.ParseFloat(field(row, lon), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		d.Stops = append(d.Stops, transit.Stop{
			ID:       field(row, id),
			Name:     field(row, name),
			Position: geo.Coordinate{Lat: la, Lon: lo},
		})
	}
	return nil
}

func (d *Dataset) consumeTrips(rows [][]string, idx colIndex) error {
	id := idx("trip_id")
	route := idx("route_id")
	shapeID := idx("shape_id")
	headsign := idx("trip_headsign")
	if id < 0 {
		return fmt.Errorf("missing trip_id column")
	}
	for _, row := range rows {
		tripID := field(row, id)
		if tripID == "" {
			continue
		}
		d.Trips[tripID] = transit.Trip{
			ID:       tripID,
			RouteID:  field(row, route),
			ShapeID:  field(row, shapeID),
			Headsign: field(row, headsign),
		}
	}
	return nil
}

func (d *Dataset) consumeStopTimes(rows [][]string, idx colIndex) error {
	trip := idx("trip_id")
	stop := idx("stop_id")
	seq := idx("stop_sequence")
	if trip < 0 || stop < 0 || seq < 0 {
		return fmt.Errorf("missing required stop_times columns")
	}
	for _, row := range rows {
		n, err := strconv.Atoi(field(row, seq))
		if err != nil {
			continue
		}
		d.StopTimes = append(d.StopTimes, transit.TripStopTime{
			TripID:   field(row, trip),
			StopID:   field(row, stop),
			Sequence: n,
		})
	}
	return nil
}

func consumeShapes(rows [][]string, idx colIndex, out map[string][]shapePoint) error {
	id := idx("shape_id")
	lat := idx("shape_pt_lat")
	lon := idx("shape_pt_lon")
	seq := idx("shape_pt_sequence")
	if id < 0 || lat < 0 || lon < 0 || seq < 0 {
		return fmt.Errorf("missing required shape columns")
	}
	for _, row := range rows {
		la, err1 := strconv.ParseFloat(field(row, lat), 64)
		lo, err2 := strconv.ParseFloat(field(row, lon), 64)
		n, err3 := strconv.Atoi(field(row, seq))
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		shapeID := field(row, id)
		out[shapeID] = append(out[shapeID], shapePoint{seq: n, coord: geo.Coordinate{Lat: la, Lon: lo}})
	}
	return nil
}
