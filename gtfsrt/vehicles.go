package gtfsrt

import (
	"hash/fnv"
	"strconv"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"

	"github.com/theoremus-urban-solutions/transit-arrivals/geo"
	"github.com/theoremus-urban-solutions/transit-arrivals/transit"
)

// mpsToKmh converts GTFS-RT speeds (meters per second) to km/h.
const mpsToKmh = 3.6

// VehiclesFromFeed extracts vehicle snapshots from a GTFS-RT FeedMessage.
// Entities without a position are skipped; speed is converted from m/s to
// km/h and left nil when absent. The feed header timestamp backs entities
// that carry no timestamp of their own.
func VehiclesFromFeed(fm *gtfsrtpb.FeedMessage) []transit.Vehicle {
	if fm == nil {
		return nil
	}
	headerTS := time.Now()
	if fm.Header != nil && fm.Header.Timestamp != nil {
		headerTS = time.Unix(int64(*fm.Header.Timestamp), 0)
	}
	out := make([]transit.Vehicle, 0, len(fm.Entity))
	for _, e := range fm.Entity {
		vp := e.Vehicle
		if vp == nil || vp.Position == nil || vp.Position.Latitude == nil || vp.Position.Longitude == nil {
			continue
		}
		v := transit.Vehicle{
			Position: geo.Coordinate{
				Lat: float64(*vp.Position.Latitude),
				Lon: float64(*vp.Position.Longitude),
			},
			Timestamp: headerTS,
		}
		if vp.Vehicle != nil && vp.Vehicle.Id != nil {
			v.ID = vehicleNumericID(*vp.Vehicle.Id)
		} else if e.Id != nil {
			v.ID = vehicleNumericID(*e.Id)
		}
		if vp.Position.Speed != nil {
			kmh := float64(*vp.Position.Speed) * mpsToKmh
			v.SpeedKmh = &kmh
		}
		if vp.Timestamp != nil {
			v.Timestamp = time.Unix(int64(*vp.Timestamp), 0)
		}
		if vp.Trip != nil {
			if vp.Trip.TripId != nil {
				v.TripID = *vp.Trip.TripId
			}
			if vp.Trip.RouteId != nil {
				v.RouteID = *vp.Trip.RouteId
			}
		}
		out = append(out, v)
	}
	return out
}

// vehicleNumericID maps a feed vehicle ref to a stable numeric ID: the
// literal number when the ref is numeric, an FNV hash otherwise.
func vehicleNumericID(ref string) int {
	if n, err := strconv.Atoi(ref); err == nil {
		return n
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(ref))
	return int(h.Sum32())
}
