package gtfsrt

import (
	"math"
	"testing"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

func feedEntity(id string, lat, lon float32) *gtfsrtpb.FeedEntity {
	return &gtfsrtpb.FeedEntity{
		Id: proto.String(id),
		Vehicle: &gtfsrtpb.VehiclePosition{
			Position: &gtfsrtpb.Position{
				Latitude:  proto.Float32(lat),
				Longitude: proto.Float32(lon),
			},
		},
	}
}

func TestVehiclesFromFeed(t *testing.T) {
	headerTS := uint64(1700000000)
	vehicleTS := uint64(1700000100)

	withSpeed := feedEntity("101", 47.5, 19.05)
	withSpeed.Vehicle.Position.Speed = proto.Float32(10) // m/s
	withSpeed.Vehicle.Vehicle = &gtfsrtpb.VehicleDescriptor{Id: proto.String("101")}
	withSpeed.Vehicle.Trip = &gtfsrtpb.TripDescriptor{
		TripId:  proto.String("t1"),
		RouteId: proto.String("r1"),
	}
	withSpeed.Vehicle.Timestamp = proto.Uint64(vehicleTS)

	noPosition := &gtfsrtpb.FeedEntity{
		Id:      proto.String("102"),
		Vehicle: &gtfsrtpb.VehiclePosition{},
	}

	headerOnly := feedEntity("abc-7", 47.6, 19.1)

	fm := &gtfsrtpb.FeedMessage{
		Header: &gtfsrtpb.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Timestamp:           proto.Uint64(headerTS),
		},
		Entity: []*gtfsrtpb.FeedEntity{withSpeed, noPosition, headerOnly},
	}

	vehicles := VehiclesFromFeed(fm)
	if len(vehicles) != 2 {
		t.Fatalf("expected 2 vehicles, got %d", len(vehicles))
	}

	first := vehicles[0]
	if first.ID != 101 {
		t.Errorf("expected numeric ID 101, got %d", first.ID)
	}
	if first.TripID != "t1" || first.RouteID != "r1" {
		t.Errorf("trip descriptor not carried over: %+v", first)
	}
	if first.SpeedKmh == nil || math.Abs(*first.SpeedKmh-36) > 1e-6 {
		t.Errorf("expected 10 m/s as 36 km/h, got %v", first.SpeedKmh)
	}
	if !first.Timestamp.Equal(time.Unix(int64(vehicleTS), 0)) {
		t.Errorf("expected vehicle timestamp, got %v", first.Timestamp)
	}
	if math.Abs(first.Position.Lat-47.5) > 1e-5 || math.Abs(first.Position.Lon-19.05) > 1e-5 {
		t.Errorf("unexpected position %+v", first.Position)
	}

	second := vehicles[1]
	if second.SpeedKmh != nil {
		t.Errorf("expected nil speed, got %v", second.SpeedKmh)
	}
	if !second.Timestamp.Equal(time.Unix(int64(headerTS), 0)) {
		t.Errorf("expected header timestamp fallback, got %v", second.Timestamp)
	}
	if second.ID == 0 {
		t.Error("expected a hashed ID for non-numeric ref")
	}
}

func TestVehiclesFromFeedNil(t *testing.T) {
	if got := VehiclesFromFeed(nil); got != nil {
		t.Errorf("expected nil for nil feed, got %v", got)
	}
}

func TestVehicleNumericID(t *testing.T) {
	if got := vehicleNumericID("4711"); got != 4711 {
		t.Errorf("expected literal 4711, got %d", got)
	}
	a := vehicleNumericID("BUS-A")
	b := vehicleNumericID("BUS-B")
	if a == b {
		t.Error("distinct refs hashed to the same ID")
	}
	if a != vehicleNumericID("BUS-A") {
		t.Error("hash is not stable")
	}
}
