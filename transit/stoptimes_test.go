package transit

import "testing"

func sampleStopTimes() []TripStopTime {
	return []TripStopTime{
		{TripID: "t1", StopID: "s3", Sequence: 3},
		{TripID: "t2", StopID: "s9", Sequence: 1},
		{TripID: "t1", StopID: "s1", Sequence: 1},
		{TripID: "t1", StopID: "s2", Sequence: 2},
	}
}

func TestStopTimesForTrip(t *testing.T) {
	got := StopTimesForTrip(sampleStopTimes(), "t1")
	if len(got) != 3 {
		t.Fatalf("expected 3 stop times, got %d", len(got))
	}
	for i, want := range []string{"s1", "s2", "s3"} {
		if got[i].StopID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, got[i].StopID)
		}
	}
	if got := StopTimesForTrip(sampleStopTimes(), "none"); len(got) != 0 {
		t.Errorf("expected empty result for unknown trip, got %d", len(got))
	}
}

func TestStopTimesByTrip(t *testing.T) {
	byTrip := StopTimesByTrip(sampleStopTimes())
	if len(byTrip) != 2 {
		t.Fatalf("expected 2 trips, got %d", len(byTrip))
	}
	t1 := byTrip["t1"]
	for i := 1; i < len(t1); i++ {
		if t1[i].Sequence < t1[i-1].Sequence {
			t.Error("t1 stop times not sorted by sequence")
		}
	}
}

func TestTripServesStop(t *testing.T) {
	sts := StopTimesForTrip(sampleStopTimes(), "t1")
	if !TripServesStop(sts, "s2") {
		t.Error("expected s2 to be served")
	}
	if TripServesStop(sts, "s9") {
		t.Error("s9 belongs to another trip")
	}
	if TripServesStop(nil, "s1") {
		t.Error("empty stop times serve nothing")
	}
}

func TestStopsByID(t *testing.T) {
	stops := []Stop{{ID: "a"}, {ID: "b"}}
	m := StopsByID(stops)
	if len(m) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(m))
	}
	if _, ok := m["a"]; !ok {
		t.Error("missing stop a")
	}
}
