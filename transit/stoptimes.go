package transit

import "sort"

// StopsByID indexes stops by their ID.
func StopsByID(stops []Stop) map[string]Stop {
	m := make(map[string]Stop, len(stops))
	for _, s := range stops {
		m[s.ID] = s
	}
	return m
}

// SortStopTimes orders stop times by sequence in place.
func SortStopTimes(sts []TripStopTime) {
	sort.Slice(sts, func(i, j int) bool { return sts[i].Sequence < sts[j].Sequence })
}

// StopTimesForTrip filters stop times for one trip, sorted by sequence.
func StopTimesForTrip(all []TripStopTime, tripID string) []TripStopTime {
	out := make([]TripStopTime, 0)
	for _, st := range all {
		if st.TripID == tripID {
			out = append(out, st)
		}
	}
	SortStopTimes(out)
	return out
}

// StopTimesByTrip groups stop times per trip, each group sorted by sequence.
func StopTimesByTrip(all []TripStopTime) map[string][]TripStopTime {
	m := map[string][]TripStopTime{}
	for _, st := range all {
		m[st.TripID] = append(m[st.TripID], st)
	}
	for id := range m {
		SortStopTimes(m[id])
	}
	return m
}

// TripServesStop reports whether stopID appears in the trip's stop times.
func TripServesStop(tripStopTimes []TripStopTime, stopID string) bool {
	for _, st := range tripStopTimes {
		if st.StopID == stopID {
			return true
		}
	}
	return false
}
