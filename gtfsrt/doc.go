// Package gtfsrt adapts GTFS-Realtime VehiclePositions feeds into the
// vehicle snapshots the arrival engine consumes. It fetches protobuf feeds
// over HTTP or from local files and converts units at the boundary (m/s to
// km/h, epoch seconds to time.Time).
package gtfsrt
