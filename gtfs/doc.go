// Package gtfs loads static GTFS reference data (stops, trips, stop
// sequences, shapes) from a zip bundle into the in-memory snapshots the
// arrival engine consumes. It accepts raw bytes, local paths or HTTP URLs;
// parse once at startup and keep the Dataset in memory.
package gtfs
