// Package transit holds the immutable data-model snapshots the arrival
// engine consumes: stops, trips, stop sequences and live vehicle fixes.
package transit
