// Package geo provides pure geometry primitives for transit calculations:
// haversine distances and point-to-segment projection in a locally flat
// lat/lon approximation. It has no dependencies on the rest of the module.
package geo
