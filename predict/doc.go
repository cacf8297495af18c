/*
Package predict derives a vehicle's likely current state from its last
reported fix.

PredictSpeed resolves a usable speed through a strict priority cascade
(validated API speed, nearby-vehicle average, stop-density heuristic, static
fallback); every tier failure is an explicit branch and the terminal tier
always succeeds. Simulate then advances the vehicle forward along its route
shape for the time elapsed since the fix, dwelling at intermediate stops.
Enhance combines both into per-vehicle prediction metadata for display
layers.

The DensityCenterCache is the only stateful piece: a lazily computed stop
centroid with explicit invalidation, safe for concurrent readers.
*/
package predict
