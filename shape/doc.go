/*
Package shape models route shapes (ordered GPS polylines) and computes
route-following distances over them.

A RouteShape precomputes per-segment haversine lengths and cumulative
distances so projecting a point and converting it to a scalar route position
are cheap. The route position (segment index plus fractional position within
the segment) is the ordering value used throughout the module to decide
whether one point lies ahead of another along a route.

The Calculator offers two strategies: measuring along the shape polyline
(preferred, MethodRouteShape) and chaining straight-line legs through
intermediate stops (fallback, MethodStopSegments). Each result carries a
confidence grade derived from how close the projected points were to the
shape.
*/
package shape
