// Package dag orders unit callbacks. Units are nodes, "runs before"
// relations are edges, and TopologicalSort yields an order in which every
// edge's source precedes its destination.
//
// A Graph is built during the single-threaded setup phase. The first
// successful TopologicalSort seals it; from then on it is read-only and can
// be queried from any goroutine.
package dag
