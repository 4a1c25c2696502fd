// Package porting implements the platform hooks the inference engine
// requires from its host environment.
//
// The engine binary imports a fixed set of primitives from the "env"
// module: monotonic timers, a blocking delay, heap allocation, bounded
// formatted diagnostics, single-character I/O stubs, and a cooperative
// cancellation poll. Every import must be present and correctly typed or
// the engine fails to instantiate.
//
// Hook handlers are stateless at registration time; the per-invocation
// state (clock epoch, heap, cancellation poll) travels on the Go context
// of the in-flight engine call and is resolved per hook invocation. This
// keeps one shared "env" host module serving any number of concurrently
// running engine instances without shared mutable state.
package porting
