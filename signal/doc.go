// Package signal satisfies the engine's pull model for input data.
//
// The engine never receives a whole input buffer. It receives a total
// length and requests arbitrary sub-windows of the signal through a read
// callback while inference runs. This package provides the Signal
// capability (one read operation over caller data), the invocation-scoped
// Context that binds a capability for exactly one engine call, and the
// env host functions the engine pulls through.
//
// Lifecycle discipline is "bind before read, clear before return, one
// context per execution context at a time". The classifier package owns
// that sequencing; a read against an unbound context fails with a status
// the engine can distinguish from a successful empty read.
package signal
