// Package errors provides structured error types for the impulse-runtime
// boundary.
//
// Errors are categorized by Phase (where in the invocation the error
// occurred) and Kind (error category). The Error type carries a detail
// message, the engine's raw status discriminant when one exists, and a
// cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseValidate, errors.KindLengthMismatch).
//		Detail("features length %d, want %d", got, want).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnboundContext("read")
//	err := errors.OutOfBounds("read", off, n, total)
//
// All errors implement the standard error interface and support
// errors.Is/As. Status collapses any error chain to the flat 0/nonzero
// status code convention used across the foreign boundary.
package errors
