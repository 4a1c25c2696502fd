package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in an invocation the error occurred
type Phase string

const (
	PhaseLoad     Phase = "load"     // engine binary loading
	PhaseValidate Phase = "validate" // boundary argument validation
	PhaseBind     Phase = "bind"     // signal context binding
	PhaseRead     Phase = "read"     // signal bridge pull reads
	PhaseHook     Phase = "hook"     // platform hook execution
	PhaseInvoke   Phase = "invoke"   // engine invocation
	PhaseExtract  Phase = "extract"  // result field extraction
)

// Kind categorizes the error
type Kind string

const (
	KindNilPointer     Kind = "nil_pointer"
	KindLengthMismatch Kind = "length_mismatch"
	KindUnboundContext Kind = "unbound_context"
	KindOutOfBounds    Kind = "out_of_bounds"
	KindAllocation     Kind = "allocation"
	KindEngineFailure  Kind = "engine_failure"
	KindInvalidInput   Kind = "invalid_input"
	KindNotInitialized Kind = "not_initialized"
	KindMemoryFault    Kind = "memory_fault"
	KindMissingExport  Kind = "missing_export"
)

// Error is the structured error type used throughout the runtime
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Op     string // operation that failed, e.g. "classify"
	Detail string
	Code   int32 // engine status discriminant, 0 when not applicable
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Op != "" {
		b.WriteString(" in ")
		b.WriteString(e.Op)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Code != 0 {
		fmt.Fprintf(&b, " (engine status %d)", e.Code)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Op sets the failing operation name
func (b *Builder) Op(op string) *Builder {
	b.err.Op = op
	return b
}

// Code sets the engine status discriminant
func (b *Builder) Code(code int32) *Builder {
	b.err.Code = code
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// NilPointer creates an invalid-argument error for a nil boundary argument
func NilPointer(op, what string) *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindNilPointer,
		Op:     op,
		Detail: fmt.Sprintf("%s is nil", what),
	}
}

// LengthMismatch creates an invalid-argument error for a wrongly sized buffer
func LengthMismatch(op string, got, want int) *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindLengthMismatch,
		Op:     op,
		Detail: fmt.Sprintf("buffer length %d, want exactly %d", got, want),
	}
}

// UnboundContext signals a pull read with no active signal context
func UnboundContext(op string) *Error {
	return &Error{
		Phase:  PhaseRead,
		Kind:   KindUnboundContext,
		Op:     op,
		Detail: "no signal context bound to this invocation",
	}
}

// OutOfBounds creates an out-of-range read error
func OutOfBounds(op string, offset, length, total int) *Error {
	return &Error{
		Phase:  PhaseRead,
		Kind:   KindOutOfBounds,
		Op:     op,
		Detail: fmt.Sprintf("window [%d, %d) exceeds declared length %d", offset, offset+length, total),
	}
}

// Allocation creates a guest heap allocation failure error
func Allocation(op string, size uint32) *Error {
	return &Error{
		Phase:  PhaseHook,
		Kind:   KindAllocation,
		Op:     op,
		Detail: fmt.Sprintf("failed to allocate %d bytes of guest heap", size),
	}
}

// EngineFailure wraps a nonzero status returned by the engine, keeping the
// raw discriminant while callers collapse it to failure
func EngineFailure(op string, code int32) *Error {
	return &Error{
		Phase: PhaseInvoke,
		Kind:  KindEngineFailure,
		Op:    op,
		Code:  code,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotInitialized creates a not-initialized error for a missing component
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// MemoryFault creates a guest memory access error
func MemoryFault(op string, offset, length uint32) *Error {
	return &Error{
		Phase:  PhaseHook,
		Kind:   KindMemoryFault,
		Op:     op,
		Detail: fmt.Sprintf("guest memory access at [%d, %d) out of range", offset, uint64(offset)+uint64(length)),
	}
}

// Wrap wraps an existing error with boundary context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates an engine loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidInput,
		Detail: detail,
		Cause:  cause,
	}
}

// Status collapses an error chain to the flat status convention crossing
// the boundary: 0 for success, the engine's own discriminant when one was
// preserved, and 1 for every other failure.
func Status(err error) int32 {
	if err == nil {
		return 0
	}
	for cur := err; cur != nil; cur = stderrors.Unwrap(cur) {
		if e, ok := cur.(*Error); ok && e.Code != 0 {
			return e.Code
		}
	}
	return 1
}
