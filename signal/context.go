package signal

import (
	gocontext "context"

	"github.com/edgekit/impulse-runtime/errors"
)

// Context is the live binding between a Signal's read capability and one
// invocation. A Context belongs to a single execution context (one
// classifier instance); binding a new signal overwrites the previous one,
// and the owner clears it on every exit path so a stale buffer reference
// can never outlive its invocation.
//
// Context is not safe for concurrent use. Independent execution contexts
// hold independent Contexts and never observe each other's binding.
type Context struct {
	sig   Signal
	bound bool
}

// Bind makes sig the active signal for the next invocation.
func (c *Context) Bind(sig Signal) error {
	if sig.Read == nil && sig.TotalLength > 0 {
		return errors.NilPointer("bind", "signal read capability")
	}
	if sig.TotalLength < 0 {
		return errors.InvalidInput(errors.PhaseBind, "negative signal length")
	}
	c.sig = sig
	c.bound = true
	return nil
}

// BindBuffer binds a flat sample buffer as the active signal.
func (c *Context) BindBuffer(buf []float32) error {
	return c.Bind(FromBuffer(buf))
}

// Clear drops the active binding. Reads after Clear fail with an
// unbound-context error, never with stale data.
func (c *Context) Clear() {
	c.sig = Signal{}
	c.bound = false
}

// Bound reports whether a signal is currently bound.
func (c *Context) Bound() bool {
	return c.bound
}

// TotalLength returns the declared length of the bound signal.
func (c *Context) TotalLength() (int, bool) {
	if !c.bound {
		return 0, false
	}
	return c.sig.TotalLength, true
}

// Read copies length samples starting at offset into out. The window
// check is boundary inclusive: offset+length equal to the declared total
// succeeds, one past it fails. Reading repeatedly with disjoint windows
// within one invocation is the engine's normal access pattern.
func (c *Context) Read(offset, length int, out []float32) error {
	if !c.bound {
		return errors.UnboundContext("signal_read")
	}
	if offset < 0 || length < 0 || offset+length > c.sig.TotalLength {
		return errors.OutOfBounds("signal_read", offset, length, c.sig.TotalLength)
	}
	if len(out) < length {
		return errors.LengthMismatch("signal_read", len(out), length)
	}
	if length == 0 {
		return nil
	}
	return c.sig.Read(offset, length, out)
}

type ctxKey struct{}

// WithContext attaches the signal context to the Go context of one engine
// call. The bridge host functions resolve it per read, which scopes the
// binding to the calling execution context without any global state.
func WithContext(ctx gocontext.Context, c *Context) gocontext.Context {
	return gocontext.WithValue(ctx, ctxKey{}, c)
}

func fromContext(ctx gocontext.Context) (*Context, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Context)
	return c, ok && c != nil
}
