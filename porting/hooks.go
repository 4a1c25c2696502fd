package porting

import "context"

// Engine status codes crossing the hook boundary. These belong to the
// engine's own error enumeration; hooks only ever report OK or, for the
// cancellation poll, canceled.
const (
	StatusOK       int32 = 0
	StatusCanceled int32 = -2
)

// Hooks bundles the per-execution-context hook state: the clock epoch,
// the guest heap, and the cooperative cancellation poll. One Hooks value
// belongs to one classifier instance; handlers resolve it from the Go
// context of the in-flight engine call, so concurrently running instances
// never observe each other's state.
type Hooks struct {
	Clock *Clock
	Heap  *Heap

	// Canceled is polled by the engine during long inference to allow a
	// cooperative abort. nil means the poll always reports continue,
	// which is the shipped configuration.
	Canceled func() bool
}

func NewHooks(clock *Clock, heap *Heap) *Hooks {
	return &Hooks{Clock: clock, Heap: heap}
}

type ctxKey struct{}

// WithHooks attaches h to ctx for the duration of one engine call.
func WithHooks(ctx context.Context, h *Hooks) context.Context {
	return context.WithValue(ctx, ctxKey{}, h)
}

func fromContext(ctx context.Context) (*Hooks, bool) {
	h, ok := ctx.Value(ctxKey{}).(*Hooks)
	return h, ok && h != nil
}
