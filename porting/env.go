package porting

import (
	"context"
	"fmt"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/edgekit/impulse-runtime/engine"
)

// ModuleName is the import namespace the engine binary links its platform
// hooks from.
const ModuleName = "env"

// fallbackClock serves timer reads arriving outside an invocation, such
// as from a module start function. Still monotonic, just a process-wide
// epoch instead of a per-instance one.
var fallbackClock = NewClock()

// EnvBuilder assembles the "env" host module: every platform hook the
// engine imports, plus whatever the signal package contributes. All
// imports must be exported here or the engine fails to instantiate.
type EnvBuilder struct {
	builder wazero.HostModuleBuilder
}

// NewEnv starts an env module pre-populated with the full platform hook
// set.
func NewEnv(rt wazero.Runtime) *EnvBuilder {
	env := &EnvBuilder{builder: rt.NewHostModuleBuilder(ModuleName)}

	i32 := []api.ValueType{api.ValueTypeI32}
	i32x2 := []api.ValueType{api.ValueTypeI32, api.ValueTypeI32}
	i64 := []api.ValueType{api.ValueTypeI64}
	f32 := []api.ValueType{api.ValueTypeF32}

	env.Export("ei_read_timer_ms", readTimerMs, nil, i64)
	env.Export("ei_read_timer_us", readTimerUs, nil, i64)
	env.Export("ei_sleep", sleep, i32, i32)
	env.Export("ei_malloc", malloc, i32, i32)
	env.Export("ei_calloc", calloc, i32x2, i32)
	env.Export("ei_free", free, i32, nil)
	env.Export("ei_printf", printf, i32x2, nil)
	env.Export("ei_printf_float", printfFloat, f32, nil)
	env.Export("ei_putchar", putchar, i32, nil)
	env.Export("ei_getchar", getchar, nil, i32)
	env.Export("ei_serial_set_baudrate", serialSetBaudrate, i32, nil)
	env.Export("ei_run_impulse_check_canceled", checkCanceled, nil, i32)

	return env
}

// Export adds a host function to the env module under construction.
func (e *EnvBuilder) Export(name string, fn api.GoModuleFunc, params, results []api.ValueType) *EnvBuilder {
	e.builder.NewFunctionBuilder().
		WithGoModuleFunction(fn, params, results).
		Export(name)
	return e
}

// Instantiate builds the env module into the runtime. Must happen before
// the engine module is instantiated.
func (e *EnvBuilder) Instantiate(ctx context.Context) (api.Module, error) {
	return e.builder.Instantiate(ctx)
}

func clockFrom(ctx context.Context) *Clock {
	if h, ok := fromContext(ctx); ok && h.Clock != nil {
		return h.Clock
	}
	return fallbackClock
}

func readTimerMs(ctx context.Context, _ api.Module, stack []uint64) {
	stack[0] = clockFrom(ctx).Millis()
}

func readTimerUs(ctx context.Context, _ api.Module, stack []uint64) {
	stack[0] = clockFrom(ctx).Micros()
}

func sleep(ctx context.Context, _ api.Module, stack []uint64) {
	ms := api.DecodeI32(stack[0])
	stack[0] = api.EncodeI32(clockFrom(ctx).Sleep(ctx, ms))
}

func malloc(ctx context.Context, _ api.Module, stack []uint64) {
	size := uint32(stack[0])
	var ptr uint32
	if h, ok := fromContext(ctx); ok && h.Heap != nil {
		ptr = h.Heap.Alloc(size)
	}
	if ptr == 0 && size > 0 {
		Logger().Warn("guest allocation failed", zap.Uint32("size", size))
	}
	stack[0] = uint64(ptr)
}

func calloc(ctx context.Context, _ api.Module, stack []uint64) {
	n, size := uint32(stack[0]), uint32(stack[1])
	var ptr uint32
	if h, ok := fromContext(ctx); ok && h.Heap != nil {
		ptr = h.Heap.Calloc(n, size)
	}
	if ptr == 0 && n > 0 && size > 0 {
		Logger().Warn("guest allocation failed",
			zap.Uint32("count", n), zap.Uint32("size", size))
	}
	stack[0] = uint64(ptr)
}

func free(ctx context.Context, _ api.Module, stack []uint64) {
	ptr := uint32(stack[0])
	h, ok := fromContext(ctx)
	if !ok || h.Heap == nil {
		if ptr != 0 {
			Logger().Warn("free outside invocation", zap.Uint32("ptr", ptr))
		}
		return
	}
	if err := h.Heap.Free(ptr); err != nil {
		Logger().Warn("invalid free from engine", zap.Error(err))
	}
}

func printf(_ context.Context, mod api.Module, stack []uint64) {
	fmtPtr, argsPtr := uint32(stack[0]), uint32(stack[1])
	mem := engine.NewMemory(mod.Memory())

	msg, err := formatGuest(mem, fmtPtr, argsPtr)
	if err != nil {
		Logger().Warn("dropped engine diagnostic", zap.Error(err))
		return
	}
	if msg = strings.TrimRight(msg, "\r\n"); msg != "" {
		Logger().Info(msg)
	}
}

func printfFloat(_ context.Context, _ api.Module, stack []uint64) {
	Logger().Info(fmt.Sprintf("%.6f", api.DecodeF32(stack[0])))
}

func putchar(_ context.Context, _ api.Module, stack []uint64) {
	// Best effort: nothing on this platform consumes character output.
	c := byte(uint32(stack[0]))
	Logger().Debug("engine putchar", zap.String("char", string(c)))
}

func getchar(_ context.Context, _ api.Module, stack []uint64) {
	// Character input is not wired on this platform.
	stack[0] = api.EncodeI32(0)
}

func serialSetBaudrate(_ context.Context, _ api.Module, _ []uint64) {
	// Not needed for inference-only use.
}

func checkCanceled(ctx context.Context, _ api.Module, stack []uint64) {
	if h, ok := fromContext(ctx); ok && h.Canceled != nil && h.Canceled() {
		stack[0] = api.EncodeI32(StatusCanceled)
		return
	}
	stack[0] = api.EncodeI32(StatusOK)
}
