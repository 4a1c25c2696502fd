package classifier

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/edgekit/impulse-runtime/engine"
	"github.com/edgekit/impulse-runtime/errors"
	"github.com/edgekit/impulse-runtime/model"
	"github.com/edgekit/impulse-runtime/porting"
	"github.com/edgekit/impulse-runtime/signal"
)

// Entry points the engine binary must export.
const (
	exportRunClassifier     = "run_classifier"
	exportRunClassifierInit = "run_classifier_init"
)

// heapBaseGlobal is the linker-emitted marker for the first address past
// the engine's static data. The heap window starts there unless
// overridden.
const heapBaseGlobal = "__heap_base"

type options struct {
	heapBase uint32
	canceled func() bool
}

type Option func(*options)

// WithHeapBase overrides the guest heap window start for engine builds
// that do not export a heap base global.
func WithHeapBase(base uint32) Option {
	return func(o *options) { o.heapBase = base }
}

// WithCancelPoll wires a cooperative cancellation poll into the engine's
// periodic check. The default poll always reports continue.
func WithCancelPoll(fn func() bool) Option {
	return func(o *options) { o.canceled = fn }
}

// Classifier is the single externally callable surface over one engine
// instance. NOT safe for concurrent use: concurrent Classify calls on the
// same Classifier must be serialized by the caller. Distinct Classifiers
// are fully independent.
type Classifier struct {
	inst      *engine.Instance
	hooks     *porting.Hooks
	sctx      *signal.Context
	resultPtr uint32
	initOnce  sync.Once
	initErr   error
}

// New compiles wasmBytes on eng and builds a classifier over a fresh
// instance. The env host module is registered on first use of an Engine.
func New(ctx context.Context, eng *engine.Engine, wasmBytes []byte, opts ...Option) (*Classifier, error) {
	mod, err := eng.Load(ctx, wasmBytes)
	if err != nil {
		return nil, err
	}
	return NewFromModule(ctx, eng, mod, opts...)
}

// NewFromModule builds a classifier over a fresh instance of an already
// compiled engine module. Use this to share one compilation across many
// execution contexts.
func NewFromModule(ctx context.Context, eng *engine.Engine, mod *engine.Module, opts ...Option) (*Classifier, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	err := eng.EnsureHostModule(ctx, porting.ModuleName, func(ctx context.Context) (api.Module, error) {
		return signal.Register(porting.NewEnv(eng.Runtime())).Instantiate(ctx)
	})
	if err != nil {
		return nil, err
	}

	inst, err := mod.Instantiate(ctx)
	if err != nil {
		return nil, err
	}

	if !inst.HasExport(exportRunClassifier) {
		_ = inst.Close(ctx)
		return nil, &errors.Error{
			Phase:  errors.PhaseLoad,
			Kind:   errors.KindMissingExport,
			Op:     exportRunClassifier,
			Detail: "engine does not export the classification entry point",
		}
	}

	base := o.heapBase
	if base == 0 {
		if hb, ok := inst.Global(heapBaseGlobal); ok {
			base = uint32(hb)
		}
	}
	if base == 0 {
		// No marker exported and no override: claim the upper half of
		// the initial memory, clear of the engine's static image.
		base = inst.Memory().Size() / 2
	}
	base = (base + 7) &^ 7

	memSize := inst.Memory().Size()
	if base >= memSize {
		_ = inst.Close(ctx)
		return nil, errors.InvalidInput(errors.PhaseLoad, "heap base beyond guest memory")
	}

	heap, err := porting.NewHeap(inst.Memory(), base, memSize-base)
	if err != nil {
		_ = inst.Close(ctx)
		return nil, err
	}

	hooks := porting.NewHooks(porting.NewClock(), heap)
	hooks.Canceled = o.canceled

	// The result record is reserved once and reused: engine-owned layout,
	// caller-owned storage, written in place on every invocation.
	resultPtr := heap.Calloc(model.ResultSize, 1)
	if resultPtr == 0 {
		_ = inst.Close(ctx)
		return nil, errors.Allocation("new classifier", model.ResultSize)
	}

	engine.Logger().Debug("classifier ready",
		zap.Uint32("heap_base", base),
		zap.Uint32("heap_size", memSize-base),
		zap.Uint32("result_ptr", resultPtr))

	return &Classifier{
		inst:      inst,
		hooks:     hooks,
		sctx:      &signal.Context{},
		resultPtr: resultPtr,
	}, nil
}

// Classify runs one inference over features. features must hold exactly
// model.InputFrameSize samples and stay valid and unmodified for the full
// duration of the call. debug forwards the engine's verbose diagnostics
// through the platform logger.
func (c *Classifier) Classify(ctx context.Context, features []float32, debug bool) (*Result, error) {
	var res Result
	if err := c.ClassifyInto(ctx, features, debug, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ClassifyInto is Classify writing into caller-supplied result storage.
// The record is written in place regardless of status; its contents are
// only meaningful when the returned error is nil.
func (c *Classifier) ClassifyInto(ctx context.Context, features []float32, debug bool, out *Result) error {
	if out == nil {
		return errors.NilPointer("classify", "result")
	}
	if features == nil {
		return errors.NilPointer("classify", "features")
	}
	if len(features) != model.InputFrameSize {
		return errors.LengthMismatch("classify", len(features), model.InputFrameSize)
	}

	// Fresh result storage for this invocation: a failed call must not
	// surface a previous invocation's record.
	if err := c.inst.Memory().Write(c.resultPtr, make([]byte, model.ResultSize)); err != nil {
		return errors.Wrap(errors.PhaseInvoke, errors.KindMemoryFault, err, "reset result record")
	}

	if err := c.sctx.BindBuffer(features); err != nil {
		return err
	}
	// Clear on every exit path; a stale binding must not outlive the call.
	defer c.sctx.Clear()

	callCtx := porting.WithHooks(signal.WithContext(ctx, c.sctx), c.hooks)

	var dbg uint64
	if debug {
		dbg = 1
	}

	results, err := c.inst.Call(callCtx, exportRunClassifier,
		uint64(uint32(model.InputFrameSize)), uint64(c.resultPtr), dbg)

	// Snapshot whatever the engine left in the record, success or not,
	// so the caller's storage is fully written.
	if raw, rerr := c.inst.Memory().Read(c.resultPtr, model.ResultSize); rerr == nil {
		out.raw = raw
	}

	if err != nil {
		return err
	}
	if len(results) == 0 {
		return errors.InvalidInput(errors.PhaseInvoke, "engine returned no status")
	}
	if status := api.DecodeI32(results[0]); status != porting.StatusOK {
		return errors.EngineFailure(exportRunClassifier, status)
	}

	if debug {
		t := out.Timing()
		engine.Logger().Debug("inference timing",
			zap.Int32("dsp_ms", t.DSPMs),
			zap.Int32("classification_ms", t.ClassificationMs),
			zap.Int32("anomaly_ms", t.AnomalyMs))
	}
	return nil
}

// Init prepares the engine for continuous-mode use. Idempotent; single
// shot Classify calls do not require it.
func (c *Classifier) Init(ctx context.Context) error {
	c.initOnce.Do(func() {
		callCtx := porting.WithHooks(ctx, c.hooks)
		_, c.initErr = c.inst.Call(callCtx, exportRunClassifierInit)
	})
	return c.initErr
}

// Close releases the guest result record and the engine instance.
func (c *Classifier) Close(ctx context.Context) error {
	if c.resultPtr != 0 {
		_ = c.hooks.Heap.Free(c.resultPtr)
		c.resultPtr = 0
	}
	return c.inst.Close(ctx)
}
