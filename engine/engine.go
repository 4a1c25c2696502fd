package engine

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/edgekit/impulse-runtime/errors"
)

// Config holds configuration for engine creation
type Config struct {
	// MemoryLimitPages sets the maximum guest memory per instance in
	// pages (64KB each). 0 means the wazero default.
	// 256 = 16MB, 1024 = 64MB
	MemoryLimitPages uint32
}

// Engine wraps a wazero runtime that executes the compiled inference
// engine. One Engine may back many classifier instances; host modules
// registered on its runtime are shared by all of them.
type Engine struct {
	runtime wazero.Runtime
	hostMu  sync.Mutex
}

// New creates a new wazero-backed engine
func New(ctx context.Context) (*Engine, error) {
	return NewWithConfig(ctx, nil)
}

// NewWithConfig creates a new engine with custom configuration
func NewWithConfig(ctx context.Context, cfg *Config) (*Engine, error) {
	runtimeCfg := wazero.NewRuntimeConfig()

	if cfg != nil && cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}

	runtime := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)
	return &Engine{runtime: runtime}, nil
}

// Runtime exposes the underlying wazero runtime so the porting and signal
// packages can instantiate the env host module before the engine module.
func (e *Engine) Runtime() wazero.Runtime {
	return e.runtime
}

// Load compiles an engine binary. The binary is the vendor inference SDK
// compiled to a core wasm module; its content is opaque to this layer.
func (e *Engine) Load(ctx context.Context, wasmBytes []byte) (*Module, error) {
	if len(wasmBytes) == 0 {
		return nil, errors.InvalidInput(errors.PhaseLoad, "empty engine binary")
	}

	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, errors.Load("compile engine module", err)
	}

	return &Module{engine: e, compiled: compiled}, nil
}

// EnsureHostModule atomically gets or creates a named host module on this
// engine's runtime. Concurrent callers racing to register the same module
// see exactly one instantiation.
func (e *Engine) EnsureHostModule(ctx context.Context, name string, build func(context.Context) (api.Module, error)) error {
	e.hostMu.Lock()
	defer e.hostMu.Unlock()

	if e.runtime.Module(name) != nil {
		return nil
	}

	if _, err := build(ctx); err != nil {
		return errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "instantiate host module "+name)
	}
	return nil
}

// Close releases all engine resources.
// All instances must be closed before calling this.
func (e *Engine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}
