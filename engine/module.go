package engine

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	impulseruntime "github.com/edgekit/impulse-runtime"
	"github.com/edgekit/impulse-runtime/errors"
)

// Module is a compiled engine binary, ready to instantiate
type Module struct {
	engine   *Engine
	compiled wazero.CompiledModule
}

// Instantiate creates a fresh instance of the engine with its own linear
// memory. Instances are anonymous so that independent execution contexts
// can instantiate the same module in parallel.
func (m *Module) Instantiate(ctx context.Context) (*Instance, error) {
	modConfig := wazero.NewModuleConfig().WithName("")

	instance, err := m.engine.runtime.InstantiateModule(ctx, m.compiled, modConfig)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "instantiate engine module")
	}

	mem := instance.Memory()
	if mem == nil {
		_ = instance.Close(ctx)
		return nil, &errors.Error{
			Phase:  errors.PhaseLoad,
			Kind:   errors.KindMissingExport,
			Detail: "engine module does not export linear memory",
		}
	}

	Logger().Debug("engine instance created",
		zap.Uint32("memory_bytes", mem.Size()))

	return &Instance{
		instance:  instance,
		memory:    &Memory{mem: mem},
		funcCache: make(map[string]api.Function),
	}, nil
}

// Instance is one live engine instantiation. It is NOT safe for concurrent
// use; each execution context owns its own Instance.
type Instance struct {
	instance  api.Module
	memory    *Memory
	funcCache map[string]api.Function
}

// Call invokes an exported engine function with raw wasm arguments.
func (i *Instance) Call(ctx context.Context, name string, args ...uint64) ([]uint64, error) {
	fn, ok := i.funcCache[name]
	if !ok {
		fn = i.instance.ExportedFunction(name)
		if fn == nil {
			return nil, &errors.Error{
				Phase:  errors.PhaseInvoke,
				Kind:   errors.KindMissingExport,
				Op:     name,
				Detail: "engine does not export this function",
			}
		}
		i.funcCache[name] = fn
	}

	results, err := fn.Call(ctx, args...)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseInvoke, errors.KindEngineFailure, err, name)
	}
	return results, nil
}

// HasExport reports whether the engine exports a function under name.
func (i *Instance) HasExport(name string) bool {
	if _, ok := i.funcCache[name]; ok {
		return true
	}
	return i.instance.ExportedFunction(name) != nil
}

// Global returns the value of an exported global, such as the heap base
// marker linkers emit for C builds.
func (i *Instance) Global(name string) (uint64, bool) {
	g := i.instance.ExportedGlobal(name)
	if g == nil {
		return 0, false
	}
	return g.Get(), true
}

// Memory returns the instance's linear memory.
func (i *Instance) Memory() impulseruntime.Memory {
	return i.memory
}

func (i *Instance) Close(ctx context.Context) error {
	return i.instance.Close(ctx)
}
