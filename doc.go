// Package impulseruntime hosts a pre-compiled, callback-driven
// signal-classification engine inside a Go process.
//
// The engine is a core WebAssembly module compiled from the vendor's C++
// inference SDK. It is a black box: feature extraction, the model weights
// and the inference math all live inside the binary. What this library
// implements is the boundary around it: the platform hooks the engine
// imports from its host environment, and the pull-based bridge that feeds
// it signal data without copying whole buffers up front. A single classify
// entry point lets a Go caller invoke the engine without ever touching
// guest memory.
//
// # Architecture Overview
//
//	impulseruntime/      Root package with Memory and Allocator interfaces
//	├── engine/          wazero integration: compile, instantiate, call
//	├── porting/         Platform hooks: time, delay, heap, diagnostics
//	├── signal/          Pull-based signal bridge and invocation context
//	├── model/           Build-time model constants and result layout
//	├── classifier/      Safe classify/extract entry points, streaming
//	└── errors/          Structured error types for the boundary
//
// # Quick Start
//
// Load the compiled engine and classify one frame:
//
//	eng, err := engine.New(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close(ctx)
//
//	clf, err := classifier.New(ctx, eng, engineWASM)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer clf.Close(ctx)
//
//	res, err := clf.Classify(ctx, features, false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	scores := make([]float32, model.LabelCount)
//	if err := res.ExtractScores(scores); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// Engine is safe for concurrent use. Classifier is NOT thread-safe: it owns
// the one live signal binding for its execution context, and concurrent
// Classify calls on the same Classifier must be serialized by the caller.
// Independent Classifier instances have independent engine instances,
// memories and signal contexts, and may run concurrently.
//
// # Memory Model
//
// The engine's heap is a fixed window of guest linear memory managed from
// the host side. Allocation exhaustion surfaces to the engine as a null
// pointer, which it treats as fatal for that call; nothing is retried.
package impulseruntime
