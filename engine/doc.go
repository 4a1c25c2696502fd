// Package engine integrates the pre-compiled inference engine through
// wazero.
//
// The engine binary is the vendor's C++ inference SDK compiled to a core
// WebAssembly module. This package compiles it, instantiates it with its
// own linear memory, and exposes raw typed calls into its exports. It
// knows nothing about signals, results or model constants; those live in
// the signal, model and classifier packages.
//
// Host modules (the platform hooks and the signal bridge) must be
// instantiated on the Engine's runtime before the engine module itself is
// instantiated, or instantiation fails with unresolved imports.
package engine
