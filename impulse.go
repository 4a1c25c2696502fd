package impulseruntime

// Memory is guest linear memory as seen by the host side of the boundary.
// All multi-byte accessors are little-endian, matching the wasm32 ABI the
// engine was compiled against. Accessors return an error on out-of-bounds
// access instead of panicking; nothing on the host side may fault the
// process on behalf of the engine.
type Memory interface {
	Read(offset, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU32(offset uint32) (uint32, error)
	ReadU64(offset uint32) (uint64, error)
	ReadF32(offset uint32) (float32, error)
	WriteU32(offset uint32, value uint32) error
	WriteU64(offset uint32, value uint64) error
	WriteF32(offset uint32, value float32) error

	// Size returns the current size of the memory in bytes.
	Size() uint32
}

// Allocator reserves regions of guest linear memory on behalf of the
// engine's allocation hooks. A returned pointer of 0 means exhaustion;
// the engine treats that as fatal for the in-flight call, so Alloc and
// Calloc do not also return an error for that case.
type Allocator interface {
	Alloc(size uint32) uint32
	Calloc(n, size uint32) uint32
	Free(ptr uint32) error
}
