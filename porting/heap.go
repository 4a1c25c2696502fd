package porting

import (
	"math"
	"sort"

	impulseruntime "github.com/edgekit/impulse-runtime"
	"github.com/edgekit/impulse-runtime/errors"
)

// Heap block alignment. The engine ABI is wasm32 with 8-byte worst-case
// alignment (i64/f64 fields).
const heapAlign = 8

type span struct {
	off  uint32
	size uint32
}

// Heap is a host-managed first-fit allocator over a fixed window of guest
// linear memory. All bookkeeping lives on the host side, so a misbehaving
// engine cannot corrupt the allocator's own structures.
//
// Alloc and Calloc return pointer 0 on exhaustion rather than an error:
// that is the contract of the allocation hooks, and the engine treats a
// null return as fatal for the in-flight call.
//
// A Heap belongs to a single execution context and is not safe for
// concurrent use.
type Heap struct {
	mem  impulseruntime.Memory
	base uint32
	size uint32
	free []span            // sorted by offset, adjacent spans coalesced
	live map[uint32]uint32 // ptr -> reserved size
}

// NewHeap creates a heap over guest memory [base, base+size).
func NewHeap(mem impulseruntime.Memory, base, size uint32) (*Heap, error) {
	if mem == nil {
		return nil, errors.NilPointer("heap", "guest memory")
	}
	if size == 0 {
		return nil, errors.InvalidInput(errors.PhaseLoad, "zero-size heap window")
	}
	if base%heapAlign != 0 {
		return nil, errors.InvalidInput(errors.PhaseLoad, "heap base must be 8-byte aligned")
	}
	if end := uint64(base) + uint64(size); end > uint64(mem.Size()) {
		return nil, errors.New(errors.PhaseLoad, errors.KindOutOfBounds).
			Detail("heap window [%d, %d) exceeds guest memory size %d", base, end, mem.Size()).
			Build()
	}

	return &Heap{
		mem:  mem,
		base: base,
		size: size,
		free: []span{{off: base, size: size}},
		live: make(map[uint32]uint32),
	}, nil
}

// Alloc reserves size bytes and returns a guest pointer, or 0 on
// exhaustion. Zero-size requests return 0.
func (h *Heap) Alloc(size uint32) uint32 {
	if size == 0 {
		return 0
	}
	need := alignUp(size)
	if need < size { // alignment overflowed uint32
		return 0
	}

	for i, s := range h.free {
		if s.size < need {
			continue
		}
		ptr := s.off
		if s.size == need {
			h.free = append(h.free[:i], h.free[i+1:]...)
		} else {
			h.free[i] = span{off: s.off + need, size: s.size - need}
		}
		h.live[ptr] = need
		return ptr
	}
	return 0
}

// Calloc reserves n*size bytes and zeroes every byte of the region.
// On a failed reservation nothing is written to guest memory.
func (h *Heap) Calloc(n, size uint32) uint32 {
	total := uint64(n) * uint64(size)
	if total == 0 || total > math.MaxUint32 {
		return 0
	}

	ptr := h.Alloc(uint32(total))
	if ptr == 0 {
		return 0
	}
	if err := h.mem.Write(ptr, make([]byte, total)); err != nil {
		// Reservation bounds are validated at construction, so this only
		// fires if guest memory shrank, which wasm forbids.
		_ = h.Free(ptr)
		return 0
	}
	return ptr
}

// Free releases a pointer previously returned by Alloc or Calloc.
// Free(0) is a no-op. Double frees and pointers this heap never handed
// out are rejected.
func (h *Heap) Free(ptr uint32) error {
	if ptr == 0 {
		return nil
	}
	size, ok := h.live[ptr]
	if !ok {
		return errors.New(errors.PhaseHook, errors.KindInvalidInput).
			Op("free").
			Detail("pointer %d not owned by this heap", ptr).
			Build()
	}
	delete(h.live, ptr)
	h.release(span{off: ptr, size: size})
	return nil
}

// release inserts a span back into the free list, merging with adjacent
// free spans so fragmentation stays bounded.
func (h *Heap) release(s span) {
	i := sort.Search(len(h.free), func(i int) bool {
		return h.free[i].off > s.off
	})

	h.free = append(h.free, span{})
	copy(h.free[i+1:], h.free[i:])
	h.free[i] = s

	// Merge with successor first so the predecessor merge sees the
	// combined span.
	if i+1 < len(h.free) && h.free[i].off+h.free[i].size == h.free[i+1].off {
		h.free[i].size += h.free[i+1].size
		h.free = append(h.free[:i+1], h.free[i+2:]...)
	}
	if i > 0 && h.free[i-1].off+h.free[i-1].size == h.free[i].off {
		h.free[i-1].size += h.free[i].size
		h.free = append(h.free[:i], h.free[i+1:]...)
	}
}

// Used reports the number of bytes currently reserved.
func (h *Heap) Used() uint32 {
	var used uint32
	for _, size := range h.live {
		used += size
	}
	return used
}

// Available reports the largest single allocation that can currently
// succeed.
func (h *Heap) Available() uint32 {
	var max uint32
	for _, s := range h.free {
		if s.size > max {
			max = s.size
		}
	}
	return max
}

func alignUp(v uint32) uint32 {
	return (v + heapAlign - 1) &^ uint32(heapAlign-1)
}
