package engine

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/edgekit/impulse-runtime/errors"
)

// Memory adapts wazero linear memory to the root Memory interface.
// Out-of-range accesses return errors instead of panicking; the engine's
// memory faults must never take the host process down.
type Memory struct {
	mem api.Memory
}

// NewMemory wraps a wazero memory. Exposed for host-function handlers that
// receive the calling module rather than an Instance.
func NewMemory(mem api.Memory) *Memory {
	return &Memory{mem: mem}
}

// Read returns a copy of guest memory at [offset, offset+length).
// Copying keeps the caller decoupled from later guest-side writes.
func (m *Memory) Read(offset, length uint32) ([]byte, error) {
	view, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, errors.MemoryFault("read", offset, length)
	}
	out := make([]byte, len(view))
	copy(out, view)
	return out, nil
}

func (m *Memory) Write(offset uint32, data []byte) error {
	if !m.mem.Write(offset, data) {
		return errors.MemoryFault("write", offset, uint32(len(data)))
	}
	return nil
}

func (m *Memory) ReadU32(offset uint32) (uint32, error) {
	v, ok := m.mem.ReadUint32Le(offset)
	if !ok {
		return 0, errors.MemoryFault("read_u32", offset, 4)
	}
	return v, nil
}

func (m *Memory) ReadU64(offset uint32) (uint64, error) {
	v, ok := m.mem.ReadUint64Le(offset)
	if !ok {
		return 0, errors.MemoryFault("read_u64", offset, 8)
	}
	return v, nil
}

func (m *Memory) ReadF32(offset uint32) (float32, error) {
	v, ok := m.mem.ReadFloat32Le(offset)
	if !ok {
		return 0, errors.MemoryFault("read_f32", offset, 4)
	}
	return v, nil
}

func (m *Memory) WriteU32(offset, value uint32) error {
	if !m.mem.WriteUint32Le(offset, value) {
		return errors.MemoryFault("write_u32", offset, 4)
	}
	return nil
}

func (m *Memory) WriteU64(offset uint32, value uint64) error {
	if !m.mem.WriteUint64Le(offset, value) {
		return errors.MemoryFault("write_u64", offset, 8)
	}
	return nil
}

func (m *Memory) WriteF32(offset uint32, value float32) error {
	if !m.mem.WriteFloat32Le(offset, value) {
		return errors.MemoryFault("write_f32", offset, 4)
	}
	return nil
}

func (m *Memory) Size() uint32 {
	return m.mem.Size()
}
