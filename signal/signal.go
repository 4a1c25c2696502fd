package signal

// Signal describes one input to classify: a declared total length in
// scalar samples and a data-access capability. The capability writes
// length samples starting at offset into out; it is never handed a window
// extending past TotalLength. Signals are constructed immediately before
// an invocation and discarded right after, never persisted.
type Signal struct {
	TotalLength int
	Read        func(offset, length int, out []float32) error
}

// FromBuffer builds a Signal over a flat sample slice. The caller
// guarantees buf stays valid and unmodified for the duration of the
// invocation.
func FromBuffer(buf []float32) Signal {
	return Signal{
		TotalLength: len(buf),
		Read: func(offset, length int, out []float32) error {
			copy(out[:length], buf[offset:offset+length])
			return nil
		},
	}
}
