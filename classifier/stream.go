package classifier

import (
	"context"
	"encoding/binary"
	"math"

	"github.com/smallnest/ringbuffer"

	"github.com/edgekit/impulse-runtime/errors"
	"github.com/edgekit/impulse-runtime/model"
)

const sampleBytes = 4

// frameBytes is one full model window in buffered form.
const frameBytes = model.InputFrameSize * sampleBytes

// Streamer drives continuous-mode classification: it accumulates raw
// 3-axis readings into full model windows and classifies each completed
// window. Windows do not overlap; after an inference the accumulation
// starts over, matching the sensor task this feeds.
//
// The ring buffer decouples the sampling cadence from inference latency:
// a few windows of headroom absorb inference running longer than one
// sample interval. Like the Classifier it wraps, a Streamer belongs to a
// single goroutine.
type Streamer struct {
	clf      *Classifier
	ring     *ringbuffer.RingBuffer
	onResult func(*Result)
	frame    []float32
	scratch  []byte
}

// NewStreamer wraps clf for continuous use. onResult receives every
// completed classification.
func NewStreamer(clf *Classifier, onResult func(*Result)) (*Streamer, error) {
	if clf == nil {
		return nil, errors.NilPointer("stream", "classifier")
	}
	if onResult == nil {
		return nil, errors.NilPointer("stream", "result callback")
	}
	return &Streamer{
		clf:      clf,
		ring:     ringbuffer.New(4 * frameBytes),
		onResult: onResult,
		frame:    make([]float32, model.InputFrameSize),
		scratch:  make([]byte, frameBytes),
	}, nil
}

// Push appends one 3-axis reading. When a full window has accumulated it
// runs inference synchronously and hands the result to the callback.
func (s *Streamer) Push(ctx context.Context, ax, ay, az float32) error {
	var b [model.RawAxisCount * sampleBytes]byte
	binary.LittleEndian.PutUint32(b[0:], math.Float32bits(ax))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(ay))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(az))

	if _, err := s.ring.Write(b[:]); err != nil {
		return errors.Wrap(errors.PhaseBind, errors.KindInvalidInput, err, "sample stream overrun")
	}

	if s.ring.Length() < frameBytes {
		return nil
	}

	if _, err := s.ring.Read(s.scratch); err != nil {
		return errors.Wrap(errors.PhaseBind, errors.KindInvalidInput, err, "drain sample window")
	}
	for i := range s.frame {
		s.frame[i] = math.Float32frombits(binary.LittleEndian.Uint32(s.scratch[i*sampleBytes:]))
	}

	// Continuous use requires the one-time engine init.
	if err := s.clf.Init(ctx); err != nil {
		return err
	}

	res, err := s.clf.Classify(ctx, s.frame, false)
	if err != nil {
		return err
	}
	s.onResult(res)
	return nil
}

// Pending reports how many buffered samples are waiting for a full
// window.
func (s *Streamer) Pending() int {
	return s.ring.Length() / sampleBytes
}
