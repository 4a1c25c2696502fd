package classifier

import (
	"encoding/binary"
	"math"

	"github.com/edgekit/impulse-runtime/errors"
	"github.com/edgekit/impulse-runtime/model"
)

// Result is an opaque snapshot of the engine's result record. Field
// offsets are dictated by the compiled model; nothing here reinterprets
// the record beyond the named accessors.
type Result struct {
	raw []byte
}

// Timing is the engine's own instrumentation of one invocation.
type Timing struct {
	SamplingMs       int32
	DSPMs            int32
	ClassificationMs int32
	AnomalyMs        int32
	DSPUs            int64
	ClassificationUs int64
	AnomalyUs        int64
}

// ExtractScores copies each label's score from r into the corresponding
// position of out, preserving the engine's native label ordering. out
// must hold exactly model.LabelCount values. On failure nothing is
// written.
func ExtractScores(r *Result, out []float32) error {
	if r == nil || len(r.raw) < model.ResultSize {
		return errors.NilPointer("extract", "result")
	}
	if out == nil {
		return errors.NilPointer("extract", "out_scores")
	}
	if len(out) != model.LabelCount {
		return errors.LengthMismatch("extract", len(out), model.LabelCount)
	}

	for i := 0; i < model.LabelCount; i++ {
		out[i] = r.f32At(model.ScoreOffset(i))
	}
	return nil
}

// ExtractScores is the method form of the package-level helper.
func (r *Result) ExtractScores(out []float32) error {
	return ExtractScores(r, out)
}

// Anomaly returns the engine's anomaly score for this invocation.
func (r *Result) Anomaly() float32 {
	return r.f32At(model.OffAnomaly)
}

// Timing returns the engine's timing instrumentation.
func (r *Result) Timing() Timing {
	return Timing{
		SamplingMs:       int32(r.u32At(model.OffTimingSampling)),
		DSPMs:            int32(r.u32At(model.OffTimingDSP)),
		ClassificationMs: int32(r.u32At(model.OffTimingClass)),
		AnomalyMs:        int32(r.u32At(model.OffTimingAnomaly)),
		DSPUs:            int64(r.u64At(model.OffTimingDSPUs)),
		ClassificationUs: int64(r.u64At(model.OffTimingClassUs)),
		AnomalyUs:        int64(r.u64At(model.OffTimingAnomalyUs)),
	}
}

// Top returns the index and score of the highest ranked label.
func (r *Result) Top() (int, float32) {
	best := 0
	bestScore := r.f32At(model.ScoreOffset(0))
	for i := 1; i < model.LabelCount; i++ {
		if s := r.f32At(model.ScoreOffset(i)); s > bestScore {
			best, bestScore = i, s
		}
	}
	return best, bestScore
}

// Decision applies the model's confidence threshold to the top label.
// ok is false when the best score does not clear the threshold.
func (r *Result) Decision() (label string, score float32, ok bool) {
	i, s := r.Top()
	return model.Labels[i], s, s >= model.ConfidenceThreshold
}

func (r *Result) f32At(off uint32) float32 {
	if int(off)+4 > len(r.raw) {
		return 0
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(r.raw[off:]))
}

func (r *Result) u32At(off uint32) uint32 {
	if int(off)+4 > len(r.raw) {
		return 0
	}
	return binary.LittleEndian.Uint32(r.raw[off:])
}

func (r *Result) u64At(off uint32) uint64 {
	if int(off)+8 > len(r.raw) {
		return 0
	}
	return binary.LittleEndian.Uint64(r.raw[off:])
}
