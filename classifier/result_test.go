package classifier

import (
	"encoding/binary"
	stderrors "errors"
	"math"
	"testing"

	"github.com/edgekit/impulse-runtime/errors"
	"github.com/edgekit/impulse-runtime/model"
)

// syntheticResult builds a raw result record with the given label scores.
func syntheticResult(scores [model.LabelCount]float32, anomaly float32) *Result {
	raw := make([]byte, model.ResultSize)
	for i, s := range scores {
		binary.LittleEndian.PutUint32(raw[model.ScoreOffset(i):], math.Float32bits(s))
	}
	binary.LittleEndian.PutUint32(raw[model.OffAnomaly:], math.Float32bits(anomaly))
	binary.LittleEndian.PutUint32(raw[model.OffTimingDSP:], uint32(7))
	binary.LittleEndian.PutUint32(raw[model.OffTimingClass:], uint32(11))
	binary.LittleEndian.PutUint64(raw[model.OffTimingDSPUs:], uint64(7400))
	binary.LittleEndian.PutUint64(raw[model.OffTimingClassUs:], uint64(11200))
	return &Result{raw: raw}
}

func TestExtractScores(t *testing.T) {
	want := [model.LabelCount]float32{0.05, 0.85, 0.07, 0.03}
	r := syntheticResult(want, 0.2)

	out := make([]float32, model.LabelCount)
	if err := ExtractScores(r, out); err != nil {
		t.Fatalf("ExtractScores error: %v", err)
	}
	for i, s := range out {
		if s != want[i] {
			t.Errorf("score[%d] = %v, want %v (ordering not preserved)", i, s, want[i])
		}
		if math.IsNaN(float64(s)) || math.IsInf(float64(s), 0) {
			t.Errorf("score[%d] = %v, want finite", i, s)
		}
	}

	// Method form reads the same record.
	out2 := make([]float32, model.LabelCount)
	if err := r.ExtractScores(out2); err != nil {
		t.Fatalf("method ExtractScores error: %v", err)
	}
	if out2[1] != want[1] {
		t.Errorf("method form score[1] = %v, want %v", out2[1], want[1])
	}
}

func TestExtractScores_Validation(t *testing.T) {
	r := syntheticResult([model.LabelCount]float32{}, 0)

	var e *errors.Error
	if err := ExtractScores(nil, make([]float32, model.LabelCount)); err == nil {
		t.Error("nil result accepted")
	} else if !stderrors.As(err, &e) || e.Kind != errors.KindNilPointer {
		t.Errorf("nil result error = %v, want nil_pointer", err)
	}

	if err := ExtractScores(r, nil); err == nil {
		t.Error("nil destination accepted")
	}
	if err := ExtractScores(r, make([]float32, model.LabelCount-1)); err == nil {
		t.Error("short destination accepted")
	} else if !stderrors.As(err, &e) || e.Kind != errors.KindLengthMismatch {
		t.Errorf("short destination error = %v, want length_mismatch", err)
	}
	if err := ExtractScores(r, make([]float32, model.LabelCount+1)); err == nil {
		t.Error("oversized destination accepted")
	}
	if err := ExtractScores(&Result{}, make([]float32, model.LabelCount)); err == nil {
		t.Error("empty result record accepted")
	}

	// A failed extraction writes nothing.
	out := []float32{9, 9, 9}
	_ = ExtractScores(r, out)
	for i, v := range out {
		if v != 9 {
			t.Errorf("failed extraction mutated out[%d] = %v", i, v)
		}
	}
}

func TestResult_TopAndDecision(t *testing.T) {
	r := syntheticResult([model.LabelCount]float32{0.1, 0.05, 0.8, 0.05}, 0)
	if i, s := r.Top(); i != 2 || s != 0.8 {
		t.Errorf("Top = %d, %v, want 2, 0.8", i, s)
	}
	label, score, ok := r.Decision()
	if !ok || label != model.Labels[2] || score != 0.8 {
		t.Errorf("Decision = %q, %v, %v, want %q, 0.8, true", label, score, ok, model.Labels[2])
	}

	// Below the confidence threshold the decision is rejected but the
	// top label is still reported.
	low := syntheticResult([model.LabelCount]float32{0.3, 0.25, 0.25, 0.2}, 0)
	label, score, ok = low.Decision()
	if ok {
		t.Errorf("Decision below threshold accepted: %q at %v", label, score)
	}
	if label != model.Labels[0] {
		t.Errorf("Decision label = %q, want %q", label, model.Labels[0])
	}
}

func TestResult_AnomalyAndTiming(t *testing.T) {
	r := syntheticResult([model.LabelCount]float32{}, 0.42)
	if got := r.Anomaly(); got != 0.42 {
		t.Errorf("Anomaly = %v, want 0.42", got)
	}

	tm := r.Timing()
	if tm.DSPMs != 7 || tm.ClassificationMs != 11 {
		t.Errorf("Timing ms = %d/%d, want 7/11", tm.DSPMs, tm.ClassificationMs)
	}
	if tm.DSPUs != 7400 || tm.ClassificationUs != 11200 {
		t.Errorf("Timing us = %d/%d, want 7400/11200", tm.DSPUs, tm.ClassificationUs)
	}
}
