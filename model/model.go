// Package model carries the build-time constants of the compiled model.
//
// These are properties of the engine binary, not runtime parameters:
// callers size their buffers to exactly these constants, with no dynamic
// negotiation across the boundary.
package model

// Input framing. The model consumes a 2-second window of 3-axis
// accelerometer readings sampled at 62.5 Hz.
const (
	RawAxisCount   = 3
	RawSampleCount = 125

	// InputFrameSize is the exact number of scalar samples the engine
	// expects per classification.
	InputFrameSize = RawAxisCount * RawSampleCount

	// SampleIntervalMs is the nominal spacing between raw samples.
	SampleIntervalMs = 16
)

// Classification output.
const (
	LabelCount          = 4
	ConfidenceThreshold = 0.7
)

// Labels in the engine's native output order. Score extraction preserves
// this ordering.
var Labels = [LabelCount]string{"idle", "snake", "updown", "wave"}
