package model

// Result record layout, wasm32 ABI.
//
// The engine writes its result into a fixed-layout record whose field
// offsets are dictated by the engine build this runtime targets: label
// scores allocated statically, no object detection, no visual anomaly
// block, no heart-rate block. The record is never reinterpreted beyond
// the named fields below.
//
//	offset  size  field
//	     0     4  bounding boxes pointer (unused in this build)
//	     4     4  bounding boxes count
//	     8    32  classification[4]: {label pointer u32, value f32}
//	    40     4  anomaly f32
//	    44     4  padding (timing block is 8-aligned)
//	    48    40  timing: 4 x i32, then 3 x i64
//	    88     4  raw outputs pointer (unused in this build)
//	    92     4  trailing padding
const (
	ResultSize = 96

	OffBoundingBoxes      = 0
	OffBoundingBoxesCount = 4

	OffClassification   = 8
	ClassificationSize  = 8 // {label ptr u32, value f32}
	OffClassValue       = 4 // value within one classification entry
	OffAnomaly          = 40
	OffTimingSampling   = 48
	OffTimingDSP        = 52
	OffTimingClass      = 56
	OffTimingAnomaly    = 60
	OffTimingDSPUs      = 64
	OffTimingClassUs    = 72
	OffTimingAnomalyUs  = 80
	OffRawOutputs       = 88
)

// ScoreOffset returns the byte offset of label i's score within the
// result record.
func ScoreOffset(i int) uint32 {
	return OffClassification + uint32(i)*ClassificationSize + OffClassValue
}

// LabelPtrOffset returns the byte offset of label i's name pointer within
// the result record. The pointer targets a NUL-terminated string in guest
// memory owned by the engine.
func LabelPtrOffset(i int) uint32 {
	return OffClassification + uint32(i)*ClassificationSize
}
