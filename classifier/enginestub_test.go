package classifier

// Hand-assembled wasm engine stubs for the integration tests. The stub
// imports the platform hooks, pulls the signal through the bridge in two
// windows, and writes a fixed-layout result record derived from the
// input samples, so any cross-invocation contamination is observable in
// the scores.

const (
	tI32 = 0x7F
	tI64 = 0x7E

	// Guest layout of the stub: two scratch regions for pulled samples,
	// a diagnostic string in the data segment, and the heap window the
	// exported __heap_base global points at.
	stubScratchA     = 4096
	stubScratchB     = 8192
	stubMsgOff       = 16
	stubHeapBase     = 65536
	stubMemPages     = 2
	stubDebugMsg     = "scores ready"
	stubFailCode     = -9
	stubAllocFail    = -5
	stubTotalMissing = -7
)

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func uleb128(v uint64) []byte {
	var b []byte
	for {
		c := byte(v & 0x7F)
		v >>= 7
		if v == 0 {
			return append(b, c)
		}
		b = append(b, c|0x80)
	}
}

func sleb128(v int64) []byte {
	var b []byte
	for {
		c := byte(v & 0x7F)
		v >>= 7
		if (v == 0 && c&0x40 == 0) || (v == -1 && c&0x40 != 0) {
			return append(b, c)
		}
		b = append(b, c|0x80)
	}
}

func wasmSection(id byte, payload []byte) []byte {
	return cat([]byte{id}, uleb128(uint64(len(payload))), payload)
}

func wasmVec(n int, payload []byte) []byte {
	return cat(uleb128(uint64(n)), payload)
}

func wasmName(s string) []byte {
	return cat(uleb128(uint64(len(s))), []byte(s))
}

func wasmFuncType(params, results []byte) []byte {
	return cat([]byte{0x60}, wasmVec(len(params), params), wasmVec(len(results), results))
}

func wasmImportFunc(field string, typeIdx uint64) []byte {
	return cat(wasmName("env"), wasmName(field), []byte{0x00}, uleb128(typeIdx))
}

func wasmCodeEntry(locals, instrs []byte) []byte {
	body := cat(locals, instrs, []byte{0x0B})
	return cat(uleb128(uint64(len(body))), body)
}

// Instruction emitters.
func opLocalGet(i uint64) []byte { return cat([]byte{0x20}, uleb128(i)) }
func opLocalSet(i uint64) []byte { return cat([]byte{0x21}, uleb128(i)) }
func opI32Const(v int64) []byte  { return cat([]byte{0x41}, sleb128(v)) }
func opI64Const(v int64) []byte  { return cat([]byte{0x42}, sleb128(v)) }
func opCall(i uint64) []byte     { return cat([]byte{0x10}, uleb128(i)) }
func opF32Load(off uint64) []byte  { return cat([]byte{0x2A, 0x02}, uleb128(off)) }
func opF32Store(off uint64) []byte { return cat([]byte{0x38, 0x02}, uleb128(off)) }
func opI32Store(off uint64) []byte { return cat([]byte{0x36, 0x02}, uleb128(off)) }
func opI64Store(off uint64) []byte { return cat([]byte{0x37, 0x03}, uleb128(off)) }

var (
	opIfEmpty = []byte{0x04, 0x40}
	opEnd     = []byte{0x0B}
	opReturn  = []byte{0x0F}
	opDrop    = []byte{0x1A}
	opI32Eqz  = []byte{0x45}
	opI32Ne   = []byte{0x47}
	opI32Sub  = []byte{0x6B}
)

// Imported function indices in the stub's import order.
const (
	fnSignalRead = iota
	fnSignalTotalLength
	fnReadTimerMs
	fnCheckCanceled
	fnMalloc
	fnFree
	fnPrintf

	fnRunClassifier
	fnRunClassifierInit
)

// stubRunClassifierBody implements run_classifier(total_len, result_ptr,
// debug) -> status. Scores are the first four input samples; the anomaly
// field is the last sample, pulled through a second disjoint window that
// ends exactly at the declared total.
func stubRunClassifierBody() []byte {
	locals := wasmVec(1, cat(uleb128(2), []byte{tI32})) // 3: status, 4: ptr

	returnIfNonzero := func(local uint64) []byte {
		return cat(opLocalGet(local), opIfEmpty, opLocalGet(local), opReturn, opEnd)
	}

	instrs := cat(
		// The bridge's declared total must agree with the length the
		// host passed in.
		opCall(fnSignalTotalLength),
		opLocalGet(0),
		opI32Ne,
		opIfEmpty,
		opI32Const(stubTotalMissing),
		opReturn,
		opEnd,

		// status = ei_signal_read(0, total_len, scratchA)
		opI32Const(0),
		opLocalGet(0),
		opI32Const(stubScratchA),
		opCall(fnSignalRead),
		opLocalSet(3),
		returnIfNonzero(3),

		// status = ei_signal_read(total_len-3, 3, scratchB)
		opLocalGet(0),
		opI32Const(3),
		opI32Sub,
		opI32Const(3),
		opI32Const(stubScratchB),
		opCall(fnSignalRead),
		opLocalSet(3),
		returnIfNonzero(3),

		// Platform hook round trip: read the timer, poll cancellation.
		opCall(fnReadTimerMs),
		opDrop,
		opCall(fnCheckCanceled),
		opIfEmpty,
		opI32Const(-2),
		opReturn,
		opEnd,

		// Working allocation from the host heap.
		opI32Const(1024),
		opCall(fnMalloc),
		opLocalSet(4),
		opLocalGet(4),
		opI32Eqz,
		opIfEmpty,
		opI32Const(stubAllocFail),
		opReturn,
		opEnd,
		opLocalGet(4),
		opCall(fnFree),

		// debug: emit a diagnostic through ei_printf.
		opLocalGet(2),
		opIfEmpty,
		opI32Const(stubMsgOff),
		opI32Const(0),
		opCall(fnPrintf),
		opEnd,

		// result.classification[i].value = sample[i]
		opLocalGet(1), opI32Const(stubScratchA), opF32Load(0), opF32Store(12),
		opLocalGet(1), opI32Const(stubScratchA), opF32Load(4), opF32Store(20),
		opLocalGet(1), opI32Const(stubScratchA), opF32Load(8), opF32Store(28),
		opLocalGet(1), opI32Const(stubScratchA), opF32Load(12), opF32Store(36),

		// result.anomaly = last sample of the second window
		opLocalGet(1), opI32Const(stubScratchB), opF32Load(8), opF32Store(40),

		// Timing instrumentation the host can assert on.
		opLocalGet(1), opI32Const(3), opI32Store(52),
		opLocalGet(1), opI32Const(5), opI32Store(56),
		opLocalGet(1), opI64Const(3000), opI64Store(64),
		opLocalGet(1), opI64Const(5000), opI64Store(72),

		opI32Const(0),
	)

	return wasmCodeEntry(locals, instrs)
}

// buildStubEngine assembles a complete core module that behaves like a
// well-formed engine build.
func buildStubEngine() []byte {
	types := wasmVec(7, cat(
		wasmFuncType([]byte{tI32, tI32, tI32}, []byte{tI32}), // 0: signal_read, run_classifier
		wasmFuncType(nil, []byte{tI64}),                      // 1: timer
		wasmFuncType(nil, []byte{tI32}),                      // 2: cancel poll
		wasmFuncType([]byte{tI32}, []byte{tI32}),             // 3: malloc
		wasmFuncType([]byte{tI32}, nil),                      // 4: free
		wasmFuncType([]byte{tI32, tI32}, nil),                // 5: printf
		wasmFuncType(nil, nil),                               // 6: init
	))

	imports := wasmVec(7, cat(
		wasmImportFunc("ei_signal_read", 0),
		wasmImportFunc("ei_signal_total_length", 2),
		wasmImportFunc("ei_read_timer_ms", 1),
		wasmImportFunc("ei_run_impulse_check_canceled", 2),
		wasmImportFunc("ei_malloc", 3),
		wasmImportFunc("ei_free", 4),
		wasmImportFunc("ei_printf", 5),
	))

	funcs := wasmVec(2, cat(uleb128(0), uleb128(6)))

	mems := wasmVec(1, cat([]byte{0x00}, uleb128(stubMemPages)))

	globals := wasmVec(1, cat(
		[]byte{tI32, 0x00, 0x41}, sleb128(stubHeapBase), opEnd,
	))

	exports := wasmVec(4, cat(
		wasmName("memory"), []byte{0x02}, uleb128(0),
		wasmName("__heap_base"), []byte{0x03}, uleb128(0),
		wasmName("run_classifier"), []byte{0x00}, uleb128(fnRunClassifier),
		wasmName("run_classifier_init"), []byte{0x00}, uleb128(fnRunClassifierInit),
	))

	code := wasmVec(2, cat(
		stubRunClassifierBody(),
		wasmCodeEntry(wasmVec(0, nil), nil), // init: empty body
	))

	msg := append([]byte(stubDebugMsg), 0)
	data := wasmVec(1, cat(
		[]byte{0x00, 0x41}, sleb128(stubMsgOff), opEnd,
		wasmVec(len(msg), msg),
	))

	return cat(
		[]byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00},
		wasmSection(1, types),
		wasmSection(2, imports),
		wasmSection(3, funcs),
		wasmSection(5, mems),
		wasmSection(6, globals),
		wasmSection(7, exports),
		wasmSection(10, code),
		wasmSection(11, data),
	)
}

// buildFailingEngine assembles a stub whose entry point always reports
// an internal failure without touching the signal.
func buildFailingEngine() []byte {
	types := wasmVec(2, cat(
		wasmFuncType([]byte{tI32, tI32, tI32}, []byte{tI32}),
		wasmFuncType(nil, nil),
	))

	funcs := wasmVec(2, cat(uleb128(0), uleb128(1)))
	mems := wasmVec(1, cat([]byte{0x00}, uleb128(1)))
	globals := wasmVec(1, cat([]byte{tI32, 0x00, 0x41}, sleb128(32768), opEnd))

	exports := wasmVec(4, cat(
		wasmName("memory"), []byte{0x02}, uleb128(0),
		wasmName("__heap_base"), []byte{0x03}, uleb128(0),
		wasmName("run_classifier"), []byte{0x00}, uleb128(0),
		wasmName("run_classifier_init"), []byte{0x00}, uleb128(1),
	))

	code := wasmVec(2, cat(
		wasmCodeEntry(wasmVec(0, nil), opI32Const(stubFailCode)),
		wasmCodeEntry(wasmVec(0, nil), nil),
	))

	return cat(
		[]byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00},
		wasmSection(1, types),
		wasmSection(3, funcs),
		wasmSection(5, mems),
		wasmSection(6, globals),
		wasmSection(7, exports),
		wasmSection(10, code),
	)
}

// buildBareModule assembles a module exporting memory but no entry point.
func buildBareModule() []byte {
	types := wasmVec(0, nil)
	mems := wasmVec(1, cat([]byte{0x00}, uleb128(1)))
	exports := wasmVec(1, cat(wasmName("memory"), []byte{0x02}, uleb128(0)))

	return cat(
		[]byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00},
		wasmSection(1, types),
		wasmSection(5, mems),
		wasmSection(7, exports),
	)
}
