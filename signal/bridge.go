package signal

import (
	gocontext "context"
	"encoding/binary"
	stderrors "errors"
	"math"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/edgekit/impulse-runtime/engine"
	"github.com/edgekit/impulse-runtime/errors"
	"github.com/edgekit/impulse-runtime/porting"
)

// Status codes the read callback returns to the engine. Zero-byte success
// is 0 with nothing written; every failure is a distinct negative value.
const (
	ReadOK         int32 = 0
	ReadUnbound    int32 = -1
	ReadOutOfRange int32 = -2
	ReadFault      int32 = -3
)

// Register contributes the signal bridge functions to the env host module
// under construction. The platform hook layer must already be populated
// on env; the bridge assumes an initialized platform underneath it.
func Register(env *porting.EnvBuilder) *porting.EnvBuilder {
	i32 := []api.ValueType{api.ValueTypeI32}
	i32x3 := []api.ValueType{api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32}

	env.Export("ei_signal_read", signalRead, i32x3, i32)
	env.Export("ei_signal_total_length", signalTotalLength, nil, i32)
	return env
}

// signalRead serves one pull request from the engine: copy length samples
// starting at offset into guest memory at outPtr, as little-endian f32.
func signalRead(ctx gocontext.Context, mod api.Module, stack []uint64) {
	offset := api.DecodeI32(stack[0])
	length := api.DecodeI32(stack[1])
	outPtr := uint32(stack[2])

	sctx, ok := fromContext(ctx)
	if !ok {
		stack[0] = api.EncodeI32(ReadUnbound)
		return
	}
	total, bound := sctx.TotalLength()
	if !bound {
		stack[0] = api.EncodeI32(ReadUnbound)
		return
	}

	// The window is engine-controlled input. A rejected read must cost
	// nothing, so validate it before sizing the sample buffer.
	if offset < 0 || length < 0 || int64(offset)+int64(length) > int64(total) {
		engine.Logger().Debug("signal read rejected",
			zap.Int32("offset", offset), zap.Int32("length", length), zap.Int("total", total))
		stack[0] = api.EncodeI32(ReadOutOfRange)
		return
	}

	samples := make([]float32, length)
	if err := sctx.Read(int(offset), int(length), samples); err != nil {
		engine.Logger().Debug("signal read rejected", zap.Error(err))
		stack[0] = api.EncodeI32(readStatus(err))
		return
	}

	buf := make([]byte, 4*len(samples))
	for i, f := range samples {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}

	mem := engine.NewMemory(mod.Memory())
	if err := mem.Write(outPtr, buf); err != nil {
		stack[0] = api.EncodeI32(ReadFault)
		return
	}
	stack[0] = api.EncodeI32(ReadOK)
}

// signalTotalLength reports the declared length of the active signal,
// or -1 when no context is bound.
func signalTotalLength(ctx gocontext.Context, _ api.Module, stack []uint64) {
	sctx, ok := fromContext(ctx)
	if !ok {
		stack[0] = api.EncodeI32(-1)
		return
	}
	total, bound := sctx.TotalLength()
	if !bound {
		stack[0] = api.EncodeI32(-1)
		return
	}
	stack[0] = api.EncodeI32(int32(total))
}

func readStatus(err error) int32 {
	var e *errors.Error
	if !stderrors.As(err, &e) {
		return ReadFault
	}
	switch e.Kind {
	case errors.KindUnboundContext:
		return ReadUnbound
	case errors.KindOutOfBounds, errors.KindLengthMismatch:
		return ReadOutOfRange
	default:
		return ReadFault
	}
}
