package porting

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	impulseruntime "github.com/edgekit/impulse-runtime"
	"github.com/edgekit/impulse-runtime/errors"
)

// Diagnostic rendering caps, matching the fixed 256-byte message buffer of
// the reference port: at most 255 bytes per rendered message, cut on a
// rune boundary, and no unbounded guest string walks.
const (
	maxDiagnosticLen = 255
	maxCStringLen    = 256
)

// readCString reads a NUL-terminated string from guest memory, walking at
// most maxCStringLen bytes. A string that hits the cap or the end of
// memory before its terminator is returned truncated.
func readCString(mem impulseruntime.Memory, ptr uint32) (string, error) {
	if ptr == 0 {
		return "", errors.NilPointer("printf", "string pointer")
	}

	var buf []byte
	off := ptr
	for len(buf) < maxCStringLen {
		chunk := uint32(64)
		if off >= mem.Size() {
			break
		}
		if rest := mem.Size() - off; chunk > rest {
			chunk = rest
		}
		if chunk == 0 {
			break
		}
		b, err := mem.Read(off, chunk)
		if err != nil {
			return "", err
		}
		if i := bytes.IndexByte(b, 0); i >= 0 {
			return string(append(buf, b[:i]...)), nil
		}
		buf = append(buf, b...)
		off += chunk
	}
	if len(buf) > maxCStringLen {
		buf = buf[:maxCStringLen]
	}
	return string(buf), nil
}

// vaReader walks the engine's variadic argument block: a packed slot array
// in guest memory where 32-bit values occupy 4-byte aligned slots and
// 64-bit values occupy 8-byte aligned slots.
type vaReader struct {
	mem impulseruntime.Memory
	pos uint32
}

func (r *vaReader) u32() (uint32, error) {
	r.pos = alignTo(r.pos, 4)
	v, err := r.mem.ReadU32(r.pos)
	if err != nil {
		return 0, err
	}
	r.pos += 4
	return v, nil
}

func (r *vaReader) u64() (uint64, error) {
	r.pos = alignTo(r.pos, 8)
	v, err := r.mem.ReadU64(r.pos)
	if err != nil {
		return 0, err
	}
	r.pos += 8
	return v, nil
}

func (r *vaReader) f64() (float64, error) {
	v, err := r.u64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// formatGuest renders the engine's printf-style diagnostic message from a
// guest format string and variadic argument block. Supported verbs cover
// what the engine actually emits: %d %i %u %x %X %c %s %p and the float
// family (floats are promoted to f64 slots by the C ABI). The rendered
// message is truncated beyond maxDiagnosticLen bytes, on a rune boundary.
func formatGuest(mem impulseruntime.Memory, fmtPtr, argsPtr uint32) (string, error) {
	format, err := readCString(mem, fmtPtr)
	if err != nil {
		return "", err
	}

	va := &vaReader{mem: mem, pos: argsPtr}
	var b strings.Builder

	for i := 0; i < len(format) && b.Len() < maxDiagnosticLen; i++ {
		c := format[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}

		// Collect flags, width and precision verbatim for Go's fmt.
		spec := []byte{'%'}
		j := i + 1
		for j < len(format) && strings.IndexByte("-+ #0123456789.", format[j]) >= 0 {
			spec = append(spec, format[j])
			j++
		}

		// Length modifiers: on wasm32 a single 'l' is still 32 bits,
		// 'll' promotes to a 64-bit slot.
		longs := 0
		for j < len(format) && strings.IndexByte("lhzj", format[j]) >= 0 {
			if format[j] == 'l' {
				longs++
			}
			j++
		}
		if j >= len(format) {
			b.WriteByte('%')
			break
		}

		verb := format[j]
		i = j

		switch verb {
		case '%':
			b.WriteByte('%')
		case 'd', 'i':
			if longs >= 2 {
				v, err := va.u64()
				if err != nil {
					return "", err
				}
				fmt.Fprintf(&b, string(append(spec, 'd')), int64(v))
			} else {
				v, err := va.u32()
				if err != nil {
					return "", err
				}
				fmt.Fprintf(&b, string(append(spec, 'd')), int32(v))
			}
		case 'u':
			if longs >= 2 {
				v, err := va.u64()
				if err != nil {
					return "", err
				}
				fmt.Fprintf(&b, string(append(spec, 'd')), v)
			} else {
				v, err := va.u32()
				if err != nil {
					return "", err
				}
				fmt.Fprintf(&b, string(append(spec, 'd')), v)
			}
		case 'x', 'X':
			v, err := va.u32()
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, string(append(spec, verb)), v)
		case 'c':
			v, err := va.u32()
			if err != nil {
				return "", err
			}
			b.WriteByte(byte(v))
		case 's':
			p, err := va.u32()
			if err != nil {
				return "", err
			}
			s := "(null)"
			if p != 0 {
				s, err = readCString(mem, p)
				if err != nil {
					return "", err
				}
			}
			fmt.Fprintf(&b, string(append(spec, 's')), s)
		case 'f', 'F', 'e', 'E', 'g', 'G':
			v, err := va.f64()
			if err != nil {
				return "", err
			}
			goVerb := verb
			if goVerb == 'F' {
				goVerb = 'f'
			}
			fmt.Fprintf(&b, string(append(spec, goVerb)), v)
		case 'p':
			v, err := va.u32()
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "0x%x", v)
		default:
			// Unknown verb: emit it literally rather than guessing at
			// its argument width.
			b.WriteByte('%')
			b.WriteByte(verb)
		}
	}

	out := b.String()
	if len(out) > maxDiagnosticLen {
		// Back off to a rune boundary so a multi-byte sequence from a
		// %s argument is never split mid-rune.
		cut := maxDiagnosticLen
		for cut > 0 && !utf8.RuneStart(out[cut]) {
			cut--
		}
		out = out[:cut]
	}
	return out, nil
}

func alignTo(v, align uint32) uint32 {
	return (v + align - 1) &^ (align - 1)
}
