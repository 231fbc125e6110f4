package legacy

import (
	"encoding/binary"
	"fmt"
)

// number is the set of element types a source array may be stored as.
type number interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64 | ~float32 | ~float64
}

// EncodedSize returns the byte length of an encoded field.
func EncodedSize(elements int, payload PayloadType, headerLen int) int {
	return headerLen + elements*payload.Size()
}

// Encode casts every element of values, a flat row-major numeric slice, to
// the payload type and prepends header verbatim. Integer narrowing wraps
// modulo the target width and floating point values truncate toward zero,
// matching a numpy astype. Multi-byte payloads are little-endian.
func Encode(values any, payload PayloadType, header []byte) ([]byte, error) {
	if payload.Size() == 0 {
		return nil, fmt.Errorf("encode: unknown payload type %s", payload)
	}
	switch v := values.(type) {
	case []uint8:
		return appendPayload(newBuffer(header, len(v), payload), v, payload), nil
	case []int8:
		return appendPayload(newBuffer(header, len(v), payload), v, payload), nil
	case []int16:
		return appendPayload(newBuffer(header, len(v), payload), v, payload), nil
	case []uint16:
		return appendPayload(newBuffer(header, len(v), payload), v, payload), nil
	case []int32:
		return appendPayload(newBuffer(header, len(v), payload), v, payload), nil
	case []uint32:
		return appendPayload(newBuffer(header, len(v), payload), v, payload), nil
	case []int64:
		return appendPayload(newBuffer(header, len(v), payload), v, payload), nil
	case []uint64:
		return appendPayload(newBuffer(header, len(v), payload), v, payload), nil
	case []float32:
		return appendPayload(newBuffer(header, len(v), payload), v, payload), nil
	case []float64:
		return appendPayload(newBuffer(header, len(v), payload), v, payload), nil
	case nil:
		return nil, fmt.Errorf("encode: no values")
	default:
		return nil, fmt.Errorf("encode: unsupported element storage %T", values)
	}
}

func newBuffer(header []byte, elements int, payload PayloadType) []byte {
	buf := make([]byte, len(header), EncodedSize(elements, payload, len(header)))
	copy(buf, header)
	return buf
}

func appendPayload[S number](dst []byte, src []S, payload PayloadType) []byte {
	switch payload {
	case Uint8:
		for _, x := range src {
			dst = append(dst, uint8(int64(x)))
		}
	case Int16:
		for _, x := range src {
			dst = binary.LittleEndian.AppendUint16(dst, uint16(int16(int64(x))))
		}
	case Uint16:
		for _, x := range src {
			dst = binary.LittleEndian.AppendUint16(dst, uint16(int64(x)))
		}
	}
	return dst
}
