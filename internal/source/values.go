package source

import (
	"fmt"
	"math"
)

// StringAttribute returns a textual attribute value.
func StringAttribute(ns Namespace, name string) (string, bool) {
	v, ok := ns.Attribute(name)
	if !ok {
		return "", false
	}
	return AsString(v)
}

// AsString converts character attribute storage to a string.
func AsString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []string:
		if len(s) == 0 {
			return "", false
		}
		return s[0], true
	case []byte:
		return string(s), true
	default:
		return "", false
	}
}

// AsBytes converts byte-like attribute storage to a fresh byte slice.
func AsBytes(v any) ([]byte, error) {
	switch b := v.(type) {
	case []uint8:
		out := make([]byte, len(b))
		copy(out, b)
		return out, nil
	case []int8:
		out := make([]byte, len(b))
		for i, x := range b {
			out[i] = byte(x)
		}
		return out, nil
	case string:
		return []byte(b), nil
	case uint8:
		return []byte{b}, nil
	case int8:
		return []byte{byte(b)}, nil
	default:
		return nil, fmt.Errorf("attribute storage %T is not byte-like", v)
	}
}

// AsFloat64 converts a numeric scalar or single-element attribute to float64.
func AsFloat64(v any) (float64, bool) {
	var (
		out float64
		ok  bool
	)
	eachFloat(v, func(f float64) {
		if !ok {
			out, ok = f, true
		}
	})
	if ok {
		return out, true
	}
	switch x := v.(type) {
	case int8:
		return float64(x), true
	case uint8:
		return float64(x), true
	case int16:
		return float64(x), true
	case uint16:
		return float64(x), true
	case int32:
		return float64(x), true
	case uint32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}

// Unpack applies the CF packing attributes to a raw array and returns float64
// values. Elements equal to fill become NaN.
func Unpack(raw Array, attrs map[string]any) Array {
	scale, offset := 1.0, 0.0
	if v, ok := AsFloat64(attrs["scale_factor"]); ok {
		scale = v
	}
	if v, ok := AsFloat64(attrs["add_offset"]); ok {
		offset = v
	}
	fill, hasFill := AsFloat64(attrs["_FillValue"])

	out := make([]float64, 0, raw.Len())
	eachFloat(raw.Data, func(v float64) {
		if hasFill && v == fill {
			out = append(out, math.NaN())
			return
		}
		out = append(out, v*scale+offset)
	})
	shape := append([]int(nil), raw.Shape...)
	return Array{Shape: shape, Data: out}
}

func eachFloat(data any, fn func(float64)) {
	switch v := data.(type) {
	case []uint8:
		for _, x := range v {
			fn(float64(x))
		}
	case []int8:
		for _, x := range v {
			fn(float64(x))
		}
	case []int16:
		for _, x := range v {
			fn(float64(x))
		}
	case []uint16:
		for _, x := range v {
			fn(float64(x))
		}
	case []int32:
		for _, x := range v {
			fn(float64(x))
		}
	case []uint32:
		for _, x := range v {
			fn(float64(x))
		}
	case []int64:
		for _, x := range v {
			fn(float64(x))
		}
	case []uint64:
		for _, x := range v {
			fn(float64(x))
		}
	case []float32:
		for _, x := range v {
			fn(float64(x))
		}
	case []float64:
		for _, x := range v {
			fn(x)
		}
	}
}
