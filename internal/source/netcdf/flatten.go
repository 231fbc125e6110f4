package netcdf

import (
	"fmt"
	"reflect"

	"nc2bin/internal/source"
)

// Flatten converts the library's nested slice values (for example [][]uint8
// for a 2-D ubyte variable) into a row-major source.Array.
func Flatten(values any) (source.Array, error) {
	rv := reflect.ValueOf(values)
	if !rv.IsValid() {
		return source.Array{}, fmt.Errorf("variable has no values")
	}

	leaf := rv.Type()
	depth := 0
	for leaf.Kind() == reflect.Slice {
		leaf = leaf.Elem()
		depth++
	}
	basic, ok := basicTypes[leaf.Kind()]
	if !ok {
		return source.Array{}, fmt.Errorf("unsupported element type %s", leaf)
	}

	if depth == 0 {
		out := reflect.MakeSlice(reflect.SliceOf(basic), 0, 1)
		out = reflect.Append(out, rv.Convert(basic))
		return source.Array{Shape: []int{}, Data: out.Interface()}, nil
	}

	shape := make([]int, 0, depth)
	cur := rv
	for i := 0; i < depth; i++ {
		shape = append(shape, cur.Len())
		if cur.Len() == 0 {
			for j := i + 1; j < depth; j++ {
				shape = append(shape, 0)
			}
			break
		}
		if i < depth-1 {
			cur = cur.Index(0)
		}
	}
	total := 1
	for _, n := range shape {
		total *= n
	}

	out := reflect.MakeSlice(reflect.SliceOf(basic), 0, total)
	var walk func(v reflect.Value, level int) error
	walk = func(v reflect.Value, level int) error {
		if v.Len() != shape[level] {
			return fmt.Errorf("ragged values: dimension %d has length %d, want %d", level, v.Len(), shape[level])
		}
		if level == depth-1 {
			if leaf == basic {
				out = reflect.AppendSlice(out, v)
				return nil
			}
			for i := 0; i < v.Len(); i++ {
				out = reflect.Append(out, v.Index(i).Convert(basic))
			}
			return nil
		}
		for i := 0; i < v.Len(); i++ {
			if err := walk(v.Index(i), level+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(rv, 0); err != nil {
		return source.Array{}, err
	}
	return source.Array{Shape: shape, Data: out.Interface()}, nil
}

// basicTypes maps numeric kinds to the predeclared types the encoder accepts.
var basicTypes = map[reflect.Kind]reflect.Type{
	reflect.Int8:    reflect.TypeFor[int8](),
	reflect.Uint8:   reflect.TypeFor[uint8](),
	reflect.Int16:   reflect.TypeFor[int16](),
	reflect.Uint16:  reflect.TypeFor[uint16](),
	reflect.Int32:   reflect.TypeFor[int32](),
	reflect.Uint32:  reflect.TypeFor[uint32](),
	reflect.Int64:   reflect.TypeFor[int64](),
	reflect.Uint64:  reflect.TypeFor[uint64](),
	reflect.Float32: reflect.TypeFor[float32](),
	reflect.Float64: reflect.TypeFor[float64](),
}
