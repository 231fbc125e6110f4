package source

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrSourceNotReadable reports an input that exists but is not a readable container.
	ErrSourceNotReadable = errors.New("source not readable")
	// ErrVariableNotFound reports a lookup of a variable that does not exist.
	ErrVariableNotFound = errors.New("variable not found")
	// ErrGroupNotFound reports a lookup of a group that does not exist.
	ErrGroupNotFound = errors.New("group not found")
)

// Mode controls how variable values are materialized.
type Mode int

const (
	// Raw returns stored values verbatim: no fill masking, no scale or offset.
	Raw Mode = iota
	// Unpacked applies _FillValue, scale_factor and add_offset and returns float64 values.
	Unpacked
)

func (m Mode) String() string {
	if m == Unpacked {
		return "unpacked"
	}
	return "raw"
}

// Array is an N-dimensional numeric buffer flattened in row-major order.
type Array struct {
	Shape []int
	// Data is a flat numeric slice such as []uint8 or []int16.
	Data any
}

// Len returns the number of elements held in the array.
func (a Array) Len() int {
	switch v := a.Data.(type) {
	case []uint8:
		return len(v)
	case []int8:
		return len(v)
	case []int16:
		return len(v)
	case []uint16:
		return len(v)
	case []int32:
		return len(v)
	case []uint32:
		return len(v)
	case []int64:
		return len(v)
	case []uint64:
		return len(v)
	case []float32:
		return len(v)
	case []float64:
		return len(v)
	default:
		return 0
	}
}

// ElementType names the Go element type of Data.
func (a Array) ElementType() string {
	if a.Data == nil {
		return "none"
	}
	return fmt.Sprintf("%T", a.Data)[2:]
}

// Range returns the minimum and maximum finite element values.
func (a Array) Range() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	visit := func(v float64) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return
		}
		ok = true
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	eachFloat(a.Data, visit)
	if !ok {
		return 0, 0, false
	}
	return lo, hi, true
}

// Variable is one named field with its attributes.
type Variable struct {
	Name       string
	Array      Array
	Attributes map[string]any
}

// Attribute looks up a per-variable attribute.
func (v *Variable) Attribute(name string) (any, bool) {
	if v == nil || v.Attributes == nil {
		return nil, false
	}
	val, ok := v.Attributes[name]
	return val, ok
}

// Namespace is a flat collection of attributes and variables.
type Namespace interface {
	Attribute(name string) (any, bool)
	Variables() []string
	// Variable returns ErrVariableNotFound when name is absent.
	Variable(name string) (*Variable, error)
}

// Dataset is an opened container: a root namespace plus nested groups.
type Dataset interface {
	Namespace
	Groups() []string
	// Group returns ErrGroupNotFound when name is absent.
	Group(name string) (Namespace, error)
	Close() error
}

// Opener opens a dataset read-only.
type Opener func(path string, mode Mode) (Dataset, error)
