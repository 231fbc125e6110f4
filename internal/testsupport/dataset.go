package testsupport

import (
	"fmt"

	"nc2bin/internal/source"
)

// Namespace is an in-memory source.Namespace.
type Namespace struct {
	Attrs map[string]any
	Vars  []*source.Variable
}

// Dataset is an in-memory source.Dataset for pipeline tests.
type Dataset struct {
	Namespace
	Subgroups []string
	groups    map[string]*Namespace

	Closed     bool
	OpenedMode source.Mode
}

// NewDataset returns an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{
		Namespace: Namespace{Attrs: map[string]any{}},
		groups:    map[string]*Namespace{},
	}
}

// WithAttribute sets a root attribute.
func (d *Dataset) WithAttribute(name string, value any) *Dataset {
	d.Attrs[name] = value
	return d
}

// WithVariable appends a root variable in declaration order.
func (d *Dataset) WithVariable(name string, arr source.Array, attrs map[string]any) *Dataset {
	d.Namespace.add(name, arr, attrs)
	return d
}

// WithGroupVariable appends a variable to the named group, creating it on first use.
func (d *Dataset) WithGroupVariable(group, name string, arr source.Array, attrs map[string]any) *Dataset {
	g, ok := d.groups[group]
	if !ok {
		g = &Namespace{Attrs: map[string]any{}}
		d.groups[group] = g
		d.Subgroups = append(d.Subgroups, group)
	}
	g.add(name, arr, attrs)
	return d
}

// Opener returns a source.Opener that always yields d.
func (d *Dataset) Opener() source.Opener {
	return func(_ string, mode source.Mode) (source.Dataset, error) {
		d.Closed = false
		d.OpenedMode = mode
		return d, nil
	}
}

func (n *Namespace) add(name string, arr source.Array, attrs map[string]any) {
	if attrs == nil {
		attrs = map[string]any{}
	}
	n.Vars = append(n.Vars, &source.Variable{Name: name, Array: arr, Attributes: attrs})
}

func (n *Namespace) Attribute(name string) (any, bool) {
	v, ok := n.Attrs[name]
	return v, ok
}

func (n *Namespace) Variables() []string {
	names := make([]string, 0, len(n.Vars))
	for _, v := range n.Vars {
		names = append(names, v.Name)
	}
	return names
}

func (n *Namespace) Variable(name string) (*source.Variable, error) {
	for _, v := range n.Vars {
		if v.Name == name {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", source.ErrVariableNotFound, name)
}

func (d *Dataset) Groups() []string {
	return append([]string(nil), d.Subgroups...)
}

func (d *Dataset) Group(name string) (source.Namespace, error) {
	g, ok := d.groups[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", source.ErrGroupNotFound, name)
	}
	return g, nil
}

func (d *Dataset) Close() error {
	d.Closed = true
	return nil
}

// Grid returns a rows x cols uint8 array filled with a repeating pattern.
func Grid(rows, cols int, seed uint8) source.Array {
	data := make([]uint8, rows*cols)
	for i := range data {
		data[i] = seed + uint8(i)
	}
	return source.Array{Shape: []int{rows, cols}, Data: data}
}
