// Package netcdf adapts github.com/batchatco/go-native-netcdf to the
// source.Dataset view. Both netCDF-4 (HDF5) and classic CDF files are
// accepted.
package netcdf

import (
	"errors"
	"fmt"
	"io/fs"

	cdf "github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"nc2bin/internal/source"
)

type dataset struct {
	root api.Group
	namespace
}

type namespace struct {
	path  string
	mode  source.Mode
	group api.Group
}

// Open opens path read-only. Inputs that are neither CDF nor HDF5, or that
// fail to parse, are reported as source.ErrSourceNotReadable.
func Open(path string, mode source.Mode) (ds source.Dataset, err error) {
	defer func() {
		if r := recover(); r != nil {
			ds = nil
			err = fmt.Errorf("%w: %s: %v", source.ErrSourceNotReadable, path, r)
		}
	}()

	root, err := cdf.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", source.ErrSourceNotReadable, path, err)
	}
	return &dataset{
		root:      root,
		namespace: namespace{path: path, mode: mode, group: root},
	}, nil
}

var _ source.Opener = Open

func (d *dataset) Groups() []string {
	return d.root.ListSubgroups()
}

func (d *dataset) Group(name string) (source.Namespace, error) {
	found := false
	for _, g := range d.root.ListSubgroups() {
		if g == name {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %s in %s", source.ErrGroupNotFound, name, d.path)
	}
	g, err := d.root.GetGroup(name)
	if err != nil {
		return nil, fmt.Errorf("open group %s in %s: %w", name, d.path, err)
	}
	return &namespace{path: d.path + ":" + name, mode: d.mode, group: g}, nil
}

func (d *dataset) Close() error {
	if d.root != nil {
		d.root.Close()
		d.root = nil
	}
	return nil
}

func (n *namespace) Attribute(name string) (any, bool) {
	return n.group.Attributes().Get(name)
}

func (n *namespace) Variables() []string {
	return n.group.ListVariables()
}

func (n *namespace) Variable(name string) (*source.Variable, error) {
	if !contains(n.group.ListVariables(), name) {
		return nil, fmt.Errorf("%w: %s in %s", source.ErrVariableNotFound, name, n.path)
	}
	v, err := n.group.GetVariable(name)
	if err != nil {
		return nil, fmt.Errorf("read variable %s in %s: %w", name, n.path, err)
	}
	arr, err := Flatten(v.Values)
	if err != nil {
		return nil, fmt.Errorf("read variable %s in %s: %w", name, n.path, err)
	}
	attrs := attributeMap(v.Attributes)
	if n.mode == source.Unpacked {
		arr = source.Unpack(arr, attrs)
	}
	return &source.Variable{Name: name, Array: arr, Attributes: attrs}, nil
}

func attributeMap(m api.AttributeMap) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	keys := m.Keys()
	out := make(map[string]any, len(keys))
	for _, key := range keys {
		if val, ok := m.Get(key); ok {
			out[key] = val
		}
	}
	return out
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
