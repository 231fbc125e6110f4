package testsupport

import (
	"path/filepath"
	"slices"
	"testing"

	cdf "github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/util"
)

// FileVar is one variable of a container fixture. Values use the library's
// nested slice layout, for example [][]uint8 for a 2-D ubyte grid.
type FileVar struct {
	Name   string
	Values any
	Dims   []string
	Attrs  map[string]any
}

// FileGroup is a named subgroup of a container fixture.
type FileGroup struct {
	Name string
	Vars []FileVar
}

// File describes a netCDF container to write for adapter and pipeline tests.
type File struct {
	Attrs  map[string]any
	Vars   []FileVar
	Groups []FileGroup
}

// WriteNetCDF writes f as a real container of the given kind (cdf.KindCDF
// or cdf.KindHDF5) into a fresh temp directory and returns its path. Classic
// CDF has no groups, so Groups must be empty for it.
func WriteNetCDF(t testing.TB, name string, kind cdf.FileKind, f File) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	w, err := cdf.OpenWriter(path, kind)
	if err != nil {
		t.Fatalf("open writer %s: %v", path, err)
	}
	if len(f.Attrs) > 0 {
		if err := w.AddAttributes(orderedMap(t, f.Attrs)); err != nil {
			_ = w.Close()
			t.Fatalf("write attributes: %v", err)
		}
	}
	addVars(t, w, f.Vars)
	for _, g := range f.Groups {
		gw, err := w.CreateGroup(g.Name)
		if err != nil {
			_ = w.Close()
			t.Fatalf("create group %s: %v", g.Name, err)
		}
		addVars(t, gw, g.Vars)
		if err := gw.Close(); err != nil {
			t.Fatalf("close group %s: %v", g.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer %s: %v", path, err)
	}
	return path
}

func addVars(t testing.TB, w api.Writer, vars []FileVar) {
	t.Helper()
	for _, v := range vars {
		err := w.AddVar(v.Name, api.Variable{
			Values:     v.Values,
			Dimensions: v.Dims,
			Attributes: orderedMap(t, v.Attrs),
		})
		if err != nil {
			_ = w.Close()
			t.Fatalf("write variable %s: %v", v.Name, err)
		}
	}
}

func orderedMap(t testing.TB, values map[string]any) *util.OrderedMap {
	t.Helper()
	if values == nil {
		values = map[string]any{}
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	m, err := util.NewOrderedMap(keys, values)
	if err != nil {
		t.Fatalf("attribute map: %v", err)
	}
	return m
}
