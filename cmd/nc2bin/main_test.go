package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cdf "github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/spf13/cobra"

	"nc2bin/internal/convert"
	"nc2bin/internal/extract"
	"nc2bin/internal/legacy"
	"nc2bin/internal/manifest"
	"nc2bin/internal/source"
	"nc2bin/internal/source/netcdf"
	"nc2bin/internal/testsupport"
)

const concentrationInput = "NSIDC0051_SEAICE_PS_N25km_20210828_v2.0.nc"

// isolate keeps config discovery and default paths inside temp directories.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("NC2BIN_OUTPUT_DIR", "")
	t.Chdir(t.TempDir())
}

func runCLI(t *testing.T, opener source.Opener, args ...string) (string, string, error) {
	t.Helper()
	if opener == nil {
		opener = netcdf.Open
	}
	cmd := buildRootCommand(opener)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func concentrationDataset() *testsupport.Dataset {
	header := bytes.Repeat([]byte{0x01}, legacy.LegacyHeaderSize)
	return testsupport.NewDataset().
		WithVariable("F17_ICECON", testsupport.Grid(2, 2, 5), map[string]any{extract.DefaultHeaderAttribute: header})
}

func TestConvertRequiresInput(t *testing.T) {
	isolate(t)
	_, stderr, err := runCLI(t, nil, "convert")
	if !errors.Is(err, errMissingArgument) {
		t.Fatalf("expected errMissingArgument, got %v", err)
	}
	if !strings.Contains(stderr, "Usage:") {
		t.Fatalf("expected usage on stderr, got %q", stderr)
	}
}

func TestConvertRejectsExtraArguments(t *testing.T) {
	isolate(t)
	_, _, err := runCLI(t, nil, "convert", "a.nc", "out", "extra")
	if err == nil {
		t.Fatal("expected error for three positional arguments")
	}
}

func TestConvertMissingInput(t *testing.T) {
	isolate(t)
	missing := filepath.Join(t.TempDir(), concentrationInput)
	outDir := filepath.Join(t.TempDir(), "bins")
	_, _, err := runCLI(t, nil, "--log-level", "error", "convert", missing, outDir)
	if !errors.Is(err, convert.ErrInputNotFound) {
		t.Fatalf("expected ErrInputNotFound, got %v", err)
	}
	if _, err := os.Stat(outDir); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no output dir for a missing input, got %v", err)
	}
}

func TestConvertUnreadableInput(t *testing.T) {
	isolate(t)
	input := testsupport.Input(t, concentrationInput, 64)
	_, _, err := runCLI(t, nil, "--log-level", "error", "convert", input, t.TempDir())
	if !errors.Is(err, source.ErrSourceNotReadable) {
		t.Fatalf("expected ErrSourceNotReadable, got %v", err)
	}
}

func TestConvertUnsupportedProduct(t *testing.T) {
	isolate(t)
	input := testsupport.Input(t, "SEAICE_PS_N25km_20210828_v2.0.nc", 0)
	outDir := filepath.Join(t.TempDir(), "bins")
	_, _, err := runCLI(t, testsupport.NewDataset().Opener(), "--log-level", "error", "convert", "--output", outDir, input)
	if !errors.Is(err, legacy.ErrUnsupportedProduct) {
		t.Fatalf("expected ErrUnsupportedProduct, got %v", err)
	}
	if _, err := os.Stat(outDir); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no output dir for an unidentified input, got %v", err)
	}
}

func TestConvertWritesToArgumentDirectory(t *testing.T) {
	isolate(t)
	input := testsupport.Input(t, concentrationInput, 0)
	outDir := filepath.Join(t.TempDir(), "nested", "bins")

	stdout, _, err := runCLI(t, concentrationDataset().Opener(), "--log-level", "error", "convert", input, outDir)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(outDir, "nt_20210828_f17_v2.0_n.bin"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(data) != legacy.LegacyHeaderSize+4 {
		t.Fatalf("expected %d bytes, got %d", legacy.LegacyHeaderSize+4, len(data))
	}
	if !strings.Contains(stdout, "nsidc0051: 1 written, 0 skipped") {
		t.Fatalf("unexpected summary: %q", stdout)
	}
}

func TestConvertArgumentBeatsFlagAndConfig(t *testing.T) {
	isolate(t)
	cfg := testsupport.NewConfig(t)
	cfgPath := testsupport.WriteConfig(t, cfg)
	input := testsupport.Input(t, concentrationInput, 0)
	argDir := filepath.Join(t.TempDir(), "arg")
	flagDir := filepath.Join(t.TempDir(), "flag")

	_, _, err := runCLI(t, concentrationDataset().Opener(),
		"--config", cfgPath, "--log-level", "error", "convert", "--output", flagDir, input, argDir)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if _, err := os.Stat(filepath.Join(argDir, "nt_20210828_f17_v2.0_n.bin")); err != nil {
		t.Fatalf("expected output in argument dir: %v", err)
	}
	for _, dir := range []string{flagDir, cfg.Paths.OutputDir} {
		if _, err := os.Stat(dir); !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("expected %s untouched, got %v", dir, err)
		}
	}
}

func TestConvertNoOverwrite(t *testing.T) {
	isolate(t)
	input := testsupport.Input(t, concentrationInput, 0)
	outDir := t.TempDir()
	existing := filepath.Join(outDir, "nt_20210828_f17_v2.0_n.bin")
	if err := os.WriteFile(existing, []byte("keep"), 0o644); err != nil {
		t.Fatalf("seed output: %v", err)
	}
	_, _, err := runCLI(t, concentrationDataset().Opener(), "--log-level", "error", "convert", "--no-overwrite", input, outDir)
	if !errors.Is(err, convert.ErrOutputExists) {
		t.Fatalf("expected ErrOutputExists, got %v", err)
	}
}

func TestResolveOutputDir(t *testing.T) {
	isolate(t)
	configured := testsupport.NewConfig(t)
	empty := testsupport.NewConfig(t, testsupport.WithOutputDir(""))

	tests := []struct {
		name  string
		input string
		arg   string
		flag  string
		empty bool
		want  string
	}{
		{name: "argument", input: concentrationInput, arg: "a", flag: "f", want: "a"},
		{name: "flag", input: concentrationInput, flag: "f", want: "f"},
		{name: "config", input: concentrationInput, want: configured.Paths.OutputDir},
		{name: "concentration default", input: concentrationInput, empty: true, want: "."},
		{name: "brightness default", input: "NSIDC0001_TB_PS_S25km_20210828_v6.0.nc", empty: true, want: "./extracted_bins"},
		{name: "unidentified", input: "other.nc", empty: true, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := configured
			if tt.empty {
				cfg = empty
			}
			if got := resolveOutputDir(cfg, tt.input, tt.arg, tt.flag); got != tt.want {
				t.Fatalf("resolveOutputDir = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIdentifyShowsPlan(t *testing.T) {
	isolate(t)
	input := testsupport.Input(t, "NSIDC0080_TB_PS_N25km_20210828_v2.0.nc", 0)
	ds := testsupport.NewDataset().
		WithGroupVariable("F16", "TB_F16_N25km_19V", testsupport.Grid(1, 1, 0), nil)

	stdout, _, err := runCLI(t, ds.Opener(), "identify", "--output", "bins", input)
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	for _, want := range []string{"nsidc0080", "20210828", "north", "nrt", "uint16", "tb_f16_20210828_nrt_n19v.bin"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("expected %q in output:\n%s", want, stdout)
		}
	}
	if _, err := os.Stat("bins"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("identify must not create the output dir, got %v", err)
	}
}

func TestProductsListsRegistry(t *testing.T) {
	isolate(t)
	stdout, _, err := runCLI(t, nil, "--config", filepath.Join(t.TempDir(), "missing", "bad.toml"), "products")
	if err != nil {
		t.Fatalf("products: %v", err)
	}
	for _, id := range legacy.IDs() {
		if !strings.Contains(stdout, string(id)) {
			t.Fatalf("expected %s in output:\n%s", id, stdout)
		}
	}
	if !strings.Contains(stdout, "Brightness Temperature") {
		t.Fatalf("expected title-cased family in output:\n%s", stdout)
	}
}

func TestInspectListsVariables(t *testing.T) {
	isolate(t)
	input := testsupport.Input(t, concentrationInput, 0)
	ds := concentrationDataset().
		WithGroupVariable("F13", "TB_F13_N25km_19V", testsupport.Grid(1, 3, 7), nil)

	stdout, _, err := runCLI(t, ds.Opener(), "inspect", "--unpacked", input)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if ds.OpenedMode != source.Unpacked {
		t.Fatalf("expected unpacked mode, got %s", ds.OpenedMode)
	}
	if !ds.Closed {
		t.Fatal("expected dataset to be closed")
	}
	for _, want := range []string{"F17_ICECON", "2×2", "TB_F13_N25km_19V", "1×3", "uint8"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("expected %q in output:\n%s", want, stdout)
		}
	}
}

func TestConfigInitAndShow(t *testing.T) {
	isolate(t)
	target := filepath.Join(t.TempDir(), "nc2bin", "config.toml")

	stdout, _, err := runCLI(t, nil, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(stdout, target) {
		t.Fatalf("expected target path in output, got %q", stdout)
	}
	if _, _, err := runCLI(t, nil, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when config exists without --overwrite")
	}
	if _, _, err := runCLI(t, nil, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	stdout, _, err = runCLI(t, nil, "--config", target, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	for _, want := range []string{"# Config path: " + target, "[conversion]", "header_attribute = 'legacy_binary_header'"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("expected %q in output:\n%s", want, stdout)
		}
	}
}

func TestConfigShowDefaults(t *testing.T) {
	isolate(t)
	stdout, _, err := runCLI(t, nil, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(stdout, "not found; showing defaults") {
		t.Fatalf("expected defaults notice, got:\n%s", stdout)
	}
}

func TestInvalidConfigFails(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nformat = \"xml\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, err := runCLI(t, nil, "--config", path, "config", "show"); err == nil {
		t.Fatal("expected invalid config error")
	}
}

func TestManifestDisabled(t *testing.T) {
	isolate(t)
	cfgPath := testsupport.WriteConfig(t, testsupport.NewConfig(t))
	_, _, err := runCLI(t, nil, "--config", cfgPath, "manifest")
	if err == nil || !strings.Contains(err.Error(), "disabled") {
		t.Fatalf("expected disabled error, got %v", err)
	}
}

func TestManifestRecordsConversions(t *testing.T) {
	isolate(t)
	cfg := testsupport.NewConfig(t, testsupport.WithManifest())
	cfgPath := testsupport.WriteConfig(t, cfg)
	input := testsupport.Input(t, concentrationInput, 0)

	if _, _, err := runCLI(t, concentrationDataset().Opener(), "--config", cfgPath, "--log-level", "error", "convert", input); err != nil {
		t.Fatalf("convert: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.OutputDir, "nt_20210828_f17_v2.0_n.bin")); err != nil {
		t.Fatalf("expected output in configured dir: %v", err)
	}

	stdout, _, err := runCLI(t, nil, "--config", cfgPath, "manifest", "--limit", "5")
	if err != nil {
		t.Fatalf("manifest: %v", err)
	}
	for _, want := range []string{"nsidc0051", "succeeded", input} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("expected %q in output:\n%s", want, stdout)
		}
	}
}

func TestUnknownLogLevelFails(t *testing.T) {
	isolate(t)
	input := testsupport.Input(t, concentrationInput, 0)
	_, _, err := runCLI(t, concentrationDataset().Opener(), "--log-level", "loud", "convert", input, t.TempDir())
	if err == nil {
		t.Fatal("expected error for unknown log level")
	}
}

func TestManifestVerifiesOutputs(t *testing.T) {
	isolate(t)
	cfg := testsupport.NewConfig(t, testsupport.WithManifest())
	cfgPath := testsupport.WriteConfig(t, cfg)
	input := testsupport.Input(t, concentrationInput, 0)

	if _, _, err := runCLI(t, concentrationDataset().Opener(), "--config", cfgPath, "--log-level", "error", "convert", input); err != nil {
		t.Fatalf("convert: %v", err)
	}

	store, err := manifest.Open(cfg.Manifest.Path)
	if err != nil {
		t.Fatalf("open manifest: %v", err)
	}
	runs, err := store.ListRuns(context.Background(), 1)
	_ = store.Close()
	if err != nil || len(runs) != 1 {
		t.Fatalf("expected one run, got %d (%v)", len(runs), err)
	}
	runID := runs[0].RunID

	stdout, _, err := runCLI(t, nil, "--config", cfgPath, "manifest", "--run", runID, "--verify")
	if err != nil {
		t.Fatalf("manifest --verify: %v", err)
	}
	if !strings.Contains(stdout, "ok") {
		t.Fatalf("expected ok check, got:\n%s", stdout)
	}

	output := filepath.Join(cfg.Paths.OutputDir, "nt_20210828_f17_v2.0_n.bin")
	if err := os.WriteFile(output, []byte("tampered"), 0o644); err != nil {
		t.Fatalf("tamper output: %v", err)
	}
	stdout, _, err = runCLI(t, nil, "--config", cfgPath, "manifest", "--run", runID, "--verify")
	if err == nil || !strings.Contains(stdout, "mismatch") {
		t.Fatalf("expected mismatch, got err=%v output:\n%s", err, stdout)
	}
}

func TestExecutePrintsSingleLineDiagnostic(t *testing.T) {
	isolate(t)
	cmd := buildRootCommand(netcdf.Open)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	var stderr bytes.Buffer
	missing := filepath.Join(t.TempDir(), concentrationInput)

	code := execute(cmd, []string{"--log-level", "error", "convert", missing}, &stderr)
	if code != exitFailure {
		t.Fatalf("exit code = %d, want %d", code, exitFailure)
	}
	line := stderr.String()
	if strings.Count(line, "\n") != 1 || !strings.HasPrefix(line, "nc2bin: ") {
		t.Fatalf("expected one prefixed line, got %q", line)
	}
	if !strings.Contains(line, "input not found") || !strings.Contains(line, concentrationInput) {
		t.Fatalf("diagnostic does not name the input: %q", line)
	}
}

func TestExecuteSuccessAndInterrupt(t *testing.T) {
	isolate(t)
	cmd := buildRootCommand(netcdf.Open)
	cmd.SetOut(io.Discard)
	var stderr bytes.Buffer
	if code := execute(cmd, []string{"products"}, &stderr); code != 0 || stderr.Len() != 0 {
		t.Fatalf("products: code %d stderr %q", code, stderr.String())
	}

	interrupted := &cobra.Command{
		Use:           "nc2bin",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(*cobra.Command, []string) error {
			return fmt.Errorf("convert: %w", context.Canceled)
		},
	}
	if code := execute(interrupted, []string{}, &stderr); code != exitInterrupted || stderr.Len() != 0 {
		t.Fatalf("interrupt: code %d stderr %q", code, stderr.String())
	}
}

func TestDiagnosticJoinsLines(t *testing.T) {
	err := errors.Join(errors.New("open manifest"), errors.New("schema version mismatch"))
	if got := diagnostic(err); got != "nc2bin: open manifest schema version mismatch" {
		t.Fatalf("diagnostic = %q", got)
	}
}

func TestConvertRealContainer(t *testing.T) {
	isolate(t)
	input := testsupport.WriteNetCDF(t, concentrationInput, cdf.KindHDF5, testsupport.File{
		Vars: []testsupport.FileVar{{
			Name:   "F17_ICECON",
			Values: [][]uint8{{1, 2}, {3, 4}},
			Dims:   []string{"y", "x"},
			Attrs:  map[string]any{extract.DefaultHeaderAttribute: bytes.Repeat([]byte{0x02}, legacy.LegacyHeaderSize)},
		}},
	})
	outDir := t.TempDir()

	if _, _, err := runCLI(t, nil, "--log-level", "error", "convert", input, outDir); err != nil {
		t.Fatalf("convert: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(outDir, "nt_20210828_f17_v2.0_n.bin"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(data) != legacy.LegacyHeaderSize+4 || !bytes.Equal(data[legacy.LegacyHeaderSize:], []byte{1, 2, 3, 4}) {
		t.Fatalf("unexpected output of %d bytes", len(data))
	}
}
