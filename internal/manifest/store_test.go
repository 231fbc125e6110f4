package manifest_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"nc2bin/internal/manifest"
)

func openStore(t *testing.T) *manifest.Store {
	t.Helper()
	store, err := manifest.Open(filepath.Join(t.TempDir(), "nested", "manifest.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRunRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	started := time.Date(2021, 8, 28, 12, 0, 0, 0, time.UTC)

	if err := store.StartRun(ctx, manifest.Run{RunID: "run-1", Input: "/data/in.nc", StartedAt: started}); err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	for _, out := range []manifest.Output{
		{RunID: "run-1", Path: "nt_20210828_f17_v2.0_n.bin", Satellite: "F17", Variable: "F17_ICECON", Bytes: 400, SHA256: "aa"},
		{RunID: "run-1", Path: "nt_20210828_f18_v2.0_n.bin", Satellite: "F18", Variable: "F18_ICECON", Bytes: 400, SHA256: "bb"},
	} {
		if err := store.AddOutput(ctx, out); err != nil {
			t.Fatalf("AddOutput failed: %v", err)
		}
	}
	if err := store.FinishRun(ctx, manifest.Run{
		RunID:      "run-1",
		Product:    "nsidc0051",
		Date:       "20210828",
		Hemisphere: "north",
		Version:    "v2.0",
		Status:     manifest.StatusSucceeded,
		Skipped:    1,
		FinishedAt: started.Add(time.Second),
	}); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	runs, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	run := runs[0]
	if run.Status != manifest.StatusSucceeded || run.Product != "nsidc0051" || run.Version != "v2.0" {
		t.Fatalf("unexpected run %+v", run)
	}
	if run.Outputs != 2 || run.Skipped != 1 {
		t.Fatalf("expected 2 outputs and 1 skip, got %d and %d", run.Outputs, run.Skipped)
	}
	if !run.StartedAt.Equal(started) || !run.FinishedAt.Equal(started.Add(time.Second)) {
		t.Fatalf("unexpected timestamps %v %v", run.StartedAt, run.FinishedAt)
	}

	outputs, err := store.Outputs(ctx, "run-1")
	if err != nil {
		t.Fatalf("Outputs failed: %v", err)
	}
	if len(outputs) != 2 || outputs[0].Satellite != "F17" || outputs[1].SHA256 != "bb" {
		t.Fatalf("unexpected outputs %+v", outputs)
	}
	if outputs[0].Channel != "" {
		t.Fatalf("expected empty channel, got %q", outputs[0].Channel)
	}
}

func TestListRunsNewestFirstWithLimit(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		if err := store.StartRun(ctx, manifest.Run{RunID: id, Input: id + ".nc", StartedAt: base.Add(time.Duration(i) * time.Minute)}); err != nil {
			t.Fatalf("StartRun %s failed: %v", id, err)
		}
	}

	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 || runs[0].RunID != "c" || runs[1].RunID != "b" {
		t.Fatalf("unexpected order %+v", runs)
	}
	if runs[0].Status != manifest.StatusRunning {
		t.Fatalf("expected running status, got %q", runs[0].Status)
	}
}

func TestStartRunRejectsDuplicateAndEmptyID(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.StartRun(ctx, manifest.Run{Input: "x.nc"}); err == nil {
		t.Fatal("expected error for empty run id")
	}
	if err := store.StartRun(ctx, manifest.Run{RunID: "dup", Input: "x.nc"}); err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	if err := store.StartRun(ctx, manifest.Run{RunID: "dup", Input: "x.nc"}); err == nil {
		t.Fatal("expected unique constraint error")
	}
}

func TestFinishUnknownRun(t *testing.T) {
	store := openStore(t)
	err := store.FinishRun(context.Background(), manifest.Run{RunID: "missing", Status: manifest.StatusFailed})
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestAddOutputRequiresRun(t *testing.T) {
	store := openStore(t)
	err := store.AddOutput(context.Background(), manifest.Output{RunID: "missing", Path: "x.bin", Satellite: "F17", Variable: "F17_ICECON"})
	if err == nil {
		t.Fatal("expected foreign key error")
	}
}

func TestReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.db")
	store, err := manifest.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := store.StartRun(context.Background(), manifest.Run{RunID: "persist", Input: "in.nc"}); err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := manifest.Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	runs, err := reopened.ListRuns(context.Background(), 5)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != "persist" {
		t.Fatalf("unexpected runs after reopen %+v", runs)
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := manifest.Open(" "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
