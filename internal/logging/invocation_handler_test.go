package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func decodeRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	return record
}

func TestInvocationHandlerStampsRecords(t *testing.T) {
	var buf bytes.Buffer
	inv := Invocation{SessionID: "session-123", Command: "convert"}
	logger := slog.New(newInvocationHandler(slog.NewJSONHandler(&buf, nil), inv)).With(FieldProduct, "nsidc0001")
	logger.Info("test message")

	record := decodeRecord(t, &buf)
	for key, want := range map[string]string{FieldSessionID: "session-123", FieldCommand: "convert", FieldProduct: "nsidc0001"} {
		if record[key] != want {
			t.Errorf("%s = %v, want %q", key, record[key], want)
		}
	}
}

func TestInvocationHandlerKeepsRecordValue(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newInvocationHandler(slog.NewJSONHandler(&buf, nil), Invocation{Command: "convert"}))
	logger.Info("nested", slog.String(FieldCommand, "identify"))

	if n := strings.Count(buf.String(), `"command"`); n != 1 {
		t.Fatalf("expected one command key, got %d in %s", n, buf.String())
	}
	if record := decodeRecord(t, &buf); record[FieldCommand] != "identify" {
		t.Fatalf("command = %v, want identify", record[FieldCommand])
	}
}

func TestInvocationHandlerEmptyIsPassthrough(t *testing.T) {
	base := slog.NewJSONHandler(&bytes.Buffer{}, nil)
	if h := newInvocationHandler(base, Invocation{SessionID: "  "}); h != slog.Handler(base) {
		t.Fatalf("expected base handler, got %T", h)
	}
	if _, ok := newInvocationHandler(nil, Invocation{SessionID: "x"}).(NoopHandler); !ok {
		t.Error("expected NoopHandler when base is nil")
	}
}

func TestComposeSubject(t *testing.T) {
	tests := []struct {
		product, input, want string
	}{
		{"nsidc0051", "/data/a.nc", "nsidc0051 · a.nc"},
		{"nsidc0051", "", "nsidc0051"},
		{"", "/data/a.nc", "a.nc"},
		{"", "", ""},
	}
	for _, tt := range tests {
		if got := composeSubject(tt.product, tt.input); got != tt.want {
			t.Errorf("composeSubject(%q, %q) = %q, want %q", tt.product, tt.input, got, tt.want)
		}
	}
}
