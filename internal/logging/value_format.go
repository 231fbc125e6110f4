package logging

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// headerPreviewBytes is how many leading bytes of a byte slice are shown.
const headerPreviewBytes = 4

// attrString renders v without quoting; used for header fields such as
// component and input.
func attrString(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindAny:
		if s, ok := domainValue(v.Any()); ok {
			return s
		}
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	default:
		return formatValue(v)
	}
}

func formatValue(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindDuration:
		return formatDuration(v.Duration())
	case slog.KindTime:
		return formatTimestamp(v.Time())
	case slog.KindAny:
		if s, ok := domainValue(v.Any()); ok {
			return s
		}
		if err, ok := v.Any().(error); ok {
			return quoteIfNeeded(err.Error())
		}
		return quoteIfNeeded(fmt.Sprint(v.Any()))
	default:
		return quoteIfNeeded(v.String())
	}
}

// domainValue renders the structured values the converter logs: byte
// slices such as legacy headers, grid shapes and SHA-256 digests.
func domainValue(value any) (string, bool) {
	switch x := value.(type) {
	case []byte:
		return formatBytes(x), true
	case [32]byte:
		return hex.EncodeToString(x[:]), true
	case []int:
		return formatShape(x), true
	}
	return "", false
}

// formatBytes prints a length and a short hex preview, e.g. "300 B [ff ff ff ff …]".
func formatBytes(b []byte) string {
	if len(b) == 0 {
		return "0 B"
	}
	n := min(len(b), headerPreviewBytes)
	preview := make([]string, 0, n+1)
	for _, c := range b[:n] {
		preview = append(preview, hex.EncodeToString([]byte{c}))
	}
	if len(b) > n {
		preview = append(preview, "…")
	}
	return fmt.Sprintf("%d B [%s]", len(b), strings.Join(preview, " "))
}

// formatShape prints grid dimensions as rows x cols; a scalar prints as "scalar".
func formatShape(dims []int) string {
	if len(dims) == 0 {
		return "scalar"
	}
	parts := make([]string, len(dims))
	for i, d := range dims {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, "x")
}

func quoteIfNeeded(s string) string {
	if needsQuotes(s) {
		return strconv.Quote(s)
	}
	return s
}

func needsQuotes(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if r <= ' ' || r == '=' || r == '"' {
			return true
		}
	}
	return false
}
