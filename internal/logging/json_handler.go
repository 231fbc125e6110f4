package logging

import (
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// newJSONHandler writes one object per record with short keys (ts, level,
// msg). Byte slices, shapes and digests are rendered the way the console
// shows them so a 300-byte header does not become a base64 blob.
func newJSONHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	opts := slog.HandlerOptions{
		Level:     lvl,
		AddSource: addSource,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.TimeKey:
				attr.Key = "ts"
				if attr.Value.Kind() == slog.KindTime {
					attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339Nano))
				}
				return attr
			case slog.LevelKey:
				attr.Key = "level"
				attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
				return attr
			case slog.MessageKey:
				attr.Key = "msg"
				return attr
			case slog.SourceKey:
				if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
					attr.Value = slog.StringValue(sourceLocation(src))
				}
				return attr
			}
			switch attr.Value.Kind() {
			case slog.KindDuration:
				attr.Key += "_ms"
				attr.Value = slog.Int64Value(attr.Value.Duration().Milliseconds())
			case slog.KindAny:
				if s, ok := domainValue(attr.Value.Any()); ok {
					attr.Value = slog.StringValue(s)
				}
			}
			return attr
		},
	}
	return slog.NewJSONHandler(w, &opts)
}

// sourceLocation keeps the package directory so files with the same base
// name (netcdf.go, for one) stay distinguishable.
func sourceLocation(src *slog.Source) string {
	dir := filepath.Base(filepath.Dir(src.File))
	return filepath.Join(dir, filepath.Base(src.File)) + ":" + strconv.Itoa(src.Line)
}
