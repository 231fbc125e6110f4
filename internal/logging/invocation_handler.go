package logging

import (
	"context"
	"log/slog"
	"strings"
)

const (
	// FieldSessionID identifies one nc2bin invocation; every run it starts shares it.
	FieldSessionID = "session_id"
	// FieldCommand names the subcommand that produced a record.
	FieldCommand = "command"
)

// Invocation describes the process-wide attributes stamped on every record.
// Several invocations may append to the same nc2bin.log, so these keep
// their records apart.
type Invocation struct {
	SessionID string
	Command   string
}

func (inv Invocation) attrs() []slog.Attr {
	var out []slog.Attr
	if id := strings.TrimSpace(inv.SessionID); id != "" {
		out = append(out, slog.String(FieldSessionID, id))
	}
	if cmd := strings.TrimSpace(inv.Command); cmd != "" {
		out = append(out, slog.String(FieldCommand, cmd))
	}
	return out
}

// invocationHandler appends the invocation attributes after the record's own,
// skipping any key the record already sets.
type invocationHandler struct {
	base  slog.Handler
	attrs []slog.Attr
}

func newInvocationHandler(base slog.Handler, inv Invocation) slog.Handler {
	if base == nil {
		return NoopHandler{}
	}
	attrs := inv.attrs()
	if len(attrs) == 0 {
		return base
	}
	return &invocationHandler{base: base, attrs: attrs}
}

func (h *invocationHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *invocationHandler) Handle(ctx context.Context, record slog.Record) error {
	set := make(map[string]bool, record.NumAttrs())
	record.Attrs(func(a slog.Attr) bool {
		set[a.Key] = true
		return true
	})
	for _, a := range h.attrs {
		if !set[a.Key] {
			record.AddAttrs(a)
		}
	}
	return h.base.Handle(ctx, record)
}

func (h *invocationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &invocationHandler{base: h.base.WithAttrs(attrs), attrs: h.attrs}
}

func (h *invocationHandler) WithGroup(name string) slog.Handler {
	return &invocationHandler{base: h.base.WithGroup(name), attrs: h.attrs}
}
