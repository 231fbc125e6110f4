package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for conversion run identifiers.
	FieldRunID = "run_id"
	// FieldProduct is the standardized structured logging key for product identifiers.
	FieldProduct = "product"
	// FieldInput is the standardized structured logging key for input paths.
	FieldInput = "input"
	// FieldAlert flags warnings or anomalies that should stand out in structured logs.
	FieldAlert = "alert"
)

type contextKey int

const (
	runIDKey contextKey = iota
	productKey
	inputKey
)

// WithRunID stores a conversion run identifier on ctx.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

// WithProduct stores the product being converted on ctx.
func WithProduct(ctx context.Context, product string) context.Context {
	return context.WithValue(ctx, productKey, product)
}

// WithInput stores the input path being converted on ctx.
func WithInput(ctx context.Context, input string) context.Context {
	return context.WithValue(ctx, inputKey, input)
}

// RunIDFromContext returns the run identifier stored on ctx.
func RunIDFromContext(ctx context.Context) (string, bool) {
	return stringFromContext(ctx, runIDKey)
}

func stringFromContext(ctx context.Context, key contextKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v, ok := ctx.Value(key).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := stringFromContext(ctx, runIDKey); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if product, ok := stringFromContext(ctx, productKey); ok {
		fields = append(fields, slog.String(FieldProduct, product))
	}
	if input, ok := stringFromContext(ctx, inputKey); ok {
		fields = append(fields, slog.String(FieldInput, input))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
