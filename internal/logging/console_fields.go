package logging

import (
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"
)

type infoField struct {
	label string
	value string
}

var infoHighlightKeys = []string{
	FieldAlert,
	"path",
	"satellite",
	"channel",
	"variable",
	"bytes",
	"written",
	"skipped",
	"date",
	"hemisphere",
	"version",
	"error",
}

// selectInfoFields returns formatted info-level fields and a count of hidden
// entries. Highlight keys come first, then the rest in record order.
func selectInfoFields(attrs []kv) ([]infoField, int) {
	if len(attrs) == 0 {
		return nil, 0
	}
	used := make([]bool, len(attrs))
	result := make([]infoField, 0, len(attrs))
	hidden := 0

	add := func(idx int) {
		used[idx] = true
		attr := attrs[idx]
		if skipInfoKey(attr.key) {
			return
		}
		if isDebugOnlyKey(attr.key) {
			hidden++
			return
		}
		result = append(result, infoField{label: displayLabel(attr.key), value: formatValueForKey(attr.key, attr.value)})
	}

	for _, key := range infoHighlightKeys {
		for idx, attr := range attrs {
			if !used[idx] && attr.key == key {
				add(idx)
				break
			}
		}
	}
	for idx := range attrs {
		if !used[idx] {
			add(idx)
		}
	}
	return result, hidden
}

func formatValueForKey(key string, v slog.Value) string {
	v = v.Resolve()

	if isByteSizeKey(key) {
		switch v.Kind() {
		case slog.KindInt64:
			if v.Int64() >= 0 {
				return humanize.IBytes(uint64(v.Int64()))
			}
		case slog.KindUint64:
			return humanize.IBytes(v.Uint64())
		}
	}

	if v.Kind() == slog.KindBool {
		if v.Bool() {
			return "yes"
		}
		return "no"
	}

	value := formatValue(v)
	if key == "error" {
		value = truncateErrorValue(value)
	}
	return value
}

func isByteSizeKey(key string) bool {
	return key == "bytes" || strings.HasSuffix(key, "_bytes")
}

func truncateErrorValue(value string) string {
	value = strings.TrimSpace(value)
	const maxLen = 200
	if len(value) > maxLen {
		value = value[:maxLen] + "…"
	}
	return value
}

func skipInfoKey(key string) bool {
	switch key {
	case "", FieldComponent, FieldProduct, FieldInput:
		return true
	default:
		return false
	}
}

func isDebugOnlyKey(key string) bool {
	switch key {
	case FieldRunID, FieldSessionID, FieldCommand, "sha256", "mode":
		return true
	}
	return strings.HasSuffix(key, "_id")
}

func displayLabel(key string) string {
	switch key {
	case FieldAlert:
		return "Alert"
	case "path":
		return "Output"
	case "bytes":
		return "Size"
	case "header_bytes":
		return "Header"
	case "expected_bytes":
		return "Expected"
	default:
		return titleizeKey(key)
	}
}

func titleizeKey(key string) string {
	if key == "" {
		return ""
	}
	parts := strings.FieldsFunc(key, func(r rune) bool {
		return r == '_' || r == '-' || r == '.'
	})
	if len(parts) == 0 {
		return strings.ToUpper(key[:1]) + strings.ToLower(key[1:])
	}
	for i, part := range parts {
		parts[i] = capitalizeASCII(part)
	}
	return strings.Join(parts, " ")
}

func capitalizeASCII(value string) string {
	switch len(value) {
	case 0:
		return ""
	case 1:
		return strings.ToUpper(value)
	default:
		lower := strings.ToLower(value)
		return strings.ToUpper(lower[:1]) + lower[1:]
	}
}
