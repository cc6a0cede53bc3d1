package logging

import (
	"log/slog"
	"strings"
)

const redacted = "[redacted]"

//nolint:gochecknoglobals
var sensitiveKeys = map[string]struct{}{
	"password":      {},
	"token":         {},
	"authorization": {},
}

// IsSensitive reports whether values logged under key must not be written out.
func IsSensitive(key string) bool {
	_, ok := sensitiveKeys[strings.ToLower(key)]

	return ok
}

// RedactAttr replaces the value of sensitive attributes. It matches the
// slog.HandlerOptions.ReplaceAttr signature.
func RedactAttr(_ []string, attr slog.Attr) slog.Attr {
	if attr.Value.Kind() != slog.KindGroup && IsSensitive(attr.Key) {
		return slog.String(attr.Key, redacted)
	}

	return attr
}
