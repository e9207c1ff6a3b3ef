package logging

import (
	"log/slog"
	"strings"
)

// RedactedValue replaces sensitive values in logs.
const RedactedValue = "[REDACTED]"

// sensitiveKeys are masked whatever their value. Swap authorisations are
// bearer material until the nonce moves.
var sensitiveKeys = map[string]struct{}{
	"signature":  {},
	"authority":  {},
	"privatekey": {},
	"headers":    {},
}

// IsSensitive reports whether key must never be logged in clear.
func IsSensitive(key string) bool {
	_, ok := sensitiveKeys[strings.ToLower(strings.TrimSpace(key))]
	return ok
}

// MaskValue returns the placeholder for non-empty values. Empty values are
// returned unchanged.
func MaskValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return value
	}
	return RedactedValue
}

// MaskField returns value under key, redacted when the key is sensitive.
func MaskField(key, value string) slog.Attr {
	if IsSensitive(key) {
		return slog.String(key, MaskValue(value))
	}
	return slog.String(key, value)
}
