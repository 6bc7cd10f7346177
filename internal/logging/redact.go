package logging

import (
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	redacted       = "[REDACTED]"
	maxFieldLength = 1000
)

// sensitivePatterns match field names whose values may carry report content or credentials.
var sensitivePatterns = []string{
	"password", "token", "secret", "api_key", "auth",
	"patient", "text", "snippet", "email",
}

// RedactHook scrubs sensitive fields and truncates long string values before an entry is
// formatted.
type RedactHook struct{}

// Levels applies the hook to every level.
func (h *RedactHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire rewrites entry.Data in place.
func (h *RedactHook) Fire(entry *logrus.Entry) error {
	for k, v := range entry.Data {
		entry.Data[k] = SanitizeField(k, v)
	}
	return nil
}

// SanitizeField returns the value to log for key.
func SanitizeField(key string, value interface{}) interface{} {
	lowerKey := strings.ToLower(key)
	for _, pattern := range sensitivePatterns {
		if strings.Contains(lowerKey, pattern) {
			return redacted
		}
	}

	if str, ok := value.(string); ok && len(str) > maxFieldLength {
		return str[:maxFieldLength] + "... [TRUNCATED]"
	}
	return value
}
