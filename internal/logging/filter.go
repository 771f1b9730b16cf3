// Package logging builds the zerolog loggers used by the client and CLI
// and keeps credentials out of their output.
package logging

import (
	"io"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// RedactedValue replaces sensitive data.
const RedactedValue = "[REDACTED]"

// sensitiveFieldNames are field names whose values are always redacted.
// Matching is case-insensitive and by substring.
var sensitiveFieldNames = []string{
	"password",
	"passwd",
	"password_hash",
	"new_password",
	"signature",
	"token",
	"authorization",
	"secret",
	"ciphertext",
}

var (
	// "field":"value" in JSON output.
	jsonFieldPattern = regexp.MustCompile(`"([A-Za-z_-]*(?i:` + fieldAlternation() + `)[A-Za-z_-]*)":"(?:[^"\\]|\\.)*"`)
	// field=value in console output.
	consoleFieldPattern = regexp.MustCompile(`(?i)\b([A-Za-z_-]*(?:` + fieldAlternation() + `)[A-Za-z_-]*)=("(?:[^"\\]|\\.)*"|\S+)`)

	sensitivePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._~+/=-]+`),
		// SHA-256 hex digests: password hashes and request signatures.
		regexp.MustCompile(`\b[a-f0-9]{64}\b`),
		// Long base64 runs: RSA ciphertext (344 chars for a 2048-bit key).
		regexp.MustCompile(`[A-Za-z0-9+/]{300,}={0,2}`),
	}
)

func fieldAlternation() string {
	quoted := make([]string, len(sensitiveFieldNames))
	for i, name := range sensitiveFieldNames {
		quoted[i] = regexp.QuoteMeta(name)
	}
	return strings.Join(quoted, "|")
}

// SensitiveDataHook marks events whose message looks like it carries a
// credential. zerolog hooks cannot rewrite the message, so the event is
// flagged and FilteringWriter does the actual scrubbing.
type SensitiveDataHook struct{}

// Run implements zerolog.Hook.
func (SensitiveDataHook) Run(e *zerolog.Event, _ zerolog.Level, msg string) {
	if ContainsSensitiveData(msg) {
		e.Bool("contains_filtered_data", true)
	}
}

// ContainsSensitiveData reports whether s matches any sensitive pattern.
func ContainsSensitiveData(s string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// FilterSensitiveValue redacts sensitive fields and patterns in s.
func FilterSensitiveValue(s string) string {
	s = jsonFieldPattern.ReplaceAllString(s, `"$1":"`+RedactedValue+`"`)
	s = consoleFieldPattern.ReplaceAllString(s, `$1=`+RedactedValue)
	for _, pattern := range sensitivePatterns {
		s = pattern.ReplaceAllString(s, RedactedValue)
	}
	return s
}

// IsSensitiveFieldName reports whether a field with this name must be redacted.
func IsSensitiveFieldName(name string) bool {
	lower := strings.ToLower(name)
	for _, sensitive := range sensitiveFieldNames {
		if strings.Contains(lower, sensitive) {
			return true
		}
	}
	return false
}

// SafeValue returns value, or RedactedValue when name is sensitive.
//
//	log.Debug().Str("nonce", logging.SafeValue("nonce", nonce)).Msg("signed")
func SafeValue(name, value string) string {
	if IsSensitiveFieldName(name) {
		return RedactedValue
	}
	return FilterSensitiveValue(value)
}

// FilteringWriter redacts sensitive data before it reaches w.
type FilteringWriter struct {
	w io.Writer
}

// NewFilteringWriter wraps w.
func NewFilteringWriter(w io.Writer) *FilteringWriter {
	return &FilteringWriter{w: w}
}

// Write implements io.Writer. It reports len(p) on success so callers do
// not treat redaction as a short write.
func (fw *FilteringWriter) Write(p []byte) (int, error) {
	if _, err := fw.w.Write([]byte(FilterSensitiveValue(string(p)))); err != nil {
		return 0, err
	}
	return len(p), nil
}
