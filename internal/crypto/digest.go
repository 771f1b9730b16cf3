package crypto

import (
	"bytes"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"unicode/utf8"

	goerrors "github.com/agilira/go-errors"

	"github.com/mailadmin/client-go/internal/apierrors"
)

// SHA256Hex returns the lowercase hex SHA-256 digest of the UTF-8 bytes of text.
func SHA256Hex(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// CanonicalJSON serializes v the way response signatures are computed:
// compact, no HTML escaping, no trailing newline, and U+2028/U+2029 left
// unescaped. Map keys are sorted; pass a json.RawMessage to keep the
// server's key order. Invalid UTF-8 in strings is replaced with U+FFFD.
func CanonicalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		richErr := goerrors.Wrap(err, ErrCodeCanonicalJSON, "failed to serialize response data")
		return nil, apierrors.NewFormatError("response data is not serializable", richErr)
	}
	return unescapeLineSeparators(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes encoding/json
// always emits back into raw characters. Backslashes only occur in string
// escapes, so each one is consumed together with the byte after it.
func unescapeLineSeparators(src []byte) []byte {
	if !bytes.Contains(src, []byte(`\u202`)) {
		return src
	}
	out := make([]byte, 0, len(src))
	for i := 0; i < len(src); i++ {
		if src[i] != '\\' || i+1 >= len(src) {
			out = append(out, src[i])
			continue
		}
		if src[i+1] == 'u' && i+5 < len(src) && string(src[i+2:i+5]) == "202" && (src[i+5] == '8' || src[i+5] == '9') {
			out = utf8.AppendRune(out, rune(0x2020+int(src[i+5]-'0')))
			i += 5
			continue
		}
		out = append(out, src[i], src[i+1])
		i++
	}
	return out
}

// VerifyDigest hashes the canonical JSON of data and compares it with
// expected in constant time.
func VerifyDigest(data any, expected string) (bool, error) {
	payload, err := CanonicalJSON(data)
	if err != nil {
		return false, err
	}
	got := SHA256Hex(string(payload))
	return subtle.ConstantTimeCompare([]byte(got), []byte(expected)) == 1, nil
}
