package crypto

import (
	"encoding/base64"
)

// BytesToBase64 encodes bytes to standard base64 with padding.
// Ciphertext is sent in this form; servers decode it with a stock decoder.
func BytesToBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// FromBase64 decodes standard base64. Input without padding is accepted
// when its length makes the padding unambiguous.
func FromBase64(s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return data, nil
	}
	if len(s)%4 != 0 {
		if raw, rawErr := base64.RawStdEncoding.DecodeString(s); rawErr == nil {
			return raw, nil
		}
	}
	return nil, err
}
