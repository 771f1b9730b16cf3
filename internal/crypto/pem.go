package crypto

import (
	"strings"
	"unicode"

	goerrors "github.com/agilira/go-errors"

	"github.com/mailadmin/client-go/internal/apierrors"
)

// NormalizePEM strips the PEM delimiters and all whitespace from a public key.
// Input without a BEGIN delimiter is treated as a bare base64 payload.
func NormalizePEM(pem string) string {
	body := strings.TrimSpace(pem)
	if strings.Contains(body, PEMHeader) {
		body = strings.Replace(body, PEMHeader, "", 1)
		body = strings.Replace(body, PEMFooter, "", 1)
	}
	return stripSpace(body)
}

// NormalizeToBytes converts PEM text (with or without delimiters) to the
// DER bytes it carries.
func NormalizeToBytes(pem string) ([]byte, error) {
	payload := NormalizePEM(pem)
	if payload == "" {
		return nil, apierrors.NewFormatError("public key is empty", ErrEmptyKey)
	}

	der, err := FromBase64(payload)
	if err != nil {
		richErr := goerrors.Wrap(err, ErrCodeBase64Decode, "failed to decode public key base64")
		return nil, apierrors.NewFormatError("public key is not valid base64", joinCause(ErrInvalidBase64, richErr))
	}
	return der, nil
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
