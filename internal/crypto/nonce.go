package crypto

import (
	"io"
	"strconv"
	"time"

	goerrors "github.com/agilira/go-errors"

	"github.com/mailadmin/client-go/internal/apierrors"
)

// RequestSignature binds a credential hash to a point in time and a nonce.
type RequestSignature struct {
	Timestamp int64  `json:"timestamp"`
	Nonce     string `json:"nonce"`
	Signature string `json:"signature"`
}

// RandomString returns length characters drawn from NonceAlphabet.
// A length of zero or less selects DefaultNonceLength.
//
// Each character is one random byte reduced modulo 62, so the first
// 256 mod 62 = 8 symbols are slightly more likely than the rest. That is
// fine for nonces; do not use this for key material.
func RandomString(length int) (string, error) {
	if length <= 0 {
		length = DefaultNonceLength
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(random(), buf); err != nil {
		richErr := goerrors.Wrap(err, ErrCodeRandom, "failed to read random bytes")
		return "", apierrors.NewCryptoError("secure random source unavailable", joinCause(ErrRandomSource, richErr))
	}

	for i, b := range buf {
		buf[i] = NonceAlphabet[int(b)%len(NonceAlphabet)]
	}
	return string(buf), nil
}

// NewRequestSignature signs username and passwordHash at now with a fresh nonce.
// The signed message is username, passwordHash, the decimal millisecond
// timestamp and the nonce concatenated with no separator; the server
// recomputes it in exactly that order.
func NewRequestSignature(username, passwordHash string, now time.Time) (RequestSignature, error) {
	nonce, err := RandomString(DefaultNonceLength)
	if err != nil {
		return RequestSignature{}, err
	}

	ts := now.UnixMilli()
	return RequestSignature{
		Timestamp: ts,
		Nonce:     nonce,
		Signature: SignatureFor(username, passwordHash, ts, nonce),
	}, nil
}

// SignatureFor recomputes the signature for the given fields.
func SignatureFor(username, passwordHash string, timestamp int64, nonce string) string {
	return SHA256Hex(username + passwordHash + strconv.FormatInt(timestamp, 10) + nonce)
}
