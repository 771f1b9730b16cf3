package mailadmin

import (
	"errors"

	"github.com/mailadmin/client-go/internal/apierrors"
	"github.com/mailadmin/client-go/internal/crypto"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrFetch matches every failure to obtain the server public key.
	ErrFetch = apierrors.ErrFetch

	// ErrFormat matches a key that is not a non-empty string, invalid
	// base64, malformed key structure, and unserializable data.
	ErrFormat = apierrors.ErrFormat

	// ErrCrypto matches key import and encryption failures.
	ErrCrypto = apierrors.ErrCrypto

	// ErrPlaintextTooLong is returned when a password exceeds the key's
	// RSA-OAEP capacity (190 bytes for a 2048-bit key). Errors carrying it
	// also match ErrCrypto.
	ErrPlaintextTooLong = crypto.ErrPlaintextTooLong

	// ErrUnauthorized is returned when the bearer token is invalid or expired.
	ErrUnauthorized = apierrors.ErrUnauthorized

	// ErrRateLimited is returned when the API rate limit is exceeded.
	ErrRateLimited = apierrors.ErrRateLimited

	// ErrNotLoggedIn is returned by calls that need a session before Login succeeded.
	ErrNotLoggedIn = apierrors.ErrNotLoggedIn

	// ErrLoginFailed is returned when the server rejects a login.
	ErrLoginFailed = apierrors.ErrLoginFailed
)

// ErrorKind classifies credential protection failures.
type ErrorKind = apierrors.Kind

// Error kinds.
const (
	KindFetch  = apierrors.KindFetch
	KindFormat = apierrors.KindFormat
	KindCrypto = apierrors.KindCrypto
)

// Error is a classified credential protection failure. Message is suitable
// for display; for fetch failures it is the server's message when the
// server sent one.
type Error = apierrors.Error

// APIError represents a non-2xx HTTP response.
type APIError = apierrors.APIError

// NetworkError represents a network-level failure.
type NetworkError = apierrors.NetworkError

// KindOf returns the kind of err, or "" when err is not classified.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
