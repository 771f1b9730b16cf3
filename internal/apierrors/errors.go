// Package apierrors provides shared error types for the mailadmin client.
package apierrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrFetch matches every failure to obtain the server public key:
	// network errors, non-2xx responses and malformed bodies.
	ErrFetch = errors.New("public key fetch failed")

	// ErrFormat matches malformed input: a key that is not a string,
	// invalid base64, or a PEM payload without the expected structure.
	ErrFormat = errors.New("invalid format")

	// ErrCrypto matches key import and encryption failures.
	ErrCrypto = errors.New("cryptographic operation failed")

	// ErrUnauthorized is returned when the bearer token is missing, invalid or expired.
	ErrUnauthorized = errors.New("invalid or expired token")

	// ErrRateLimited is returned when the API rate limit is exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrNotLoggedIn is returned by authenticated calls made before Login.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrLoginFailed is returned when the server rejects a login or issues no token.
	ErrLoginFailed = errors.New("login failed")
)

// Kind classifies credential-protection failures.
type Kind string

const (
	// KindFetch covers key endpoint failures.
	KindFetch Kind = "fetch"
	// KindFormat covers type, base64 and PEM structure failures.
	KindFormat Kind = "format"
	// KindCrypto covers key import and RSA-OAEP failures.
	KindCrypto Kind = "crypto"
)

// Error is a classified failure. Message is what callers show to users;
// Err is the underlying cause, if any.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s error", e.Kind)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *Error) Is(target error) bool {
	switch e.Kind {
	case KindFetch:
		return target == ErrFetch
	case KindFormat:
		return target == ErrFormat
	case KindCrypto:
		return target == ErrCrypto
	}
	return false
}

// NewFetchError returns a KindFetch error.
func NewFetchError(message string, err error) *Error {
	return &Error{Kind: KindFetch, Message: message, Err: err}
}

// NewFormatError returns a KindFormat error.
func NewFormatError(message string, err error) *Error {
	return &Error{Kind: KindFormat, Message: message, Err: err}
}

// NewCryptoError returns a KindCrypto error.
func NewCryptoError(message string, err error) *Error {
	return &Error{Kind: KindCrypto, Message: message, Err: err}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// APIError represents a non-2xx HTTP response from the admin API.
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		if e.Message != "" {
			return fmt.Sprintf("API error %d: %s (request_id: %s)", e.StatusCode, e.Message, e.RequestID)
		}
		return fmt.Sprintf("API error %d (request_id: %s)", e.StatusCode, e.RequestID)
	}
	if e.Message != "" {
		return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error %d", e.StatusCode)
}

// Is implements errors.Is for sentinel error matching.
func (e *APIError) Is(target error) bool {
	switch e.StatusCode {
	case 401:
		return target == ErrUnauthorized
	case 429:
		return target == ErrRateLimited
	}
	return false
}

// NetworkError represents a network-level failure.
type NetworkError struct {
	Err     error
	URL     string
	Attempt int
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}
