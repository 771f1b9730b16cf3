package crypto

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyKey is returned when a PEM payload is empty after normalization.
	ErrEmptyKey = errors.New("empty public key")

	// ErrInvalidBase64 is returned when a key payload is not valid standard base64.
	ErrInvalidBase64 = errors.New("invalid base64")

	// ErrInvalidSPKI is returned when the DER bytes are not a SubjectPublicKeyInfo.
	ErrInvalidSPKI = errors.New("invalid SubjectPublicKeyInfo")

	// ErrUnsupportedAlgorithm is returned when the SPKI algorithm is not rsaEncryption.
	ErrUnsupportedAlgorithm = errors.New("unsupported key algorithm")

	// ErrPlaintextTooLong is returned when the plaintext exceeds the RSA-OAEP
	// capacity of the key.
	ErrPlaintextTooLong = errors.New("plaintext too long for key")

	// ErrEncryptionFailed is returned when RSA-OAEP encryption fails.
	ErrEncryptionFailed = errors.New("encryption failed")

	// ErrRandomSource is returned when the secure random source fails.
	ErrRandomSource = errors.New("random source failure")
)

// joinCause chains a package sentinel with a coded cause so both match errors.Is.
func joinCause(sentinel, cause error) error {
	return fmt.Errorf("%w: %w", sentinel, cause)
}
