package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"fmt"
	"io"

	goerrors "github.com/agilira/go-errors"

	"github.com/mailadmin/client-go/internal/apierrors"
)

// PublicKey is an imported RSA public key restricted to RSA-OAEP/SHA-256
// encryption. There is no decrypt counterpart in this package.
type PublicKey struct {
	key *rsa.PublicKey
}

// ImportPublicKey parses SPKI DER bytes into an encrypt-only RSA key.
// Structural problems are format errors; parse failures are crypto errors.
func ImportPublicKey(der []byte) (*PublicKey, error) {
	if err := checkSPKI(der); err != nil {
		return nil, err
	}

	parsed, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		richErr := goerrors.Wrap(err, ErrCodeKeyImport, "failed to parse SPKI public key")
		return nil, apierrors.NewCryptoError("failed to import RSA public key", richErr)
	}

	pub, ok := parsed.(*rsa.PublicKey)
	if !ok {
		richErr := goerrors.New(ErrCodeKeyImport, fmt.Sprintf("unexpected key type %T", parsed))
		return nil, apierrors.NewCryptoError("failed to import RSA public key", joinCause(ErrUnsupportedAlgorithm, richErr))
	}

	return &PublicKey{key: pub}, nil
}

// Size returns the modulus size in bytes.
func (k *PublicKey) Size() int {
	return k.key.Size()
}

// MaxPlaintextSize returns the largest plaintext, in bytes, that RSA-OAEP
// with SHA-256 can encrypt under this key: k - 2*hLen - 2.
func (k *PublicKey) MaxPlaintextSize() int {
	n := k.key.Size() - 2*sha256.Size - 2
	if n < 0 {
		return 0
	}
	return n
}

// Encrypt encodes plaintext as UTF-8 and encrypts it with RSA-OAEP/SHA-256
// and an empty label. It returns the raw ciphertext.
func (k *PublicKey) Encrypt(plaintext string) ([]byte, error) {
	msg := []byte(plaintext)
	if limit := k.MaxPlaintextSize(); len(msg) > limit {
		richErr := goerrors.New(ErrCodeOAEPCapacity,
			fmt.Sprintf("plaintext is %d bytes, key allows at most %d", len(msg), limit))
		return nil, apierrors.NewCryptoError("password is too long to encrypt", joinCause(ErrPlaintextTooLong, richErr))
	}

	ciphertext, err := rsa.EncryptOAEP(sha256.New(), random(), k.key, msg, nil)
	if err != nil {
		richErr := goerrors.Wrap(err, ErrCodeEncrypt, "RSA-OAEP encryption failed")
		return nil, apierrors.NewCryptoError("password encryption failed", joinCause(ErrEncryptionFailed, richErr))
	}
	return ciphertext, nil
}

// EncryptWithPEM imports pem and returns the standard base64 RSA-OAEP
// ciphertext of plaintext.
func EncryptWithPEM(plaintext, pem string) (string, error) {
	der, err := NormalizeToBytes(pem)
	if err != nil {
		return "", err
	}
	key, err := ImportPublicKey(der)
	if err != nil {
		return "", err
	}
	ciphertext, err := key.Encrypt(plaintext)
	if err != nil {
		return "", err
	}
	return BytesToBase64(ciphertext), nil
}

// randReader is the random source for nonces and OAEP padding.
// It defaults to nil (which uses crypto/rand) but can be overridden for testing.
var randReader io.Reader

func random() io.Reader {
	if randReader != nil {
		return randReader
	}
	return rand.Reader
}
