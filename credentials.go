package mailadmin

import (
	"context"
	"strings"

	"github.com/mailadmin/client-go/internal/api"
	"github.com/mailadmin/client-go/internal/apierrors"
	"github.com/mailadmin/client-go/internal/crypto"
	"github.com/mailadmin/client-go/internal/keycache"
)

// SignedSubmission is a hashed password bound to a timestamp and nonce.
// Its JSON form can be merged directly into a request body.
type SignedSubmission struct {
	PasswordHash string `json:"password_hash"`
	Timestamp    int64  `json:"timestamp"`
	Nonce        string `json:"nonce"`
	Signature    string `json:"signature"`
}

// KeyStats reports public key fetch activity.
type KeyStats = keycache.Stats

// KeyInfo is the metadata the key endpoint sent alongside the key.
// Encryption does not depend on it.
type KeyInfo = api.PublicKeyInfo

// EncryptPasswordWithRSA encrypts password with the server's public key
// and returns the ciphertext in standard base64.
//
// The key is fetched on first use and cached. Errors from the fetch, key
// parsing and encryption are returned unchanged; use errors.Is with
// ErrFetch, ErrFormat or ErrCrypto to tell them apart. If ctx ends while
// waiting for the key, ctx.Err() is returned.
func (c *Client) EncryptPasswordWithRSA(ctx context.Context, password string) (string, error) {
	key, err := c.keys.Get(ctx)
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", apierrors.NewFormatError("public key is empty", nil)
	}
	return crypto.EncryptWithPEM(password, key)
}

// EncryptPassword hashes password with a salt derived from username and
// signs the result. No network call is made.
//
// The salt is the lowercased username; the signature covers the username
// exactly as given.
func (c *Client) EncryptPassword(password, username string) (*SignedSubmission, error) {
	hash := PasswordHash(password, username)

	sig, err := crypto.NewRequestSignature(username, hash, c.clock())
	if err != nil {
		return nil, err
	}

	c.log.Debug().
		Str("username", username).
		Int64("timestamp", sig.Timestamp).
		Msg("password hashed and signed")

	return &SignedSubmission{
		PasswordHash: hash,
		Timestamp:    sig.Timestamp,
		Nonce:        sig.Nonce,
		Signature:    sig.Signature,
	}, nil
}

// PasswordHash returns the salted SHA-256 hex digest the server stores
// for password.
func PasswordHash(password, username string) string {
	return crypto.SHA256Hex(password + strings.ToLower(username))
}

// VerifyResponseSignature reports whether expected is the SHA-256 hex
// digest of data's canonical JSON encoding. Data that cannot be encoded
// returns an ErrFormat error.
//
// Go maps encode with sorted keys. To check a response exactly as the
// server serialized it, pass the body as a json.RawMessage.
func VerifyResponseSignature(data any, expected string) (bool, error) {
	return crypto.VerifyDigest(data, expected)
}

// PublicKey returns the server's public key, fetching it if necessary.
func (c *Client) PublicKey(ctx context.Context) (string, error) {
	return c.keys.Get(ctx)
}

// InvalidatePublicKey drops the cached public key so the next use fetches
// it again.
func (c *Client) InvalidatePublicKey() {
	c.keys.Invalidate()

	c.mu.Lock()
	c.keyInfo = KeyInfo{}
	c.mu.Unlock()
}

// PublicKeyInfo returns the metadata of the most recently fetched key.
// It is zero until a fetch succeeds and after InvalidatePublicKey.
func (c *Client) PublicKeyInfo() KeyInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.keyInfo
}

// KeyStats returns public key fetch activity.
func (c *Client) KeyStats() KeyStats {
	return c.keys.Stats()
}
