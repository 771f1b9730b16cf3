package api

import "encoding/json"

// PublicKeyResponse is the extracted result of GET /api/auth/public-key.
type PublicKeyResponse struct {
	// Key is the PEM or bare base64 SPKI public key.
	Key string
	// Info holds optional metadata sent alongside the key.
	Info PublicKeyInfo
}

// PublicKeyInfo is metadata the server may attach to the key envelope.
// It is informational only; encryption always uses RSA-OAEP/SHA-256.
type PublicKeyInfo struct {
	Algorithm string `json:"algorithm,omitempty"`
	KeySize   int    `json:"keySize,omitempty"`
	Hash      string `json:"hash,omitempty"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
	Timestamp    int64  `json:"timestamp"`
	Nonce        string `json:"nonce"`
	Signature    string `json:"signature"`
}

// LoginResponse is the result of a successful login.
type LoginResponse struct {
	Token   string
	Message string
	User    json.RawMessage
}

// ChangePasswordRequest is the body of PUT /api/auth/password.
// NewPassword is RSA-OAEP ciphertext in standard base64.
type ChangePasswordRequest struct {
	AdminID     int64  `json:"admin_id"`
	Username    string `json:"username"`
	NewPassword string `json:"new_password"`
}

// loginEnvelope accepts both {"data":{"token":...}} and a top-level token.
type loginEnvelope struct {
	Success *bool           `json:"success,omitempty"`
	Message string          `json:"message"`
	Token   string          `json:"token"`
	User    json.RawMessage `json:"user"`
	Data    *struct {
		Token string          `json:"token"`
		User  json.RawMessage `json:"user"`
	} `json:"data"`
}
