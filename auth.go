package mailadmin

import (
	"context"
	"encoding/json"

	"github.com/mailadmin/client-go/internal/api"
)

// ChangePasswordRequest identifies the administrator and the new password
// in plaintext. The password is encrypted before it is sent.
type ChangePasswordRequest struct {
	AdminID     int64
	Username    string
	NewPassword string
}

// Login hashes and signs password, submits it and stores the issued token
// for later calls.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	sub, err := c.EncryptPassword(password, username)
	if err != nil {
		return nil, err
	}

	resp, err := c.apiClient.Login(ctx, api.LoginRequest{
		Username:     username,
		PasswordHash: sub.PasswordHash,
		Timestamp:    sub.Timestamp,
		Nonce:        sub.Nonce,
		Signature:    sub.Signature,
	})
	if err != nil {
		c.log.Debug().Err(err).Str("username", username).Msg("login failed")
		return nil, err
	}

	session := &Session{Token: resp.Token, User: resp.User}
	c.mu.Lock()
	c.session = session
	c.mu.Unlock()

	c.log.Info().Str("username", username).Msg("logged in")
	return session, nil
}

// SetToken installs a token obtained elsewhere, for example one saved by
// a previous process.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if token == "" {
		c.session = nil
		return
	}
	c.session = &Session{Token: token}
}

// Logout forgets the stored session. It makes no network call.
func (c *Client) Logout() {
	c.SetToken("")
}

// Session returns the current session, or nil before Login.
func (c *Client) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

func (c *Client) token() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil || c.session.Token == "" {
		return "", ErrNotLoggedIn
	}
	return c.session.Token, nil
}

// ChangePassword encrypts req.NewPassword with the server's public key and
// submits it. Requires a session.
func (c *Client) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	token, err := c.token()
	if err != nil {
		return err
	}

	ciphertext, err := c.EncryptPasswordWithRSA(ctx, req.NewPassword)
	if err != nil {
		return err
	}

	if err := c.apiClient.ChangePassword(ctx, token, api.ChangePasswordRequest{
		AdminID:     req.AdminID,
		Username:    req.Username,
		NewPassword: ciphertext,
	}); err != nil {
		return err
	}

	c.log.Info().Int64("admin_id", req.AdminID).Msg("password changed")
	return nil
}

// CurrentUser returns the authenticated user record as raw JSON.
func (c *Client) CurrentUser(ctx context.Context) (json.RawMessage, error) {
	token, err := c.token()
	if err != nil {
		return nil, err
	}
	return c.apiClient.CurrentUser(ctx, token)
}
