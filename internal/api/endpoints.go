package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mailadmin/client-go/internal/apierrors"
	"github.com/mailadmin/client-go/internal/crypto"
)

const (
	publicKeyPath = "/api/auth/public-key"
	loginPath     = "/api/auth/login"
	passwordPath  = "/api/auth/password"
	mePath        = "/api/auth/me"
)

// GetPublicKey fetches the server's RSA public key. The request carries no
// Authorization header. Every failure is a fetch-kind error except a key
// of the wrong type, which is a format-kind error.
func (c *Client) GetPublicKey(ctx context.Context) (*PublicKeyResponse, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, http.MethodGet, publicKeyPath, "", nil, &raw); err != nil {
		return nil, fetchError(err)
	}

	envelope, err := decodeEnvelope(raw)
	if err != nil {
		return nil, apierrors.NewFetchError(FetchFailedMessage, err)
	}

	key, rule, err := ExtractPublicKey(envelope, KeyFieldRulesV1)
	if err != nil {
		c.log.Debug().Stringer("field", rule).Msg("public key field has wrong type")
		return nil, err
	}

	info := keyInfo(envelope)
	c.log.Debug().
		Stringer("field", rule).
		Str("algorithm", info.Algorithm).
		Int("key_size", info.KeySize).
		Msg("public key fetched")
	if info.Hash != "" && !strings.EqualFold(info.Hash, crypto.OAEPHash) {
		c.log.Warn().
			Str("advertised", info.Hash).
			Str("used", crypto.OAEPHash).
			Msg("key endpoint advertises a different OAEP hash")
	}

	return &PublicKeyResponse{Key: key, Info: info}, nil
}

// Login submits a signed login request and returns the issued token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var env loginEnvelope
	if err := c.Do(ctx, http.MethodPost, loginPath, "", req, &env); err != nil {
		return nil, err
	}

	if env.Success != nil && !*env.Success {
		return nil, loginFailed(env.Message)
	}

	resp := &LoginResponse{
		Token:   env.Token,
		Message: env.Message,
		User:    env.User,
	}
	if env.Data != nil {
		if env.Data.Token != "" {
			resp.Token = env.Data.Token
		}
		if len(env.Data.User) > 0 {
			resp.User = env.Data.User
		}
	}
	if resp.Token == "" {
		return nil, loginFailed("no token in response")
	}
	return resp, nil
}

// ChangePassword updates an administrator password. req.NewPassword must
// already be encrypted.
func (c *Client) ChangePassword(ctx context.Context, token string, req ChangePasswordRequest) error {
	return c.Do(ctx, http.MethodPut, passwordPath, token, req, nil)
}

// CurrentUser returns the authenticated user record.
func (c *Client) CurrentUser(ctx context.Context, token string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, http.MethodGet, mePath, token, nil, &raw); err != nil {
		return nil, err
	}

	envelope, err := decodeEnvelope(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	user, _ := firstPresent(envelope, userFieldRules)
	out, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("failed to encode user: %w", err)
	}
	return out, nil
}

// fetchError classifies a transport failure from the key endpoint. The
// server's message is kept verbatim when it sent one.
func fetchError(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apierrors.NewFetchError(apiErr.Message, err)
	}
	return apierrors.NewFetchError(FetchFailedMessage, err)
}

func loginFailed(message string) error {
	if message == "" {
		return apierrors.ErrLoginFailed
	}
	return fmt.Errorf("%w: %s", apierrors.ErrLoginFailed, message)
}

func keyInfo(envelope any) PublicKeyInfo {
	src := envelope
	if data, ok := lookup(envelope, []string{"data"}); ok {
		if _, isObject := data.(map[string]any); isObject {
			src = data
		}
	}

	var info PublicKeyInfo
	if v, ok := lookup(src, []string{"algorithm"}); ok {
		info.Algorithm, _ = v.(string)
	}
	if v, ok := lookup(src, []string{"hash"}); ok {
		info.Hash, _ = v.(string)
	}
	if v, ok := lookup(src, []string{"keySize"}); ok {
		if n, ok := v.(json.Number); ok {
			if size, err := n.Int64(); err == nil {
				info.KeySize = int(size)
			}
		}
	}
	return info
}
