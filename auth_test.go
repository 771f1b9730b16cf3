package mailadmin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailadmin/client-go/internal/crypto"
)

// fakeServer is a minimal admin API.
type fakeServer struct {
	t           *testing.T
	pem         string
	loginBody   map[string]any
	changeBody  map[string]any
	changeAuth  string
	meAuth      string
	loginStatus int
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/auth/public-key":
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{"publicKey": f.pem}})
	case "/api/auth/login":
		json.NewDecoder(r.Body).Decode(&f.loginBody)
		if f.loginStatus != 0 {
			w.WriteHeader(f.loginStatus)
			w.Write([]byte(`{"success":false,"message":"invalid credentials"}`))
			return
		}
		w.Write([]byte(`{"success":true,"data":{"token":"tok-1","user":{"id":7,"username":"alice"}}}`))
	case "/api/auth/password":
		f.changeAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&f.changeBody)
		w.WriteHeader(http.StatusNoContent)
	case "/api/auth/me":
		f.meAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"success":true,"data":{"id":7,"username":"alice"}}`))
	default:
		http.NotFound(w, r)
	}
}

func newFakeClient(t *testing.T) (*Client, *fakeServer) {
	t.Helper()
	fake := &fakeServer{t: t, pem: testServerPEM(t)}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	client, err := New(
		WithBaseURL(server.URL),
		WithClock(func() time.Time { return time.UnixMilli(1700000000000) }),
	)
	require.NoError(t, err)
	return client, fake
}

func TestLogin(t *testing.T) {
	client, fake := newFakeClient(t)

	session, err := client.Login(context.Background(), "Alice", "secret")
	require.NoError(t, err)

	assert.Equal(t, "tok-1", session.Token)
	assert.JSONEq(t, `{"id":7,"username":"alice"}`, string(session.User))
	assert.Same(t, session, client.Session())

	body := fake.loginBody
	assert.Equal(t, "Alice", body["username"])
	assert.Equal(t, "d7e3797855cb8e429515e3b6148c9f403a8ca244d617bc4487ded80b69000241", body["password_hash"])
	assert.Equal(t, float64(1700000000000), body["timestamp"])
	nonce, _ := body["nonce"].(string)
	assert.Len(t, nonce, 16)
	assert.Equal(t,
		crypto.SignatureFor("Alice", body["password_hash"].(string), 1700000000000, nonce),
		body["signature"])
	assert.NotContains(t, body, "password")
}

func TestLogin_Rejected(t *testing.T) {
	client, fake := newFakeClient(t)
	fake.loginStatus = http.StatusUnauthorized

	_, err := client.Login(context.Background(), "Alice", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Nil(t, client.Session())
}

func TestChangePassword(t *testing.T) {
	client, fake := newFakeClient(t)
	_, err := client.Login(context.Background(), "Alice", "secret")
	require.NoError(t, err)

	err = client.ChangePassword(context.Background(), ChangePasswordRequest{
		AdminID:     7,
		Username:    "alice",
		NewPassword: "n3w-secret",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-1", fake.changeAuth)
	assert.Equal(t, float64(7), fake.changeBody["admin_id"])
	assert.Equal(t, "alice", fake.changeBody["username"])

	ciphertext, _ := fake.changeBody["new_password"].(string)
	assert.NotEqual(t, "n3w-secret", ciphertext)
	assert.Equal(t, "n3w-secret", decryptBase64(t, ciphertext))
}

func TestChangePassword_RequiresSession(t *testing.T) {
	client, fake := newFakeClient(t)

	err := client.ChangePassword(context.Background(), ChangePasswordRequest{NewPassword: "x"})
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.Nil(t, fake.changeBody)
	assert.Equal(t, int64(0), client.KeyStats().Fetches)
}

func TestCurrentUser(t *testing.T) {
	client, fake := newFakeClient(t)

	_, err := client.CurrentUser(context.Background())
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	client.SetToken("saved-token")
	user, err := client.CurrentUser(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer saved-token", fake.meAuth)
	assert.JSONEq(t, `{"id":7,"username":"alice"}`, string(user))
}

func TestLogout(t *testing.T) {
	client, _ := newFakeClient(t)
	client.SetToken("t")
	require.NotNil(t, client.Session())

	client.Logout()
	assert.Nil(t, client.Session())
}
