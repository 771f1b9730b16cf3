package mailadmin

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailadmin/client-go/internal/crypto"
)

var (
	serverKeyOnce sync.Once
	serverKey     *rsa.PrivateKey
)

func testServerKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	serverKeyOnce.Do(func() {
		var err error
		serverKey, err = rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
	})
	return serverKey
}

func testServerPEM(t *testing.T) string {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(&testServerKey(t).PublicKey)
	require.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

// keyServer serves body for the key endpoint and counts requests.
func keyServer(t *testing.T, status int, body string) (*Client, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/public-key" {
			http.NotFound(w, r)
			return
		}
		calls.Add(1)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	client, err := New(WithBaseURL(server.URL))
	require.NoError(t, err)
	return client, &calls
}

func jsonBody(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func decryptBase64(t *testing.T, ciphertext string) string {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	require.NoError(t, err)
	plain, err := rsa.DecryptOAEP(sha256.New(), nil, testServerKey(t), raw, nil)
	require.NoError(t, err)
	return string(plain)
}

func TestEncryptPassword_KnownVector(t *testing.T) {
	restore := crypto.SetRandReaderForTesting(strings.NewReader(
		string([]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15})))
	defer restore()

	client, err := New(WithClock(func() time.Time { return time.UnixMilli(1700000000000) }))
	require.NoError(t, err)

	sub, err := client.EncryptPassword("secret", "Alice")
	require.NoError(t, err)

	assert.Equal(t, "d7e3797855cb8e429515e3b6148c9f403a8ca244d617bc4487ded80b69000241", sub.PasswordHash)
	assert.Equal(t, int64(1700000000000), sub.Timestamp)
	assert.Equal(t, "ABCDEFGHIJKLMNOP", sub.Nonce)
	assert.Equal(t, "5b3cf98cd42451f4f24465cfd2301d0bd14dbcdcd08f9fb831083b15c9dc7eb7", sub.Signature)
}

func TestEncryptPassword_SaltIsCaseInsensitive(t *testing.T) {
	client, err := New()
	require.NoError(t, err)

	upper, err := client.EncryptPassword("secret", "ALICE")
	require.NoError(t, err)
	lower, err := client.EncryptPassword("secret", "alice")
	require.NoError(t, err)

	assert.Equal(t, upper.PasswordHash, lower.PasswordHash)
	assert.Equal(t, PasswordHash("secret", "Alice"), upper.PasswordHash)
	assert.NotEqual(t, upper.Nonce, lower.Nonce)
}

func TestEncryptPassword_SignatureMatchesFields(t *testing.T) {
	client, err := New()
	require.NoError(t, err)

	sub, err := client.EncryptPassword("pw", "Bob")
	require.NoError(t, err)

	assert.Len(t, sub.PasswordHash, 64)
	assert.Len(t, sub.Nonce, 16)
	assert.Equal(t, crypto.SignatureFor("Bob", sub.PasswordHash, sub.Timestamp, sub.Nonce), sub.Signature)
	assert.InDelta(t, time.Now().UnixMilli(), sub.Timestamp, float64(5*time.Second/time.Millisecond))
}

func TestEncryptPassword_RandomSourceFailure(t *testing.T) {
	restore := crypto.SetRandReaderForTesting(iotest.ErrReader(errors.New("entropy exhausted")))
	defer restore()

	client, err := New()
	require.NoError(t, err)

	_, err = client.EncryptPassword("secret", "alice")
	assert.ErrorIs(t, err, ErrCrypto)
	assert.Equal(t, KindCrypto, KindOf(err))
}

func TestSignedSubmission_JSON(t *testing.T) {
	data, err := json.Marshal(SignedSubmission{PasswordHash: "h", Timestamp: 1, Nonce: "n", Signature: "s"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"password_hash":"h","timestamp":1,"nonce":"n","signature":"s"}`, string(data))
}

func TestEncryptPasswordWithRSA(t *testing.T) {
	tests := []struct {
		name string
		body func(pem string) any
	}{
		{"data.publicKey", func(p string) any { return map[string]any{"success": true, "data": map[string]any{"publicKey": p}} }},
		{"publicKey", func(p string) any { return map[string]any{"publicKey": p} }},
		{"public_key", func(p string) any { return map[string]any{"public_key": p} }},
		{"bare base64", func(p string) any {
			return map[string]any{"key": crypto.NormalizePEM(p)}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := keyServer(t, http.StatusOK, jsonBody(t, tt.body(testServerPEM(t))))

			ciphertext, err := client.EncryptPasswordWithRSA(context.Background(), "n3w-secret")
			require.NoError(t, err)

			assert.Equal(t, "n3w-secret", decryptBase64(t, ciphertext))
		})
	}
}

func TestEncryptPasswordWithRSA_Randomized(t *testing.T) {
	client, calls := keyServer(t, http.StatusOK, jsonBody(t, map[string]any{"publicKey": testServerPEM(t)}))

	first, err := client.EncryptPasswordWithRSA(context.Background(), "same")
	require.NoError(t, err)
	second, err := client.EncryptPasswordWithRSA(context.Background(), "same")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
}

func TestEncryptPasswordWithRSA_ConcurrentFirstUse(t *testing.T) {
	client, calls := keyServer(t, http.StatusOK, jsonBody(t, map[string]any{"publicKey": testServerPEM(t)}))

	const callers = 5
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.EncryptPasswordWithRSA(context.Background(), "pw")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int64(1), client.KeyStats().Fetches)
}

func TestEncryptPasswordWithRSA_FetchFailure(t *testing.T) {
	client, calls := keyServer(t, http.StatusInternalServerError, `{"message":"unavailable"}`)

	_, err := client.EncryptPasswordWithRSA(context.Background(), "pw")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetch)
	assert.Equal(t, "unavailable", err.Error())
	assert.Equal(t, KindFetch, KindOf(err))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)

	// Nothing was cached, so the next call goes back to the network.
	_, err = client.EncryptPasswordWithRSA(context.Background(), "pw")
	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestEncryptPasswordWithRSA_NonStringKey(t *testing.T) {
	client, _ := keyServer(t, http.StatusOK, `{"publicKey":123}`)

	_, err := client.EncryptPasswordWithRSA(context.Background(), "pw")
	assert.ErrorIs(t, err, ErrFormat)
	assert.Equal(t, KindFormat, KindOf(err))
}

func TestEncryptPasswordWithRSA_InvalidBase64Key(t *testing.T) {
	client, _ := keyServer(t, http.StatusOK, `{"publicKey":"-----BEGIN PUBLIC KEY-----\n@@@@\n-----END PUBLIC KEY-----"}`)

	_, err := client.EncryptPasswordWithRSA(context.Background(), "pw")
	assert.ErrorIs(t, err, ErrFormat)
}

func TestEncryptPasswordWithRSA_TooLong(t *testing.T) {
	client, _ := keyServer(t, http.StatusOK, jsonBody(t, map[string]any{"publicKey": testServerPEM(t)}))

	_, err := client.EncryptPasswordWithRSA(context.Background(), strings.Repeat("a", 191))
	assert.ErrorIs(t, err, ErrCrypto)
	assert.ErrorIs(t, err, ErrPlaintextTooLong)

	_, err = client.EncryptPasswordWithRSA(context.Background(), strings.Repeat("a", 190))
	assert.NoError(t, err)
}

func TestEncryptPasswordWithRSA_CallerContext(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte(`{"publicKey":"x"}`))
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	client, err := New(WithBaseURL(server.URL))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = client.EncryptPasswordWithRSA(ctx, "pw")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestInvalidatePublicKey(t *testing.T) {
	client, calls := keyServer(t, http.StatusOK, jsonBody(t, map[string]any{"publicKey": testServerPEM(t)}))

	key, err := client.PublicKey(context.Background())
	require.NoError(t, err)
	assert.Contains(t, key, "BEGIN PUBLIC KEY")

	client.InvalidatePublicKey()
	assert.False(t, client.KeyStats().Cached)

	_, err = client.PublicKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestPublicKeyInfo(t *testing.T) {
	client, _ := keyServer(t, http.StatusOK, jsonBody(t, map[string]any{
		"data": map[string]any{
			"publicKey": testServerPEM(t),
			"algorithm": "RSA-OAEP",
			"keySize":   2048,
			"hash":      "SHA-256",
		},
	}))
	assert.Equal(t, KeyInfo{}, client.PublicKeyInfo())

	_, err := client.PublicKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, KeyInfo{Algorithm: "RSA-OAEP", KeySize: 2048, Hash: "SHA-256"}, client.PublicKeyInfo())

	client.InvalidatePublicKey()
	assert.Equal(t, KeyInfo{}, client.PublicKeyInfo())
}

func TestVerifyResponseSignature_RawMessageKeepsKeyOrder(t *testing.T) {
	raw := json.RawMessage(`{"success":true,"data":{"id":7,"name":"x"}}`)

	ok, err := VerifyResponseSignature(raw, crypto.SHA256Hex(string(raw)))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyResponseSignature(t *testing.T) {
	data := map[string]any{"b": "<x>", "a": 1}
	digest := "836f01bed2d0b38eadd56d2ce0bada6a9e237f179452b10364f92e5b45ab2d1b"

	ok, err := VerifyResponseSignature(data, digest)
	require.NoError(t, err)
	assert.True(t, ok)

	// Verification has no side effects.
	ok, err = VerifyResponseSignature(data, digest)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyResponseSignature(data, strings.Repeat("0", 64))
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = VerifyResponseSignature(map[string]any{"f": func() {}}, digest)
	assert.ErrorIs(t, err, ErrFormat)
}
