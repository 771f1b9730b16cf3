package crypto

import (
	"bytes"
	"errors"
	"regexp"
	"strconv"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailadmin/client-go/internal/apierrors"
)

var alphanumeric = regexp.MustCompile(`^[A-Za-z0-9]+$`)

func TestRandomString_Shape(t *testing.T) {
	for _, n := range []int{1, 16, 64, 1000} {
		s, err := RandomString(n)
		require.NoError(t, err)
		assert.Len(t, s, n)
		assert.Regexp(t, alphanumeric, s)
	}
}

func TestRandomString_DefaultLength(t *testing.T) {
	for _, n := range []int{0, -5} {
		s, err := RandomString(n)
		require.NoError(t, err)
		assert.Len(t, s, DefaultNonceLength)
	}
}

func TestRandomString_Unique(t *testing.T) {
	a, err := RandomString(16)
	require.NoError(t, err)
	b, err := RandomString(16)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestRandomString_ModuloMapping(t *testing.T) {
	restore := SetRandReaderForTesting(bytes.NewReader([]byte{0, 25, 26, 51, 52, 61, 62, 255}))
	defer restore()

	s, err := RandomString(8)
	require.NoError(t, err)
	assert.Equal(t, "AZaz09AH", s)
}

func TestRandomString_SourceFailure(t *testing.T) {
	restore := SetRandReaderForTesting(iotest.ErrReader(errors.New("entropy exhausted")))
	defer restore()

	_, err := RandomString(16)
	assert.ErrorIs(t, err, ErrRandomSource)
	assert.ErrorIs(t, err, apierrors.ErrCrypto)
	assert.True(t, apierrors.IsKind(err, apierrors.KindCrypto))

	_, err = NewRequestSignature("alice", "h", time.Now())
	assert.ErrorIs(t, err, apierrors.ErrCrypto)
}

func TestNewRequestSignature(t *testing.T) {
	restore := SetRandReaderForTesting(bytes.NewReader([]byte{
		0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
	}))
	defer restore()

	hash := SHA256Hex("secretalice")
	now := time.UnixMilli(1700000000000)

	sig, err := NewRequestSignature("Alice", hash, now)
	require.NoError(t, err)

	assert.Equal(t, int64(1700000000000), sig.Timestamp)
	assert.Equal(t, "ABCDEFGHIJKLMNOP", sig.Nonce)
	assert.Equal(t, "5b3cf98cd42451f4f24465cfd2301d0bd14dbcdcd08f9fb831083b15c9dc7eb7", sig.Signature)
	assert.Equal(t, SHA256Hex("Alice"+hash+strconv.FormatInt(sig.Timestamp, 10)+sig.Nonce), sig.Signature)
}

func TestNewRequestSignature_FreshNonce(t *testing.T) {
	now := time.Now()
	a, err := NewRequestSignature("bob", "h", now)
	require.NoError(t, err)
	b, err := NewRequestSignature("bob", "h", now)
	require.NoError(t, err)

	assert.Equal(t, a.Timestamp, b.Timestamp)
	assert.NotEqual(t, a.Nonce, b.Nonce)
	assert.NotEqual(t, a.Signature, b.Signature)
}
