package hashing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"lms-service/internal/config"
)

func newTestHasher() *Hasher {
	return NewHasher(&config.Config{
		Hashing: config.HashingConfig{BcryptCost: bcrypt.MinCost},
	})
}

func TestHashAndVerifyPassword(t *testing.T) {
	h := newTestHasher()

	hash, err := h.HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.NoError(t, h.VerifyPassword(hash, "secret123"))
	assert.ErrorIs(t, h.VerifyPassword(hash, "wrong"), ErrPasswordMismatch)
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	h := newTestHasher()

	first, err := h.HashPassword("secret123")
	require.NoError(t, err)
	second, err := h.HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	h := newTestHasher()
	err := h.VerifyPassword("not-a-bcrypt-hash", "secret123")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPasswordMismatch)
}

func TestNationalIDHash(t *testing.T) {
	h := newTestHasher()

	// Lookups must hit the same row however the id was typed.
	assert.Equal(t, h.NationalIDHash("991234567V"), h.NationalIDHash(" 991234567v "))
	assert.NotEqual(t, h.NationalIDHash("991234567V"), h.NationalIDHash("991234568V"))
	assert.Len(t, h.NationalIDHash("200012345678"), 64)
}

func TestNewHasher_ClampsWildCost(t *testing.T) {
	h := NewHasher(&config.Config{Hashing: config.HashingConfig{BcryptCost: 99}})
	hash, err := h.HashPassword("secret123")
	require.NoError(t, err)
	assert.NoError(t, h.VerifyPassword(hash, "secret123"))
}
