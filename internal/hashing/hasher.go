package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"lms-service/internal/config"
)

// ErrPasswordMismatch is returned when a candidate password does not verify
// against the stored hash.
var ErrPasswordMismatch = errors.New("password mismatch")

// Hasher hashes passwords with bcrypt and derives the deterministic lookup
// hash for national id numbers. Passwords are never compared as strings;
// bcrypt's verify handles the comparison in constant time.
type Hasher struct {
	cost int
}

func NewHasher(cfg *config.Config) *Hasher {
	cost := cfg.Hashing.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// HashPassword produces a salted bcrypt hash of the password.
func (h *Hasher) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword checks a candidate against a stored hash. Returns
// ErrPasswordMismatch on a clean mismatch, other errors on malformed hashes.
func (h *Hasher) VerifyPassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("failed to verify password: %w", err)
	}
	return nil
}

// NationalIDHash normalizes and hashes a national id for unique lookups.
// The plaintext id is stored only in encrypted form.
func (h *Hasher) NationalIDHash(nationalID string) string {
	normalized := strings.ToUpper(strings.TrimSpace(nationalID))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
