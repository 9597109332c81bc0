package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordMismatch indicates the supplied password does not match the stored hash.
var ErrPasswordMismatch = errors.New("password mismatch")

// PasswordHasher hashes new passwords with argon2id and verifies both argon2id
// and legacy bcrypt hashes.
type PasswordHasher struct {
	params *argon2id.Params
}

// NewPasswordHasher returns a hasher using the library's default argon2id parameters.
func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{params: argon2id.DefaultParams}
}

// NewPasswordHasherWithParams returns a hasher using p.
func NewPasswordHasherWithParams(p *argon2id.Params) *PasswordHasher {
	return &PasswordHasher{params: p}
}

// Hash encodes password as an argon2id hash.
func (h *PasswordHasher) Hash(password string) (string, error) {
	hash, err := argon2id.CreateHash(password, h.params)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

// Verify checks password against encoded. It returns ErrPasswordMismatch on mismatch.
func (h *PasswordHasher) Verify(password, encoded string) error {
	if strings.HasPrefix(encoded, "$2") {
		err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		if err != nil {
			return fmt.Errorf("verify bcrypt hash: %w", err)
		}
		return nil
	}

	match, err := argon2id.ComparePasswordAndHash(password, encoded)
	if err != nil {
		return fmt.Errorf("verify argon2id hash: %w", err)
	}
	if !match {
		return ErrPasswordMismatch
	}
	return nil
}

// NeedsRehash reports whether encoded was produced by the legacy scheme.
func (h *PasswordHasher) NeedsRehash(encoded string) bool {
	return strings.HasPrefix(encoded, "$2")
}
