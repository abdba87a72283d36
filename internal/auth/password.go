package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/mkarpinski/blog-api/internal/apperror"
)

// defaultCost is the bcrypt work factor. Cost 12 takes roughly 250ms on a
// modern server; negligible for login, expensive for brute force.
const defaultCost = 12

// PasswordService provides bcrypt hashing and verification. The cost is
// injectable so tests can use the bcrypt minimum instead of paying 250ms
// per hash.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService. A cost outside bcrypt's
// valid range falls back to the default (12).
func NewPasswordService(cost int) *PasswordService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = defaultCost
	}
	return &PasswordService{cost: cost}
}

// Hash hashes the plaintext with bcrypt. The output embeds salt and cost,
// so it can be stored directly. bcrypt silently truncates inputs over
// 72 bytes; those are rejected explicitly instead.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", apperror.ValidationFailed("password", "password must be 72 bytes or fewer")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify checks a plaintext password against a stored bcrypt hash.
// A mismatch is reported as Unauthenticated; the comparison itself is
// constant-time inside bcrypt.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return apperror.Unauthenticated("invalid username or password")
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
