// Package password hashes and verifies account credentials and enforces the
// password strength policy.
package password

import (
	"fmt"

	"github.com/tech-arch1tect/accounts/config"
	"github.com/tech-arch1tect/accounts/services/apperr"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmptyPassword = apperr.New(apperr.Validation, "password cannot be empty")
	ErrInvalidHash   = apperr.New(apperr.Internal, "invalid password hash")
)

// Hasher turns a plaintext password into a salted one-way digest.
type Hasher interface {
	// Hash returns a digest with an embedded random salt.
	Hash(plaintext string) (string, error)

	// Verify returns (true, nil) on match, (false, nil) on mismatch and an
	// error only when the digest itself cannot be parsed.
	Verify(plaintext, digest string) (bool, error)
}

// NewHasher selects the implementation named by cfg.PasswordHasher.
func NewHasher(cfg *config.AuthConfig) (Hasher, error) {
	switch cfg.PasswordHasher {
	case "", "bcrypt":
		return NewBcryptHasher(cfg.BcryptCost), nil
	case "argon2id":
		return NewArgon2idHasher(), nil
	default:
		return nil, fmt.Errorf("unsupported password hasher: %s (supported: bcrypt, argon2id)", cfg.PasswordHasher)
	}
}

type BcryptHasher struct {
	cost int
}

// NewBcryptHasher falls back to bcrypt.DefaultCost for out-of-range costs.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		// bcrypt rejects inputs longer than 72 bytes
		if err == bcrypt.ErrPasswordTooLong {
			return "", apperr.New(apperr.Validation, "password must be at most 72 bytes")
		}
		return "", apperr.Wrap(err, apperr.Internal, "failed to hash password")
	}
	return string(hash), nil
}

func (h *BcryptHasher) Verify(plaintext, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	switch err {
	case nil:
		return true, nil
	case bcrypt.ErrMismatchedHashAndPassword:
		return false, nil
	default:
		return false, apperr.Wrap(err, apperr.Internal, ErrInvalidHash.Message)
	}
}
