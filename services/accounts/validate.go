package accounts

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/tech-arch1tect/accounts/services/apperr"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// ValidateUsername requires 3-30 characters starting with a letter, followed by
// letters, digits or underscores.
func ValidateUsername(username string) error {
	if username == "" {
		return apperr.New(apperr.Validation, "username cannot be empty")
	}
	if len(username) < MinUsernameLength {
		return apperr.Newf(apperr.Validation, "username must be at least %d characters", MinUsernameLength)
	}
	if len(username) > MaxUsernameLength {
		return apperr.Newf(apperr.Validation, "username must be at most %d characters", MaxUsernameLength)
	}
	if !usernamePattern.MatchString(username) {
		return apperr.New(apperr.Validation, "username must start with a letter and contain only letters, numbers, and underscores")
	}
	return nil
}

// NormalizeEmail trims, validates and lower-cases an address. Display names
// ("Alice <a@x.com>") are rejected.
func NormalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", apperr.New(apperr.Validation, "email cannot be empty")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return "", apperr.New(apperr.Validation, "email address is malformed")
	}
	if !strings.Contains(addr.Address[strings.LastIndex(addr.Address, "@")+1:], ".") {
		return "", apperr.New(apperr.Validation, "email address is malformed")
	}

	return strings.ToLower(addr.Address), nil
}
