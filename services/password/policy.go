package password

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/tech-arch1tect/accounts/config"
	"github.com/tech-arch1tect/accounts/services/apperr"
)

type Policy struct {
	MinLength      int
	RequireUpper   bool
	RequireLower   bool
	RequireNumber  bool
	RequireSpecial bool
}

func PolicyFromConfig(cfg *config.AuthConfig) Policy {
	return Policy{
		MinLength:      cfg.MinLength,
		RequireUpper:   cfg.RequireUpper,
		RequireLower:   cfg.RequireLower,
		RequireNumber:  cfg.RequireNumber,
		RequireSpecial: cfg.RequireSpecial,
	}
}

// Validate returns a Validation error naming every unmet requirement.
func (p Policy) Validate(password string) error {
	if password == "" {
		return ErrEmptyPassword
	}

	if len(password) < p.MinLength {
		return apperr.Newf(apperr.Validation, "password must be at least %d characters", p.MinLength)
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	var missing []string
	if p.RequireUpper && !hasUpper {
		missing = append(missing, "one uppercase letter")
	}
	if p.RequireLower && !hasLower {
		missing = append(missing, "one lowercase letter")
	}
	if p.RequireNumber && !hasNumber {
		missing = append(missing, "one number")
	}
	if p.RequireSpecial && !hasSpecial {
		missing = append(missing, "one special character")
	}

	if len(missing) > 0 {
		return apperr.New(apperr.Validation, fmt.Sprintf("password must contain at least %s", strings.Join(missing, ", ")))
	}
	return nil
}
