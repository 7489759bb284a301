// Package profile implements the authenticated self-service mutations on an
// account: profile edits and password changes.
package profile

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tech-arch1tect/accounts/services/accounts"
	"github.com/tech-arch1tect/accounts/services/apperr"
	"github.com/tech-arch1tect/accounts/services/auth"
	"github.com/tech-arch1tect/accounts/services/logging"
	"github.com/tech-arch1tect/accounts/services/password"
	"go.uber.org/zap"
)

var (
	ErrAccountNotFound = apperr.New(apperr.NotFound, "account not found")
	ErrUsernameTaken   = apperr.New(apperr.Conflict, "username taken")
	ErrEmailTaken      = apperr.New(apperr.Conflict, "email taken")
	ErrProfileConflict = apperr.New(apperr.Conflict, "username or email taken")
	ErrWrongPassword   = apperr.New(apperr.InvalidCredentials, "current password is incorrect")
	ErrPasswordsDiffer = apperr.New(apperr.Mismatch, "new password and confirmation do not match")
)

type UpdateInput struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type Service struct {
	store  accounts.Store
	hasher password.Hasher
	policy password.Policy
	tokens auth.TokenIssuer
	logger *logging.Service
}

func NewService(store accounts.Store, hasher password.Hasher, policy password.Policy, tokens auth.TokenIssuer, logger *logging.Service) *Service {
	return &Service{
		store:  store,
		hasher: hasher,
		policy: policy,
		tokens: tokens,
		logger: logger.Named("profile"),
	}
}

func (s *Service) Get(ctx context.Context, accountID uint) (*accounts.Account, error) {
	account, found, err := s.store.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// UpdateProfile applies the non-blank fields of input and returns the saved
// account with a freshly issued token, since the old token carries the old
// username.
func (s *Service) UpdateProfile(ctx context.Context, accountID uint, input UpdateInput) (*accounts.Account, string, time.Time, error) {
	account, err := s.Get(ctx, accountID)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	var usernameChanged, emailChanged bool

	if username, ok := provided(input.Username); ok && username != account.Username {
		if err := accounts.ValidateUsername(username); err != nil {
			return nil, "", time.Time{}, err
		}
		if err := s.ensureUnclaimed(ctx, account.ID, username, s.store.FindByUsername, ErrUsernameTaken); err != nil {
			return nil, "", time.Time{}, err
		}
		account.Username = username
		usernameChanged = true
	}

	if raw, ok := provided(input.Email); ok {
		email, err := accounts.NormalizeEmail(raw)
		if err != nil {
			return nil, "", time.Time{}, err
		}
		if email != account.Email {
			if err := s.ensureUnclaimed(ctx, account.ID, email, s.store.FindByEmail, ErrEmailTaken); err != nil {
				return nil, "", time.Time{}, err
			}
			account.Email = email
			emailChanged = true
		}
	}

	if err := s.store.Save(ctx, account); err != nil {
		if errors.Is(err, accounts.ErrDuplicateKey) {
			return nil, "", time.Time{}, duplicateConflict(usernameChanged, emailChanged)
		}
		if errors.Is(err, accounts.ErrNotFound) {
			return nil, "", time.Time{}, ErrAccountNotFound
		}
		return nil, "", time.Time{}, err
	}

	token, expiresAt, err := s.tokens.Issue(account)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	s.logger.Info("profile updated", zap.Uint("account_id", account.ID))
	return account, token, expiresAt, nil
}

type finder func(ctx context.Context, value string) (*accounts.Account, bool, error)

func (s *Service) ensureUnclaimed(ctx context.Context, selfID uint, value string, find finder, taken error) error {
	holder, found, err := find(ctx, value)
	if err != nil {
		return err
	}
	if found && holder.ID != selfID {
		return taken
	}
	return nil
}

func (s *Service) ChangePassword(ctx context.Context, accountID uint, input ChangePasswordInput) error {
	account, err := s.Get(ctx, accountID)
	if err != nil {
		return err
	}

	ok, err := s.hasher.Verify(input.CurrentPassword, account.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Info("password change rejected: wrong current password", zap.Uint("account_id", account.ID))
		return ErrWrongPassword
	}

	if input.NewPassword != input.ConfirmPassword {
		return ErrPasswordsDiffer
	}

	if err := s.policy.Validate(input.NewPassword); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	account.PasswordHash = hash
	if err := s.store.Save(ctx, account); err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return ErrAccountNotFound
		}
		return err
	}

	s.logger.Info("password changed", zap.Uint("account_id", account.ID))
	return nil
}

// duplicateConflict names the field a unique index rejected when only one of
// them changed.
func duplicateConflict(usernameChanged, emailChanged bool) error {
	switch {
	case usernameChanged && !emailChanged:
		return ErrUsernameTaken
	case emailChanged && !usernameChanged:
		return ErrEmailTaken
	default:
		return ErrProfileConflict
	}
}

func provided(value *string) (string, bool) {
	if value == nil {
		return "", false
	}
	trimmed := strings.TrimSpace(*value)
	return trimmed, trimmed != ""
}
