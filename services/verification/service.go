// Package verification issues, checks and re-sends the one-time codes that
// move a PENDING account to ACTIVE.
package verification

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/tech-arch1tect/accounts/config"
	"github.com/tech-arch1tect/accounts/services/accounts"
	"github.com/tech-arch1tect/accounts/services/apperr"
	"github.com/tech-arch1tect/accounts/services/clock"
	"github.com/tech-arch1tect/accounts/services/logging"
	"go.uber.org/zap"
)

var (
	ErrInvalidCode     = apperr.New(apperr.InvalidCode, "invalid verification code")
	ErrCodeExpired     = apperr.New(apperr.CodeExpired, "verification code has expired")
	ErrAlreadyVerified = apperr.New(apperr.AlreadyVerified, "account is already verified")
	ErrAccountNotFound = apperr.New(apperr.NotFound, "account not found")
)

// CodeSender delivers a freshly issued code to the account holder.
type CodeSender interface {
	SendVerificationCode(email, code string, expiresAt time.Time) error
}

type Service struct {
	store      accounts.Store
	sender     CodeSender
	clock      clock.Clock
	codeLength int
	expiry     time.Duration
	logger     *logging.Service
}

func NewService(cfg *config.AuthConfig, store accounts.Store, sender CodeSender, clk clock.Clock, logger *logging.Service) *Service {
	codeLength := cfg.VerificationCodeLength
	if codeLength <= 0 {
		codeLength = 16
	}
	expiry := cfg.VerificationCodeExpiry
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}

	return &Service{
		store:      store,
		sender:     sender,
		clock:      clock.OrReal(clk),
		codeLength: codeLength,
		expiry:     expiry,
		logger:     logger.Named("verification"),
	}
}

// AssignCode sets a new code on the account without persisting it, replacing
// any previous one. Used for accounts that are about to be created.
func (s *Service) AssignCode(account *accounts.Account) (string, error) {
	code, err := s.generateCode()
	if err != nil {
		return "", err
	}
	account.SetVerificationCode(code, s.clock.Now().Add(s.expiry))
	return code, nil
}

// IssueCode assigns a new code and persists it. The account stays PENDING.
func (s *Service) IssueCode(ctx context.Context, account *accounts.Account) (string, error) {
	code, err := s.AssignCode(account)
	if err != nil {
		return "", err
	}

	if err := s.store.Save(ctx, account); err != nil {
		return "", fmt.Errorf("store verification code: %w", err)
	}

	s.logger.Debug("verification code issued", zap.Uint("account_id", account.ID))
	return code, nil
}

// Deliver hands the account's outstanding code to the sender. A delivery
// failure is logged and swallowed; the code stays valid and Resend can be
// called again.
func (s *Service) Deliver(account *accounts.Account, code string) {
	if s.sender == nil || account.VerificationExpiresAt == nil {
		return
	}

	if err := s.sender.SendVerificationCode(account.Email, code, *account.VerificationExpiresAt); err != nil {
		s.logger.Warn("verification code delivery failed",
			zap.Uint("account_id", account.ID),
			zap.Error(err))
	}
}

// IssueAndDeliver is IssueCode followed by Deliver.
func (s *Service) IssueAndDeliver(ctx context.Context, account *accounts.Account) error {
	code, err := s.IssueCode(ctx, account)
	if err != nil {
		return err
	}
	s.Deliver(account, code)
	return nil
}

func (s *Service) Verify(ctx context.Context, code string) (*accounts.Account, error) {
	if code == "" {
		return nil, ErrInvalidCode
	}

	account, found, err := s.store.FindByVerificationCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrInvalidCode
	}

	if account.CodeExpired(s.clock.Now()) {
		account.ClearVerificationCode()
		if err := s.store.Save(ctx, account); err != nil {
			return nil, fmt.Errorf("clear expired code: %w", err)
		}
		s.logger.Info("expired verification code consumed", zap.Uint("account_id", account.ID))
		return nil, ErrCodeExpired
	}

	account.Activate()
	if err := s.store.Save(ctx, account); err != nil {
		return nil, fmt.Errorf("activate account: %w", err)
	}

	s.logger.Info("account verified", zap.Uint("account_id", account.ID))
	return account, nil
}

func (s *Service) Resend(ctx context.Context, email string) error {
	account, found, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !found {
		return ErrAccountNotFound
	}
	if account.IsActive() {
		return ErrAlreadyVerified
	}

	return s.IssueAndDeliver(ctx, account)
}

func (s *Service) generateCode() (string, error) {
	bytes := make([]byte, s.codeLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", apperr.Wrap(err, apperr.Internal, "failed to generate verification code")
	}
	return hex.EncodeToString(bytes), nil
}
