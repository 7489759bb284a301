package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tech-arch1tect/accounts/services/accounts"
	"github.com/tech-arch1tect/accounts/services/apperr"
	"github.com/tech-arch1tect/accounts/services/logging"
	"github.com/tech-arch1tect/accounts/services/password"
	"github.com/tech-arch1tect/accounts/services/verification"
	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = apperr.New(apperr.InvalidCredentials, "invalid credentials")
	ErrNotVerified        = apperr.New(apperr.NotVerified, "account is not verified")
)

// dummyPassword is hashed once at construction. Logins for unknown emails
// verify against that digest so they cost the same as a wrong password.
const dummyPassword = "dummy-password-for-timing-equalisation"

type TokenIssuer interface {
	Issue(account *accounts.Account) (string, time.Time, error)
	ExpirySeconds() int
}

type SignupInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	Account   *accounts.Account `json:"-"`
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expiresAt"`
	ExpiresIn int               `json:"expiresIn"`
}

type Service struct {
	store        accounts.Store
	hasher       password.Hasher
	policy       password.Policy
	verification *verification.Service
	tokens       TokenIssuer
	dummyHash    string
	logger       *logging.Service
}

func NewService(
	store accounts.Store,
	hasher password.Hasher,
	policy password.Policy,
	verifier *verification.Service,
	tokens TokenIssuer,
	logger *logging.Service,
) (*Service, error) {
	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy password hash: %w", err)
	}

	return &Service{
		store:        store,
		hasher:       hasher,
		policy:       policy,
		verification: verifier,
		tokens:       tokens,
		dummyHash:    dummyHash,
		logger:       logger.Named("auth"),
	}, nil
}

// Signup registers a PENDING account together with its first verification
// code, then hands the code to the sender.
func (s *Service) Signup(ctx context.Context, input SignupInput) (*accounts.Account, error) {
	username := strings.TrimSpace(input.Username)
	if err := accounts.ValidateUsername(username); err != nil {
		return nil, err
	}

	email, err := accounts.NormalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}

	if err := s.policy.Validate(input.Password); err != nil {
		return nil, err
	}

	if err := s.ensureAvailable(ctx, username, email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	account := &accounts.Account{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Status:       accounts.StatusPending,
	}
	code, err := s.verification.AssignCode(account)
	if err != nil {
		return nil, err
	}

	// The first code is inserted with the account, so a failed signup never
	// leaves a PENDING row without one.
	if _, err := s.store.Create(ctx, account); err != nil {
		if errors.Is(err, accounts.ErrDuplicateKey) {
			s.logger.Info("signup lost a uniqueness race")
		}
		return nil, err
	}

	s.verification.Deliver(account, code)

	s.logger.Info("account registered", zap.Uint("account_id", account.ID))
	return account, nil
}

func (s *Service) ensureAvailable(ctx context.Context, username, email string) error {
	if _, taken, err := s.store.FindByUsername(ctx, username); err != nil {
		return err
	} else if taken {
		return accounts.ErrDuplicateKey
	}

	if _, taken, err := s.store.FindByEmail(ctx, email); err != nil {
		return err
	} else if taken {
		return accounts.ErrDuplicateKey
	}
	return nil
}

// Authenticate checks credentials. Unknown email and wrong password are the
// same ErrInvalidCredentials; verification status is only revealed to callers
// who already know the password.
func (s *Service) Authenticate(ctx context.Context, input LoginInput) (*accounts.Account, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, ErrInvalidCredentials
	}

	account, found, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if !found {
		_, _ = s.hasher.Verify(input.Password, s.dummyHash)
		s.logger.Debug("login for unknown email")
		return nil, ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(input.Password, account.PasswordHash)
	if err != nil {
		s.logger.Error("stored password hash could not be verified",
			zap.Uint("account_id", account.ID),
			zap.Error(err))
		return nil, err
	}
	if !ok {
		s.logger.Info("login rejected: wrong password", zap.Uint("account_id", account.ID))
		return nil, ErrInvalidCredentials
	}

	if !account.IsActive() {
		return nil, ErrNotVerified
	}

	return account, nil
}

// Login authenticates and issues an access token.
func (s *Service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	account, err := s.Authenticate(ctx, input)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.tokens.Issue(account)
	if err != nil {
		return nil, err
	}

	s.logger.Info("login succeeded", zap.Uint("account_id", account.ID))
	return &LoginResult{
		Account:   account,
		Token:     token,
		ExpiresAt: expiresAt,
		ExpiresIn: s.tokens.ExpirySeconds(),
	}, nil
}

func (s *Service) VerifyUser(ctx context.Context, code string) (*accounts.Account, error) {
	return s.verification.Verify(ctx, strings.TrimSpace(code))
}

func (s *Service) ResendVerificationCode(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return apperr.New(apperr.Validation, "email is required")
	}
	return s.verification.Resend(ctx, email)
}
