package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tech-arch1tect/accounts/config"
	"github.com/tech-arch1tect/accounts/services/accounts"
	"github.com/tech-arch1tect/accounts/services/apperr"
	"github.com/tech-arch1tect/accounts/services/clock"
	"github.com/tech-arch1tect/accounts/services/logging"
	"go.uber.org/zap"
)

var (
	ErrInvalidToken     = apperr.New(apperr.InvalidSignature, "invalid JWT token")
	ErrExpiredToken     = apperr.New(apperr.Expired, "JWT token has expired")
	ErrMalformedToken   = apperr.New(apperr.InvalidSignature, "malformed JWT token")
	ErrInvalidSignature = apperr.New(apperr.InvalidSignature, "invalid JWT token signature")
	ErrMissingSecret    = errors.New("JWT secret key is not configured")
)

type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type Service struct {
	secret []byte
	issuer string
	expiry time.Duration
	clock  clock.Clock
	logger *logging.Service
}

// NewService reads the signing secret once; it is never changed afterwards.
func NewService(cfg *config.JWTConfig, clk clock.Clock, logger *logging.Service) (*Service, error) {
	if cfg.SecretKey == "" {
		return nil, ErrMissingSecret
	}
	if cfg.AccessExpiry <= 0 {
		return nil, fmt.Errorf("JWT access expiry must be positive, got %s", cfg.AccessExpiry)
	}

	return &Service{
		secret: []byte(cfg.SecretKey),
		issuer: cfg.Issuer,
		expiry: cfg.AccessExpiry,
		clock:  clock.OrReal(clk),
		logger: logger.Named("jwt"),
	}, nil
}

func (s *Service) ExpirySeconds() int {
	return int(s.expiry.Seconds())
}

// Issue signs a token for the account. The returned expiry is the exp claim
// exactly as encoded, i.e. truncated to whole seconds.
func (s *Service) Issue(account *accounts.Account) (string, time.Time, error) {
	if account == nil || account.ID == 0 {
		return "", time.Time{}, apperr.New(apperr.Internal, "cannot issue token for unsaved account")
	}

	now := s.clock.Now().Truncate(time.Second)
	expiresAt := now.Add(s.expiry)
	claims := Claims{
		UserID:   account.ID,
		Username: account.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   strconv.FormatUint(uint64(account.ID), 10),
			Audience:  []string{s.issuer},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		s.logger.Error("failed to sign JWT token", zap.Error(err))
		return "", time.Time{}, apperr.Wrap(err, apperr.Internal, "failed to generate JWT token")
	}

	return tokenString, expiresAt, nil
}

func (s *Service) Validate(tokenString string) (uint, error) {
	claims, err := s.ValidateClaims(tokenString)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

func (s *Service) ValidateClaims(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMalformedToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() == "none" {
			return nil, errors.New("'none' algorithm is not allowed")
		}

		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok || token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected algorithm: expected HS256, got %v", token.Header["alg"])
		}

		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.issuer),
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		s.logger.Debug("JWT token validation failed", zap.Error(err))

		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformedToken
		case errors.Is(err, jwt.ErrSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
