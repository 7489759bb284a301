package auth

import (
	"github.com/tech-arch1tect/accounts/config"
	"github.com/tech-arch1tect/accounts/services/accounts"
	"github.com/tech-arch1tect/accounts/services/jwt"
	"github.com/tech-arch1tect/accounts/services/logging"
	"github.com/tech-arch1tect/accounts/services/password"
	"github.com/tech-arch1tect/accounts/services/verification"
	"go.uber.org/fx"
)

func ProvideHasher(cfg *config.Config) (password.Hasher, error) {
	return password.NewHasher(&cfg.Auth)
}

func ProvidePolicy(cfg *config.Config) password.Policy {
	return password.PolicyFromConfig(&cfg.Auth)
}

func ProvideAuthService(
	store accounts.Store,
	hasher password.Hasher,
	policy password.Policy,
	verifier *verification.Service,
	tokens *jwt.Service,
	logger *logging.Service,
) (*Service, error) {
	return NewService(store, hasher, policy, verifier, tokens, logger)
}

var Module = fx.Options(
	fx.Provide(
		ProvideHasher,
		ProvidePolicy,
		ProvideAuthService,
	),
)
