package profile

import (
	"github.com/tech-arch1tect/accounts/services/accounts"
	"github.com/tech-arch1tect/accounts/services/jwt"
	"github.com/tech-arch1tect/accounts/services/logging"
	"github.com/tech-arch1tect/accounts/services/password"
	"go.uber.org/fx"
)

func ProvideProfileService(store accounts.Store, hasher password.Hasher, policy password.Policy, tokens *jwt.Service, logger *logging.Service) *Service {
	return NewService(store, hasher, policy, tokens, logger)
}

var Module = fx.Options(
	fx.Provide(ProvideProfileService),
)
