package verification

import (
	"github.com/tech-arch1tect/accounts/config"
	"github.com/tech-arch1tect/accounts/services/accounts"
	"github.com/tech-arch1tect/accounts/services/clock"
	"github.com/tech-arch1tect/accounts/services/logging"
	"go.uber.org/fx"
)

func ProvideVerificationService(cfg *config.Config, store accounts.Store, sender CodeSender, clk clock.Clock, logger *logging.Service) *Service {
	return NewService(&cfg.Auth, store, sender, clk, logger)
}

var Module = fx.Options(
	fx.Provide(ProvideVerificationService),
)
