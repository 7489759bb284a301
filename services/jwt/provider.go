package jwt

import (
	"github.com/tech-arch1tect/accounts/config"
	"github.com/tech-arch1tect/accounts/services/clock"
	"github.com/tech-arch1tect/accounts/services/logging"
	"go.uber.org/fx"
)

func NewJWTService(cfg *config.Config, clk clock.Clock, logger *logging.Service) (*Service, error) {
	return NewService(&cfg.JWT, clk, logger)
}

var Options = fx.Options(
	fx.Provide(NewJWTService),
)
