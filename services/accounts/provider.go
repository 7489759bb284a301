package accounts

import (
	"github.com/tech-arch1tect/accounts/services/clock"
	"github.com/tech-arch1tect/accounts/services/logging"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideStore(db *gorm.DB, clk clock.Clock, logger *logging.Service) Store {
	return NewGormStore(db, clk, logger)
}

var Module = fx.Options(
	fx.Provide(ProvideStore),
)
