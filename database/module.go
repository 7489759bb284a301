package database

import (
	"context"

	"github.com/tech-arch1tect/accounts/config"
	"github.com/tech-arch1tect/accounts/services/logging"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Options(
	fx.Provide(ProvideDatabaseFx),
	fx.Invoke(registerClose),
)

type DatabaseParams struct {
	fx.In

	Config    *config.Config
	ModelsOpt *ModelsOption `optional:"true"`
	Logger    *logging.Service
}

func ProvideDatabaseFx(p DatabaseParams) (*gorm.DB, error) {
	return ProvideDatabase(p.Config.Database, p.ModelsOpt, p.Logger.Named("database"))
}

func registerClose(lc fx.Lifecycle, db *gorm.DB) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})
}
