package mail

import (
	"github.com/tech-arch1tect/accounts/config"
	"github.com/tech-arch1tect/accounts/services/logging"
	"github.com/tech-arch1tect/accounts/services/verification"
	"go.uber.org/fx"
)

func ProvideCodeSender(cfg *config.Config, logger *logging.Service) (verification.CodeSender, error) {
	if !cfg.Mail.Enabled {
		return NewLogSender(logger, cfg.Mail.LogCodes), nil
	}
	service, err := NewService(&cfg.Mail, cfg.App.Name, logger)
	if err != nil {
		return nil, err
	}
	return service, nil
}

var Module = fx.Options(
	fx.Provide(ProvideCodeSender),
)
