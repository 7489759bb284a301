package app

import (
	"fmt"

	"github.com/tech-arch1tect/accounts/config"
	"github.com/tech-arch1tect/accounts/database"
	"github.com/tech-arch1tect/accounts/handlers"
	jwtmiddleware "github.com/tech-arch1tect/accounts/middleware/jwt"
	"github.com/tech-arch1tect/accounts/middleware/ratelimit"
	"github.com/tech-arch1tect/accounts/server"
	"github.com/tech-arch1tect/accounts/services/accounts"
	"github.com/tech-arch1tect/accounts/services/auth"
	"github.com/tech-arch1tect/accounts/services/clock"
	"github.com/tech-arch1tect/accounts/services/jwt"
	"github.com/tech-arch1tect/accounts/services/logging"
	"github.com/tech-arch1tect/accounts/services/mail"
	"github.com/tech-arch1tect/accounts/services/profile"
	"github.com/tech-arch1tect/accounts/services/verification"
	"go.uber.org/fx"
)

// Version is reported in the API description.
var Version = "dev"

type AppBuilder struct {
	config    *config.Config
	clock     clock.Clock
	sender    verification.CodeSender
	listen    bool
	fxOptions []fx.Option
	errors    []error
}

func NewApp() *AppBuilder {
	return &AppBuilder{
		listen:    true,
		fxOptions: make([]fx.Option, 0),
		errors:    make([]error, 0),
	}
}

func (b *AppBuilder) WithConfig(cfg *config.Config) *AppBuilder {
	if cfg == nil {
		b.addError("config cannot be nil")
		return b
	}
	b.config = cfg
	return b
}

func (b *AppBuilder) WithAutoConfig() *AppBuilder {
	cfg := &config.Config{}
	if err := config.LoadConfig(cfg); err != nil {
		b.addError(fmt.Sprintf("failed to load config: %v", err))
		return b
	}
	b.config = cfg
	return b
}

// WithClock replaces the wall clock used for token and code expiry.
func (b *AppBuilder) WithClock(clk clock.Clock) *AppBuilder {
	if clk == nil {
		b.addError("clock cannot be nil")
		return b
	}
	b.clock = clk
	return b
}

// WithCodeSender replaces the mail or log sender chosen from config.
func (b *AppBuilder) WithCodeSender(sender verification.CodeSender) *AppBuilder {
	if sender == nil {
		b.addError("code sender cannot be nil")
		return b
	}
	b.sender = sender
	return b
}

// WithoutListener wires the HTTP server without binding a port; requests are
// served through App.Server().ServeHTTP.
func (b *AppBuilder) WithoutListener() *AppBuilder {
	b.listen = false
	return b
}

func (b *AppBuilder) WithFxOptions(opts ...fx.Option) *AppBuilder {
	b.fxOptions = append(b.fxOptions, opts...)
	return b
}

func (b *AppBuilder) Build() (*App, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	if b.config == nil {
		if err := b.WithAutoConfig().validate(); err != nil {
			return nil, err
		}
	} else if err := b.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	app := &App{config: b.config}

	options := b.buildFxOptions()
	options = append(options,
		fx.Invoke(registerRoutes),
		fx.Populate(&app.logger, &app.server, &app.db),
	)

	app.fx = fx.New(options...)
	if err := app.fx.Err(); err != nil {
		return nil, fmt.Errorf("failed to wire application: %w", err)
	}

	return app, nil
}

func (b *AppBuilder) addError(msg string) {
	b.errors = append(b.errors, fmt.Errorf("%s", msg))
}

func (b *AppBuilder) validate() error {
	if len(b.errors) > 0 {
		return fmt.Errorf("configuration errors: %v", b.errors)
	}
	return nil
}

func (b *AppBuilder) buildFxOptions() []fx.Option {
	options := []fx.Option{
		fx.Supply(b.config),
		fx.NopLogger,
		logging.Module,
		fx.Supply(database.WithModels(&accounts.Account{})),
		database.Module,
		accounts.Module,
		verification.Module,
		jwt.Options,
		auth.Module,
		profile.Module,
		ratelimit.Module,
	}

	if b.clock != nil {
		clk := b.clock
		options = append(options, fx.Provide(func() clock.Clock { return clk }))
	} else {
		options = append(options, clock.Module)
	}

	if b.sender != nil {
		sender := b.sender
		options = append(options, fx.Provide(func() verification.CodeSender { return sender }))
	} else {
		options = append(options, mail.Module)
	}

	if b.listen {
		options = append(options, server.NewProvider())
	} else {
		options = append(options, fx.Provide(server.New))
	}

	return append(options, b.fxOptions...)
}

type routeParams struct {
	fx.In

	Config   *config.Config
	Server   *server.Server
	Auth     *auth.Service
	Profiles *profile.Service
	Tokens   *jwt.Service
	Limits   ratelimit.Store
	Clock    clock.Clock
}

func registerRoutes(p routeParams) {
	handlers.Routes{
		Auth:        handlers.NewAuthHandler(p.Auth),
		Users:       handlers.NewUserHandler(p.Profiles),
		RequireAuth: jwtmiddleware.RequireJWT(p.Tokens),
		RateLimit:   ratelimit.FromConfig(&p.Config.RateLimit, p.Limits, p.Clock, "auth"),
		Docs:        handlers.NewDocs(p.Config.App.Name, Version),
	}.Register(p.Server.Echo())
}
