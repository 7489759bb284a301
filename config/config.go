package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type CountingMode string

const (
	CountAll      CountingMode = "all"
	CountFailures CountingMode = "failures"
	CountSuccess  CountingMode = "success"
)

type Config struct {
	App       AppConfig       `envPrefix:"APP_"`
	Server    ServerConfig    `envPrefix:"SERVER_"`
	Log       LogConfig       `envPrefix:"LOG_"`
	Database  DatabaseConfig  `envPrefix:"DATABASE_"`
	Auth      AuthConfig      `envPrefix:"AUTH_"`
	JWT       JWTConfig       `envPrefix:"JWT_"`
	Mail      MailConfig      `envPrefix:"MAIL_"`
	RateLimit RateLimitConfig `envPrefix:"RATELIMIT_"`
}

type AppConfig struct {
	Name string `env:"NAME" envDefault:"accountd"`
	URL  string `env:"URL" envDefault:"http://localhost:8080"`
}

type ServerConfig struct {
	Port           string   `env:"PORT" envDefault:"8080"`
	Host           string   `env:"HOST" envDefault:"localhost"`
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
	Output string `env:"OUTPUT" envDefault:"stdout"`
}

type DatabaseConfig struct {
	Driver      string `env:"DRIVER" envDefault:"sqlite"`
	DSN         string `env:"DSN" envDefault:"accounts.db"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

type AuthConfig struct {
	MinLength      int    `env:"MIN_LENGTH" envDefault:"8"`
	RequireUpper   bool   `env:"REQUIRE_UPPER" envDefault:"true"`
	RequireLower   bool   `env:"REQUIRE_LOWER" envDefault:"true"`
	RequireNumber  bool   `env:"REQUIRE_NUMBER" envDefault:"true"`
	RequireSpecial bool   `env:"REQUIRE_SPECIAL" envDefault:"false"`
	PasswordHasher string `env:"PASSWORD_HASHER" envDefault:"bcrypt"`
	BcryptCost     int    `env:"BCRYPT_COST" envDefault:"10"`

	VerificationCodeLength int           `env:"VERIFICATION_CODE_LENGTH" envDefault:"16"`
	VerificationCodeExpiry time.Duration `env:"VERIFICATION_CODE_EXPIRY" envDefault:"15m"`
}

type JWTConfig struct {
	SecretKey    string        `env:"SECRET_KEY"`
	Algorithm    string        `env:"ALGORITHM" envDefault:"HS256"`
	AccessExpiry time.Duration `env:"ACCESS_EXPIRY" envDefault:"24h"`
	Issuer       string        `env:"ISSUER" envDefault:"accountd"`
}

type MailConfig struct {
	Enabled      bool   `env:"ENABLED" envDefault:"false"`
	Host         string `env:"HOST" envDefault:"localhost"`
	Port         int    `env:"PORT" envDefault:"587"`
	Username     string `env:"USERNAME"`
	Password     string `env:"PASSWORD"`
	Encryption   string `env:"ENCRYPTION" envDefault:"starttls"`
	FromAddress  string `env:"FROM_ADDRESS" envDefault:"no-reply@localhost"`
	FromName     string `env:"FROM_NAME"`
	TemplatesDir string `env:"TEMPLATES_DIR"`
	// LogCodes prints undelivered codes when mail is disabled. Local use only.
	LogCodes     bool   `env:"LOG_CODES" envDefault:"false"`
}

type RateLimitConfig struct {
	Enabled   bool          `env:"ENABLED" envDefault:"true"`
	Rate      int           `env:"RATE" envDefault:"10"`
	Period    time.Duration `env:"PERIOD" envDefault:"1m"`
	CountMode CountingMode  `env:"COUNT_MODE" envDefault:"all"`
}

func LoadConfig(cfg any) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	if err := env.Parse(cfg); err != nil {
		return err
	}

	if c, ok := cfg.(*Config); ok {
		return c.Validate()
	}
	return nil
}

func (c *Config) Validate() error {
	if err := validateJWTConfig(&c.JWT); err != nil {
		return err
	}
	if err := validateAuthConfig(&c.Auth); err != nil {
		return err
	}
	return nil
}

var weakSecretPatterns = []string{"password", "secret", "test", "example", "default", "change"}

func validateJWTConfig(cfg *JWTConfig) error {
	if len(cfg.SecretKey) < 32 {
		return fmt.Errorf("JWT secret key must be at least 32 characters long")
	}

	lower := strings.ToLower(cfg.SecretKey)
	for _, pattern := range weakSecretPatterns {
		if strings.Contains(lower, pattern) {
			return fmt.Errorf("JWT secret key contains weak patterns (%q)", pattern)
		}
	}

	if cfg.Algorithm != "HS256" {
		return fmt.Errorf("unsupported JWT algorithm %q: only HS256 is supported", cfg.Algorithm)
	}

	if cfg.AccessExpiry <= 0 {
		return fmt.Errorf("JWT access expiry must be positive")
	}
	return nil
}

func validateAuthConfig(cfg *AuthConfig) error {
	switch cfg.PasswordHasher {
	case "bcrypt", "argon2id":
	default:
		return fmt.Errorf("auth password hasher must be: bcrypt or argon2id")
	}

	if cfg.VerificationCodeLength < 8 {
		return fmt.Errorf("verification code length must be at least 8 bytes")
	}
	if cfg.VerificationCodeLength > 64 {
		return fmt.Errorf("verification code length cannot exceed 64 bytes")
	}

	if cfg.VerificationCodeExpiry <= 0 {
		return fmt.Errorf("verification code expiry must be positive")
	}
	return nil
}
