package testutils

import (
	"time"

	"github.com/tech-arch1tect/accounts/config"
	"golang.org/x/crypto/bcrypt"
)

func GetTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name: "Test Accounts",
			URL:  "http://localhost:8080",
		},
		Server: config.ServerConfig{
			Host: "127.0.0.1",
			Port: "0",
		},
		Log: config.LogConfig{
			Level:  "error",
			Format: "json",
			Output: "stdout",
		},
		Database: config.DatabaseConfig{
			Driver:      "sqlite",
			DSN:         ":memory:",
			AutoMigrate: true,
		},
		Auth: config.AuthConfig{
			MinLength:              8,
			RequireUpper:           true,
			RequireLower:           true,
			RequireNumber:          true,
			RequireSpecial:         false,
			PasswordHasher:         "bcrypt",
			BcryptCost:             bcrypt.MinCost,
			VerificationCodeLength: 16,
			VerificationCodeExpiry: 15 * time.Minute,
		},
		JWT: config.JWTConfig{
			SecretKey:    "k9Zq2mW8xR4vT7nB1cY6hJ3fL5pD0sGa",
			Algorithm:    "HS256",
			AccessExpiry: 24 * time.Hour,
			Issuer:       "accounts-test",
		},
		Mail: config.MailConfig{
			Enabled:     false,
			Host:        "localhost",
			Port:        2525,
			Encryption:  "none",
			FromAddress: "no-reply@example.com",
		},
		RateLimit: config.RateLimitConfig{
			Enabled:   false,
			Rate:      5,
			Period:    time.Minute,
			CountMode: config.CountAll,
		},
	}
}

// TestStart is the fixed instant mock clocks start from.
var TestStart = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

var TestPasswords = struct {
	Valid       string
	Other       string
	TooShort    string
	NoUpper     string
	NoNumber    string
	WithSpecial string
}{
	Valid:       "Secret1!",
	Other:       "Another2?",
	TooShort:    "Sec1",
	NoUpper:     "secret123",
	NoNumber:    "SecretPass",
	WithSpecial: "Password123!",
}

type TestUser struct {
	Username string
	Email    string
	Password string
}

var TestUsers = struct {
	Alice TestUser
	Bob   TestUser
}{
	Alice: TestUser{Username: "alice", Email: "a@x.com", Password: "Secret1!"},
	Bob:   TestUser{Username: "bob", Email: "b@x.com", Password: "Another2?"},
}
