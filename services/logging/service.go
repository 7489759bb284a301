// Package logging is the zap-backed logger shared by every service. Methods
// are safe on a nil *Service so optional loggers need no guards.
package logging

import (
	"fmt"
	"os"
	"strings"

	"github.com/tech-arch1tect/accounts/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Service struct {
	logger *zap.Logger
}

// NewService builds a logger from LOG_LEVEL, LOG_FORMAT ("json" or "console")
// and LOG_OUTPUT ("stdout", "stderr" or a file path).
func NewService(cfg config.LogConfig) (*Service, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch cfg.Format {
	case "console":
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	case "json", "":
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	default:
		return nil, fmt.Errorf("invalid log format %q: must be json or console", cfg.Format)
	}

	sink, err := openSink(cfg.Output)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(encoder, sink, level)
	return &Service{logger: zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))}, nil
}

func openSink(output string) (zapcore.WriteSyncer, error) {
	switch output {
	case "", "stdout":
		return zapcore.Lock(os.Stdout), nil
	case "stderr":
		return zapcore.Lock(os.Stderr), nil
	}

	sink, _, err := zap.Open(output)
	if err != nil {
		return nil, fmt.Errorf("failed to open log output %q: %w", output, err)
	}
	return sink, nil
}

// NewWithLogger wraps an existing zap logger, e.g. an observer core in tests.
func NewWithLogger(logger *zap.Logger) *Service {
	return &Service{logger: logger}
}

func NewNop() *Service {
	return &Service{logger: zap.NewNop()}
}

func (s *Service) Logger() *zap.Logger {
	if s == nil {
		return nil
	}
	return s.logger
}

func (s *Service) enabled() bool {
	return s != nil && s.logger != nil
}

// Named returns a child service whose entries carry the given component name.
func (s *Service) Named(name string) *Service {
	if !s.enabled() {
		return s
	}
	return &Service{logger: s.logger.Named(name)}
}

func (s *Service) With(fields ...zap.Field) *Service {
	if !s.enabled() {
		return s
	}
	return &Service{logger: s.logger.With(fields...)}
}

func (s *Service) Debug(msg string, fields ...zap.Field) {
	if s.enabled() {
		s.logger.Debug(msg, fields...)
	}
}

func (s *Service) Info(msg string, fields ...zap.Field) {
	if s.enabled() {
		s.logger.Info(msg, fields...)
	}
}

func (s *Service) Warn(msg string, fields ...zap.Field) {
	if s.enabled() {
		s.logger.Warn(msg, fields...)
	}
}

func (s *Service) Error(msg string, fields ...zap.Field) {
	if s.enabled() {
		s.logger.Error(msg, fields...)
	}
}

func (s *Service) Sync() error {
	if !s.enabled() {
		return nil
	}
	return s.logger.Sync()
}

// Email logs an address with the local part masked, keeping its first rune.
func Email(key, address string) zap.Field {
	local, domain, ok := strings.Cut(address, "@")
	if !ok || local == "" {
		return zap.String(key, "***")
	}
	first := []rune(local)[0]
	return zap.String(key, string(first)+"***@"+domain)
}
