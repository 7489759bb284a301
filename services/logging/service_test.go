package logging

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/accounts/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewService(t *testing.T) {
	t.Run("default configuration", func(t *testing.T) {
		service, err := NewService(config.LogConfig{Level: "info", Format: "json", Output: "stdout"})

		require.NoError(t, err)
		assert.NotNil(t, service)
		assert.NotNil(t, service.logger)
	})

	t.Run("console format", func(t *testing.T) {
		service, err := NewService(config.LogConfig{Level: "DEBUG", Format: "console", Output: "stderr"})

		require.NoError(t, err)
		assert.NotNil(t, service.logger)
	})

	t.Run("file output", func(t *testing.T) {
		logFile := filepath.Join(t.TempDir(), "accounts.log")

		service, err := NewService(config.LogConfig{Level: "warn", Format: "json", Output: logFile})
		require.NoError(t, err)

		service.Warn("account store unavailable")
		require.NoError(t, service.Sync())

		content, err := os.ReadFile(logFile)
		require.NoError(t, err)
		assert.Contains(t, string(content), "account store unavailable")
	})
}

func TestService_LoggingMethods(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	service := NewWithLogger(zap.New(core))

	tests := []struct {
		name  string
		log   func(string, ...zap.Field)
		level zapcore.Level
	}{
		{"Debug", service.Debug, zapcore.DebugLevel},
		{"Info", service.Info, zapcore.InfoLevel},
		{"Warn", service.Warn, zapcore.WarnLevel},
		{"Error", service.Error, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.log("message", zap.String("key", "value"))

			logs := recorded.TakeAll()
			require.Len(t, logs, 1)
			assert.Equal(t, tt.level, logs[0].Level)
			assert.Equal(t, "message", logs[0].Message)
			assert.Equal(t, "value", logs[0].ContextMap()["key"])
		})
	}
}

func TestService_NamedAndWith(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	service := NewWithLogger(zap.New(core))

	service.Named("auth").With(zap.Uint("account_id", 7)).Info("signed in")

	logs := recorded.TakeAll()
	require.Len(t, logs, 1)
	assert.Equal(t, "auth", logs[0].LoggerName)
	assert.Equal(t, uint64(7), logs[0].ContextMap()["account_id"])
}

func TestService_NilSafety(t *testing.T) {
	var service *Service

	assert.NotPanics(t, func() {
		service.Debug("test")
		service.Info("test")
		service.Warn("test")
		service.Error("test")
		_ = service.Sync()
		assert.Nil(t, service.Named("x"))
		assert.Nil(t, service.With(zap.String("k", "v")))
		assert.Nil(t, service.Logger())
	})

	empty := &Service{}
	assert.NotPanics(t, func() {
		empty.Info("test")
		assert.NoError(t, empty.Sync())
	})
}

func TestRequestLogger(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	service := NewWithLogger(zap.New(core))

	e := echo.New()
	e.Use(RequestLogger(service, "/healthz"))
	e.POST("/api/auth/resend", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	e.GET("/healthz", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	e.GET("/missing", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "nope")
	})

	t.Run("drops query string", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/resend?email=a@x.com", nil)
		e.ServeHTTP(httptest.NewRecorder(), req)

		logs := recorded.TakeAll()
		require.Len(t, logs, 1)
		assert.Equal(t, "/api/auth/resend", logs[0].ContextMap()["path"])
		assert.NotContains(t, logs[0].ContextMap()["path"], "a@x.com")
	})

	t.Run("skips configured paths", func(t *testing.T) {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Empty(t, recorded.TakeAll())
	})

	t.Run("client errors log at warn", func(t *testing.T) {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

		logs := recorded.TakeAll()
		require.Len(t, logs, 1)
		assert.Equal(t, zapcore.WarnLevel, logs[0].Level)
	})
}

func TestNewService_Rejects(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.LogConfig
		want string
	}{
		{name: "unknown level", cfg: config.LogConfig{Level: "verbose", Format: "json"}, want: "invalid log level"},
		{name: "unknown format", cfg: config.LogConfig{Level: "info", Format: "xml"}, want: "invalid log format"},
		{name: "unopenable output", cfg: config.LogConfig{Level: "info", Output: filepath.Join(t.TempDir(), "missing", "x.log")}, want: "failed to open log output"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, err := NewService(tt.cfg)

			assert.Nil(t, service)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		address string
		want    string
	}{
		{"alice@example.com", "a***@example.com"},
		{"b@x.com", "b***@x.com"},
		{"not-an-address", "***"},
		{"@x.com", "***"},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			field := Email("to", tt.address)

			assert.Equal(t, "to", field.Key)
			assert.Equal(t, tt.want, field.String)
		})
	}
}

func TestRequestLogger_RequestID(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)

	e := echo.New()
	e.Use(middleware.RequestID())
	e.Use(RequestLogger(NewWithLogger(zap.New(core))))
	e.GET("/users/me", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set(echo.HeaderXRequestID, "req-7")
	e.ServeHTTP(httptest.NewRecorder(), req)

	logs := recorded.TakeAll()
	require.Len(t, logs, 1)
	assert.Equal(t, "req-7", logs[0].ContextMap()["request_id"])
	assert.Equal(t, zapcore.InfoLevel, logs[0].Level)
}

func TestRequestLogger_NilService(t *testing.T) {
	e := echo.New()
	e.Use(RequestLogger(nil))
	e.GET("/users/me", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	assert.NotPanics(t, func() {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/me", nil))
	})
}
