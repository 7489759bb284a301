package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/accounts/config"
	"github.com/tech-arch1tect/accounts/services/accounts"
	"github.com/tech-arch1tect/accounts/services/clock"
	"github.com/tech-arch1tect/accounts/testutils"
)

type harness struct {
	app    *App
	sender *testutils.RecordingSender
	clock  *clock.Mock
}

func startApp(t *testing.T, cfg *config.Config) *harness {
	t.Helper()

	sender := &testutils.RecordingSender{}
	clk := clock.NewMock(testutils.TestStart)

	app, err := NewApp().
		WithConfig(cfg).
		WithClock(clk).
		WithCodeSender(sender).
		WithoutListener().
		Build()
	require.NoError(t, err)

	require.NoError(t, app.Start(t.Context()))
	t.Cleanup(func() {
		assert.NoError(t, app.Stop(context.Background()))
	})

	return &harness{app: app, sender: sender, clock: clk}
}

func (h *harness) call(t *testing.T, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.app.Server().ServeHTTP(rec, req)
	return rec
}

func TestApp_SignupVerifyLoginFlow(t *testing.T) {
	h := startApp(t, testutils.GetTestConfig())

	rec := h.call(t, http.MethodPost, "/api/auth/signup", "",
		`{"username":"alice","email":"A@X.com","password":"Secret1!"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	sent, ok := h.sender.Last()
	require.True(t, ok)
	assert.Equal(t, "a@x.com", sent.Email)
	assert.Equal(t, testutils.TestStart.Add(15*time.Minute), sent.ExpiresAt)

	rec = h.call(t, http.MethodPost, "/api/auth/login", "", `{"email":"a@x.com","password":"Secret1!"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.call(t, http.MethodPost, "/api/auth/verify", "", `{"verificationCode":"`+sent.Code+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.call(t, http.MethodPost, "/api/auth/login", "", `{"email":"a@x.com","password":"Secret1!"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var login struct {
		Token     string `json:"token"`
		ExpiresIn int    `json:"expiresIn"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	assert.Equal(t, 86400, login.ExpiresIn)

	rec = h.call(t, http.MethodGet, "/users/me", login.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ACTIVE"`)

	var stored accounts.Account
	require.NoError(t, h.app.DB().First(&stored, "email = ?", "a@x.com").Error)
	assert.Nil(t, stored.VerificationCode)
	assert.True(t, stored.IsActive())
}

func TestApp_ServesHealthAndDocs(t *testing.T) {
	h := startApp(t, testutils.GetTestConfig())

	rec := h.call(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.call(t, http.MethodGet, "/openapi.json", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version": "dev"`)

	rec = h.call(t, http.MethodGet, "/openapi.yaml", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestApp_RateLimitsAuthRoutes(t *testing.T) {
	cfg := testutils.GetTestConfig()
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.Rate = 2
	cfg.RateLimit.Period = time.Minute
	h := startApp(t, cfg)

	body := `{"email":"nobody@x.com","password":"Secret1!"}`
	for range 2 {
		rec := h.call(t, http.MethodPost, "/api/auth/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := h.call(t, http.MethodPost, "/api/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	rec = h.call(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code, "routes outside /api/auth are not limited")

	h.clock.Advance(time.Minute + time.Second)

	rec = h.call(t, http.MethodPost, "/api/auth/login", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestApp_Accessors(t *testing.T) {
	cfg := testutils.GetTestConfig()
	h := startApp(t, cfg)

	assert.Same(t, cfg, h.app.Config())
	assert.NotNil(t, h.app.Logger())
	assert.NotNil(t, h.app.DB())
	assert.NotNil(t, h.app.Server())
}
