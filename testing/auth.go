package e2etesting

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

type TestUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthHelper struct {
	app *E2EApp
}

func NewAuthHelper(app *E2EApp) *AuthHelper {
	return &AuthHelper{app: app}
}

func (h *AuthHelper) Signup(user TestUser) (*Response, error) {
	return h.app.Client.Post("/api/auth/signup", user)
}

func (h *AuthHelper) Verify(code string) (*Response, error) {
	return h.app.Client.Post("/api/auth/verify", map[string]string{"verificationCode": code})
}

func (h *AuthHelper) Resend(email string) (*Response, error) {
	return h.app.Client.Post("/api/auth/resend?email="+url.QueryEscape(email), nil)
}

func (h *AuthHelper) Login(email, password string) (*Response, error) {
	return h.app.Client.Post("/api/auth/login", map[string]string{"email": email, "password": password})
}

// LatestCode is the last verification code the app tried to deliver to email.
func (h *AuthHelper) LatestCode(t *testing.T, email string) string {
	t.Helper()

	sent, ok := h.app.Sender.LastFor(email)
	require.True(t, ok, "no verification code sent to %s", email)
	return sent.Code
}

// Token logs in and returns the access token.
func (h *AuthHelper) Token(t *testing.T, email, password string) string {
	t.Helper()

	resp, err := h.Login(email, password)
	require.NoError(t, err)
	resp.AssertStatus(t, http.StatusOK)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, resp.GetJSON(&body))
	require.NotEmpty(t, body.Token)
	return body.Token
}

// RegisterActive signs user up, verifies the account and returns a client
// authenticated as that user.
func (h *AuthHelper) RegisterActive(t *testing.T, user TestUser) *HTTPClient {
	t.Helper()

	resp, err := h.Signup(user)
	require.NoError(t, err)
	resp.AssertStatus(t, http.StatusCreated)

	resp, err = h.Verify(h.LatestCode(t, user.Email))
	require.NoError(t, err)
	resp.AssertStatus(t, http.StatusOK)

	return h.app.Client.WithBearer(h.Token(t, user.Email, user.Password))
}
