package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/accounts/services/accounts"
	"github.com/tech-arch1tect/accounts/services/apperr"
	"github.com/tech-arch1tect/accounts/services/auth"
)

var errInvalidBody = apperr.New(apperr.Validation, "invalid request body")

type AuthService interface {
	Signup(ctx context.Context, input auth.SignupInput) (*accounts.Account, error)
	Login(ctx context.Context, input auth.LoginInput) (*auth.LoginResult, error)
	VerifyUser(ctx context.Context, code string) (*accounts.Account, error)
	ResendVerificationCode(ctx context.Context, email string) error
}

type MessageResponse struct {
	Message string `json:"message"`
}

type VerifyRequest struct {
	VerificationCode string `json:"verificationCode"`
}

type AuthHandler struct {
	auth AuthService
}

func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

func (h *AuthHandler) Signup(c echo.Context) error {
	var req auth.SignupInput
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}

	account, err := h.auth.Signup(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, account)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req auth.LoginInput
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}

	result, err := h.auth.Login(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

func (h *AuthHandler) Verify(c echo.Context) error {
	var req VerifyRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}

	if _, err := h.auth.VerifyUser(c.Request().Context(), req.VerificationCode); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Account verified successfully"})
}

func (h *AuthHandler) Resend(c echo.Context) error {
	if err := h.auth.ResendVerificationCode(c.Request().Context(), c.QueryParam("email")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Verification code sent"})
}

// Logout only acknowledges; tokens are stateless and the client discards its copy.
func (h *AuthHandler) Logout(c echo.Context) error {
	return c.JSON(http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}
