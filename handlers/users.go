package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	jwtmiddleware "github.com/tech-arch1tect/accounts/middleware/jwt"
	"github.com/tech-arch1tect/accounts/services/accounts"
	"github.com/tech-arch1tect/accounts/services/apperr"
	"github.com/tech-arch1tect/accounts/services/profile"
)

type ProfileService interface {
	Get(ctx context.Context, accountID uint) (*accounts.Account, error)
	UpdateProfile(ctx context.Context, accountID uint, input profile.UpdateInput) (*accounts.Account, string, time.Time, error)
	ChangePassword(ctx context.Context, accountID uint, input profile.ChangePasswordInput) error
}

type UpdateProfileResponse struct {
	User      *accounts.Account `json:"user"`
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expiresAt"`
}

type UserHandler struct {
	profiles ProfileService
}

func NewUserHandler(profiles ProfileService) *UserHandler {
	return &UserHandler{profiles: profiles}
}

func currentAccountID(c echo.Context) (uint, error) {
	id := jwtmiddleware.GetUserID(c)
	if id == 0 {
		return 0, apperr.New(apperr.InvalidSignature, "authentication required")
	}
	return id, nil
}

func (h *UserHandler) Me(c echo.Context) error {
	id, err := currentAccountID(c)
	if err != nil {
		return err
	}

	account, err := h.profiles.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account)
}

func (h *UserHandler) UpdateMe(c echo.Context) error {
	id, err := currentAccountID(c)
	if err != nil {
		return err
	}

	var req profile.UpdateInput
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}

	account, token, expiresAt, err := h.profiles.UpdateProfile(c.Request().Context(), id, req)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderAuthorization, "Bearer "+token)
	return c.JSON(http.StatusOK, UpdateProfileResponse{User: account, Token: token, ExpiresAt: expiresAt})
}

func (h *UserHandler) ChangePassword(c echo.Context) error {
	id, err := currentAccountID(c)
	if err != nil {
		return err
	}

	var req profile.ChangePasswordInput
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}

	if err := h.profiles.ChangePassword(c.Request().Context(), id, req); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Password changed successfully"})
}
