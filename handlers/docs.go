package handlers

import (
	"net/http"

	"github.com/tech-arch1tect/accounts/openapi"
	"github.com/tech-arch1tect/accounts/server"
	"github.com/tech-arch1tect/accounts/services/accounts"
	"github.com/tech-arch1tect/accounts/services/auth"
	"github.com/tech-arch1tect/accounts/services/profile"
)

const bearerScheme = "bearerAuth"

// NewDocs describes every route Register mounts.
func NewDocs(appName, version string) *openapi.OpenAPI {
	doc := openapi.New(appName, version).
		Description("User accounts: signup, email verification, login and self-service profile.").
		Tag("auth", "Signup, verification and login").
		Tag("users", "The authenticated caller's own account").
		BearerAuth(bearerScheme, "Access token returned by login")

	errBody := server.ErrorResponse{}

	doc.Document(http.MethodPost, "/api/auth/signup").
		Summary("Register a new account").
		Tags("auth").
		Body(auth.SignupInput{}, "New account details").
		Response(http.StatusCreated, accounts.Account{}, "Account created in PENDING state").
		Response(http.StatusBadRequest, errBody, "Invalid username, email or password").
		Response(http.StatusConflict, errBody, "Username or email already registered").
		Build()

	doc.Document(http.MethodPost, "/api/auth/login").
		Summary("Exchange credentials for an access token").
		Tags("auth").
		Body(auth.LoginInput{}, "Credentials").
		Response(http.StatusOK, auth.LoginResult{}, "Access token").
		Response(http.StatusUnauthorized, errBody, "Invalid credentials").
		Response(http.StatusForbidden, errBody, "Account not verified").
		Build()

	doc.Document(http.MethodPost, "/api/auth/verify").
		Summary("Activate an account with its verification code").
		Tags("auth").
		Body(VerifyRequest{}, "Verification code").
		Response(http.StatusOK, MessageResponse{}, "Account verified").
		Response(http.StatusBadRequest, errBody, "Unknown or expired code").
		Response(http.StatusConflict, errBody, "Account already verified").
		Build()

	doc.Document(http.MethodPost, "/api/auth/resend").
		Summary("Issue a fresh verification code").
		Tags("auth").
		QueryParam("email", "Email of the pending account", true).
		Response(http.StatusOK, MessageResponse{}, "Code sent").
		Response(http.StatusNotFound, errBody, "No account with that email").
		Response(http.StatusConflict, errBody, "Account already verified").
		Build()

	doc.Document(http.MethodPost, "/api/auth/logout").
		Summary("Acknowledge logout").
		Tags("auth").
		Response(http.StatusOK, MessageResponse{}, "Logged out").
		Build()

	doc.Document(http.MethodGet, "/users/me").
		Summary("Current account").
		Tags("users").
		Security(bearerScheme).
		Response(http.StatusOK, accounts.Account{}, "The caller's account").
		Response(http.StatusUnauthorized, errBody, "Missing or invalid token").
		Build()

	doc.Document(http.MethodPatch, "/users/me").
		Summary("Change username or email").
		Tags("users").
		Security(bearerScheme).
		Body(profile.UpdateInput{}, "Fields to change").
		Response(http.StatusOK, UpdateProfileResponse{}, "Updated account and a fresh token").
		Response(http.StatusBadRequest, errBody, "Invalid username or email").
		Response(http.StatusConflict, errBody, "Username or email taken").
		Build()

	doc.Document(http.MethodPatch, "/users/me/password").
		Summary("Change password").
		Tags("users").
		Security(bearerScheme).
		Body(profile.ChangePasswordInput{}, "Current and new password").
		Response(http.StatusOK, MessageResponse{}, "Password changed").
		Response(http.StatusBadRequest, errBody, "Weak or mismatched new password").
		Response(http.StatusUnauthorized, errBody, "Current password wrong").
		Build()

	return doc
}
