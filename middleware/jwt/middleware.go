package jwt

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/accounts/services/apperr"
	"github.com/tech-arch1tect/accounts/services/jwt"
)

const claimsKey = "_jwt_claims"

var (
	ErrMissingAuthHeader = apperr.New(apperr.InvalidSignature, "Authorization header required")
	ErrBadAuthHeader     = apperr.New(apperr.InvalidSignature, "Authorization header must be: Bearer <token>")
)

type TokenValidator interface {
	ValidateClaims(tokenString string) (*jwt.Claims, error)
}

// RequireJWT resolves the bearer token and stores its claims on the context.
// Every failure is an InvalidSignature or Expired apperr, answered as 401.
func RequireJWT(tokens TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")

			tokenString, err := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return err
			}

			claims, err := tokens.ValidateClaims(tokenString)
			if err != nil {
				return err
			}

			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

// bearerToken extracts the token from an Authorization value. The scheme
// name is matched case-insensitively.
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingAuthHeader
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrBadAuthHeader
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrBadAuthHeader
	}
	return token, nil
}

func GetClaims(c echo.Context) *jwt.Claims {
	claims, _ := c.Get(claimsKey).(*jwt.Claims)
	return claims
}

// GetUserID is the authenticated account id, or 0 outside RequireJWT.
func GetUserID(c echo.Context) uint {
	if claims := GetClaims(c); claims != nil {
		return claims.UserID
	}
	return 0
}
