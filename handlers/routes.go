package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/accounts/openapi"
)

type Routes struct {
	Auth        *AuthHandler
	Users       *UserHandler
	RequireAuth echo.MiddlewareFunc
	RateLimit   echo.MiddlewareFunc
	Docs        *openapi.OpenAPI
}

// Register mounts the auth routes (rate limited when RateLimit is set) and the
// authenticated /users routes. The API description is served when Docs is set.
func (r Routes) Register(e *echo.Echo) {
	e.GET("/health", Health)

	authMiddleware := []echo.MiddlewareFunc{}
	if r.RateLimit != nil {
		authMiddleware = append(authMiddleware, r.RateLimit)
	}

	authGroup := e.Group("/api/auth", authMiddleware...)
	authGroup.POST("/signup", r.Auth.Signup)
	authGroup.POST("/login", r.Auth.Login)
	authGroup.POST("/verify", r.Auth.Verify)
	authGroup.POST("/resend", r.Auth.Resend)
	authGroup.POST("/logout", r.Auth.Logout)

	users := e.Group("/users", r.RequireAuth)
	users.GET("/me", r.Users.Me)
	users.PATCH("/me", r.Users.UpdateMe)
	users.PATCH("/me/password", r.Users.ChangePassword)

	if r.Docs != nil {
		e.GET("/openapi.json", r.Docs.JSONHandler())
		e.GET("/openapi.yaml", r.Docs.YAMLHandler())
	}
}
