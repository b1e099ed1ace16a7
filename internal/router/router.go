// Package router wires handlers and middleware onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/sincarebunch/barbershop-api/internal/handler"
	"github.com/sincarebunch/barbershop-api/internal/metrics"
	"github.com/sincarebunch/barbershop-api/internal/middleware"
	"github.com/sincarebunch/barbershop-api/internal/model"
	"github.com/sincarebunch/barbershop-api/internal/utils"
)

// Configure installs the validator and the global middleware chain.
func Configure(e *echo.Echo, corsOrigins []string, log *zap.Logger) {
	e.HideBanner = true
	e.HidePort = true
	e.Validator = utils.NewRequestValidator()

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, echo.HeaderXRequestID},
		AllowCredentials: true,
	}))
}

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo, base *handler.BaseHandler) {
	e.GET("/", base.Welcome)
	e.GET("/healthz", base.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
}

// RegisterAuth registers the session endpoints under /v1/auth behind the
// rate limiter.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", limiter)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.DELETE("/logout", a.Logout)
}

// RegisterUser registers profile endpoints; every role may use them.
func RegisterUser(e *echo.Echo, u *handler.UserHandler, v middleware.TokenVerifier) {
	g := e.Group("/v1/users",
		middleware.JWTAuth(v),
		middleware.RequireRole(model.RoleCustomer, model.RoleBarber, model.RoleAdmin),
	)
	g.GET("/me", u.Me)
	g.PUT("/me", u.UpdateMe)
	g.PUT("/change-password", u.ChangePassword)
}

// RegisterAdmin registers administrator-only endpoints.
func RegisterAdmin(e *echo.Echo, l *handler.LogsHandler, v middleware.TokenVerifier) {
	g := e.Group("/v1", middleware.JWTAuth(v), middleware.RequireRole(model.RoleAdmin))
	g.GET("/logs", l.List)
}
