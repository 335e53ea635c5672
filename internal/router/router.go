package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/zyhxx/classseat/internal/handler"
	"github.com/zyhxx/classseat/internal/middleware"
	"github.com/zyhxx/classseat/internal/repository"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication routes. Register and login
// live under /v1/auth and carry the rate limiter (pass nil to skip);
// /v1/me requires a valid bearer token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	if limiter != nil {
		g.Use(limiter)
	}
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterSeats registers the seat routes. Listing is public; reserve
// and cancel require a bearer token.
func RegisterSeats(e *echo.Echo, s *handler.SeatHandler, jwtSecret string) {
	e.GET("/v1/seats", s.List)

	g := e.Group("/v1/seats")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.POST("/reserve", s.Reserve)
	g.POST("/cancel", s.Cancel)
}

// RegisterAdmin registers the administration routes. Every route is
// gated by JWTAuth plus RequireAdmin, which re-reads the admin flag
// from the store on each request.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string, users *repository.UserRepo) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireAdmin(users))
	g.POST("/seats/reset", h.ResetSeats)
	g.GET("/users", h.ListUsers)
	g.DELETE("/users/:id", h.DeleteUser)
}
