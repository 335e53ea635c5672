package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zyhxx/classseat/internal/repository"
)

// RequireAdmin returns a middleware that gates a route group behind the
// current admin flag of the authenticated user. The flag is read from
// the store on every request rather than from the token: admin status
// can change between token issuance and use (the seed admin account may
// itself be deleted), so authority is always re-derived from current
// state. A missing user row is treated the same as a revoked flag. It
// assumes JWTAuth has already stored the user id in the context.
func RequireAdmin(users *repository.UserRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := userIDFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			u, err := users.GetByID(ctx, id)
			if err != nil || !u.IsAdmin {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "admin required"})
			}
			return next(c)
		}
	}
}

// userIDFrom extracts the numeric user id that JWTAuth stored in the
// context. JWT numeric claims decode as float64; other encodings are
// accepted for robustness.
func userIDFrom(c echo.Context) (uint64, bool) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, true
	case int:
		return uint64(t), true
	case int64:
		return uint64(t), true
	case float64:
		return uint64(t), true
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}
