// Package handler defines HTTP handlers; this file implements the
// administration endpoints. Every route here sits behind JWTAuth and
// RequireAdmin. User deletion composes the seat release and the row
// delete into a single transaction so the cascade applies as one unit
// or not at all.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zyhxx/classseat/internal/queue"
	"github.com/zyhxx/classseat/internal/repository"
	queue_publisher "github.com/zyhxx/classseat/internal/service"
)

// AdminHandler bundles the repositories the administration endpoints span.
type AdminHandler struct {
	Users *repository.UserRepo
	Seats *repository.SeatRepo
}

// NewAdminHandler constructs an AdminHandler and panics if any dependency is nil.
func NewAdminHandler(users *repository.UserRepo, seats *repository.SeatRepo) *AdminHandler {
	if users == nil || seats == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{Users: users, Seats: seats}
}

// ResetSeats handles POST /v1/admin/seats/reset. It unconditionally
// clears every reservation, including active ones.
func (h *AdminHandler) ResetSeats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Seats.ResetAll(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

type adminUserPart struct {
	ID        uint64    `json:"id"`
	Username  string    `json:"username"`
	PublicID  string    `json:"public_id"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// ListUsers handles GET /v1/admin/users. Password hashes never leave
// the repository layer's model; the response type carries profile
// fields only.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list users failed"})
	}
	out := make([]adminUserPart, 0, len(users))
	for _, u := range users {
		out = append(out, adminUserPart{
			ID:        u.ID,
			Username:  u.Username,
			PublicID:  u.PublicID,
			IsAdmin:   u.IsAdmin,
			CreatedAt: u.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// DeleteUser handles DELETE /v1/admin/users/:id. The acting admin may
// not delete themselves. Seat release and row deletion run in one
// transaction: when the target row does not exist the transaction rolls
// back, so a 404 guarantees no seat was touched.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	actingID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	targetID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || targetID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if targetID == actingID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "cannot delete the current user"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tx, err := h.Users.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	released, err := h.Seats.ReleaseByUserTx(ctx, tx, targetID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "release seats failed"})
	}
	if err := h.Users.DeleteTx(ctx, tx, targetID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	_ = queue_publisher.PublishUserDeleted(ctx, queue.UserDeletedEvent{
		UserID:        targetID,
		DeletedBy:     actingID,
		SeatsReleased: released,
		DeletedAt:     time.Now().UTC().Format(time.RFC3339),
	})

	return c.NoContent(http.StatusNoContent)
}
