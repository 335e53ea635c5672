package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zyhxx/classseat/internal/queue"
	"github.com/zyhxx/classseat/internal/repository"
	queue_publisher "github.com/zyhxx/classseat/internal/service"
)

// SeatHandler exposes the seat registry over HTTP: listing with the
// persisted expiry sweep, reserving and canceling. Reservation and
// cancellation assume JWT authentication has already run; listing is
// public so anyone can see which seats are taken.
type SeatHandler struct {
	Seats *repository.SeatRepo
}

// NewSeatHandler constructs a SeatHandler and panics if the repository is nil.
func NewSeatHandler(seats *repository.SeatRepo) *SeatHandler {
	if seats == nil {
		panic("nil repository passed to NewSeatHandler")
	}
	return &SeatHandler{Seats: seats}
}

type reserveReq struct {
	SeatID uint64  `json:"seat_id"`
	Hours  float64 `json:"hours"`
}
type cancelReq struct {
	SeatID uint64 `json:"seat_id"`
}

// List handles GET /v1/seats. The repository sweeps lapsed reservations
// before reading, so no returned seat is flagged reserved with a
// reserved_until in the past.
func (h *SeatHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	seats, err := h.Seats.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list seats failed"})
	}
	return c.JSON(http.StatusOK, seats)
}

// Reserve handles POST /v1/seats/reserve. The body carries the seat id
// and a positive duration in hours. The seat's previous reservation is
// swept as part of the same write when it has expired, so a stale flag
// never blocks a new booking. An active reservation yields 409.
func (h *SeatHandler) Reserve(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req reserveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.SeatID == 0 || !(req.Hours > 0) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_id and positive hours required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	until, err := h.Seats.Reserve(ctx, req.SeatID, userID, req.Hours)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSeatNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "seat already reserved"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reserve failed"})
		}
	}

	// Best effort: a broker outage must not fail the booking.
	_ = queue_publisher.PublishSeatReserved(ctx, queue.SeatReservedEvent{
		SeatID:        req.SeatID,
		UserID:        userID,
		ReservedUntil: until.Format(time.RFC3339),
		ReservedAt:    time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, echo.Map{
		"seat_id":        req.SeatID,
		"reserved_until": until.Format(time.RFC3339),
	})
}

// Cancel handles POST /v1/seats/cancel. Only the user holding the seat
// may cancel it; admins release seats through the reset endpoint
// instead of impersonating owners here.
func (h *SeatHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req cancelReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.SeatID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Seats.Cancel(ctx, req.SeatID, userID); err != nil {
		switch {
		case errors.Is(err, repository.ErrSeatNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "you can only cancel your own reservation"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "reservation cancelled"})
}
