package repository // repository defines data access for seats

import (
	"context"      // context allows query cancellation and timeouts
	"database/sql" // sql provides DB primitives
	"errors"       // errors for sentinel definitions
	"time"         // reservation window arithmetic

	"github.com/zyhxx/classseat/internal/model"
)

// ErrSeatNotFound is returned when a seat lookup yields no rows.
var ErrSeatNotFound = errors.New("seat not found")

// SeatView is the shape returned to clients when listing seats. The
// reserving user's username is joined in for display; Username and the
// reservation fields are nil for free seats.
type SeatView struct {
	ID            uint64  `json:"id"`
	IsReserved    bool    `json:"is_reserved"`
	ReservedBy    *uint64 `json:"reserved_by,omitempty"`
	ReservedUntil *string `json:"reserved_until,omitempty"`
	Username      *string `json:"username,omitempty"`
}

// SeatRepo provides methods to work with seats in the database. Every
// operation that observes reservation state first applies the expiry
// sweep, so no caller can see a seat that is flagged reserved with a
// reserved_until in the past. Expiry is strict: a reservation whose
// reserved_until equals the current instant is still active; it lapses
// only once reserved_until < now. All comparisons run in SQL against
// UTC_TIMESTAMP() so the rule lives in one place.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

// Seed inserts seat rows 1..n when the table is empty. It is called once
// at startup; on every later start the count check makes it a no-op, so
// the seat set is created exactly once and never altered afterwards.
func (r *SeatRepo) Seed(ctx context.Context, n int) error {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM seats").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	query := "INSERT INTO seats (id) VALUES "
	args := make([]interface{}, 0, n)
	for i := 1; i <= n; i++ {
		if i > 1 {
			query += ","
		}
		query += "(?)"
		args = append(args, i)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// SweepExpired clears the reservation fields on every seat whose window
// has lapsed. It returns the number of seats freed. The statement is
// idempotent and commutes with itself, so overlapping sweeps from
// concurrent list or reserve calls converge on the same cleared state.
func (r *SeatRepo) SweepExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE seats SET is_reserved = 0, reserved_by = NULL, reserved_until = NULL
		 WHERE is_reserved = 1 AND reserved_until < UTC_TIMESTAMP()`)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// List returns all seats ordered by id, each enriched with the reserving
// user's username. The expiry sweep runs first and its effect is
// persisted, not merely filtered out of the response.
func (r *SeatRepo) List(ctx context.Context) ([]SeatView, error) {
	if _, err := r.SweepExpired(ctx); err != nil {
		return nil, err
	}
	const q = `SELECT s.id, s.is_reserved, s.reserved_by, s.reserved_until, u.username
	           FROM seats s
	           LEFT JOIN users u ON u.id = s.reserved_by
	           ORDER BY s.id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]SeatView, 0, 128)
	for rows.Next() {
		var v SeatView
		var reservedBy sql.NullInt64
		var reservedUntil sql.NullTime
		var username sql.NullString
		if err := rows.Scan(&v.ID, &v.IsReserved, &reservedBy, &reservedUntil, &username); err != nil {
			return nil, err
		}
		if reservedBy.Valid {
			id := uint64(reservedBy.Int64)
			v.ReservedBy = &id
		}
		if reservedUntil.Valid {
			iso := reservedUntil.Time.UTC().Format(time.RFC3339)
			v.ReservedUntil = &iso
		}
		if username.Valid {
			name := username.String
			v.Username = &name
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Reserve books a seat for the given user until now + hours. The write
// is a single conditional UPDATE: it succeeds when the seat is free or
// its previous reservation has expired, freeing and retaking the seat in
// one statement. Two concurrent reserves for the same seat therefore
// cannot both win; the loser sees zero rows affected and gets
// ErrConflict (or ErrSeatNotFound when the id does not exist at all).
// On success the reservation end is returned.
func (r *SeatRepo) Reserve(ctx context.Context, seatID, userID uint64, hours float64) (time.Time, error) {
	until := time.Now().UTC().Add(time.Duration(hours * float64(time.Hour))).Truncate(time.Second)
	const q = `UPDATE seats
	           SET is_reserved = 1, reserved_by = ?, reserved_until = ?
	           WHERE id = ? AND (is_reserved = 0 OR reserved_until < UTC_TIMESTAMP())`
	res, err := r.db.ExecContext(ctx, q, userID, until, seatID)
	if err != nil {
		return time.Time{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM seats WHERE id = ?)", seatID).Scan(&exists); err != nil {
			return time.Time{}, err
		}
		if !exists {
			return time.Time{}, ErrSeatNotFound
		}
		return time.Time{}, ErrConflict
	}
	return until, nil
}

// GetByID retrieves a seat by its id.
func (r *SeatRepo) GetByID(ctx context.Context, id uint64) (*model.Seat, error) {
	const q = `SELECT id, is_reserved, reserved_by, reserved_until FROM seats WHERE id = ?`
	var s model.Seat
	var reservedBy sql.NullInt64
	var reservedUntil sql.NullTime
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&s.ID, &s.IsReserved, &reservedBy, &reservedUntil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeatNotFound
		}
		return nil, err
	}
	if reservedBy.Valid {
		v := uint64(reservedBy.Int64)
		s.ReservedBy = &v
	}
	if reservedUntil.Valid {
		t := reservedUntil.Time.UTC()
		s.ReservedUntil = &t
	}
	return &s, nil
}

// Cancel releases a seat held by the given user. A lapsed reservation is
// swept before the ownership check, so canceling a seat whose window has
// already expired reports ErrForbidden the same way an unreserved seat
// does. Seats reserved by someone else also yield ErrForbidden; missing
// seats yield ErrSeatNotFound.
func (r *SeatRepo) Cancel(ctx context.Context, seatID, userID uint64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE seats SET is_reserved = 0, reserved_by = NULL, reserved_until = NULL
		 WHERE id = ? AND is_reserved = 1 AND reserved_until < UTC_TIMESTAMP()`, seatID)
	if err != nil {
		return err
	}
	seat, err := r.GetByID(ctx, seatID)
	if err != nil {
		return err
	}
	if !seat.IsReserved || seat.ReservedBy == nil || *seat.ReservedBy != userID {
		return ErrForbidden
	}
	// Keep the owner in the predicate so a racing re-reservation by
	// another user is not clobbered.
	res, err := r.db.ExecContext(ctx,
		`UPDATE seats SET is_reserved = 0, reserved_by = NULL, reserved_until = NULL
		 WHERE id = ? AND reserved_by = ?`, seatID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrForbidden
	}
	return nil
}

// ResetAll unconditionally clears the reservation fields on every seat.
// Privileged; callers gate it behind the admin check.
func (r *SeatRepo) ResetAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE seats SET is_reserved = 0, reserved_by = NULL, reserved_until = NULL")
	return err
}

// ReleaseByUserTx clears every seat reserved by the given user within
// the provided transaction. It is the cascade step of user deletion:
// the caller pairs it with UserRepo.DeleteTx and commits or rolls back
// both as one unit.
func (r *SeatRepo) ReleaseByUserTx(ctx context.Context, tx *sql.Tx, userID uint64) (int64, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE seats SET is_reserved = 0, reserved_by = NULL, reserved_until = NULL
		 WHERE reserved_by = ?`, userID)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}
