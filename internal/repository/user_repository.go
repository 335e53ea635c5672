package repository

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/zyhxx/classseat/internal/model"
	"github.com/zyhxx/classseat/internal/utils"
)

// UserRepo provides data access to the users table.
type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions
// that span users and seats.
func (r *UserRepo) DB() *sql.DB { return r.db }

// ErrUsernameExists is returned when registration hits a taken username.
var ErrUsernameExists = errors.New("username already exists")

// ErrUserNotFound is returned when a user lookup yields no rows.
var ErrUserNotFound = errors.New("user not found")

// maxPublicIDAttempts bounds the regeneration loop when a freshly
// generated public id collides with an existing one.
const maxPublicIDAttempts = 8

// Create inserts a new user and returns the stored row. The password is
// bcrypt-hashed with the given cost. Admin status is decided inside the
// INSERT itself: the statement selects `COUNT(*) = 0` from users, so the
// very first row ever written gets is_admin=1 and concurrent first
// registrations serialize on the statement rather than racing a separate
// count query.
//
// The public id is time-derived; when the UNIQUE index rejects it the
// loop regenerates with extra entropy until the insert lands or the
// attempt budget runs out. A colliding id is never persisted.
func (r *UserRepo) Create(ctx context.Context, username, password string, cost int) (model.User, error) {
	username = strings.TrimSpace(username)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return model.User{}, err
	}
	for attempt := 0; attempt < maxPublicIDAttempts; attempt++ {
		publicID, err := newPublicID(attempt)
		if err != nil {
			return model.User{}, err
		}
		res, err := r.db.ExecContext(ctx,
			`INSERT INTO users (username, password_hash, public_id, is_admin)
			 SELECT ?, ?, ?, COUNT(*) = 0 FROM users`,
			username, hash, publicID)
		if err != nil {
			msg := strings.ToLower(err.Error())
			if strings.Contains(msg, "1062") {
				if strings.Contains(msg, "public_id") {
					continue // generated id collided, retry with fresh entropy
				}
				return model.User{}, ErrUsernameExists
			}
			return model.User{}, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return model.User{}, err
		}
		return r.GetByID(ctx, uint64(id))
	}
	return model.User{}, errors.New("exhausted public id generation attempts")
}

// newPublicID builds a user-facing identifier from the trailing digits
// of the current unix milliseconds, prefixed with "U". Retries append
// four random hex characters so repeated collisions cannot persist.
func newPublicID(attempt int) (string, error) {
	ms := strconv.FormatInt(time.Now().UnixMilli(), 10)
	id := "U" + ms[len(ms)-6:]
	if attempt == 0 {
		return id, nil
	}
	buf := make([]byte, 2)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return id + hex.EncodeToString(buf), nil
}

// GetByUsername fetches a user by exact username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	username = strings.TrimSpace(username)
	var u model.User
	err := r.db.QueryRowContext(ctx,
		"SELECT id, username, password_hash, public_id, is_admin, created_at FROM users WHERE username = ? LIMIT 1",
		username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.PublicID, &u.IsAdmin, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.db.QueryRowContext(ctx,
		"SELECT id, username, password_hash, public_id, is_admin, created_at FROM users WHERE id = ? LIMIT 1",
		id).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.PublicID, &u.IsAdmin, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// List returns all users ordered by id.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, username, password_hash, public_id, is_admin, created_at FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.PublicID, &u.IsAdmin, &u.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteTx removes a user row within the scope of an existing
// transaction. It returns ErrUserNotFound when no row was deleted so the
// caller can roll back any seat cleanup performed in the same unit. The
// caller must commit or rollback the transaction.
func (r *UserRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}
