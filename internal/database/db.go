package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the users and seats tables when they do not exist
// yet. Seat rows themselves are seeded separately by the seat repository
// so the one-time population check lives next to the rest of the seat
// logic.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	const users = `CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		username      VARCHAR(64)  NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		public_id     VARCHAR(32)  NOT NULL,
		is_admin      TINYINT(1)   NOT NULL DEFAULT 0,
		created_at    TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_username (username),
		UNIQUE KEY uq_users_public_id (public_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

	const seats = `CREATE TABLE IF NOT EXISTS seats (
		id             INT UNSIGNED NOT NULL PRIMARY KEY,
		is_reserved    TINYINT(1)   NOT NULL DEFAULT 0,
		reserved_by    BIGINT UNSIGNED NULL,
		reserved_until DATETIME     NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

	if _, err := db.ExecContext(ctx, users); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, seats); err != nil {
		return err
	}
	return nil
}
