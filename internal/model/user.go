package model

import "time"

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column. The json tags
// are omitted here because these structs are used by the repository
// layer; handlers define separate response types with appropriate
// JSON tags.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name, immutable after registration.
//  PasswordHash – bcrypt hashed password.
//  PublicID     – unique user-facing identifier shown at registration.
//  IsAdmin      – whether the user holds administrator rights.
//  CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	PasswordHash string    // users.password_hash
	PublicID     string    // users.public_id
	IsAdmin      bool      // users.is_admin
	CreatedAt    time.Time // users.created_at
}
