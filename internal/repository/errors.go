// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to act on a seat reserved by someone else, while
// ErrConflict signals that a seat already carries an active
// reservation.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a reservation they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a reservation cannot be written
// because the seat is still actively reserved. Handlers should
// translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")
