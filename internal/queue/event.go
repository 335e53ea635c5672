// Package queue defines message payloads exchanged over the message broker.
package queue

// SeatReservedEvent is published when a seat reservation is successfully
// written. Downstream consumers can log or notify without querying the
// primary database.
type SeatReservedEvent struct {
	SeatID        uint64 `json:"seat_id"`
	UserID        uint64 `json:"user_id"`
	ReservedUntil string `json:"reserved_until"`
	ReservedAt    string `json:"reserved_at"`
}

// UserDeletedEvent is published after an administrator removes a user
// and their seat reservations in one transaction.
type UserDeletedEvent struct {
	UserID        uint64 `json:"user_id"`
	DeletedBy     uint64 `json:"deleted_by"`
	SeatsReleased int64  `json:"seats_released"`
	DeletedAt     string `json:"deleted_at"`
}
