package model

import "time"

// Seat describes one of the fixed classroom seats. The full set of
// seat rows is created once at first startup and never grows or
// shrinks afterwards; only the reservation fields are mutated.
//
// ReservedBy is a weak reference to users.id: it must point at an
// existing user at the moment a reservation is written, but a stale
// value left behind after that carries no integrity guarantee of its
// own. A seat whose ReservedUntil lies in the past is free regardless
// of what IsReserved still says; readers must treat it as expired.
//
// Fields:
//  ID            – fixed seat number, 1..N.
//  IsReserved    – reservation flag as last persisted.
//  ReservedBy    – user holding the seat (nil when free).
//  ReservedUntil – end of the reservation window in UTC (nil when free).
type Seat struct {
	ID            uint64     // seats.id
	IsReserved    bool       // seats.is_reserved
	ReservedBy    *uint64    // seats.reserved_by (nullable)
	ReservedUntil *time.Time // seats.reserved_until (nullable)
}
