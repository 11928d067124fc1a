package model

import "time"

// SeatStatus enumerates the states a seat can be in.  A locked seat
// whose lock has lapsed is logically available again; the reclaimer
// makes that explicit in the database.
type SeatStatus string

const (
    SeatAvailable SeatStatus = "available"
    SeatLocked    SeatStatus = "locked"
    SeatBooked    SeatStatus = "booked"
)

// Seat is a uniquely identified reservable unit of an event.  A seat is
// only ever mutated inside a transaction that holds its row lock.
//
// Invariants:
//  status = locked  ⇒ LockedBy and LockedUntil are set.
//  status = booked  ⇒ LockedBy and LockedUntil are cleared.
//
// Fields:
//  ID          – primary key identifier.
//  EventID     – event this seat belongs to.
//  SectionID   – pricing section this seat belongs to.
//  Row         – row label within the section.
//  Number      – seat number within the row.
//  Status      – availability status (available, locked, booked).
//  LockedBy    – user currently holding the seat, if any.
//  LockedUntil – when the current hold lapses, if any.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Seat struct {
    ID          uint64     // seats.id
    EventID     uint64     // seats.event_id
    SectionID   uint64     // seats.section_id
    Row         string     // seats.row_label
    Number      uint32     // seats.seat_number
    Status      SeatStatus // seats.status
    LockedBy    *uint64    // seats.locked_by (nullable)
    LockedUntil *time.Time // seats.locked_until (nullable)
    CreatedAt   time.Time  // seats.created_at
    UpdatedAt   time.Time  // seats.updated_at
}

// LockExpired reports whether the seat is locked but its hold window has
// already passed at the given instant.
func (s *Seat) LockExpired(now time.Time) bool {
    return s.Status == SeatLocked && s.LockedUntil != nil && s.LockedUntil.Before(now)
}

// AvailableAt reports whether the seat can be handed to a new holder at
// the given instant, counting lapsed locks as available.
func (s *Seat) AvailableAt(now time.Time) bool {
    return s.Status == SeatAvailable || s.LockExpired(now)
}
