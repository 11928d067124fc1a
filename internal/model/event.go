package model

import "time"

// EventStatus enumerates the lifecycle states of an event.  The set is
// closed; values outside it are rejected at the boundary.
type EventStatus string

const (
    EventUpcoming  EventStatus = "upcoming"
    EventOngoing   EventStatus = "ongoing"
    EventCompleted EventStatus = "completed"
    EventCancelled EventStatus = "cancelled"
)

// Event is a single occurrence that seats are sold for.  From the
// booking core's perspective events are read-only catalog data; they
// are created and maintained elsewhere.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – display name of the event.
//  Slug      – URL-safe identifier used by the public API.
//  Venue     – venue name, denormalised for display.
//  Status    – state of the event (upcoming, ongoing, completed, cancelled).
//  StartsAt  – scheduled start time in UTC.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Event struct {
    ID        uint64      // events.id
    Name      string      // events.name
    Slug      string      // events.slug
    Venue     string      // events.venue
    Status    EventStatus // events.status
    StartsAt  time.Time   // events.starts_at
    CreatedAt time.Time   // events.created_at
    UpdatedAt time.Time   // events.updated_at
}
