package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/tixcore/event-ticket-booking/internal/model"
)

// EventRepo provides read access to the events table.  The booking
// core treats events as read-only catalog data.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns an EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// GetByID returns a single event.  ErrEventNotFound is returned when
// no such event exists.
func (r *EventRepo) GetByID(ctx context.Context, eventID uint64) (*model.Event, error) {
	const q = `SELECT id, name, slug, venue, status, starts_at, created_at, updated_at FROM events WHERE id = ?`
	var ev model.Event
	err := r.db.QueryRowContext(ctx, q, eventID).Scan(
		&ev.ID, &ev.Name, &ev.Slug, &ev.Venue, &ev.Status, &ev.StartsAt, &ev.CreatedAt, &ev.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}
