package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/tixcore/event-ticket-booking/internal/model"
)

// SeatRepo provides access to the seats table.  Seat state transitions
// only happen through the Tx methods so they always execute under the
// row locks taken by SeatsForUpdateTx.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo returns a SeatRepo bound to the given database.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

// seatColumns is the select list shared by seat queries.
const seatColumns = `id, event_id, section_id, row_label, seat_number, status, locked_by, locked_until, created_at, updated_at`

// SeatsForUpdateTx loads the requested seats under exclusive row locks.
// The ORDER BY makes InnoDB acquire the locks in ascending id order, so
// two transactions competing for overlapping seat sets block instead of
// deadlocking.  Ids that match no row are simply absent from the
// result.
func (r *SeatRepo) SeatsForUpdateTx(ctx context.Context, tx *sql.Tx, seatIDs []uint64) ([]model.Seat, error) {
	if len(seatIDs) == 0 {
		return []model.Seat{}, nil
	}
	placeholders, args := idList(seatIDs)
	query := `SELECT ` + seatColumns + ` FROM seats WHERE id IN (` + placeholders + `) ORDER BY id FOR UPDATE`
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seats := make([]model.Seat, 0, len(seatIDs))
	for rows.Next() {
		seat, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}

// ReleaseTx returns seats to the available pool, clearing holder and
// expiry.  Callers must already hold the row locks.
func (r *SeatRepo) ReleaseTx(ctx context.Context, tx *sql.Tx, seatIDs []uint64) error {
	if len(seatIDs) == 0 {
		return nil
	}
	placeholders, args := idList(seatIDs)
	query := `UPDATE seats SET status = 'available', locked_by = NULL, locked_until = NULL WHERE id IN (` + placeholders + `)`
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// LockTx places a hold for the user on every given seat until the
// given instant.
func (r *SeatRepo) LockTx(ctx context.Context, tx *sql.Tx, seatIDs []uint64, userID uint64, until time.Time) error {
	if len(seatIDs) == 0 {
		return nil
	}
	placeholders, args := idList(seatIDs)
	query := `UPDATE seats SET status = 'locked', locked_by = ?, locked_until = ? WHERE id IN (` + placeholders + `)`
	_, err := tx.ExecContext(ctx, query, append([]interface{}{userID, until.UTC()}, args...)...)
	return err
}

// BookTx finalises seats into the booked state, clearing holder and
// expiry.
func (r *SeatRepo) BookTx(ctx context.Context, tx *sql.Tx, seatIDs []uint64) error {
	if len(seatIDs) == 0 {
		return nil
	}
	placeholders, args := idList(seatIDs)
	query := `UPDATE seats SET status = 'booked', locked_by = NULL, locked_until = NULL WHERE id IN (` + placeholders + `)`
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// ReleaseExpiredTx bulk-releases every locked seat whose hold lapsed
// before now and reports the number of rows changed.  Orders are not
// touched here; a pending order over swept seats fails on its own
// expiry when confirmation is attempted.
func (r *SeatRepo) ReleaseExpiredTx(ctx context.Context, tx *sql.Tx, now time.Time) (int64, error) {
	const query = `UPDATE seats SET status = 'available', locked_by = NULL, locked_until = NULL WHERE status = 'locked' AND locked_until < ?`
	res, err := tx.ExecContext(ctx, query, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SeatMapRow is one seat in the public seat map, with its section and
// effective availability.
type SeatMapRow struct {
	SeatID       uint64 `json:"seat_id"`
	SectionID    uint64 `json:"section_id"`
	SectionName  string `json:"section_name"`
	PriceInPaisa int64  `json:"price_in_paisa"`
	Row          string `json:"row"`
	Number       uint32 `json:"number"`
	Status       string `json:"status"`
}

// SeatMapByEvent returns every seat of the event joined with its
// section, ordered by section, row and number.  A locked seat whose
// hold lapsed before now is reported as available; the database is not
// mutated on this read path.
func (r *SeatRepo) SeatMapByEvent(ctx context.Context, eventID uint64, now time.Time) ([]SeatMapRow, error) {
	const query = `SELECT s.id, s.section_id, sec.name, sec.price_in_paisa, s.row_label, s.seat_number, s.status, s.locked_until
	               FROM seats s
	               JOIN sections sec ON sec.id = s.section_id
	               WHERE s.event_id = ?
	               ORDER BY sec.sort_order, sec.id, s.row_label, s.seat_number`
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]SeatMapRow, 0, 64)
	for rows.Next() {
		var row SeatMapRow
		var lockedUntil sql.NullTime
		if err := rows.Scan(&row.SeatID, &row.SectionID, &row.SectionName, &row.PriceInPaisa, &row.Row, &row.Number, &row.Status, &lockedUntil); err != nil {
			return nil, err
		}
		if row.Status == string(model.SeatLocked) && lockedUntil.Valid && lockedUntil.Time.Before(now) {
			row.Status = string(model.SeatAvailable)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// scanSeat reads one seat row from a seatColumns select.
func scanSeat(rows *sql.Rows) (model.Seat, error) {
	var seat model.Seat
	var lockedBy sql.NullInt64
	var lockedUntil sql.NullTime
	if err := rows.Scan(
		&seat.ID, &seat.EventID, &seat.SectionID, &seat.Row, &seat.Number,
		&seat.Status, &lockedBy, &lockedUntil, &seat.CreatedAt, &seat.UpdatedAt,
	); err != nil {
		return model.Seat{}, err
	}
	if lockedBy.Valid {
		uid := uint64(lockedBy.Int64)
		seat.LockedBy = &uid
	}
	if lockedUntil.Valid {
		t := lockedUntil.Time.UTC()
		seat.LockedUntil = &t
	}
	return seat, nil
}

// idList builds "?, ?, ?" placeholders and the matching args for an IN
// clause.
func idList(ids []uint64) (string, []interface{}) {
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	return strings.Join(placeholders, ", "), args
}
