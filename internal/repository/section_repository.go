package repository

import (
	"context"
	"database/sql"
)

// SectionRepo provides read access to the sections table.  Sections
// are catalog data; the booking core only ever reads their prices.
type SectionRepo struct {
	db *sql.DB
}

// NewSectionRepo returns a SectionRepo bound to the given database.
func NewSectionRepo(db *sql.DB) *SectionRepo { return &SectionRepo{db: db} }

// PricesTx returns the current price of each given section keyed by
// section id.  Unknown ids are absent from the map.
func (r *SectionRepo) PricesTx(ctx context.Context, tx *sql.Tx, sectionIDs []uint64) (map[uint64]int64, error) {
	if len(sectionIDs) == 0 {
		return map[uint64]int64{}, nil
	}
	placeholders, args := idList(sectionIDs)
	query := `SELECT id, price_in_paisa FROM sections WHERE id IN (` + placeholders + `)`
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	prices := make(map[uint64]int64, len(sectionIDs))
	for rows.Next() {
		var id uint64
		var price int64
		if err := rows.Scan(&id, &price); err != nil {
			return nil, err
		}
		prices[id] = price
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return prices, nil
}
