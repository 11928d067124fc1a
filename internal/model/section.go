package model

import "time"

// Section groups seats of an event that share a price.  Seat prices
// are always read from the section at hold time and snapshotted onto
// the order line, so later price edits never affect existing holds.
//
// Fields:
//  ID           – primary key identifier.
//  EventID      – event this section belongs to.
//  Name         – section label (e.g. "Gold", "Balcony").
//  PriceInPaisa – price per seat in minor currency units.
//  SortOrder    – display ordering within the event.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Section struct {
    ID           uint64    // sections.id
    EventID      uint64    // sections.event_id
    Name         string    // sections.name
    PriceInPaisa int64     // sections.price_in_paisa
    SortOrder    uint32    // sections.sort_order
    CreatedAt    time.Time // sections.created_at
    UpdatedAt    time.Time // sections.updated_at
}
