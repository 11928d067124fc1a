package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tixcore/event-ticket-booking/internal/booking"
	"github.com/tixcore/event-ticket-booking/internal/cache"
	"github.com/tixcore/event-ticket-booking/internal/repository"
)

// SeatMapHandler serves the public seat map for an event.  The map is
// read straight from the database, rendered grouped by section, and
// cached briefly in Redis.  A locked seat whose hold has lapsed shows
// as available without touching the database; the next write to those
// seats reclaims them for real.
type SeatMapHandler struct {
	events *repository.EventRepo
	seats  *repository.SeatRepo
	cache  *cache.SeatMap
	clock  booking.Clock
}

// NewSeatMapHandler constructs a SeatMapHandler.  cache may be nil.
func NewSeatMapHandler(events *repository.EventRepo, seats *repository.SeatRepo, seatCache *cache.SeatMap, clk booking.Clock) *SeatMapHandler {
	if events == nil || seats == nil {
		panic("nil repository passed to NewSeatMapHandler")
	}
	if seatCache == nil {
		seatCache = cache.NewSeatMap(nil, 0)
	}
	if clk == nil {
		clk = booking.SystemClock()
	}
	return &SeatMapHandler{events: events, seats: seats, cache: seatCache, clock: clk}
}

// seatMapResponse is the payload of GET /v1/events/:id/seats.
type seatMapResponse struct {
	EventID  uint64           `json:"event_id"`
	Name     string           `json:"name"`
	Venue    string           `json:"venue"`
	StartsAt string           `json:"starts_at"`
	Sections []seatMapSection `json:"sections"`
}

// seatMapSection groups the seats of one pricing section.
type seatMapSection struct {
	SectionID    uint64        `json:"section_id"`
	Name         string        `json:"name"`
	PriceInPaisa int64         `json:"price_in_paisa"`
	Seats        []seatMapSeat `json:"seats"`
}

// seatMapSeat is one selectable seat.
type seatMapSeat struct {
	SeatID uint64 `json:"seat_id"`
	Row    string `json:"row"`
	Number uint32 `json:"number"`
	Status string `json:"status"`
}

// GetSeatMap handles GET /v1/events/:id/seats.  Cached responses are
// returned verbatim; on a miss the map is rendered and stored with a
// short TTL so a burst of browsers does not hammer the database.
func (h *SeatMapHandler) GetSeatMap(c echo.Context) error {
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ctx := c.Request().Context()

	if payload, ok := h.cache.Get(ctx, eventID); ok {
		return c.JSONBlob(http.StatusOK, payload)
	}

	event, err := h.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	rows, err := h.seats.SeatMapByEvent(ctx, eventID, h.clock.Now())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	resp := seatMapResponse{
		EventID:  event.ID,
		Name:     event.Name,
		Venue:    event.Venue,
		StartsAt: event.StartsAt.UTC().Format(time.RFC3339),
		Sections: []seatMapSection{},
	}
	// rows arrive ordered by section, so grouping is a single pass
	for _, row := range rows {
		n := len(resp.Sections)
		if n == 0 || resp.Sections[n-1].SectionID != row.SectionID {
			resp.Sections = append(resp.Sections, seatMapSection{
				SectionID:    row.SectionID,
				Name:         row.SectionName,
				PriceInPaisa: row.PriceInPaisa,
				Seats:        []seatMapSeat{},
			})
			n++
		}
		resp.Sections[n-1].Seats = append(resp.Sections[n-1].Seats, seatMapSeat{
			SeatID: row.SeatID,
			Row:    row.Row,
			Number: row.Number,
			Status: row.Status,
		})
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	h.cache.Set(ctx, eventID, payload)
	return c.JSONBlob(http.StatusOK, payload)
}
