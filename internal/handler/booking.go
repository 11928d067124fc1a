package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tixcore/event-ticket-booking/internal/booking"
	"github.com/tixcore/event-ticket-booking/internal/cache"
	"github.com/tixcore/event-ticket-booking/internal/model"
	"github.com/tixcore/event-ticket-booking/internal/repository"
)

// BookingService is the slice of the reservation engine the HTTP layer
// needs.  Declared here so handler tests can stub it.
type BookingService interface {
	Reserve(ctx context.Context, userID, eventID uint64, seatIDs []uint64) (*model.Order, error)
	Confirm(ctx context.Context, userID, orderID uint64, method model.PaymentMethod) (*model.Order, error)
	ReclaimExpired(ctx context.Context) (int64, error)
}

// OrderReader is the read side of order queries used by the listing
// endpoints.  Implemented by *repository.OrderRepo.
type OrderReader interface {
	ListByUser(ctx context.Context, userID uint64) ([]repository.OrderDetail, error)
	GetDetailForUser(ctx context.Context, orderID, userID uint64) (*repository.OrderDetail, error)
}

// BookingHandler exposes the reservation flow over HTTP: locking seats
// into a pending order, confirming with payment, and reading the
// caller's orders.  All endpoints require an authenticated user; the
// JWT middleware must run first.
type BookingHandler struct {
	svc    BookingService
	orders OrderReader
	cache  *cache.SeatMap
}

// NewBookingHandler constructs a BookingHandler.  cache may be nil.
func NewBookingHandler(svc BookingService, orders OrderReader, seatCache *cache.SeatMap) *BookingHandler {
	if svc == nil || orders == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	if seatCache == nil {
		seatCache = cache.NewSeatMap(nil, 0)
	}
	return &BookingHandler{svc: svc, orders: orders, cache: seatCache}
}

// lockSeatsRequest is the body of POST /v1/events/:id/lock-seats.
type lockSeatsRequest struct {
	SeatIDs []uint64 `json:"seat_ids" validate:"required,min=1,dive,gt=0"`
}

// confirmRequest is the body of POST /v1/orders/:id/confirm.
type confirmRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required,oneof=upi credit_card debit_card net_banking"`
}

// orderResponse renders an engine order for API clients.
type orderResponse struct {
	OrderID         uint64              `json:"order_id"`
	EventID         uint64              `json:"event_id"`
	Status          string              `json:"status"`
	SubtotalInPaisa int64               `json:"subtotal_in_paisa"`
	TaxInPaisa      int64               `json:"tax_in_paisa"`
	TotalInPaisa    int64               `json:"total_in_paisa"`
	ExpiresAt       *string             `json:"expires_at,omitempty"`
	ConfirmedAt     *string             `json:"confirmed_at,omitempty"`
	Items           []orderItemResponse `json:"items"`
}

// orderItemResponse is one seat line of an orderResponse.
type orderItemResponse struct {
	SeatID       uint64 `json:"seat_id"`
	PriceInPaisa int64  `json:"price_in_paisa"`
}

func toOrderResponse(order *model.Order) orderResponse {
	resp := orderResponse{
		OrderID:         order.ID,
		EventID:         order.EventID,
		Status:          string(order.Status),
		SubtotalInPaisa: order.SubtotalInPaisa,
		TaxInPaisa:      order.TaxInPaisa,
		TotalInPaisa:    order.TotalInPaisa,
		Items:           make([]orderItemResponse, 0, len(order.Items)),
	}
	if order.ExpiresAt != nil {
		iso := order.ExpiresAt.UTC().Format(time.RFC3339)
		resp.ExpiresAt = &iso
	}
	if order.ConfirmedAt != nil {
		iso := order.ConfirmedAt.UTC().Format(time.RFC3339)
		resp.ConfirmedAt = &iso
	}
	for i := range order.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			SeatID:       order.Items[i].SeatID,
			PriceInPaisa: order.Items[i].PriceInPaisa,
		})
	}
	return resp
}

// LockSeats handles POST /v1/events/:id/lock-seats.  It places a
// short-lived hold on the requested seats and creates a pending order
// priced at hold time.  Retrying with the identical seat set while the
// hold is active returns the existing order unchanged.
func (h *BookingHandler) LockSeats(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var body lockSeatsRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_ids must be a non-empty list of positive ids"})
	}

	ctx := c.Request().Context()
	order, err := h.svc.Reserve(ctx, userID, eventID, body.SeatIDs)
	if err != nil {
		return h.writeDomainError(c, err)
	}
	h.cache.Invalidate(ctx, eventID)
	// An idempotent replay returns the pre-existing order under the
	// same status; clients key off order_id, not the status code.
	return c.JSON(http.StatusCreated, toOrderResponse(order))
}

// ConfirmOrder handles POST /v1/orders/:id/confirm.  The simulated
// payment always succeeds; the order flips to confirmed and its seats
// become booked.
func (h *BookingHandler) ConfirmOrder(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orderID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	var body confirmRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment_method must be one of upi, credit_card, debit_card, net_banking"})
	}

	ctx := c.Request().Context()
	order, err := h.svc.Confirm(ctx, userID, orderID, model.PaymentMethod(body.PaymentMethod))
	if err != nil {
		return h.writeDomainError(c, err)
	}
	h.cache.Invalidate(ctx, order.EventID)
	return c.JSON(http.StatusOK, toOrderResponse(order))
}

// ListOrders handles GET /v1/my-orders.  Returns every order of the
// authenticated user, newest first, with seat details and the latest
// payment per order.
func (h *BookingHandler) ListOrders(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orders, err := h.orders.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}

// GetOrder handles GET /v1/orders/:id.  Only the owning user may read
// an order; anyone else gets a 403.
func (h *BookingHandler) GetOrder(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orderID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	detail, err := h.orders.GetDetailForUser(c.Request().Context(), orderID, userID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your order"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
	}
	return c.JSON(http.StatusOK, detail)
}

// Reclaim handles POST /internal/reclaim.  It releases every lapsed
// seat hold and reports how many seats were freed.  The route is meant
// to sit behind the operator network boundary; the in-process scheduler
// calls the same engine method on a timer.
func (h *BookingHandler) Reclaim(c echo.Context) error {
	ctx := c.Request().Context()
	released, err := h.svc.ReclaimExpired(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reclaim failed"})
	}
	if released > 0 {
		h.cache.InvalidateAll(ctx)
	}
	return c.JSON(http.StatusOK, echo.Map{"released": released})
}

// writeDomainError maps engine errors to HTTP responses.  Selection
// problems are the caller's fault (400/422), contention and lifecycle
// conflicts are 409, ownership is 403 and a missing order is 404.
func (h *BookingHandler) writeDomainError(c echo.Context, err error) error {
	if !booking.IsDomainError(err) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	switch {
	case errors.Is(err, booking.ErrEmptySelection):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no seats selected"})
	case errors.Is(err, booking.ErrCrossEventSelection):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "all seats must belong to the requested event"})
	case errors.Is(err, booking.ErrSeatUnavailable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "one or more seats are no longer available"})
	case errors.Is(err, booking.ErrNotOwner):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your order"})
	case errors.Is(err, booking.ErrOrderExpired):
		return c.JSON(http.StatusConflict, echo.Map{"error": "order hold has expired"})
	case errors.Is(err, booking.ErrNotConfirmable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "order cannot be confirmed"})
	case errors.Is(err, booking.ErrOrderNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
