package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/tixcore/event-ticket-booking/internal/handler"
	"github.com/tixcore/event-ticket-booking/internal/middleware"
)

// Register wires every route of the service onto the provided Echo
// instance.  Public browse endpoints and the health check carry no
// authentication; the booking flow requires a valid bearer token; the
// reclaim endpoint lives under /internal and is expected to be fenced
// off at the network layer.
func Register(e *echo.Echo, b *handler.BookingHandler, sm *handler.SeatMapHandler, jwtSecret string) {
	// Liveness probe for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	// Public browse endpoints.  Guests can inspect the seat map before
	// deciding to sign in and book.
	e.GET("/v1/events/:id/seats", sm.GetSeatMap)

	// Authenticated booking flow.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.POST("/events/:id/lock-seats", b.LockSeats)
	auth.POST("/orders/:id/confirm", b.ConfirmOrder)
	auth.GET("/orders/:id", b.GetOrder)
	auth.GET("/my-orders", b.ListOrders)

	// Operator endpoint: release lapsed holds on demand.  The scheduler
	// runs the same sweep on a timer; this route exists for manual and
	// test use.
	e.POST("/internal/reclaim", b.Reclaim)
}
