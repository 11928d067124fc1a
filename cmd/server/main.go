package main // Entry point package

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/tixcore/event-ticket-booking/internal/booking"
	"github.com/tixcore/event-ticket-booking/internal/cache"
	"github.com/tixcore/event-ticket-booking/internal/config"
	"github.com/tixcore/event-ticket-booking/internal/database"
	"github.com/tixcore/event-ticket-booking/internal/handler"
	"github.com/tixcore/event-ticket-booking/internal/queue"
	"github.com/tixcore/event-ticket-booking/internal/repository"
	"github.com/tixcore/event-ticket-booking/internal/router"
	"github.com/tixcore/event-ticket-booking/internal/scheduler"
	queue_publisher "github.com/tixcore/event-ticket-booking/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	store := repository.NewStore(db)
	events := repository.NewEventRepo(db)

	// Redis is optional; a nil client turns the seat-map cache into a
	// pass-through.
	redisClient := config.NewRedisClient()
	if redisClient == nil {
		log.Println("redis unavailable, seat-map cache disabled")
	}
	seatCache := cache.NewSeatMap(redisClient, cfg.SeatMapTTL)

	engine := booking.NewService(
		store,
		booking.SystemClock(),
		booking.CryptoTokenSource(),
		booking.WithHoldTTL(time.Duration(cfg.HoldMinutes)*time.Minute),
		booking.WithTaxRateBps(int64(cfg.TaxRateBps)),
		booking.WithNotifier(queue_publisher.NewNotifier()),
	)

	// Consume order.confirmed messages in the background.  The consumer
	// has its own reconnect loop and never returns under normal
	// operation.
	go func() {
		if err := queue.StartOrderConsumer(); err != nil {
			log.Printf("order consumer stopped: %v", err)
		}
	}()

	// Background sweep for lapsed holds.
	sweeper := scheduler.NewSweeper(engine, seatCache)
	if err := sweeper.Start(cfg.SweepInterval); err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	defer sweeper.Stop()

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	bookingHandler := handler.NewBookingHandler(engine, store.Orders(), seatCache)
	seatMapHandler := handler.NewSeatMapHandler(events, store.Seats(), seatCache, booking.SystemClock())
	router.Register(e, bookingHandler, seatMapHandler, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
