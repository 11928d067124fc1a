// Package scheduler runs the background sweep that returns lapsed seat
// holds to the available pool.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/tixcore/event-ticket-booking/internal/cache"
)

// Reclaimer is the one engine method the sweep needs.
type Reclaimer interface {
	ReclaimExpired(ctx context.Context) (int64, error)
}

// Sweeper periodically reclaims expired seat holds.  The sweep is a
// safety net: the reserve path reclaims lapsed holds inline for the
// seats it touches, so the scheduler only has to mop up seats nobody is
// asking for.
type Sweeper struct {
	svc   Reclaimer
	cache *cache.SeatMap
	sched gocron.Scheduler
}

// NewSweeper builds a Sweeper over the booking engine.  cache may be
// nil.
func NewSweeper(svc Reclaimer, seatCache *cache.SeatMap) *Sweeper {
	if seatCache == nil {
		seatCache = cache.NewSeatMap(nil, 0)
	}
	return &Sweeper{svc: svc, cache: seatCache}
}

// Start launches the sweep on the given interval.  Returns an error if
// the scheduler cannot be constructed; individual sweep failures are
// logged and the next run proceeds as scheduled.
func (s *Sweeper) Start(every time.Duration) error {
	sched, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return err
	}
	s.sched = sched

	_, err = sched.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(s.sweep),
	)
	if err != nil {
		return err
	}

	sched.Start()
	log.Printf("reclaim sweeper started (every %s)", every)
	return nil
}

// Stop shuts the scheduler down, waiting for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.sched != nil {
		_ = s.sched.Shutdown()
	}
}

// sweep runs one reclaim pass.
func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	released, err := s.svc.ReclaimExpired(ctx)
	if err != nil {
		log.Printf("reclaim sweep failed: %v", err)
		return
	}
	if released > 0 {
		s.cache.InvalidateAll(ctx)
		log.Printf("reclaim sweep released %d seat(s)", released)
	}
}
