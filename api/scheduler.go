/*
scheduler.go - Automated recurring order generation

PURPOSE:
  Periodically materializes recurring templates into orders for the next
  delivery day, so customers see them (and can still edit them) before the
  21:00 cutoff on the eve of delivery.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Generates at most once per target day; later ticks are no-ops
  - Single writer: this goroutine is the only batch caller of
    Service.GenerateRecurring, which avoids the check-then-act race with
    itself. Manual orders placed in between are still re-checked before insert.

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewRecurringScheduler(service, log)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: GenerateRecurring endpoint (manual generation)
  - bakery/recurring.go: The generator itself
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warp/bakery-engine/bakery"
	"github.com/warp/bakery-engine/generic"
)

// RecurringScheduler generates tomorrow's recurring orders once per day.
type RecurringScheduler struct {
	Service       *bakery.Service
	Log           logrus.FieldLogger
	CheckInterval time.Duration
	Enabled       bool

	ticker  *time.Ticker
	stop    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	lastDay time.Time
}

// NewRecurringScheduler creates a new scheduler.
func NewRecurringScheduler(service *bakery.Service, log logrus.FieldLogger) *RecurringScheduler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RecurringScheduler{
		Service:       service,
		Log:           log.WithField("component", "scheduler"),
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan struct{}),
	}
}

// Start begins the scheduler.
func (rs *RecurringScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Enabled {
		rs.Log.Info("disabled, not starting")
		return
	}

	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.wg.Add(1)

	go rs.run()

	rs.Log.WithField("interval", rs.CheckInterval.String()).Info("started")
}

// Stop stops the scheduler and waits for an in-flight run.
func (rs *RecurringScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		rs.ticker.Stop()
		close(rs.stop)
		rs.wg.Wait()
		rs.ticker = nil
		rs.Log.Info("stopped")
	}
}

func (rs *RecurringScheduler) run() {
	defer rs.wg.Done()

	// Run immediately on start
	rs.RunOnce(context.Background())

	for {
		select {
		case <-rs.ticker.C:
			rs.RunOnce(context.Background())
		case <-rs.stop:
			return
		}
	}
}

// RunOnce generates orders for the day after the service's today, unless
// that day was already handled. It reports how many orders were created.
func (rs *RecurringScheduler) RunOnce(ctx context.Context) int {
	target := rs.Service.Day(rs.Service.Now()).AddDate(0, 0, 1)
	if rs.lastDay.Equal(target) {
		return 0
	}

	orders, err := rs.Service.GenerateRecurring(ctx, target)
	if err != nil {
		rs.Log.WithError(err).WithField("date", generic.FormatDate(target)).Error("recurring generation failed")
		return len(orders)
	}
	rs.lastDay = target
	return len(orders)
}
