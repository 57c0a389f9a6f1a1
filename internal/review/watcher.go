package review

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"custom-print-backend/internal/metrics"
	"custom-print-backend/internal/models"
	"custom-print-backend/internal/store"

	"go.uber.org/zap"
)

// DefaultPollInterval is how often the review list is refreshed.
const DefaultPollInterval = 30 * time.Second

// Snapshot is one refresh of a filtered request list.
type Snapshot struct {
	Requests []models.CustomizationRequest
	Err      error
	At       time.Time
}

// Watcher delivers fresh request lists to a subscriber until ctx is done or
// the subscription is stopped. Deliveries to one subscriber never overlap.
type Watcher interface {
	Subscribe(ctx context.Context, f store.Filter, fn func(Snapshot)) *Subscription
}

type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Stop ends the subscription and waits for an in-flight delivery.
func (s *Subscription) Stop() {
	s.cancel()
	<-s.done
}

// Done is closed once the subscription has ended.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

type ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// Poller implements Watcher by re-listing on a fixed interval, for backends
// without change notifications. A tick that fires while the previous fetch
// is still running is skipped.
type Poller struct {
	store     store.RequestStore
	interval  time.Duration
	metrics   *metrics.Metrics
	logger    *zap.Logger
	newTicker func(time.Duration) ticker
	now       func() time.Time
}

func NewPoller(requestStore store.RequestStore, interval time.Duration, m *metrics.Metrics, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		store:     requestStore,
		interval:  interval,
		metrics:   m,
		logger:    logger,
		newTicker: func(d time.Duration) ticker { return timeTicker{time.NewTicker(d)} },
		now:       time.Now,
	}
}

// Subscribe fetches immediately, then on every tick.
func (p *Poller) Subscribe(ctx context.Context, f store.Filter, fn func(Snapshot)) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription{cancel: cancel, done: make(chan struct{})}
	go p.run(ctx, f, fn, sub.done)
	return sub
}

func (p *Poller) run(ctx context.Context, f store.Filter, fn func(Snapshot), done chan struct{}) {
	var (
		inFlight atomic.Bool
		wg       sync.WaitGroup
	)
	defer close(done)
	defer wg.Wait()

	p.fetch(ctx, f, fn)

	t := p.newTicker(p.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
			if !inFlight.CompareAndSwap(false, true) {
				p.metrics.PollSkipped()
				p.logger.Debug("review refresh skipped, previous fetch in flight")
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer inFlight.Store(false)
				p.fetch(ctx, f, fn)
			}()
		}
	}
}

func (p *Poller) fetch(ctx context.Context, f store.Filter, fn func(Snapshot)) {
	list, err := p.store.List(ctx, f)
	if ctx.Err() != nil {
		return
	}
	p.metrics.Polled()
	if err != nil {
		p.logger.Warn("review refresh failed", zap.Error(err))
	}
	fn(Snapshot{Requests: list, Err: err, At: p.now().UTC()})
}
