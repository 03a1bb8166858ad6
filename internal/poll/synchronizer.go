// Package poll keeps a view in sync with a backend resource by periodic fetches.
package poll

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/vitalmotion-client/internal/observability"
)

// Kind names a polled resource family.
type Kind string

const (
	KindTelemetry Kind = "telemetry"
	KindAlerts    Kind = "alerts"
	KindChat      Kind = "chat"
)

// IntervalFor returns the default polling period of kind.
func IntervalFor(kind Kind) time.Duration {
	switch kind {
	case KindChat:
		return 3 * time.Second
	default:
		return 5 * time.Second
	}
}

// Ticker is the part of time.Ticker a subscription uses.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory builds the ticker driving a subscription.
type TickerFactory func(d time.Duration) Ticker

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker is the default TickerFactory.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// Config describes one polling subscription.
type Config[T any] struct {
	// Name identifies the subscription in logs, e.g. "telemetry/vm-001".
	Name     string
	Kind     Kind
	Interval time.Duration

	Fetch    func(ctx context.Context) (T, error)
	OnResult func(T)
	OnError  func(error)

	Logger    *zap.Logger
	Metrics   *observability.Metrics
	NewTicker TickerFactory
}

// Stats counts what a subscription did with its ticks.
type Stats struct {
	Issued    int64
	Skipped   int64
	Failed    int64
	Discarded int64
}

// Subscription is a running periodic fetch.
//
// The first fetch is issued immediately, then one per tick at a fixed rate.
// A tick that finds a fetch still in flight is skipped, never queued, so at
// most one fetch per subscription is outstanding. After Stop returns no
// callback runs; a fetch already in flight is left to finish and its outcome
// is dropped.
//
// Callbacks run one at a time and must not call Stop on their own
// subscription.
type Subscription[T any] struct {
	id       string
	name     string
	kind     Kind
	interval time.Duration

	ctx      context.Context
	fetch    func(ctx context.Context) (T, error)
	onResult func(T)
	onError  func(error)
	logger   *zap.Logger
	metrics  *observability.Metrics

	ticker   Ticker
	stop     chan struct{}
	stopOnce sync.Once
	inFlight atomic.Bool

	mu        sync.Mutex
	cancelled bool
	last      T
	hasLast   bool

	issued, skipped, failed, discarded atomic.Int64
}

// Start begins polling. Cancelling ctx stops the subscription and aborts an
// in-flight fetch.
func Start[T any](ctx context.Context, cfg Config[T]) *Subscription[T] {
	interval := cfg.Interval
	if interval <= 0 {
		interval = IntervalFor(cfg.Kind)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	newTicker := cfg.NewTicker
	if newTicker == nil {
		newTicker = NewTimeTicker
	}

	s := &Subscription[T]{
		id:       uuid.NewString(),
		name:     cfg.Name,
		kind:     cfg.Kind,
		interval: interval,
		ctx:      ctx,
		fetch:    cfg.Fetch,
		onResult: cfg.OnResult,
		onError:  cfg.OnError,
		metrics:  cfg.Metrics,
		stop:     make(chan struct{}),
	}
	s.logger = logger.Named("poll").With(zap.String("subscription", s.name), zap.String("subscription_id", s.id))
	s.ticker = newTicker(interval)

	s.logger.Debug("subscription started", zap.Duration("interval", interval))
	s.tick()
	go s.loop()
	return s
}

// ID returns the unique id of the subscription.
func (s *Subscription[T]) ID() string { return s.id }

// Name returns the configured name.
func (s *Subscription[T]) Name() string { return s.name }

// Interval returns the effective polling period.
func (s *Subscription[T]) Interval() time.Duration { return s.interval }

// Stop cancels the subscription. It is idempotent and safe from any goroutine
// other than a callback of this subscription.
func (s *Subscription[T]) Stop() {
	s.mu.Lock()
	already := s.cancelled
	s.cancelled = true
	s.mu.Unlock()

	s.stopOnce.Do(func() {
		s.ticker.Stop()
		close(s.stop)
	})
	if !already {
		s.logger.Debug("subscription stopped")
	}
}

// Stopped reports whether Stop has been called.
func (s *Subscription[T]) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

// Last returns the most recent successful result.
func (s *Subscription[T]) Last() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.hasLast
}

// Stats returns a snapshot of the tick counters.
func (s *Subscription[T]) Stats() Stats {
	return Stats{
		Issued:    s.issued.Load(),
		Skipped:   s.skipped.Load(),
		Failed:    s.failed.Load(),
		Discarded: s.discarded.Load(),
	}
}

func (s *Subscription[T]) loop() {
	for {
		select {
		case <-s.stop:
			return
		case <-s.ctx.Done():
			s.Stop()
			return
		case <-s.ticker.C():
			s.tick()
		}
	}
}

func (s *Subscription[T]) tick() {
	if s.Stopped() {
		return
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		s.skipped.Add(1)
		s.metrics.RecordPoll(string(s.kind), observability.PollSkipped)
		return
	}
	s.issued.Add(1)
	s.metrics.RecordPoll(string(s.kind), observability.PollIssued)
	go s.run()
}

func (s *Subscription[T]) run() {
	defer s.inFlight.Store(false)

	v, err := s.fetch(s.ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled || s.ctx.Err() != nil {
		s.discarded.Add(1)
		s.metrics.RecordPoll(string(s.kind), observability.PollDiscarded)
		return
	}
	if err != nil {
		s.failed.Add(1)
		s.metrics.RecordPoll(string(s.kind), observability.PollFailed)
		s.logger.Debug("fetch failed", zap.Error(err))
		if s.onError != nil {
			s.onError(err)
		}
		return
	}
	s.last, s.hasLast = v, true
	if s.onResult != nil {
		s.onResult(v)
	}
}
