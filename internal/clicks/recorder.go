package clicks

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sharipovr/aws-url-shortener/internal/metrics"
)

// Incrementer applies a click count delta to a stored link
type Incrementer interface {
	IncrementClicks(ctx context.Context, shortCode string, delta int64) error
}

// Config holds configuration for the recorder
type Config struct {
	Workers   int           // 0 applies increments inline
	QueueSize int           // pending increments before overflow goroutines are used
	Timeout   time.Duration // per increment
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Workers:   4,
		QueueSize: 1024,
		Timeout:   5 * time.Second,
	}
}

// Recorder applies click increments off the request path. Record never
// blocks on storage; Close waits until every recorded click is applied.
type Recorder struct {
	store   Incrementer
	logger  *zap.Logger
	metrics *metrics.Metrics
	timeout time.Duration
	inline  bool

	queue chan click

	// mu guards closed and serialises Close against sends on queue
	mu     sync.RWMutex
	closed bool

	workers  sync.WaitGroup
	overflow sync.WaitGroup
}

// click is one pending increment with its detached request context
type click struct {
	ctx       context.Context
	shortCode string
}

// NewRecorder creates a recorder and starts its workers. A nil logger or
// metrics set is replaced by a no-op one.
func NewRecorder(store Incrementer, cfg Config, logger *zap.Logger, m *metrics.Metrics) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewUnregistered()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.QueueSize < 0 {
		cfg.QueueSize = 0
	}

	r := &Recorder{
		store:   store,
		logger:  logger.With(zap.String("component", "click_recorder")),
		metrics: m,
		timeout: cfg.Timeout,
		inline:  cfg.Workers <= 0,
	}

	if r.inline {
		return r
	}

	r.queue = make(chan click, cfg.QueueSize)
	for i := 0; i < cfg.Workers; i++ {
		r.workers.Add(1)
		go r.worker()
	}

	return r
}

// Record schedules one click for shortCode. The increment outlives ctx's
// cancellation but keeps its values.
func (r *Recorder) Record(ctx context.Context, shortCode string) {
	ctx = context.WithoutCancel(ctx)

	if r.inline {
		r.apply(ctx, shortCode)
		return
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		// Late arrivals during shutdown are applied synchronously
		r.apply(ctx, shortCode)
		return
	}

	select {
	case r.queue <- click{ctx: ctx, shortCode: shortCode}:
	default:
		r.overflow.Add(1)
		go func() {
			defer r.overflow.Done()
			r.apply(ctx, shortCode)
		}()
	}
}

// Close stops intake, drains the queue and waits for in-flight increments
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	if r.queue != nil {
		close(r.queue)
	}
	r.mu.Unlock()

	r.workers.Wait()
	r.overflow.Wait()
	return nil
}

func (r *Recorder) worker() {
	defer r.workers.Done()

	for c := range r.queue {
		r.apply(c.ctx, c.shortCode)
	}
}

func (r *Recorder) apply(ctx context.Context, shortCode string) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.store.IncrementClicks(ctx, shortCode, 1); err != nil {
		r.metrics.ClickIncrementsTotal.WithLabelValues(metrics.ResultError).Inc()
		r.logger.Error("failed to record click",
			zap.String("short_code", shortCode),
			zap.Error(err),
		)
		return
	}

	r.metrics.ClickIncrementsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
}
