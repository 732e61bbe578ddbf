package outbox

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/auctionhouse/go/internal/db"
)

// maxErrorLen bounds the failure text stored on a row.
const maxErrorLen = 2000

type Config struct {
	PollInterval time.Duration
	BatchSize    int32
	// MaxAttempts stops selecting a row after this many failed deliveries.
	// Zero retries forever.
	MaxAttempts int32
}

func DefaultConfig() Config {
	return Config{
		PollInterval: 5 * time.Second,
		BatchSize:    100,
		MaxAttempts:  25,
	}
}

// Store is what the worker needs from the database layer.
type Store interface {
	FetchPendingOutbox(ctx context.Context, arg db.FetchPendingOutboxParams) ([]db.OutboxMessage, error)
	MarkOutboxProcessed(ctx context.Context, arg db.MarkOutboxProcessedParams) (int64, error)
	MarkOutboxFailed(ctx context.Context, arg db.MarkOutboxFailedParams) error
}

// BatchResult summarizes one RunOnce call.
type BatchResult struct {
	Fetched   int
	Processed int
	Failed    int
	// Aborted is set when cancellation stopped the batch early. Rows not yet
	// handled stay pending.
	Aborted bool
	// Skipped is set when another batch was already in flight.
	Skipped bool
}

// Worker is the outbox dispatcher. Batches never overlap: a run requested
// while one is in flight is skipped.
type Worker struct {
	store    Store
	registry *Registry
	config   Config
	clock    clockwork.Clock
	metrics  MetricsCollector

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup

	inFlight atomic.Bool
	wake     chan struct{}

	processed atomic.Uint64
	lastEvent atomic.Int64
}

type Option func(*Worker)

func WithClock(clock clockwork.Clock) Option {
	return func(w *Worker) { w.clock = clock }
}

func WithMetrics(metrics MetricsCollector) Option {
	return func(w *Worker) { w.metrics = metrics }
}

func NewWorker(store Store, registry *Registry, cfg Config, opts ...Option) *Worker {
	defaults := DefaultConfig()
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaults.PollInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaults.BatchSize
	}
	if cfg.MaxAttempts < 0 {
		cfg.MaxAttempts = 0
	}

	w := &Worker{
		store:    store,
		registry: registry,
		config:   cfg,
		clock:    clockwork.NewRealClock(),
		metrics:  &NoOpMetricsCollector{},
		wake:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("outbox worker already running")
	}
	w.running = true
	w.stopChan = make(chan struct{})
	stop := w.stopChan
	w.mu.Unlock()

	w.wg.Add(1)
	go w.run(ctx, stop)

	log.Info().
		Dur("poll_interval", w.config.PollInterval).
		Int32("batch_size", w.config.BatchSize).
		Int32("max_attempts", w.config.MaxAttempts).
		Msg("outbox worker started")

	return nil
}

func (w *Worker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return fmt.Errorf("outbox worker not running")
	}
	w.running = false
	close(w.stopChan)
	w.mu.Unlock()

	w.wg.Wait()

	log.Info().Msg("outbox worker stopped")
	return nil
}

// Running reports whether the polling loop is active.
func (w *Worker) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Trigger asks the loop to run a batch now instead of at the next tick.
func (w *Worker) Trigger() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Stats returns the number of rows delivered and when the last one was.
func (w *Worker) Stats() (uint64, time.Time) {
	var last time.Time
	if ns := w.lastEvent.Load(); ns != 0 {
		last = time.Unix(0, ns)
	}
	return w.processed.Load(), last
}

func (w *Worker) run(ctx context.Context, stop <-chan struct{}) {
	defer w.wg.Done()

	ticker := w.clock.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	// Process immediately on start
	w.runLogged(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.Chan():
			w.runLogged(ctx)
		case <-w.wake:
			w.runLogged(ctx)
		}
	}
}

func (w *Worker) runLogged(ctx context.Context) {
	result, err := w.RunOnce(ctx)
	if err != nil {
		log.Error().Err(err).Msg("outbox batch failed")
		return
	}
	if result.Fetched > 0 {
		log.Info().
			Int("total", result.Fetched).
			Int("processed", result.Processed).
			Int("failed", result.Failed).
			Bool("aborted", result.Aborted).
			Msg("processed outbox events")
	}
}

// RunOnce delivers one batch of pending rows, oldest first. A row is marked
// processed only when every handler for its type succeeded; otherwise the
// failure is recorded on the row and it stays pending for the next run.
func (w *Worker) RunOnce(ctx context.Context) (BatchResult, error) {
	if !w.inFlight.CompareAndSwap(false, true) {
		return BatchResult{Skipped: true}, nil
	}
	defer w.inFlight.Store(false)

	start := w.clock.Now()
	var result BatchResult

	rows, err := w.store.FetchPendingOutbox(ctx, db.FetchPendingOutboxParams{
		Limit:       w.config.BatchSize,
		MaxAttempts: w.config.MaxAttempts,
	})
	if err != nil {
		return result, fmt.Errorf("fetch pending outbox: %w", err)
	}
	result.Fetched = len(rows)

	for _, row := range rows {
		if ctx.Err() != nil {
			result.Aborted = true
			break
		}

		rowStart := w.clock.Now()
		err := w.dispatch(ctx, row)
		if err != nil && ctx.Err() != nil {
			// Cancelled mid-row: leave it untouched for the next run.
			result.Aborted = true
			break
		}
		if err != nil {
			result.Failed++
			w.metrics.RecordEventProcessed(ctx, row.Type, false, w.clock.Since(rowStart))
			log.Error().
				Err(err).
				Str("event_id", row.ID.String()).
				Str("event_type", row.Type).
				Int32("attempts", row.Attempts+1).
				Msg("outbox event delivery failed")
			if markErr := w.store.MarkOutboxFailed(ctx, db.MarkOutboxFailedParams{
				ID:    row.ID,
				Error: truncate(err.Error(), maxErrorLen),
			}); markErr != nil {
				log.Error().Err(markErr).Str("event_id", row.ID.String()).Msg("failed to record outbox error")
			}
			continue
		}

		n, err := w.store.MarkOutboxProcessed(ctx, db.MarkOutboxProcessedParams{
			ID:          row.ID,
			ProcessedAt: w.clock.Now().UTC(),
		})
		if err != nil {
			// Handlers already ran; the row will be redelivered.
			if ctx.Err() != nil {
				result.Aborted = true
				break
			}
			result.Failed++
			log.Error().Err(err).Str("event_id", row.ID.String()).Msg("failed to mark outbox event processed")
			continue
		}
		if n == 0 {
			log.Debug().Str("event_id", row.ID.String()).Msg("outbox event already processed")
		}

		result.Processed++
		w.processed.Add(1)
		w.lastEvent.Store(w.clock.Now().UnixNano())
		w.metrics.RecordEventProcessed(ctx, row.Type, true, w.clock.Since(rowStart))
	}

	w.metrics.RecordBatchProcessed(ctx, result.Fetched, w.clock.Since(start))
	return result, nil
}

// dispatch decodes row and runs its handlers in order, stopping at the first
// failure.
func (w *Worker) dispatch(ctx context.Context, row db.OutboxMessage) error {
	payload, err := w.registry.Decode(row.Type, row.Content)
	if err != nil {
		return err
	}

	event := Event{
		ID:        row.ID,
		Type:      row.Type,
		CreatedAt: row.CreatedAt,
		Attempts:  row.Attempts,
		Payload:   payload,
	}

	for _, sub := range w.registry.subscriptions(row.Type) {
		if err := callHandler(ctx, sub, event); err != nil {
			return err
		}
	}
	return nil
}

func callHandler(ctx context.Context, sub subscription, event Event) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("handler %s panicked: %v", sub.name, p)
		}
	}()

	if err := sub.handler.Handle(ctx, event); err != nil {
		return fmt.Errorf("handler %s: %w", sub.name, err)
	}
	return nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
