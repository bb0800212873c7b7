package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/starfeed/starfeed/adapters/metrics"
	"github.com/starfeed/starfeed/domain/ledger"
	"github.com/starfeed/starfeed/ports"
)

// Recorder batches accepted-call hits and persists them asynchronously.
// Record never blocks the caller: if the queue is full the hit is
// dropped and counted as a write error. Persistence failures are logged
// and counted, never surfaced to the API caller.
type Recorder struct {
	keys    ports.KeyStore
	logger  zerolog.Logger
	metrics *metrics.Collector

	queue    chan queuedHit
	flushReq chan chan error
	done     chan struct{}
	stopped  chan struct{} // closed by loop after the final flush

	interval  time.Duration
	batchSize int

	closeOnce sync.Once
}

type queuedHit struct {
	keyID string
	hit   ledger.Hit
}

// RecorderConfig tunes the batching behavior.
type RecorderConfig struct {
	QueueSize     int           // pending hit capacity (default 1024)
	FlushInterval time.Duration // max time a hit waits (default 2s)
	BatchSize     int           // flush early past this many hits (default 100)
}

// NewRecorder creates and starts a batching recorder.
func NewRecorder(keys ports.KeyStore, logger zerolog.Logger, m *metrics.Collector, cfg RecorderConfig) *Recorder {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1024
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}

	r := &Recorder{
		keys:      keys,
		logger:    logger,
		metrics:   m,
		queue:     make(chan queuedHit, cfg.QueueSize),
		flushReq:  make(chan chan error),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
		interval:  cfg.FlushInterval,
		batchSize: cfg.BatchSize,
	}
	go r.loop()
	return r
}

// Record queues one accepted call. Non-blocking.
func (r *Recorder) Record(keyID, endpoint string, at time.Time) {
	select {
	case r.queue <- queuedHit{keyID: keyID, hit: ledger.Hit{Endpoint: endpoint, At: at}}:
	default:
		r.logger.Warn().Str("key_id", keyID).Msg("ledger queue full, hit dropped")
		if r.metrics != nil {
			r.metrics.LedgerWriteErrors.Inc()
		}
	}
}

// Flush forces persistence of all queued hits and waits for the result.
func (r *Recorder) Flush(ctx context.Context) error {
	reply := make(chan error, 1)
	select {
	case r.flushReq <- reply:
	case <-r.done:
		// Closing; the final flush covers anything still queued.
		select {
		case <-r.stopped:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the recorder and waits for the final flush to complete,
// so callers may tear down the store once Close returns. The wait is
// bounded by a 5 second timeout.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() { close(r.done) })
	select {
	case <-r.stopped:
		return nil
	case <-time.After(5 * time.Second):
		return errors.New("ledger recorder: timed out waiting for final flush")
	}
}

func (r *Recorder) loop() {
	defer close(r.stopped)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	pending := make(map[string][]ledger.Hit)
	count := 0

	flush := func(ctx context.Context) error {
		if count == 0 {
			return nil
		}
		var firstErr error
		for keyID, hits := range pending {
			if r.metrics != nil {
				r.metrics.LedgerBatchSize.Observe(float64(len(hits)))
			}
			if err := r.keys.RecordHits(ctx, keyID, hits); err != nil {
				r.logger.Error().Err(err).Str("key_id", keyID).Int("hits", len(hits)).
					Msg("ledger batch write failed")
				if r.metrics != nil {
					r.metrics.LedgerWriteErrors.Inc()
				}
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			if r.metrics != nil {
				r.metrics.LedgerHitsRecorded.Add(float64(len(hits)))
			}
		}
		pending = make(map[string][]ledger.Hit)
		count = 0
		return firstErr
	}

	for {
		select {
		case q := <-r.queue:
			pending[q.keyID] = append(pending[q.keyID], q.hit)
			count++
			if count >= r.batchSize {
				flush(context.Background())
			}
		case <-ticker.C:
			flush(context.Background())
		case reply := <-r.flushReq:
			// Drain anything already queued before flushing.
			r.drain(pending, &count)
			reply <- flush(context.Background())
		case <-r.done:
			r.drain(pending, &count)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			flush(ctx)
			cancel()
			return
		}
	}
}

func (r *Recorder) drain(pending map[string][]ledger.Hit, count *int) {
	for {
		select {
		case q := <-r.queue:
			pending[q.keyID] = append(pending[q.keyID], q.hit)
			*count++
		default:
			return
		}
	}
}

// Ensure interface compliance.
var _ ports.LedgerRecorder = (*Recorder)(nil)
