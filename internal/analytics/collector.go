package analytics

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/pkg/resilience"
)

// Publisher delivers a batch of events; *kafka.Producer satisfies it. A
// *kafka.EncodeError means one event in the batch can never be delivered.
type Publisher interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

// Collector buffers score events and publishes them in batches, flushing
// when a batch fills or the flush interval elapses. Track never blocks and
// is safe to call concurrently with Close.
type Collector struct {
	publisher     Publisher
	metrics       *metrics.Metrics
	retry         resilience.RetryConfig
	batchSize     int
	flushInterval time.Duration
	eventCh       chan ScoreEvent
	logger        *slog.Logger
	done          chan struct{}
	started       atomic.Bool

	mu     sync.RWMutex
	closed bool
}

// NewCollector builds a collector from cfg. Non-positive sizes fall back
// to a 10000 event buffer, 100 event batches and a one second flush
// interval. m may be nil.
func NewCollector(publisher Publisher, cfg config.AnalyticsConfig, m *metrics.Metrics) *Collector {
	bufferSize := cfg.BufferSize
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	flushInterval := cfg.FlushInterval
	if flushInterval <= 0 {
		flushInterval = time.Second
	}
	return &Collector{
		publisher:     publisher,
		metrics:       m,
		retry:         resilience.RetryConfig{MaxAttempts: 3, InitialDelay: 50 * time.Millisecond, MaxDelay: time.Second},
		batchSize:     batchSize,
		flushInterval: flushInterval,
		eventCh:       make(chan ScoreEvent, bufferSize),
		logger:        slog.Default().With("component", "analytics-collector"),
		done:          make(chan struct{}),
	}
}

// Start launches the flush loop. It runs until ctx is cancelled or Close
// is called; either way what is buffered gets a final flush.
func (c *Collector) Start(ctx context.Context) {
	if !c.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(c.done)
		ticker := time.NewTicker(c.flushInterval)
		defer ticker.Stop()

		batch := make([]kafka.Event, 0, c.batchSize)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					c.drainRemaining(batch)
					return
				}
				batch = append(batch, kafka.Event{Key: event.RequestID, Value: event})
				if len(batch) >= c.batchSize {
					batch = c.flush(ctx, batch)
				}
			case <-ticker.C:
				batch = c.flush(ctx, batch)
			case <-ctx.Done():
				c.drainRemaining(batch)
				return
			}
		}
	}()
	c.logger.Info("analytics collector started",
		"buffer_size", cap(c.eventCh),
		"batch_size", c.batchSize,
		"flush_interval", c.flushInterval,
	)
}

// Track enqueues event without blocking. It is dropped when the buffer is
// full or the collector has been closed.
func (c *Collector) Track(event ScoreEvent) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		c.drop(1)
		c.logger.Debug("analytics event dropped (collector closed)", "type", event.Type)
		return
	}
	select {
	case c.eventCh <- event:
	default:
		c.drop(1)
		c.logger.Warn("analytics event dropped (buffer full)", "type", event.Type)
	}
}

// Close stops intake and waits for the flush loop, if one was started, to
// publish what is buffered. It is safe to call more than once.
func (c *Collector) Close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.eventCh)
	}
	c.mu.Unlock()
	if c.started.Load() {
		<-c.done
	}
}

// flush publishes batch and returns an empty batch to fill next. A batch
// rejected for one unencodable event is republished event by event so only
// that event is lost.
func (c *Collector) flush(ctx context.Context, batch []kafka.Event) []kafka.Event {
	if len(batch) == 0 {
		return batch
	}
	err := c.publishBatch(ctx, batch)
	var encErr *kafka.EncodeError
	switch {
	case err == nil:
		c.logger.Debug("batch flushed", "events", len(batch))
	case errors.As(err, &encErr):
		c.logger.Warn("batch rejected, publishing events individually",
			"batch_size", len(batch),
			"key", encErr.Key,
			"error", err,
		)
		for _, event := range batch {
			if err := c.publishBatch(ctx, []kafka.Event{event}); err != nil {
				c.drop(1)
				c.logger.Error("failed to publish analytics event", "key", event.Key, "error", err)
			}
		}
	default:
		c.drop(len(batch))
		c.logger.Error("batch flush failed", "batch_size", len(batch), "error", err)
	}
	return make([]kafka.Event, 0, c.batchSize)
}

func (c *Collector) publishBatch(ctx context.Context, batch []kafka.Event) error {
	return resilience.Retry(ctx, "publish-score-events", c.retry, func(ctx context.Context) error {
		err := c.publisher.PublishBatch(ctx, batch)
		var encErr *kafka.EncodeError
		if errors.As(err, &encErr) {
			return resilience.Permanent(err)
		}
		return err
	})
}

// drainRemaining moves whatever is still queued into batches and flushes
// them under a fresh deadline, since the loop's context may be done.
func (c *Collector) drainRemaining(batch []kafka.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				c.flush(ctx, batch)
				return
			}
			batch = append(batch, kafka.Event{Key: event.RequestID, Value: event})
			if len(batch) >= c.batchSize {
				batch = c.flush(ctx, batch)
			}
		default:
			c.flush(ctx, batch)
			return
		}
	}
}

func (c *Collector) drop(n int) {
	if c.metrics != nil {
		c.metrics.AnalyticsDroppedTotal.Add(float64(n))
	}
}
