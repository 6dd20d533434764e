package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"landmarket/server/config"
	"landmarket/server/internal/models"
	"landmarket/server/internal/queue"
)

// EventStore persists moderation audit events.
type EventStore interface {
	InsertModerationEvents(ctx context.Context, events []*models.ModerationEvent) error
}

// FailureRecorder is told about batches dropped after the last retry.
type FailureRecorder interface {
	IncrementAuditWriteFailure()
}

// BatchProcessor accumulates moderation events from the queue and writes
// them in batches, flushing when a batch is full or the wait time passes.
type BatchProcessor struct {
	store     EventStore
	logger    *logrus.Logger
	config    *config.Config
	queue     *queue.EventQueue
	failures  FailureRecorder
	mu        sync.Mutex
	pending   []*models.ModerationEvent
	waitGroup sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	subscribe sync.Once
}

func NewBatchProcessor(store EventStore, queue *queue.EventQueue, config *config.Config, logger *logrus.Logger, failures FailureRecorder) *BatchProcessor {
	if logger == nil {
		logger = logrus.New()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &BatchProcessor{
		store:    store,
		queue:    queue,
		config:   config,
		logger:   logger,
		failures: failures,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start subscribes to the queue once and starts the periodic flush.
func (p *BatchProcessor) Start() {
	p.subscribe.Do(func() {
		p.queue.Subscribe(p.enqueue)
	})

	wait := time.Duration(p.config.BatchProcessing.MaxBatchWaitTime) * time.Second
	if wait <= 0 {
		return
	}
	p.waitGroup.Add(1)
	go p.flushLoop(wait)
}

// Stop ends the flush loop and writes whatever is still buffered. Close the
// queue first so no events arrive afterwards.
func (p *BatchProcessor) Stop() {
	p.cancel()
	p.waitGroup.Wait()
	p.flush(context.Background())
}

func (p *BatchProcessor) flushLoop(wait time.Duration) {
	defer p.waitGroup.Done()

	ticker := time.NewTicker(wait)
	defer ticker.Stop()
	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.flush(p.ctx)
		}
	}
}

func (p *BatchProcessor) enqueue(events []*models.ModerationEvent) error {
	p.mu.Lock()
	p.pending = append(p.pending, events...)
	full := len(p.pending) >= p.config.BatchProcessing.MaxBatchSize
	p.mu.Unlock()

	if full {
		return p.flush(p.ctx)
	}
	return nil
}

func (p *BatchProcessor) flush(ctx context.Context) error {
	p.mu.Lock()
	batch := p.pending
	p.pending = nil
	p.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	if ctx.Err() != nil {
		ctx = context.Background()
	}
	err := p.processBatch(ctx, batch)
	if err != nil && p.failures != nil {
		p.failures.IncrementAuditWriteFailure()
	}
	return err
}

// processBatch writes one batch, retrying per BatchProcessing.MaxRetries.
func (p *BatchProcessor) processBatch(ctx context.Context, batch []*models.ModerationEvent) error {
	var err error
	for attempt := 0; attempt <= p.config.BatchProcessing.MaxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Infof("Retrying moderation event write, attempt %d of %d", attempt, p.config.BatchProcessing.MaxRetries)
			time.Sleep(time.Duration(p.config.BatchProcessing.RetryDelay) * time.Second)
		}

		err = p.store.InsertModerationEvents(ctx, batch)
		if err == nil {
			p.logger.WithField("batch_size", len(batch)).Info("Stored moderation events")
			return nil
		}

		p.logger.WithError(err).Error("Moderation event write failed")
	}

	return fmt.Errorf("failed to process batch after %d attempts: %w", p.config.BatchProcessing.MaxRetries, err)
}
