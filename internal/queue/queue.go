package queue

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"landmarket/server/internal/models"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// EventQueue is an in-memory queue of moderation event batches. Pushing
// never blocks the request that caused the transition.
type EventQueue struct {
	items    chan []*models.ModerationEvent
	maxSize  int
	closed   bool
	started  bool
	mu       sync.RWMutex
	wg       sync.WaitGroup
	logger   *logrus.Logger
	handlers []func([]*models.ModerationEvent) error
}

func NewEventQueue(bufferSize int, logger *logrus.Logger) *EventQueue {
	if logger == nil {
		logger = logrus.New()
	}
	return &EventQueue{
		items:    make(chan []*models.ModerationEvent, bufferSize),
		maxSize:  bufferSize,
		logger:   logger,
		handlers: make([]func([]*models.ModerationEvent) error, 0),
	}
}

// Push enqueues a batch of events.
func (q *EventQueue) Push(events []*models.ModerationEvent) error {
	if len(events) == 0 {
		return nil
	}

	// The read lock is held across the send so Close cannot close the
	// channel underneath it.
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.items <- events:
		q.logger.WithField("batch_size", len(events)).Debug("Pushed moderation events to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe adds a handler called for each batch.
func (q *EventQueue) Subscribe(handler func([]*models.ModerationEvent) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

func (q *EventQueue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.closed {
		return
	}
	q.started = true
	q.wg.Add(1)
	go q.process()
}

func (q *EventQueue) process() {
	defer q.wg.Done()
	for batch := range q.items {
		q.processBatch(batch)
	}
}

func (q *EventQueue) processBatch(batch []*models.ModerationEvent) {
	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(batch); err != nil {
			q.logger.WithError(err).Error("Handler failed to process moderation events")
		}
	}
}

// Close rejects further pushes and waits until batches already queued have
// been handed to the subscribers.
func (q *EventQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.items)
	q.mu.Unlock()

	q.wg.Wait()
	return nil
}

func (q *EventQueue) Len() int {
	return len(q.items)
}

func (q *EventQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
