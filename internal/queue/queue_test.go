package queue

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"landmarket/server/internal/models"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func event(id string) []*models.ModerationEvent {
	return []*models.ModerationEvent{{EntityID: id, Entity: models.EntityProperty}}
}

func TestNewEventQueue(t *testing.T) {
	q := NewEventQueue(10, quietLogger())
	assert.NotNil(t, q)
	assert.Equal(t, 10, q.maxSize)
	assert.False(t, q.IsClosed())
}

func TestEventQueue_Push(t *testing.T) {
	q := NewEventQueue(2, quietLogger())

	err := q.Push(event("p1"))
	assert.NoError(t, err)
	assert.Equal(t, 1, q.Len())

	assert.NoError(t, q.Push(event("p2")))
	assert.Equal(t, ErrQueueFull, q.Push(event("p3")))

	// Empty batches are dropped without occupying a slot.
	assert.NoError(t, q.Push(nil))

	q.Close()
	assert.Equal(t, ErrQueueClosed, q.Push(event("p4")))
}

func TestEventQueue_Subscribe(t *testing.T) {
	q := NewEventQueue(10, quietLogger())

	var processed []string
	var mu sync.Mutex
	q.Subscribe(func(events []*models.ModerationEvent) error {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			processed = append(processed, e.EntityID)
		}
		return nil
	})
	q.Start()

	assert.NoError(t, q.Push(event("p1")))
	assert.NoError(t, q.Push(event("p2")))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(processed) == 2
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Equal(t, []string{"p1", "p2"}, processed)
	mu.Unlock()
	q.Close()
}

func TestEventQueue_CloseDrainsPending(t *testing.T) {
	q := NewEventQueue(10, quietLogger())

	var count int
	var mu sync.Mutex
	q.Subscribe(func(events []*models.ModerationEvent) error {
		mu.Lock()
		count += len(events)
		mu.Unlock()
		return nil
	})

	for i := 0; i < 5; i++ {
		assert.NoError(t, q.Push(event("p")))
	}
	q.Start()
	assert.NoError(t, q.Close())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 5, count)
	assert.True(t, q.IsClosed())
}

func TestEventQueue_HandlerErrorDoesNotStopOthers(t *testing.T) {
	q := NewEventQueue(10, quietLogger())

	var calls int
	var mu sync.Mutex
	q.Subscribe(func([]*models.ModerationEvent) error { return errors.New("boom") })
	q.Subscribe(func([]*models.ModerationEvent) error {
		mu.Lock()
		calls++
		mu.Unlock()
		return nil
	})
	q.Start()

	assert.NoError(t, q.Push(event("p1")))
	q.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
}

func TestEventQueue_ConcurrentPushAndClose(t *testing.T) {
	q := NewEventQueue(100, quietLogger())
	q.Subscribe(func([]*models.ModerationEvent) error { return nil })
	q.Start()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				err := q.Push(event("p"))
				if err != nil {
					assert.True(t, errors.Is(err, ErrQueueClosed) || errors.Is(err, ErrQueueFull))
				}
			}
		}()
	}
	q.Close()
	wg.Wait()
}
