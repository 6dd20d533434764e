package processor

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"landmarket/server/internal/database/dbtest"
	"landmarket/server/internal/models"
	"landmarket/server/internal/queue"
)

func generateTestEvents(count int) []*models.ModerationEvent {
	events := make([]*models.ModerationEvent, count)
	for i := range events {
		events[i] = &models.ModerationEvent{
			Entity:     models.EntityUser,
			EntityID:   fmt.Sprintf("u%d", i),
			Action:     "suspend",
			FromState:  string(models.AccountVerified),
			ToState:    string(models.AccountSuspended),
			ActorID:    "admin",
			OccurredAt: time.Now().UTC(),
		}
	}
	return events
}

func BenchmarkProcessBatch(b *testing.B) {
	for _, batchSize := range []int{10, 100, 500} {
		b.Run(fmt.Sprintf("BatchSize_%d", batchSize), func(b *testing.B) {
			db := dbtest.New(b)
			cfg := testConfig()
			cfg.BatchProcessing.MaxBatchSize = batchSize
			processor := NewBatchProcessor(db, queue.NewEventQueue(1, quietLogger()), cfg, quietLogger(), nil)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				b.StopTimer()
				events := generateTestEvents(batchSize)
				b.StartTimer()
				require.NoError(b, processor.processBatch(context.Background(), events))
			}
		})
	}
}
