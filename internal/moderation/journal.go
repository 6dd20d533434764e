package moderation

import (
	"context"

	"landmarket/server/internal/authz"
	"landmarket/server/internal/models"
)

const defaultJournalLimit = 100

type EventReader interface {
	ListModerationEvents(ctx context.Context, entityID string, limit int) ([]models.ModerationEvent, error)
}

// Journal reads back the audit trail written by the batch processor.
type Journal struct {
	events EventReader
	guard  *authz.Guard
}

func NewJournal(events EventReader, guard *authz.Guard) *Journal {
	return &Journal{events: events, guard: guard}
}

// List returns the newest events, optionally for one entity. Only those who
// may moderate may read the trail.
func (j *Journal) List(ctx context.Context, actor authz.Actor, entityID string, limit int) ([]models.ModerationEvent, error) {
	if err := j.guard.Authorize(actor, authz.ActionApprove, authz.Resource{Kind: authz.KindProperty}); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > defaultJournalLimit {
		limit = defaultJournalLimit
	}
	return j.events.ListModerationEvents(ctx, entityID, limit)
}
