package database

import (
	"context"

	"gorm.io/gorm/clause"

	"landmarket/server/internal/models"
)

const eventResource = "moderation event"

// InsertModerationEvents stores a batch of audit events. Re-delivered events
// are ignored by primary key.
func (d *Database) InsertModerationEvents(ctx context.Context, events []*models.ModerationEvent) error {
	if len(events) == 0 {
		return nil
	}
	err := d.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(events, 100).Error
	return translate(err, eventResource)
}

// ListModerationEvents returns the newest events first, optionally for one
// entity.
func (d *Database) ListModerationEvents(ctx context.Context, entityID string, limit int) ([]models.ModerationEvent, error) {
	q := d.db.WithContext(ctx).Model(&models.ModerationEvent{})
	if entityID != "" {
		q = q.Where("entity_id = ?", entityID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	events := make([]models.ModerationEvent, 0)
	if err := q.Order("occurred_at DESC").Find(&events).Error; err != nil {
		return nil, translate(err, eventResource)
	}
	return events, nil
}
