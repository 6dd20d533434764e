package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ModerationEntity string

const (
	EntityProperty ModerationEntity = "property"
	EntityUser     ModerationEntity = "user"
)

// ModerationEvent records one effective state transition.
type ModerationEvent struct {
	ID         string           `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Entity     ModerationEntity `gorm:"type:varchar(16);not null;index" json:"entity"`
	EntityID   string           `gorm:"type:varchar(36);not null;index" json:"entityId"`
	Action     string           `gorm:"type:varchar(16);not null" json:"action"`
	FromState  string           `gorm:"type:varchar(16);not null" json:"fromState"`
	ToState    string           `gorm:"type:varchar(16);not null" json:"toState"`
	ActorID    string           `gorm:"type:varchar(36);not null" json:"actorId"`
	OccurredAt time.Time        `gorm:"index" json:"occurredAt"`
}

func (e *ModerationEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
