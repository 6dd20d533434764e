package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Inquiry is a buyer's contact request against a listing.
type Inquiry struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID     string    `gorm:"type:varchar(36);not null;index" json:"userId"`
	PropertyID string    `gorm:"type:varchar(36);not null;index" json:"propertyId"`
	Message    string    `gorm:"type:text;not null" json:"message"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	Inquirer *Contact        `gorm:"foreignKey:UserID;-:migration" json:"inquirer,omitempty"`
	Property *ListingSummary `gorm:"foreignKey:PropertyID;-:migration" json:"property,omitempty"`
}

func (i *Inquiry) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
