package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ModerationState string

const (
	ModerationPending  ModerationState = "pending"
	ModerationApproved ModerationState = "approved"
)

func (s ModerationState) Valid() bool {
	return s == ModerationPending || s == ModerationApproved
}

type PropertyType string

const (
	PropertyResidential  PropertyType = "residential"
	PropertyAgricultural PropertyType = "agricultural"
	PropertyCommercial   PropertyType = "commercial"
)

func (t PropertyType) Valid() bool {
	switch t {
	case PropertyResidential, PropertyAgricultural, PropertyCommercial:
		return true
	}
	return false
}

type SizeUnit string

const (
	SizeAcres    SizeUnit = "acres"
	SizeHectares SizeUnit = "hectares"
)

func (u SizeUnit) Valid() bool {
	return u == SizeAcres || u == SizeHectares
}

// Property is a land parcel listing.
type Property struct {
	ID                string                      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OwnerID           string                      `gorm:"type:varchar(36);not null;index" json:"ownerId"`
	Title             string                      `gorm:"not null" json:"title"`
	Description       string                      `json:"description"`
	Price             float64                     `gorm:"not null;index" json:"price"`
	Size              float64                     `gorm:"not null" json:"size"`
	SizeUnit          SizeUnit                    `gorm:"type:varchar(16);not null" json:"sizeUnit"`
	Type              PropertyType                `gorm:"type:varchar(16);not null;index" json:"type"`
	County            string                      `gorm:"index" json:"county"`
	Constituency      string                      `gorm:"index" json:"constituency"`
	Location          string                      `json:"location"`
	Coordinates       LatLng                      `gorm:"embedded;embeddedPrefix:coord_" json:"coordinates"`
	Boundary          Boundary                    `gorm:"type:text" json:"boundary,omitempty"`
	BoundaryAreaAcres *float64                    `json:"boundaryAreaAcres,omitempty"`
	Images            datatypes.JSONSlice[string] `json:"images"`
	Documents         datatypes.JSONSlice[string] `json:"documents"`
	ModerationState   ModerationState             `gorm:"type:varchar(16);not null;index" json:"moderationState"`
	ApprovedAt        *time.Time                  `json:"approvedAt,omitempty"`
	CreatedAt         time.Time                   `gorm:"index" json:"createdAt"`
	UpdatedAt         time.Time                   `json:"updatedAt"`

	Owner *Contact `gorm:"foreignKey:OwnerID;-:migration" json:"owner,omitempty"`
}

func (p *Property) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// IsPubliclyListable reports whether the listing may appear on any public
// read path. database.PubliclyListable is the query-side form of the same
// predicate.
func (p *Property) IsPubliclyListable() bool {
	return p.ModerationState == ModerationApproved
}

type PropertyStats struct {
	Users    int64 `json:"users"`
	Listings int64 `json:"listings"`
}

type AdminStats struct {
	Users      int64 `json:"users"`
	Properties int64 `json:"properties"`
	Pending    int64 `json:"pending"`
	Inquiries  int64 `json:"inquiries"`
}
