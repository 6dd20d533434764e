package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

type AccountState string

const (
	AccountUnverified AccountState = "unverified"
	AccountVerified   AccountState = "verified"
	AccountSuspended  AccountState = "suspended"
)

func (s AccountState) Valid() bool {
	switch s {
	case AccountUnverified, AccountVerified, AccountSuspended:
		return true
	}
	return false
}

type User struct {
	ID           string       `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name         string       `gorm:"not null" json:"name"`
	Email        string       `gorm:"uniqueIndex;not null" json:"email"`
	Phone        string       `gorm:"uniqueIndex;not null" json:"phone"`
	PasswordHash string       `gorm:"not null" json:"-"`
	Role         Role         `gorm:"type:varchar(16);not null;index" json:"role"`
	County       string       `json:"county"`
	Constituency string       `json:"constituency"`
	AccountState AccountState `gorm:"type:varchar(16);not null;index" json:"accountState"`
	CreatedAt    time.Time    `gorm:"index" json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// CanAuthenticate reports whether the account may log in or use a token.
func (u *User) CanAuthenticate() bool {
	return u.AccountState == AccountVerified
}
