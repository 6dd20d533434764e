package database

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"landmarket/server/internal/models"
)

const userResource = "user"

// UserFilter narrows the admin account listing.
type UserFilter struct {
	Role         models.Role
	AccountState models.AccountState
	Limit        int
	Offset       int
}

func (d *Database) CreateUser(ctx context.Context, u *models.User) error {
	return translate(d.db.WithContext(ctx).Create(u).Error, userResource)
}

func (d *Database) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := d.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err, userResource)
	}
	return &u, nil
}

// FindUserByLogin looks an account up by email (case-insensitive) or phone.
func (d *Database) FindUserByLogin(ctx context.Context, login string) (*models.User, error) {
	var u models.User
	login = strings.TrimSpace(login)
	err := d.db.WithContext(ctx).
		Where("LOWER(email) = ? OR phone = ?", strings.ToLower(login), login).
		First(&u).Error
	if err != nil {
		return nil, translate(err, userResource)
	}
	return &u, nil
}

// UserExists reports whether another account already holds the email or
// phone. excludeID skips the caller's own row on updates.
func (d *Database) UserExists(ctx context.Context, column, value, excludeID string) (bool, error) {
	if column != "email" && column != "phone" {
		return false, nil
	}
	q := d.db.WithContext(ctx).Model(&models.User{})
	if column == "email" {
		q = q.Where("LOWER(email) = ?", strings.ToLower(value))
	} else {
		q = q.Where("phone = ?", value)
	}
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, translate(err, userResource)
	}
	return n > 0, nil
}

func (d *Database) UpdateUserFields(ctx context.Context, u *models.User, columns []string) error {
	u.UpdatedAt = time.Now().UTC()
	columns = append(columns, "updated_at")

	res := d.db.WithContext(ctx).Model(u).Select(columns).Updates(u)
	if res.Error != nil {
		return translate(res.Error, userResource)
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, userResource)
	}
	return nil
}

// SetAccountState is the compare-and-set counterpart of SetModerationState.
func (d *Database) SetAccountState(ctx context.Context, id string, from, to models.AccountState) (bool, error) {
	res := d.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND account_state = ?", id, from).
		Updates(map[string]interface{}{
			"account_state": to,
			"updated_at":    time.Now().UTC(),
		})
	if res.Error != nil {
		return false, translate(res.Error, userResource)
	}
	return res.RowsAffected == 1, nil
}

func (d *Database) ListUsers(ctx context.Context, filter UserFilter) ([]models.User, error) {
	q := d.db.WithContext(ctx).Model(&models.User{})
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	if filter.AccountState != "" {
		q = q.Where("account_state = ?", filter.AccountState)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	users := make([]models.User, 0)
	if err := q.Order("created_at DESC").Order("id DESC").Find(&users).Error; err != nil {
		return nil, translate(err, userResource)
	}
	return users, nil
}

// DeleteUser removes an account, the listings it owns, every inquiry on
// those listings and every inquiry it authored.
func (d *Database) DeleteUser(ctx context.Context, id string) error {
	return d.Transaction(ctx, func(tx *gorm.DB) error {
		owned := tx.Model(&models.Property{}).Select("id").Where("owner_id = ?", id)
		err := tx.Where("user_id = ? OR property_id IN (?)", id, owned).
			Delete(&models.Inquiry{}).Error
		if err != nil {
			return translate(err, inquiryResource)
		}
		if err := tx.Where("owner_id = ?", id).Delete(&models.Property{}).Error; err != nil {
			return translate(err, propertyResource)
		}
		res := tx.Where("id = ?", id).Delete(&models.User{})
		if res.Error != nil {
			return translate(res.Error, userResource)
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound, userResource)
		}
		return nil
	})
}
