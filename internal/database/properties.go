package database

import (
	"context"
	"time"

	"gorm.io/gorm"

	"landmarket/server/internal/models"
)

const propertyResource = "property"

func (d *Database) CreateProperty(ctx context.Context, p *models.Property) error {
	return translate(d.db.WithContext(ctx).Create(p).Error, propertyResource)
}

// ownerContact preloads the seller's name and phone onto listings.
func ownerContact(db *gorm.DB) *gorm.DB {
	return db.Preload("Owner", func(tx *gorm.DB) *gorm.DB {
		return tx.Select("id", "name", "phone")
	})
}

func (d *Database) GetProperty(ctx context.Context, id string) (*models.Property, error) {
	var p models.Property
	if err := d.db.WithContext(ctx).Scopes(ownerContact).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err, propertyResource)
	}
	return &p, nil
}

// UpdatePropertyFields writes only the named columns of p and stamps
// updated_at.
func (d *Database) UpdatePropertyFields(ctx context.Context, p *models.Property, columns []string) error {
	p.UpdatedAt = time.Now().UTC()
	columns = append(columns, "updated_at")

	res := d.db.WithContext(ctx).Model(p).Select(columns).Updates(p)
	if res.Error != nil {
		return translate(res.Error, propertyResource)
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, propertyResource)
	}
	return nil
}

// SetModerationState moves a listing from one state to another. It reports
// false when the listing was no longer in the from state.
func (d *Database) SetModerationState(ctx context.Context, id string, from, to models.ModerationState) (bool, error) {
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"moderation_state": to,
		"updated_at":       now,
	}
	if to == models.ModerationApproved {
		updates["approved_at"] = now
	}

	res := d.db.WithContext(ctx).Model(&models.Property{}).
		Where("id = ? AND moderation_state = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, translate(res.Error, propertyResource)
	}
	return res.RowsAffected == 1, nil
}

// DeleteProperty removes a listing together with its inquiries.
func (d *Database) DeleteProperty(ctx context.Context, id string) error {
	return d.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("property_id = ?", id).Delete(&models.Inquiry{}).Error; err != nil {
			return translate(err, inquiryResource)
		}
		res := tx.Where("id = ?", id).Delete(&models.Property{})
		if res.Error != nil {
			return translate(res.Error, propertyResource)
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound, propertyResource)
		}
		return nil
	})
}

func (d *Database) QueryProperties(ctx context.Context, filter PropertyFilter) ([]models.Property, error) {
	properties := make([]models.Property, 0)
	err := d.db.WithContext(ctx).Model(&models.Property{}).
		Scopes(filter.scope, ownerContact).
		Find(&properties).Error
	if err != nil {
		return nil, translate(err, propertyResource)
	}
	return properties, nil
}

// CountPendingSince counts listings still awaiting approval that were
// created before cutoff.
func (d *Database) CountPendingSince(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	err := d.db.WithContext(ctx).Model(&models.Property{}).
		Where("moderation_state = ? AND created_at < ?", models.ModerationPending, cutoff).
		Count(&n).Error
	return n, translate(err, propertyResource)
}
