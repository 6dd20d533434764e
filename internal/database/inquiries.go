package database

import (
	"context"
	"time"

	"gorm.io/gorm"

	"landmarket/server/internal/models"
)

const inquiryResource = "inquiry"

// InquiryFilter selects inquiries by author or by listing owner. Both empty
// returns everything, which only administrators may ask for.
type InquiryFilter struct {
	UserID     string
	PropertyID string
	OwnerID    string
	Limit      int
	Offset     int
}

func (d *Database) CreateInquiry(ctx context.Context, i *models.Inquiry) error {
	return translate(d.db.WithContext(ctx).Create(i).Error, inquiryResource)
}

// inquiryContext preloads who wrote an inquiry and what it is about.
func inquiryContext(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Inquirer", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "name", "email", "phone")
		}).
		Preload("Property", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "title", "location", "county", "price", "images")
		})
}

func (d *Database) GetInquiry(ctx context.Context, id string) (*models.Inquiry, error) {
	var i models.Inquiry
	if err := d.db.WithContext(ctx).Scopes(inquiryContext).First(&i, "id = ?", id).Error; err != nil {
		return nil, translate(err, inquiryResource)
	}
	return &i, nil
}

func (d *Database) UpdateInquiryMessage(ctx context.Context, i *models.Inquiry) error {
	i.UpdatedAt = time.Now().UTC()
	res := d.db.WithContext(ctx).Model(i).
		Select("message", "updated_at").
		Updates(i)
	if res.Error != nil {
		return translate(res.Error, inquiryResource)
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, inquiryResource)
	}
	return nil
}

func (d *Database) DeleteInquiry(ctx context.Context, id string) error {
	res := d.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Inquiry{})
	if res.Error != nil {
		return translate(res.Error, inquiryResource)
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, inquiryResource)
	}
	return nil
}

func (d *Database) ListInquiries(ctx context.Context, filter InquiryFilter) ([]models.Inquiry, error) {
	q := d.db.WithContext(ctx).Model(&models.Inquiry{}).Scopes(inquiryContext)
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.PropertyID != "" {
		q = q.Where("property_id = ?", filter.PropertyID)
	}
	if filter.OwnerID != "" {
		owned := d.db.Model(&models.Property{}).Select("id").Where("owner_id = ?", filter.OwnerID)
		q = q.Where("property_id IN (?)", owned)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	inquiries := make([]models.Inquiry, 0)
	if err := q.Order("created_at DESC").Order("id DESC").Find(&inquiries).Error; err != nil {
		return nil, translate(err, inquiryResource)
	}
	return inquiries, nil
}
