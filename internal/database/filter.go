package database

import (
	"strings"

	"gorm.io/gorm"

	"landmarket/server/internal/models"
)

// Visibility limits which listings a query may return regardless of the
// filters requested.
type Visibility struct {
	// All lifts the restriction (administrators).
	All bool
	// ViewerID additionally admits the viewer's own listings. Empty means an
	// anonymous caller who only ever sees public listings.
	ViewerID string
}

// PropertyFilter holds independent, combinable constraints. A zero field
// places no constraint on its column.
type PropertyFilter struct {
	OwnerID         string
	County          string
	Constituency    string
	Type            models.PropertyType
	MinPrice        *float64
	MaxPrice        *float64
	MinSize         *float64
	MaxSize         *float64
	ModerationState models.ModerationState
	Search          string
	Limit           int
	Offset          int

	Visibility Visibility
}

// PubliclyListable is the query form of models.Property.IsPubliclyListable.
func PubliclyListable(db *gorm.DB) *gorm.DB {
	return db.Where("moderation_state = ?", models.ModerationApproved)
}

func (f PropertyFilter) scope(db *gorm.DB) *gorm.DB {
	if f.OwnerID != "" {
		db = db.Where("owner_id = ?", f.OwnerID)
	}
	if f.County != "" {
		db = db.Where("LOWER(county) = LOWER(?)", f.County)
	}
	if f.Constituency != "" {
		db = db.Where("LOWER(constituency) = LOWER(?)", f.Constituency)
	}
	if f.Type != "" {
		db = db.Where("type = ?", f.Type)
	}
	if f.MinPrice != nil {
		db = db.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		db = db.Where("price <= ?", *f.MaxPrice)
	}
	if f.MinSize != nil {
		db = db.Where("size >= ?", *f.MinSize)
	}
	if f.MaxSize != nil {
		db = db.Where("size <= ?", *f.MaxSize)
	}
	if f.ModerationState != "" {
		db = db.Where("moderation_state = ?", f.ModerationState)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := "%" + escapeLike(strings.ToLower(s)) + "%"
		db = db.Where(
			`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(location) LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern,
		)
	}

	switch {
	case f.Visibility.All:
	case f.Visibility.ViewerID == "":
		db = PubliclyListable(db)
	default:
		visible := PubliclyListable(db.Session(&gorm.Session{NewDB: true})).
			Or("owner_id = ?", f.Visibility.ViewerID)
		db = db.Where(visible)
	}

	if f.Limit > 0 {
		db = db.Limit(f.Limit)
	}
	if f.Offset > 0 {
		db = db.Offset(f.Offset)
	}
	return db.Order("created_at DESC").Order("id DESC")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
