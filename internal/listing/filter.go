package listing

import (
	"math"
	"strconv"
	"strings"

	"landmarket/server/internal/apperr"
	"landmarket/server/internal/database"
	"landmarket/server/internal/models"
)

// Filter is the listing search as received from a client. Empty fields
// place no constraint.
type Filter struct {
	OwnerID         string `form:"ownerId"`
	County          string `form:"county"`
	Constituency    string `form:"constituency"`
	Type            string `form:"type"`
	MinPrice        string `form:"minPrice"`
	MaxPrice        string `form:"maxPrice"`
	MinSize         string `form:"minSize"`
	MaxSize         string `form:"maxSize"`
	ModerationState string `form:"moderationState"`
	Search          string `form:"search"`
	Limit           string `form:"limit"`
	Offset          string `form:"offset"`
}

func (f Filter) build(maxPageSize int) (database.PropertyFilter, error) {
	out := database.PropertyFilter{
		OwnerID:      strings.TrimSpace(f.OwnerID),
		County:       strings.TrimSpace(f.County),
		Constituency: strings.TrimSpace(f.Constituency),
		Search:       strings.TrimSpace(f.Search),
		Limit:        maxPageSize,
	}

	if t := strings.TrimSpace(f.Type); t != "" {
		out.Type = models.PropertyType(strings.ToLower(t))
		if !out.Type.Valid() {
			return out, apperr.Validation("type", "unknown property type %q", t)
		}
	}
	if s := strings.TrimSpace(f.ModerationState); s != "" {
		out.ModerationState = models.ModerationState(strings.ToLower(s))
		if !out.ModerationState.Valid() {
			return out, apperr.Validation("moderationState", "unknown moderation state %q", s)
		}
	}

	var err error
	if out.MinPrice, err = optionalFloat("minPrice", f.MinPrice); err != nil {
		return out, err
	}
	if out.MaxPrice, err = optionalFloat("maxPrice", f.MaxPrice); err != nil {
		return out, err
	}
	if out.MinSize, err = optionalFloat("minSize", f.MinSize); err != nil {
		return out, err
	}
	if out.MaxSize, err = optionalFloat("maxSize", f.MaxSize); err != nil {
		return out, err
	}

	if f.Limit != "" {
		n, err := strconv.Atoi(f.Limit)
		if err != nil || n <= 0 {
			return out, apperr.Validation("limit", "limit must be a positive integer")
		}
		if n < maxPageSize {
			out.Limit = n
		}
	}
	if f.Offset != "" {
		n, err := strconv.Atoi(f.Offset)
		if err != nil || n < 0 {
			return out, apperr.Validation("offset", "offset must be a non-negative integer")
		}
		out.Offset = n
	}
	return out, nil
}

func optionalFloat(field, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, apperr.Validation(field, "%s must be a number", field)
	}
	return &v, nil
}
