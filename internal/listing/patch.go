package listing

import (
	"bytes"
	"encoding/json"
	"reflect"
	"sort"
	"time"

	"landmarket/server/internal/apperr"
	"landmarket/server/internal/geometry"
	"landmarket/server/internal/models"
)

// Patch is a partial update keyed by JSON field name. Only fields with a
// setter below can change; everything else is rejected.
type Patch map[string]json.RawMessage

type setter struct {
	columns []string
	apply   func(p *models.Property, raw json.RawMessage) error
}

var setters = map[string]setter{
	"title": {[]string{"title"}, func(p *models.Property, raw json.RawMessage) error {
		var v string
		if err := decode("title", raw, &v); err != nil {
			return err
		}
		title, err := validTitle(v)
		p.Title = title
		return err
	}},
	"description": {[]string{"description"}, func(p *models.Property, raw json.RawMessage) error {
		return decode("description", raw, &p.Description)
	}},
	"price": {[]string{"price"}, func(p *models.Property, raw json.RawMessage) error {
		var v float64
		if err := decode("price", raw, &v); err != nil {
			return err
		}
		price, err := positive("price", v)
		p.Price = price
		return err
	}},
	"size": {[]string{"size"}, func(p *models.Property, raw json.RawMessage) error {
		var v float64
		if err := decode("size", raw, &v); err != nil {
			return err
		}
		size, err := positive("size", v)
		p.Size = size
		return err
	}},
	"sizeUnit": {[]string{"size_unit"}, func(p *models.Property, raw json.RawMessage) error {
		var v models.SizeUnit
		if err := decode("sizeUnit", raw, &v); err != nil {
			return err
		}
		unit, err := validSizeUnit(v)
		p.SizeUnit = unit
		return err
	}},
	"type": {[]string{"type"}, func(p *models.Property, raw json.RawMessage) error {
		var v models.PropertyType
		if err := decode("type", raw, &v); err != nil {
			return err
		}
		t, err := validType(v)
		p.Type = t
		return err
	}},
	"county": {[]string{"county"}, func(p *models.Property, raw json.RawMessage) error {
		var v string
		if err := decode("county", raw, &v); err != nil {
			return err
		}
		county, err := validCounty(v)
		p.County = county
		return err
	}},
	"constituency": {[]string{"constituency"}, func(p *models.Property, raw json.RawMessage) error {
		return decode("constituency", raw, &p.Constituency)
	}},
	"location": {[]string{"location"}, func(p *models.Property, raw json.RawMessage) error {
		return decode("location", raw, &p.Location)
	}},
	"coordinates": {[]string{"coord_lat", "coord_lng"}, func(p *models.Property, raw json.RawMessage) error {
		c, err := geometry.ParseCoordinatesJSON(raw)
		if err != nil {
			return err
		}
		p.Coordinates = c
		return nil
	}},
	"boundary": {[]string{"boundary", "boundary_area_acres"}, func(p *models.Property, raw json.RawMessage) error {
		b, err := geometry.ParseBoundary(raw)
		if err != nil {
			return err
		}
		setBoundary(p, b)
		return nil
	}},
	"images": {[]string{"images"}, func(p *models.Property, raw json.RawMessage) error {
		var v []string
		if err := decode("images", raw, &v); err != nil {
			return err
		}
		urls, err := validURLs("images", v)
		p.Images = urls
		return err
	}},
	"documents": {[]string{"documents"}, func(p *models.Property, raw json.RawMessage) error {
		var v []string
		if err := decode("documents", raw, &v); err != nil {
			return err
		}
		urls, err := validURLs("documents", v)
		p.Documents = urls
		return err
	}},
}

// readOnly fields may be echoed back unchanged but never modified. Derived
// fields are compared with the stored record, so a full record sent back
// with a new boundary still carries the old area.
var readOnly = map[string]func(p *models.Property) any{
	"id":                func(p *models.Property) any { return p.ID },
	"ownerId":           func(p *models.Property) any { return p.OwnerID },
	"moderationState":   func(p *models.Property) any { return p.ModerationState },
	"createdAt":         func(p *models.Property) any { return p.CreatedAt },
	"updatedAt":         func(p *models.Property) any { return p.UpdatedAt },
	"approvedAt":        func(p *models.Property) any { return p.ApprovedAt },
	"boundaryAreaAcres": func(p *models.Property) any { return p.BoundaryAreaAcres },
	"owner":             func(p *models.Property) any { return p.Owner },
}

// apply runs the setters for every field in the patch against p and
// returns the columns that changed. Read-only echoes are checked before
// any setter runs; fields are applied in name order so errors are
// deterministic.
func (patch Patch) apply(p *models.Property) ([]string, error) {
	if len(patch) == 0 {
		return nil, apperr.Validation("", "update must include at least one field")
	}

	names := make([]string, 0, len(patch))
	for name := range patch {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		current, ok := readOnly[name]
		if !ok {
			if _, ok := setters[name]; !ok {
				return nil, apperr.Validation(name, "unknown field %s", name)
			}
			continue
		}
		same, err := unchanged(patch[name], current(p))
		if err != nil || !same {
			return nil, apperr.Validation(name, "%s is immutable", name)
		}
	}

	var columns []string
	for _, name := range names {
		s, ok := setters[name]
		if !ok {
			continue
		}
		if err := s.apply(p, patch[name]); err != nil {
			return nil, err
		}
		columns = append(columns, s.columns...)
	}
	if len(columns) == 0 {
		return nil, apperr.Validation("", "no updatable fields in update")
	}
	return columns, nil
}

// unchanged reports whether raw decodes to the same value as current.
func unchanged(raw json.RawMessage, current any) (bool, error) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return isNil(current), nil
	}

	target := reflect.New(reflect.TypeOf(current))
	if err := json.Unmarshal(raw, target.Interface()); err != nil {
		return false, err
	}
	decoded := target.Elem().Interface()

	switch cur := current.(type) {
	case time.Time:
		return cur.Equal(decoded.(time.Time)), nil
	case *time.Time:
		got := decoded.(*time.Time)
		return cur != nil && got != nil && cur.Equal(*got), nil
	case *float64:
		got := decoded.(*float64)
		return cur != nil && got != nil && *cur == *got, nil
	default:
		return reflect.DeepEqual(current, decoded), nil
	}
}

func isNil(v any) bool {
	rv := reflect.ValueOf(v)
	return !rv.IsValid() || (rv.Kind() == reflect.Ptr && rv.IsNil())
}

func decode(field string, raw json.RawMessage, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return apperr.Validation(field, "invalid value for %s", field)
	}
	return nil
}
