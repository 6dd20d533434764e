package listing

import (
	"encoding/json"
	"math"
	"strings"

	"landmarket/server/config"
	"landmarket/server/internal/apperr"
	"landmarket/server/internal/geometry"
	"landmarket/server/internal/models"
)

// CreateInput is the client payload for a new listing. Coordinates and
// boundary are kept raw so every accepted encoding reaches the geometry
// validator.
type CreateInput struct {
	OwnerID      string              `json:"ownerId"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Price        float64             `json:"price"`
	Size         float64             `json:"size"`
	SizeUnit     models.SizeUnit     `json:"sizeUnit"`
	Type         models.PropertyType `json:"type"`
	County       string              `json:"county"`
	Constituency string              `json:"constituency"`
	Location     string              `json:"location"`
	Coordinates  json.RawMessage     `json:"coordinates"`
	Boundary     json.RawMessage     `json:"boundary"`
	Images       []string            `json:"images"`
	Documents    []string            `json:"documents"`
}

func (in CreateInput) toProperty() (*models.Property, error) {
	p := &models.Property{
		Description:  strings.TrimSpace(in.Description),
		Constituency: strings.TrimSpace(in.Constituency),
		Location:     strings.TrimSpace(in.Location),
	}

	var err error
	if p.Title, err = validTitle(in.Title); err != nil {
		return nil, err
	}
	if p.Price, err = positive("price", in.Price); err != nil {
		return nil, err
	}
	if p.Size, err = positive("size", in.Size); err != nil {
		return nil, err
	}
	if p.SizeUnit, err = validSizeUnit(in.SizeUnit); err != nil {
		return nil, err
	}
	if p.Type, err = validType(in.Type); err != nil {
		return nil, err
	}
	if p.County, err = validCounty(in.County); err != nil {
		return nil, err
	}
	if p.Images, err = validURLs("images", in.Images); err != nil {
		return nil, err
	}
	if p.Documents, err = validURLs("documents", in.Documents); err != nil {
		return nil, err
	}

	loc, err := geometry.Validate(in.Coordinates, in.Boundary)
	if err != nil {
		return nil, err
	}
	p.Coordinates = loc.Coordinates
	setBoundary(p, loc.Boundary)
	return p, nil
}

// setBoundary stores the ring and keeps the derived area in step with it.
func setBoundary(p *models.Property, b models.Boundary) {
	p.Boundary = b
	if len(b) == 0 {
		p.BoundaryAreaAcres = nil
		return
	}
	area := geometry.AreaAcres(b)
	p.BoundaryAreaAcres = &area
}

func validTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperr.Validation("title", "title is required")
	}
	if len(title) > 200 {
		return "", apperr.Validation("title", "title must be at most 200 characters")
	}
	return title, nil
}

func positive(field string, v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, apperr.Validation(field, "%s must be a positive number", field)
	}
	return v, nil
}

func validSizeUnit(u models.SizeUnit) (models.SizeUnit, error) {
	if u == "" {
		return models.SizeAcres, nil
	}
	u = models.SizeUnit(strings.ToLower(string(u)))
	if !u.Valid() {
		return "", apperr.Validation("sizeUnit", "sizeUnit must be acres or hectares")
	}
	return u, nil
}

func validType(t models.PropertyType) (models.PropertyType, error) {
	t = models.PropertyType(strings.ToLower(string(t)))
	if !t.Valid() {
		return "", apperr.Validation("type", "type must be residential, agricultural or commercial")
	}
	return t, nil
}

func validCounty(county string) (string, error) {
	if strings.TrimSpace(county) == "" {
		return "", apperr.Validation("county", "county is required")
	}
	canonical, ok := config.CanonicalCounty(county)
	if !ok {
		return "", apperr.Validation("county", "unknown county %q", county)
	}
	return canonical, nil
}

func validURLs(field string, urls []string) ([]string, error) {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			return nil, apperr.Validation(field, "%s must not contain empty entries", field)
		}
		out = append(out, u)
	}
	return out, nil
}
