package geometry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"landmarket/server/internal/models"
)

const (
	FieldCoordinates = "coordinates"
	FieldBoundary    = "boundary"

	squareMetersPerAcre = 4046.8564224
)

// Location is the normalized spatial part of a listing.
type Location struct {
	Coordinates models.LatLng
	Boundary    models.Boundary
}

// Validate normalizes a listing's coordinates and optional boundary.
func Validate(coordinates, boundary json.RawMessage) (Location, error) {
	point, err := ParseCoordinatesJSON(coordinates)
	if err != nil {
		return Location{}, err
	}
	ring, err := ParseBoundary(boundary)
	if err != nil {
		return Location{}, err
	}
	return Location{Coordinates: point, Boundary: ring}, nil
}

// ParseCoordinates parses a "lat, lng" pair. Whitespace is accepted as the
// separator when there is no comma.
func ParseCoordinates(raw string) (models.LatLng, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return models.LatLng{}, parseError(FieldCoordinates, "coordinates are required")
	}

	var parts []string
	if strings.Contains(s, ",") {
		parts = strings.Split(s, ",")
	} else {
		parts = strings.Fields(s)
	}
	if len(parts) != 2 {
		return models.LatLng{}, parseError(FieldCoordinates, "expected \"lat, lng\", got %q", raw)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return models.LatLng{}, parseError(FieldCoordinates, "latitude %q is not a number", parts[0])
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return models.LatLng{}, parseError(FieldCoordinates, "longitude %q is not a number", parts[1])
	}

	p := models.LatLng{Lat: lat, Lng: lng}
	if err := checkPoint(p); err != nil {
		return models.LatLng{}, boundsError(FieldCoordinates, "%v", err)
	}
	return p, nil
}

// ParseCoordinatesJSON accepts either the string form or a {"lat","lng"} object.
func ParseCoordinatesJSON(raw json.RawMessage) (models.LatLng, error) {
	data := bytes.TrimSpace(raw)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return models.LatLng{}, parseError(FieldCoordinates, "coordinates are required")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return models.LatLng{}, parseError(FieldCoordinates, "malformed coordinates: %v", err)
		}
		return ParseCoordinates(s)
	case '{':
		var obj struct {
			Lat *float64 `json:"lat"`
			Lng *float64 `json:"lng"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return models.LatLng{}, parseError(FieldCoordinates, "malformed coordinates: %v", err)
		}
		if obj.Lat == nil || obj.Lng == nil {
			return models.LatLng{}, parseError(FieldCoordinates, "both lat and lng are required")
		}
		p := models.LatLng{Lat: *obj.Lat, Lng: *obj.Lng}
		if err := checkPoint(p); err != nil {
			return models.LatLng{}, boundsError(FieldCoordinates, "%v", err)
		}
		return p, nil
	default:
		return models.LatLng{}, parseError(FieldCoordinates, "expected a \"lat, lng\" string or an object")
	}
}

// ParseBoundary accepts a GeoJSON Polygon, a Feature wrapping one, a JSON
// string holding either, or an array of {lat,lng} vertices. An absent or
// null payload yields a nil boundary. The returned ring is always closed.
func ParseBoundary(raw json.RawMessage) (models.Boundary, error) {
	data := bytes.TrimSpace(raw)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, parseError(FieldBoundary, "malformed boundary string: %v", err)
		}
		data = bytes.TrimSpace([]byte(s))
		if len(data) == 0 {
			return nil, nil
		}
		if data[0] == '"' {
			return nil, parseError(FieldBoundary, "boundary is double-encoded")
		}
	}

	vertices, err := decodeVertices(data)
	if err != nil {
		return nil, err
	}
	return normalizeRing(vertices)
}

// AreaAcres returns the geodesic area enclosed by the boundary.
func AreaAcres(b models.Boundary) float64 {
	if len(b) < 4 {
		return 0
	}
	return math.Abs(geo.Area(b.Polygon())) / squareMetersPerAcre
}

func decodeVertices(data []byte) ([]models.LatLng, error) {
	switch data[0] {
	case '[':
		var list []struct {
			Lat *float64 `json:"lat"`
			Lng *float64 `json:"lng"`
		}
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, parseError(FieldBoundary, "malformed vertex list: %v", err)
		}
		out := make([]models.LatLng, len(list))
		for i, v := range list {
			if v.Lat == nil || v.Lng == nil {
				return nil, parseError(FieldBoundary, "vertex %d is missing lat or lng", i)
			}
			out[i] = models.LatLng{Lat: *v.Lat, Lng: *v.Lng}
		}
		return out, nil
	case '{':
		poly, err := decodePolygon(data)
		if err != nil {
			return nil, err
		}
		out := make([]models.LatLng, len(poly[0]))
		for i, pt := range poly[0] {
			out[i] = models.LatLng{Lat: pt.Lat(), Lng: pt.Lon()}
		}
		return out, nil
	default:
		return nil, parseError(FieldBoundary, "expected GeoJSON or a vertex list")
	}
}

func decodePolygon(data []byte) (orb.Polygon, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, parseError(FieldBoundary, "malformed GeoJSON: %v", err)
	}

	var g orb.Geometry
	switch head.Type {
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, parseError(FieldBoundary, "malformed GeoJSON feature: %v", err)
		}
		g = f.Geometry
	case "Polygon":
		geom, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, parseError(FieldBoundary, "malformed GeoJSON polygon: %v", err)
		}
		g = geom.Geometry()
	case "":
		return nil, parseError(FieldBoundary, "GeoJSON type is missing")
	default:
		return nil, parseError(FieldBoundary, "unsupported GeoJSON type %q", head.Type)
	}

	poly, ok := g.(orb.Polygon)
	if !ok {
		return nil, parseError(FieldBoundary, "feature geometry must be a Polygon")
	}
	if len(poly) == 0 {
		return nil, degenerateError(FieldBoundary, "polygon has no rings")
	}
	if len(poly) > 1 {
		return nil, parseError(FieldBoundary, "polygons with holes are not supported")
	}
	return poly, nil
}

func normalizeRing(vertices []models.LatLng) (models.Boundary, error) {
	distinct := make(map[models.LatLng]struct{}, len(vertices))
	for i, v := range vertices {
		if err := checkPoint(v); err != nil {
			return nil, boundsError(FieldBoundary, "vertex %d: %v", i, err)
		}
		distinct[v] = struct{}{}
	}
	if len(distinct) < 3 {
		return nil, degenerateError(FieldBoundary, "need at least 3 distinct vertices, got %d", len(distinct))
	}

	ring := make(models.Boundary, 0, len(vertices)+1)
	ring = append(ring, vertices...)
	if ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}

	if planar.Area(ring.Ring()) == 0 {
		return nil, degenerateError(FieldBoundary, "vertices are collinear")
	}
	return ring, nil
}

func checkPoint(p models.LatLng) error {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) || math.IsNaN(p.Lng) || math.IsInf(p.Lng, 0) {
		return errors.New("coordinates must be finite")
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("latitude %g out of range [-90, 90]", p.Lat)
	}
	if p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("longitude %g out of range [-180, 180]", p.Lng)
	}
	return nil
}
