package models

import (
	"database/sql/driver"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (p LatLng) Point() orb.Point {
	return orb.Point{p.Lng, p.Lat}
}

// Boundary is a closed ring of vertices; the first and last entries are equal.
// It is stored as a GeoJSON Polygon.
type Boundary []LatLng

func (b Boundary) Ring() orb.Ring {
	ring := make(orb.Ring, len(b))
	for i, v := range b {
		ring[i] = v.Point()
	}
	return ring
}

func (b Boundary) Polygon() orb.Polygon {
	return orb.Polygon{b.Ring()}
}

func (b Boundary) Value() (driver.Value, error) {
	if len(b) == 0 {
		return nil, nil
	}
	data, err := geojson.NewGeometry(b.Polygon()).MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (b *Boundary) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*b = nil
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("unsupported boundary column type %T", value)
	}
	if len(data) == 0 {
		*b = nil
		return nil
	}

	g, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return fmt.Errorf("failed to decode boundary: %w", err)
	}
	poly, ok := g.Geometry().(orb.Polygon)
	if !ok || len(poly) == 0 {
		return fmt.Errorf("boundary column holds %s, want Polygon", g.Type)
	}

	ring := poly[0]
	out := make(Boundary, len(ring))
	for i, pt := range ring {
		out[i] = LatLng{Lat: pt.Lat(), Lng: pt.Lon()}
	}
	*b = out
	return nil
}
