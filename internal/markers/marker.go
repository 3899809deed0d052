// Package markers keeps the shared collection of map markers.
package markers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/woozymasta/mapview/internal/geo"
)

var (
	// ErrNotFound is returned when a marker id is unknown.
	ErrNotFound = errors.New("marker not found")
	// ErrInvalid is returned for markers failing validation.
	ErrInvalid = errors.New("invalid marker")
)

// Marker is a single location overlaid on the map.
type Marker struct {
	ID          string  `json:"id" yaml:"id"`
	Title       string  `json:"title" yaml:"title"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Type        string  `json:"type,omitempty" yaml:"type,omitempty"`
	Latitude    float64 `json:"latitude" yaml:"latitude"`
	Longitude   float64 `json:"longitude" yaml:"longitude"`
}

// Validate checks id and coordinates.
func (m Marker) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalid)
	}
	if err := m.Coordinate().Validate(); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalid, m.ID, err)
	}

	return nil
}

// Coordinate returns the marker position.
func (m Marker) Coordinate() geo.Coordinate {
	return geo.Coordinate{Latitude: m.Latitude, Longitude: m.Longitude}
}

// Feature converts the marker to a GeoJSON Point feature.
func (m Marker) Feature() geo.GeoJSONFeature {
	props := map[string]any{"title": m.Title}
	if m.Description != "" {
		props["description"] = m.Description
	}
	if m.Type != "" {
		props["type"] = m.Type
	}

	return geo.NewPoint(m.ID, m.Latitude, m.Longitude, props)
}

// FromFeature converts a GeoJSON Point feature to a marker. Features without
// an id fall back to the "id" property, then to "name".
func FromFeature(f geo.GeoJSONFeature) (Marker, error) {
	lat, lon, ok := f.Point()
	if !ok {
		return Marker{}, fmt.Errorf("%w: geometry %q is not a point", ErrInvalid, f.Geometry.Type)
	}

	m := Marker{
		ID:          f.ID,
		Title:       f.StringProperty("title"),
		Description: f.StringProperty("description"),
		Type:        strings.ToLower(f.StringProperty("type")),
		Latitude:    lat,
		Longitude:   lon,
	}
	if m.ID == "" {
		m.ID = f.StringProperty("id")
	}
	if m.Title == "" {
		m.Title = f.StringProperty("name")
	}
	if m.ID == "" {
		m.ID = f.StringProperty("name")
	}

	return m, m.Validate()
}

// ToFeatureCollection converts markers to GeoJSON in the given order.
func ToFeatureCollection(list []Marker) geo.GeoJSONFeatureCollection {
	fc := geo.NewFeatureCollection(len(list))
	for _, m := range list {
		fc.Features = append(fc.Features, m.Feature())
	}

	return fc
}
