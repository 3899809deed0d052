// Package geo handles geographic data structures and viewport math.
package geo

// GeoJSONFeatureCollection represents a collection of geographic features.
// It follows the standard GeoJSON structure.
type GeoJSONFeatureCollection struct {
	Type     string           `json:"type" yaml:"type"`
	Features []GeoJSONFeature `json:"features" yaml:"features"`
}

// GeoJSONFeature represents a single geographic feature with geometry and properties.
type GeoJSONFeature struct {
	Properties map[string]any  `json:"properties" yaml:"properties"`
	ID         string          `json:"id,omitempty" yaml:"id,omitempty"`
	Type       string          `json:"type" yaml:"type"`
	Geometry   GeoJSONGeometry `json:"geometry" yaml:"geometry"`
}

// GeoJSONGeometry represents the geometry of a feature. Only Point is used by markers.
type GeoJSONGeometry struct {
	Type        string    `json:"type" yaml:"type"`
	Coordinates []float64 `json:"coordinates" yaml:"coordinates"` // [Lon, Lat]
}

// NewFeatureCollection returns an empty collection ready for appending.
func NewFeatureCollection(capacity int) GeoJSONFeatureCollection {
	return GeoJSONFeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]GeoJSONFeature, 0, capacity),
	}
}

// NewPoint builds a Point feature at lat/lon.
func NewPoint(id string, lat, lon float64, props map[string]any) GeoJSONFeature {
	return GeoJSONFeature{
		Type: "Feature",
		ID:   id,
		Geometry: GeoJSONGeometry{
			Type:        "Point",
			Coordinates: []float64{lon, lat},
		},
		Properties: props,
	}
}

// Point returns lat/lon of a Point feature. ok is false for other geometries.
func (f GeoJSONFeature) Point() (lat, lon float64, ok bool) {
	if f.Geometry.Type != "Point" || len(f.Geometry.Coordinates) < 2 {
		return 0, 0, false
	}

	return f.Geometry.Coordinates[1], f.Geometry.Coordinates[0], true
}

// StringProperty returns a string property or "" if missing or not a string.
func (f GeoJSONFeature) StringProperty(key string) string {
	if f.Properties == nil {
		return ""
	}
	s, _ := f.Properties[key].(string)
	return s
}
