// Package config handles configuration loading and shared data structures.
package config

import (
	"fmt"
	"os"

	"github.com/woozymasta/mapview/internal/geo"

	"gopkg.in/yaml.v3"
)

// Defaults applied by Load when a field is left empty.
const (
	DefaultMapType       = "standard"
	DefaultViewportWidth = 375
)

// DefaultRegion is shown when the config has no initial region.
var DefaultRegion = geo.Region{
	Latitude:       43.2630,
	Longitude:      -2.9350,
	LatitudeDelta:  0.0922,
	LongitudeDelta: 0.0421,
}

// Config represents the root configuration file structure.
type Config struct {
	// defining GeoJSON directly in config.yaml
	MarkersInline *geo.GeoJSONFeatureCollection `yaml:"markers_geojson,omitempty"`

	Attribution string `yaml:"attribution,omitempty"`
	// file path or http(s) URL with a GeoJSON FeatureCollection
	MarkersSource string `yaml:"markers,omitempty"`
	// where marker edits are written back, empty keeps them in memory only
	MarkersStore string `yaml:"markers_store,omitempty"`

	View View `yaml:"view"`
}

// View holds the initial view-control state of the map screen.
type View struct {
	Region        *geo.Region `yaml:"region,omitempty"`
	MapType       string      `yaml:"map_type,omitempty"`
	ViewportWidth float64     `yaml:"viewport_width,omitempty"` // pixels
	ShowsTraffic  bool        `yaml:"shows_traffic,omitempty"`
	ShowsPOI      bool        `yaml:"shows_poi,omitempty"`
	FollowUser    bool        `yaml:"follow_user,omitempty"`
}

// Load reads and parses the YAML configuration file from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse decodes YAML configuration and fills defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if err := cfg.View.Region.Validate(); err != nil {
		return nil, fmt.Errorf("view.region: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.View.MapType == "" {
		c.View.MapType = DefaultMapType
	}
	if c.View.ViewportWidth <= 0 {
		c.View.ViewportWidth = DefaultViewportWidth
	}
	if c.View.Region == nil {
		r := DefaultRegion
		c.View.Region = &r
	}
}
