package geo

import (
	"errors"
	"fmt"
	"math"
)

// MaxMercatorLat is the latitude limit of Web Mercator tiles.
const MaxMercatorLat = 85.05112878

// ErrInvalidCoordinate is returned for coordinates outside WGS84 bounds.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Coordinate is a WGS84 position in degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// Validate checks that the coordinate is finite and within WGS84 bounds.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) ||
		c.Latitude < -90 || c.Latitude > 90 ||
		c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: lat=%v lon=%v", ErrInvalidCoordinate, c.Latitude, c.Longitude)
	}

	return nil
}

// ClampLatitude limits lat to the range representable on a Mercator map.
func ClampLatitude(lat float64) float64 {
	if lat > MaxMercatorLat {
		return MaxMercatorLat
	} else if lat < -MaxMercatorLat {
		return -MaxMercatorLat
	}

	return lat
}

// NormalizeLongitude wraps lon into [-180, 180).
func NormalizeLongitude(lon float64) float64 {
	if lon >= -180 && lon < 180 {
		return lon
	}

	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}

	return lon - 180
}
