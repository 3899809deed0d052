package geo

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidRegion is returned for regions with a bad center or non-positive span.
var ErrInvalidRegion = errors.New("invalid region")

// Region is the visible map area: a center and the angular span of the viewport.
type Region struct {
	Latitude       float64 `json:"latitude" yaml:"latitude"`
	Longitude      float64 `json:"longitude" yaml:"longitude"`
	LatitudeDelta  float64 `json:"latitude_delta" yaml:"latitude_delta"`
	LongitudeDelta float64 `json:"longitude_delta" yaml:"longitude_delta"`
}

// Bounds is a latitude/longitude bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Validate checks the center and that both deltas are positive and finite.
func (r Region) Validate() error {
	if err := r.Center().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRegion, err)
	}
	if !(r.LatitudeDelta > 0) || !(r.LongitudeDelta > 0) ||
		math.IsInf(r.LatitudeDelta, 0) || math.IsInf(r.LongitudeDelta, 0) {
		return fmt.Errorf("%w: deltas must be positive, got %v/%v",
			ErrInvalidRegion, r.LatitudeDelta, r.LongitudeDelta)
	}
	if r.LongitudeDelta > 360 || r.LatitudeDelta > 180 {
		return fmt.Errorf("%w: span exceeds the globe", ErrInvalidRegion)
	}

	return nil
}

// Center returns the region center.
func (r Region) Center() Coordinate {
	return Coordinate{Latitude: r.Latitude, Longitude: r.Longitude}
}

// CenteredOn returns a copy of r moved to c with the same deltas. The latitude
// is clamped to the Mercator limit and the longitude wrapped into [-180, 180).
func (r Region) CenteredOn(c Coordinate) Region {
	r.Latitude = ClampLatitude(c.Latitude)
	r.Longitude = NormalizeLongitude(c.Longitude)
	return r
}

// Bounds returns the bounding box of the region. Longitudes are not wrapped,
// so a region crossing the antimeridian yields MinLon < -180 or MaxLon > 180.
func (r Region) Bounds() Bounds {
	return Bounds{
		MinLat: math.Max(r.Latitude-r.LatitudeDelta/2, -90),
		MaxLat: math.Min(r.Latitude+r.LatitudeDelta/2, 90),
		MinLon: r.Longitude - r.LongitudeDelta/2,
		MaxLon: r.Longitude + r.LongitudeDelta/2,
	}
}

// Contains reports whether c falls inside b, honouring antimeridian overflow.
func (b Bounds) Contains(c Coordinate) bool {
	if c.Latitude < b.MinLat || c.Latitude > b.MaxLat {
		return false
	}
	if b.MaxLon-b.MinLon >= 360 {
		return true
	}

	for _, lon := range []float64{c.Longitude, c.Longitude - 360, c.Longitude + 360} {
		if lon >= b.MinLon && lon <= b.MaxLon {
			return true
		}
	}

	return false
}
