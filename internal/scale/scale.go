// Package scale converts a map viewport into a legible distance scale indicator.
package scale

import (
	"fmt"
	"math"

	"github.com/woozymasta/mapview/internal/geo"
)

// MetersPerDegreeEquator is the length of one degree of longitude at the equator.
const MetersPerDegreeEquator = 111320.0

// Readable on-screen bar range used to pick a candidate distance.
const (
	MinReadablePixels = 60.0
	MaxReadablePixels = 160.0
)

// Bar length is clamped to this range so the indicator stays stable at extreme zoom.
const (
	MinBarPixels = 40.0
	MaxBarPixels = 200.0
)

// Candidates are the "nice" distances in meters, ascending.
var Candidates = [...]float64{10, 20, 50, 100, 200, 500, 1000, 2000}

// Viewport describes the visible map area for scale estimation.
type Viewport struct {
	CenterLatitude float64 `json:"latitude" yaml:"latitude"`             // degrees
	LongitudeSpan  float64 `json:"longitude_span" yaml:"longitude_span"` // degrees, full visible width
	WidthPixels    float64 `json:"width" yaml:"width"`
}

// Result is the derived scale indicator.
type Result struct {
	Label          string  `json:"label" yaml:"label"`
	DistanceMeters float64 `json:"distance_meters" yaml:"distance_meters"`
	BarPixels      float64 `json:"bar_pixels" yaml:"bar_pixels"`
	MetersPerPixel float64 `json:"meters_per_pixel" yaml:"meters_per_pixel"`
}

// Valid reports whether the viewport can be estimated without producing NaN or Inf.
// Estimate itself does not check; callers use this to reject degenerate input.
func (v Viewport) Valid() bool {
	if !finite(v.CenterLatitude) || !finite(v.LongitudeSpan) || !finite(v.WidthPixels) {
		return false
	}
	if v.CenterLatitude < -90 || v.CenterLatitude > 90 {
		return false
	}
	if v.LongitudeSpan <= 0 || v.WidthPixels <= 0 {
		return false
	}

	// huge spans or subnormal widths overflow, polar latitudes collapse to zero
	mpp := MetersPerDegreeLongitude(v.CenterLatitude) * v.LongitudeSpan / v.WidthPixels
	return finite(mpp) && mpp > 0
}

// MetersPerDegreeLongitude returns the length of one degree of longitude at lat.
func MetersPerDegreeLongitude(lat float64) float64 {
	return math.Cos(lat*math.Pi/180) * MetersPerDegreeEquator
}

// Estimate picks the scale indicator for a viewport centered at lat that spans
// lonSpan degrees across widthPx pixels. Inputs must be positive and finite.
func Estimate(lat, lonSpan, widthPx float64) Result {
	viewportMeters := MetersPerDegreeLongitude(lat) * lonSpan
	metersPerPixel := viewportMeters / widthPx

	// first in-range candidate wins; otherwise the last one found below range
	distance := Candidates[0]
	for _, c := range Candidates {
		px := c / metersPerPixel
		if px >= MinReadablePixels && px <= MaxReadablePixels {
			distance = c
			break
		}
		if px < MinReadablePixels {
			distance = c
		}
	}

	bar := distance / metersPerPixel
	if bar < MinBarPixels {
		bar = MinBarPixels
	} else if bar > MaxBarPixels {
		bar = MaxBarPixels
	}

	return Result{
		DistanceMeters: distance,
		BarPixels:      bar,
		MetersPerPixel: metersPerPixel,
		Label:          FormatDistance(distance),
	}
}

// EstimateViewport is Estimate over a Viewport value.
func EstimateViewport(v Viewport) Result {
	return Estimate(v.CenterLatitude, v.LongitudeSpan, v.WidthPixels)
}

// RegionViewport describes a map region shown widthPx pixels wide.
func RegionViewport(r geo.Region, widthPx float64) Viewport {
	return Viewport{CenterLatitude: r.Latitude, LongitudeSpan: r.LongitudeDelta, WidthPixels: widthPx}
}

// EstimateRegion is Estimate for a region shown widthPx pixels wide.
func EstimateRegion(r geo.Region, widthPx float64) Result {
	return Estimate(r.Latitude, r.LongitudeDelta, widthPx)
}

// FormatDistance renders kilometers with one decimal from 1000 m up, whole meters below.
func FormatDistance(meters float64) string {
	if meters >= 1000 {
		return fmt.Sprintf("%.1f km", meters/1000)
	}

	return fmt.Sprintf("%d m", int(math.Round(meters)))
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
