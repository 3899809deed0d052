package geo_test

import (
	"math"
	"testing"

	"github.com/woozymasta/mapview/internal/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinateValidate(t *testing.T) {
	require.NoError(t, geo.Coordinate{Latitude: 43.26, Longitude: -2.93}.Validate())
	require.NoError(t, geo.Coordinate{Latitude: -90, Longitude: 180}.Validate())

	err := geo.Coordinate{Latitude: 91, Longitude: 0}.Validate()
	require.ErrorIs(t, err, geo.ErrInvalidCoordinate)

	err = geo.Coordinate{Latitude: math.NaN(), Longitude: 0}.Validate()
	require.ErrorIs(t, err, geo.ErrInvalidCoordinate)
}

func TestClampLatitude(t *testing.T) {
	assert.Equal(t, geo.MaxMercatorLat, geo.ClampLatitude(89))
	assert.Equal(t, -geo.MaxMercatorLat, geo.ClampLatitude(-90))
	assert.Equal(t, 12.5, geo.ClampLatitude(12.5))
}

func TestNormalizeLongitude(t *testing.T) {
	assert.InDelta(t, -170.0, geo.NormalizeLongitude(190), 1e-9)
	assert.InDelta(t, 170.0, geo.NormalizeLongitude(-190), 1e-9)
	assert.InDelta(t, -180.0, geo.NormalizeLongitude(180), 1e-9)
	assert.InDelta(t, 10.0, geo.NormalizeLongitude(370), 1e-9)
}

func TestRegionValidate(t *testing.T) {
	ok := geo.Region{Latitude: 43.26, Longitude: -2.93, LatitudeDelta: 0.05, LongitudeDelta: 0.05}
	require.NoError(t, ok.Validate())

	bad := []geo.Region{
		{Latitude: 95, LatitudeDelta: 1, LongitudeDelta: 1},
		{LatitudeDelta: 0, LongitudeDelta: 1},
		{LatitudeDelta: 1, LongitudeDelta: -1},
		{LatitudeDelta: 1, LongitudeDelta: math.NaN()},
		{LatitudeDelta: 1, LongitudeDelta: 400},
	}
	for _, r := range bad {
		assert.ErrorIs(t, r.Validate(), geo.ErrInvalidRegion, "%+v", r)
	}
}

func TestRegionBoundsContains(t *testing.T) {
	r := geo.Region{Latitude: 10, Longitude: 20, LatitudeDelta: 2, LongitudeDelta: 4}
	b := r.Bounds()

	assert.Equal(t, geo.Bounds{MinLat: 9, MaxLat: 11, MinLon: 18, MaxLon: 22}, b)
	assert.True(t, b.Contains(geo.Coordinate{Latitude: 10.5, Longitude: 21}))
	assert.False(t, b.Contains(geo.Coordinate{Latitude: 12, Longitude: 21}))
	assert.False(t, b.Contains(geo.Coordinate{Latitude: 10, Longitude: 23}))

	// crossing the antimeridian
	am := geo.Region{Latitude: 0, Longitude: 179, LatitudeDelta: 2, LongitudeDelta: 4}.Bounds()
	assert.True(t, am.Contains(geo.Coordinate{Latitude: 0, Longitude: -179}))
	assert.False(t, am.Contains(geo.Coordinate{Latitude: 0, Longitude: -170}))
}

func TestCenteredOn(t *testing.T) {
	r := geo.Region{Latitude: 1, Longitude: 2, LatitudeDelta: 0.1, LongitudeDelta: 0.2}
	moved := r.CenteredOn(geo.Coordinate{Latitude: 5, Longitude: 6})

	assert.Equal(t, geo.Region{Latitude: 5, Longitude: 6, LatitudeDelta: 0.1, LongitudeDelta: 0.2}, moved)
	assert.Equal(t, 1.0, r.Latitude)

	polar := r.CenteredOn(geo.Coordinate{Latitude: 90, Longitude: 180})
	assert.Equal(t, geo.MaxMercatorLat, polar.Latitude)
	assert.InDelta(t, -180.0, polar.Longitude, 1e-9)
	require.NoError(t, polar.Validate())
}

func TestFeaturePoint(t *testing.T) {
	f := geo.NewPoint("a", 43.26, -2.93, map[string]any{"title": "Bilbao"})

	lat, lon, ok := f.Point()
	require.True(t, ok)
	assert.Equal(t, 43.26, lat)
	assert.Equal(t, -2.93, lon)
	assert.Equal(t, "Bilbao", f.StringProperty("title"))
	assert.Empty(t, f.StringProperty("missing"))

	_, _, ok = geo.GeoJSONFeature{Geometry: geo.GeoJSONGeometry{Type: "LineString"}}.Point()
	assert.False(t, ok)
}
