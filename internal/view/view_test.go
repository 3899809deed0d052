package view_test

import (
	"math"
	"testing"

	"github.com/woozymasta/mapview/internal/geo"
	"github.com/woozymasta/mapview/internal/scale"
	"github.com/woozymasta/mapview/internal/view"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var equator = geo.Region{Latitude: 0, Longitude: 0, LatitudeDelta: 0.01, LongitudeDelta: 0.01}

func newView(t *testing.T, opts view.Options) *view.View {
	t.Helper()
	if opts.Region == (geo.Region{}) {
		opts.Region = equator
	}
	if opts.ViewportWidth == 0 {
		opts.ViewportWidth = 1000
	}

	v, err := view.New(opts)
	require.NoError(t, err)
	return v
}

func ptr[T any](v T) *T { return &v }

func TestNewDefaults(t *testing.T) {
	st := newView(t, view.Options{}).Snapshot()

	assert.Equal(t, view.MapStandard, st.MapType)
	assert.Equal(t, equator, st.Region)
	assert.Nil(t, st.UserLocation)
	assert.Equal(t, scale.Estimate(0, 0.01, 1000), st.Scale)
	assert.Equal(t, "100 m", st.Scale.Label)
}

func TestNewValidation(t *testing.T) {
	_, err := view.New(view.Options{MapType: "mars", Region: equator, ViewportWidth: 1})
	require.ErrorIs(t, err, view.ErrUnknownMapType)

	_, err = view.New(view.Options{Region: geo.Region{}, ViewportWidth: 1})
	require.ErrorIs(t, err, geo.ErrInvalidRegion)

	_, err = view.New(view.Options{Region: equator})
	require.Error(t, err)
}

func TestApply(t *testing.T) {
	v := newView(t, view.Options{})

	st, err := v.Apply(view.Patch{
		MapType:      ptr(view.MapHybrid),
		ShowsTraffic: ptr(true),
		ShowsPOI:     ptr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, view.MapHybrid, st.MapType)
	assert.True(t, st.ShowsTraffic)
	assert.True(t, st.ShowsPOI)
	assert.False(t, st.FollowUser)

	_, err = v.Apply(view.Patch{MapType: ptr(view.MapType("moon")), ShowsTraffic: ptr(false)})
	require.ErrorIs(t, err, view.ErrUnknownMapType)
	assert.True(t, v.Snapshot().ShowsTraffic, "invalid patch must not apply partially")
}

func TestFollowMode(t *testing.T) {
	v := newView(t, view.Options{})
	bilbao := view.Location{Coordinate: geo.Coordinate{Latitude: 43.263, Longitude: -2.935}}

	// not following, region stays
	st, err := v.ReportLocation(bilbao)
	require.NoError(t, err)
	assert.Equal(t, equator, st.Region)
	require.NotNil(t, st.UserLocation)
	assert.False(t, st.UserLocation.ReportedAt.IsZero())

	// enabling follow jumps to the last location
	st, err = v.Apply(view.Patch{FollowUser: ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, bilbao.Coordinate, st.Region.Center())
	assert.Equal(t, equator.LongitudeDelta, st.Region.LongitudeDelta)

	// new reports recenter
	madrid := view.Location{Coordinate: geo.Coordinate{Latitude: 40.4168, Longitude: -3.7038}}
	st, err = v.ReportLocation(madrid)
	require.NoError(t, err)
	assert.Equal(t, madrid.Coordinate, st.Region.Center())

	// user panning ends follow mode
	st, err = v.SetRegion(equator)
	require.NoError(t, err)
	assert.False(t, st.FollowUser)

	st, err = v.ReportLocation(bilbao)
	require.NoError(t, err)
	assert.Equal(t, equator, st.Region)
}

func TestReportLocationInvalid(t *testing.T) {
	v := newView(t, view.Options{})

	_, err := v.ReportLocation(view.Location{Coordinate: geo.Coordinate{Latitude: 200}})
	require.ErrorIs(t, err, geo.ErrInvalidCoordinate)
	assert.Nil(t, v.Snapshot().UserLocation)
}

func TestSetRegionRecomputesScale(t *testing.T) {
	v := newView(t, view.Options{})

	st, err := v.SetRegion(geo.Region{Latitude: 0, Longitude: 0, LatitudeDelta: 0.1, LongitudeDelta: 0.1})
	require.NoError(t, err)
	// 11.132 m/px, 1000 m is 89.8 px
	assert.Equal(t, 1000.0, st.Scale.DistanceMeters)
	assert.Equal(t, "1.0 km", st.Scale.Label)

	_, err = v.SetRegion(geo.Region{Latitude: 0, LatitudeDelta: 0.1})
	require.ErrorIs(t, err, geo.ErrInvalidRegion)

	require.NoError(t, v.SetViewportWidth(2000))
	require.Error(t, v.SetViewportWidth(0))
	assert.Equal(t, scale.Estimate(0, 0.1, 2000), v.Snapshot().Scale)
}

func TestParseMapType(t *testing.T) {
	for _, mt := range view.MapTypes {
		got, err := view.ParseMapType(string(mt))
		require.NoError(t, err)
		assert.Equal(t, mt, got)
	}

	_, err := view.ParseMapType("")
	require.ErrorIs(t, err, view.ErrUnknownMapType)
}

func TestSetRegionWidthAtomic(t *testing.T) {
	v := newView(t, view.Options{})
	before := v.Snapshot()

	_, err := v.SetRegionWidth(geo.Region{Latitude: 100, LatitudeDelta: 0.1, LongitudeDelta: 0.1}, 2000)
	require.ErrorIs(t, err, geo.ErrInvalidRegion)
	assert.Equal(t, before, v.Snapshot())

	_, err = v.SetRegionWidth(geo.Region{Latitude: 0, LatitudeDelta: 0.1, LongitudeDelta: 0.1}, 1e-320)
	require.ErrorIs(t, err, view.ErrInvalidViewport)
	assert.Equal(t, before, v.Snapshot())

	st, err := v.SetRegionWidth(geo.Region{Latitude: 0, LatitudeDelta: 0.1, LongitudeDelta: 0.1}, 2000)
	require.NoError(t, err)
	assert.Equal(t, scale.Estimate(0, 0.1, 2000), st.Scale)
}

func TestSetViewportWidthRejectsOverflow(t *testing.T) {
	v := newView(t, view.Options{})

	for _, px := range []float64{0, -1, 1e-320, math.Inf(1), math.NaN()} {
		require.ErrorIs(t, v.SetViewportWidth(px), view.ErrInvalidViewport, "px %v", px)
	}
	assert.Equal(t, "100 m", v.Snapshot().Scale.Label)

	_, err := view.New(view.Options{Region: equator, ViewportWidth: 1e-320})
	require.ErrorIs(t, err, view.ErrInvalidViewport)
}

func TestFollowModeNearPole(t *testing.T) {
	v := newView(t, view.Options{FollowUser: true})

	st, err := v.ReportLocation(view.Location{Coordinate: geo.Coordinate{Latitude: 90, Longitude: 180}})
	require.NoError(t, err)

	assert.Equal(t, 90.0, st.UserLocation.Latitude)
	assert.Equal(t, geo.MaxMercatorLat, st.Region.Latitude)
	assert.InDelta(t, -180.0, st.Region.Longitude, 1e-9)
	assert.True(t, scale.EstimateRegion(st.Region, 1000) == st.Scale)
}

func TestAttribution(t *testing.T) {
	v := newView(t, view.Options{Attribution: "© OpenStreetMap contributors"})
	assert.Equal(t, "© OpenStreetMap contributors", v.Snapshot().Attribution)
}
