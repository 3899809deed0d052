package markers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/woozymasta/mapview/internal/geo"
	"github.com/woozymasta/mapview/internal/markers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const featuresJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": "sol", "geometry": {"type": "Point", "coordinates": [-3.7038, 40.4168]},
     "properties": {"title": "Puerta del Sol", "type": "Plaza"}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [-2.934, 43.2687]},
     "properties": {"name": "Guggenheim"}},
    {"type": "Feature", "geometry": {"type": "LineString", "coordinates": [0, 0]}, "properties": {}}
  ]
}`

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "markers.geojson")
	require.NoError(t, os.WriteFile(path, []byte(featuresJSON), 0o644))

	list, err := markers.Load(context.Background(), http.DefaultClient, markers.Source{Location: path})
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, markers.Marker{
		ID: "sol", Title: "Puerta del Sol", Type: "plaza", Latitude: 40.4168, Longitude: -3.7038,
	}, list[0])
	assert.Equal(t, "Guggenheim", list[1].ID)
	assert.Equal(t, "Guggenheim", list[1].Title)
}

func TestLoadURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/markers.geojson" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = w.Write([]byte(featuresJSON))
	}))
	defer srv.Close()

	list, err := markers.Load(context.Background(), srv.Client(), markers.Source{Location: srv.URL + "/markers.geojson"})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = markers.Load(context.Background(), srv.Client(), markers.Source{Location: srv.URL + "/missing"})
	require.ErrorContains(t, err, "status 404")
}

func TestLoadInlineWins(t *testing.T) {
	fc := geo.NewFeatureCollection(1)
	fc.Features = append(fc.Features, geo.NewPoint("inline", 1, 2, map[string]any{"title": "Inline"}))

	list, err := markers.Load(context.Background(), nil, markers.Source{Inline: &fc, Location: "/does/not/exist"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "inline", list[0].ID)

	list, err = markers.Load(context.Background(), nil, markers.Source{})
	require.NoError(t, err)
	assert.Nil(t, list)
}

func TestLoadRejectsNonCollection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.geojson")
	require.NoError(t, os.WriteFile(path, []byte(`{"type":"Feature"}`), 0o644))

	_, err := markers.Load(context.Background(), nil, markers.Source{Location: path})
	require.ErrorContains(t, err, "not a FeatureCollection")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "markers.geojson")
	want := sample()

	require.NoError(t, markers.Save(path, want))

	got, err := markers.Load(context.Background(), nil, markers.Source{Location: path})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
