package markers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/woozymasta/mapview/internal/geo"

	"github.com/rs/zerolog/log"
)

// Source describes where markers come from. Inline data wins over Location.
type Source struct {
	Inline *geo.GeoJSONFeatureCollection
	// file path or http(s) URL
	Location string
}

// Load fetches a GeoJSON feature collection and converts it to markers.
// Features that are not valid points are skipped with a warning.
func Load(ctx context.Context, client *http.Client, src Source) ([]Marker, error) {
	var fc geo.GeoJSONFeatureCollection

	switch {
	case src.Inline != nil:
		log.Info().Int("features", len(src.Inline.Features)).Msg("Using inline markers data from config")
		fc = *src.Inline

	case strings.HasPrefix(src.Location, "http://") || strings.HasPrefix(src.Location, "https://"):
		log.Info().Str("source", src.Location).Msg("Downloading markers")
		var err error
		fc, err = fetch(ctx, client, src.Location)
		if err != nil {
			return nil, err
		}

	case src.Location != "":
		log.Info().Str("source", src.Location).Msg("Reading markers file")
		f, err := os.Open(src.Location)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()

		if fc, err = decode(f); err != nil {
			return nil, fmt.Errorf("decode %s: %w", src.Location, err)
		}

	default:
		return nil, nil
	}

	list := make([]Marker, 0, len(fc.Features))
	for i, f := range fc.Features {
		m, err := FromFeature(f)
		if err != nil {
			log.Warn().Err(err).Int("index", i).Msg("Skipping feature")
			continue
		}
		list = append(list, m)
	}

	return list, nil
}

// Save writes markers to path as a GeoJSON feature collection.
// The file is replaced atomically through a temporary file in the same directory.
func Save(path string, list []Marker) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".markers-*.geojson")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := json.NewEncoder(tmp).Encode(ToFeatureCollection(list)); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}

func fetch(ctx context.Context, client *http.Client, url string) (geo.GeoJSONFeatureCollection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return geo.GeoJSONFeatureCollection{}, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return geo.GeoJSONFeatureCollection{}, err
	}
	// Explicitly ignore close error as it's a read-only operation
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return geo.GeoJSONFeatureCollection{}, fmt.Errorf("status %d", resp.StatusCode)
	}

	return decode(resp.Body)
}

func decode(r io.Reader) (geo.GeoJSONFeatureCollection, error) {
	var fc geo.GeoJSONFeatureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return fc, err
	}
	if fc.Type != "FeatureCollection" {
		return fc, errors.New("not a FeatureCollection")
	}

	return fc, nil
}
