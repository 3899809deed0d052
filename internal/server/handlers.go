// Package server handles HTTP requests and middleware.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/woozymasta/mapview/internal/geo"
	"github.com/woozymasta/mapview/internal/markers"
	"github.com/woozymasta/mapview/internal/render"
	"github.com/woozymasta/mapview/internal/scale"
	"github.com/woozymasta/mapview/internal/view"

	"github.com/rs/zerolog/log"
)

const (
	etagCap      = 32
	maxBodyBytes = 1 << 20
)

type errorResponse struct {
	Error string `json:"error"`
}

// HandleScale serves the scale indicator for ?lat=&span=&width= as JSON.
func (s *ServerContext) HandleScale(w http.ResponseWriter, r *http.Request) {
	vp, ok := s.viewport(w, r)
	if !ok {
		return
	}

	res := scale.EstimateViewport(vp)
	s.observeScale("json", res)
	writeJSON(w, http.StatusOK, res)
}

// HandleScaleImage serves the scale indicator rendered in format (webp, png or svg).
func (s *ServerContext) HandleScaleImage(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vp, ok := s.viewport(w, r)
		if !ok {
			return
		}

		res := scale.EstimateViewport(vp)
		s.observeScale(format, res)

		var (
			buf         bytes.Buffer
			err         error
			contentType string
		)
		switch format {
		case "webp":
			contentType = "image/webp"
			err = render.EncodeWebP(&buf, res, render.DefaultOptions)
		case "png":
			contentType = "image/png"
			err = render.EncodePNG(&buf, res, render.DefaultOptions)
		case "svg":
			contentType = "image/svg+xml"
			var out []byte
			out, err = render.SVG(res, render.DefaultOptions)
			buf.Write(out)
		default:
			http.NotFound(w, r)
			return
		}
		if err != nil {
			log.Error().Err(err).Str("format", format).Msg("Failed to render scale bar")
			writeError(w, http.StatusInternalServerError, "render failed")
			return
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "public, max-age=3600")
		_, _ = w.Write(buf.Bytes())
	}
}

// HandleMarkersList serves all markers, or those inside ?region=lat,lon,latDelta,lonDelta,
// as GeoJSON. The store revision is used as ETag.
func (s *ServerContext) HandleMarkersList(w http.ResponseWriter, r *http.Request) {
	list, rev := s.Markers.List()

	if raw := r.URL.Query().Get("region"); raw != "" {
		region, err := parseRegion(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		list = s.Markers.Within(region.Bounds())
	}

	buf := make([]byte, 0, etagCap)
	buf = append(buf, '"', 'm')
	buf = strconv.AppendUint(buf, rev, 16)
	buf = append(buf, '"')
	etag := string(buf)

	// check If-None-Match (client sent ETag)
	if r.URL.RawQuery == "" && etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if r.URL.RawQuery == "" {
		w.Header().Set("ETag", etag)
	}
	w.Header().Set("Cache-Control", "public, no-cache")
	w.Header().Set("Content-Type", "application/geo+json")
	_ = json.NewEncoder(w).Encode(markers.ToFeatureCollection(list))
}

type watchResponse struct {
	Revision uint64 `json:"revision"`
}

// HandleMarkersWatch long-polls for marker changes: it answers with the store
// revision as soon as it is newer than ?since=, or 204 after PollTimeout.
func (s *ServerContext) HandleMarkersWatch(w http.ResponseWriter, r *http.Request) {
	since, err := strconv.ParseUint(r.URL.Query().Get("since"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "since: want a revision number")
		return
	}

	// subscribe before reading the revision so no change slips in between
	updates, cancel := s.Markers.Subscribe()
	defer cancel()

	if rev := s.Markers.Revision(); rev > since {
		writeJSON(w, http.StatusOK, watchResponse{Revision: rev})
		return
	}

	timer := time.NewTimer(s.PollTimeout)
	defer timer.Stop()

	for {
		select {
		case rev := <-updates:
			if rev > since {
				writeJSON(w, http.StatusOK, watchResponse{Revision: rev})
				return
			}
		case <-timer.C:
			w.WriteHeader(http.StatusNoContent)
			return
		case <-r.Context().Done():
			return
		}
	}
}

// HandleMarkerGet serves one marker.
func (s *ServerContext) HandleMarkerGet(w http.ResponseWriter, r *http.Request) {
	m, err := s.Markers.Get(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, m)
}

// HandleMarkerPut creates or replaces a marker. The path id wins over the body id.
func (s *ServerContext) HandleMarkerPut(w http.ResponseWriter, r *http.Request) {
	var m markers.Marker
	if !decodeBody(w, r, &m) {
		return
	}
	m.ID = r.PathValue("id")

	created, err := s.Markers.Upsert(m)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	op, status := "update", http.StatusOK
	if created {
		op, status = "create", http.StatusCreated
	}
	s.afterMarkerMutation(op)

	writeJSON(w, status, m)
}

// HandleMarkerDelete removes a marker.
func (s *ServerContext) HandleMarkerDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.Markers.Delete(r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	s.afterMarkerMutation("delete")

	w.WriteHeader(http.StatusNoContent)
}

// HandleViewGet serves the current view state.
func (s *ServerContext) HandleViewGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.View.Snapshot())
}

// HandleViewPatch changes map type and toggles.
func (s *ServerContext) HandleViewPatch(w http.ResponseWriter, r *http.Request) {
	var p view.Patch
	if !decodeBody(w, r, &p) {
		return
	}

	st, err := s.View.Apply(p)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.Metrics.ViewChanges.WithLabelValues("controls").Inc()

	writeJSON(w, http.StatusOK, st)
}

// HandleViewRegion records a user pan/zoom. ?width= updates the viewport pixel width.
func (s *ServerContext) HandleViewRegion(w http.ResponseWriter, r *http.Request) {
	var region geo.Region
	if !decodeBody(w, r, &region) {
		return
	}

	var (
		st  view.State
		err error
	)
	if raw := r.URL.Query().Get("width"); raw != "" {
		px, perr := strconv.ParseFloat(raw, 64)
		if perr != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("width: %v", perr))
			return
		}
		st, err = s.View.SetRegionWidth(region, px)
	} else {
		st, err = s.View.SetRegion(region)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.Metrics.ViewChanges.WithLabelValues("region").Inc()
	s.observeScale("view", st.Scale)

	writeJSON(w, http.StatusOK, st)
}

// HandleViewLocation accepts a device location report.
func (s *ServerContext) HandleViewLocation(w http.ResponseWriter, r *http.Request) {
	var loc view.Location
	if !decodeBody(w, r, &loc) {
		return
	}

	st, err := s.View.ReportLocation(loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.Metrics.ViewChanges.WithLabelValues("location").Inc()

	writeJSON(w, http.StatusOK, st)
}

// viewport parses and validates scale query parameters, writing 400 on failure.
func (s *ServerContext) viewport(w http.ResponseWriter, r *http.Request) (scale.Viewport, bool) {
	q := r.URL.Query()

	var vp scale.Viewport
	fields := []struct {
		name string
		dst  *float64
	}{
		{"lat", &vp.CenterLatitude},
		{"span", &vp.LongitudeSpan},
		{"width", &vp.WidthPixels},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(q.Get(f.name), 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("%s: invalid number %q", f.name, q.Get(f.name)))
			return vp, false
		}
		*f.dst = v
	}

	if !vp.Valid() {
		writeError(w, http.StatusBadRequest, "viewport must have latitude in [-90,90] and positive span and width")
		return vp, false
	}

	return vp, true
}

func (s *ServerContext) observeScale(format string, res scale.Result) {
	s.Metrics.ScaleEstimates.WithLabelValues(format).Inc()
	s.Metrics.ScaleDistance.Observe(res.DistanceMeters)
}

// afterMarkerMutation updates metrics and writes the store back to disk when configured.
func (s *ServerContext) afterMarkerMutation(op string) {
	s.Metrics.MarkerMutations.WithLabelValues(op).Inc()
	s.Metrics.Markers.Set(float64(s.Markers.Len()))

	if s.Config.MarkersStore == "" {
		return
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	// listed under the lock, so the last writer always saves the newest state
	list, rev := s.Markers.List()
	if rev <= s.savedRevision {
		return
	}
	if err := markers.Save(s.Config.MarkersStore, list); err != nil {
		log.Error().Err(err).Str("path", s.Config.MarkersStore).Msg("Failed to persist markers")
		return
	}
	s.savedRevision = rev
	log.Debug().Str("path", s.Config.MarkersStore).Uint64("revision", rev).Msg("Markers persisted")
}

// etagMatches checks an If-None-Match header value against etag.
func etagMatches(header, etag string) bool {
	for _, tag := range strings.Split(header, ",") {
		tag = strings.TrimPrefix(strings.TrimSpace(tag), "W/")
		if tag == "*" || tag == etag {
			return true
		}
	}

	return false
}

func parseRegion(raw string) (geo.Region, error) {
	var vals [4]float64
	parts := strings.Split(raw, ",")
	if len(parts) != len(vals) {
		return geo.Region{}, errors.New("region: want lat,lon,latDelta,lonDelta")
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geo.Region{}, fmt.Errorf("region: %w", err)
		}
		vals[i] = v
	}

	region := geo.Region{Latitude: vals[0], Longitude: vals[1], LatitudeDelta: vals[2], LongitudeDelta: vals[3]}
	return region, region.Validate()
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid body: %v", err))
		return false
	}

	return true
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, markers.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, markers.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Error().Err(err).Msg("Marker store failure")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Ignoring error as we cannot handle client disconnects
	_, _ = w.Write(buf.Bytes())
}
