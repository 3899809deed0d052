package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/woozymasta/mapview/internal/config"
	"github.com/woozymasta/mapview/internal/markers"
	"github.com/woozymasta/mapview/internal/metrics"
	"github.com/woozymasta/mapview/internal/view"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// DefaultPollTimeout bounds how long a marker watch request waits for a change.
const DefaultPollTimeout = 25 * time.Second

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config   *config.Config
	Markers  *markers.Store
	View     *view.View
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer

	PollTimeout time.Duration

	// serializes writes of the marker store file
	persistMu     sync.Mutex
	savedRevision uint64
}

// NewServerContext builds the view from configuration and wires the marker store.
// reg receives the service collectors and is served on /metrics.
func NewServerContext(cfg *config.Config, store *markers.Store, reg *prometheus.Registry) (*ServerContext, error) {
	log.Info().Int("markers_count", store.Len()).Msg("Initializing server context")

	mapType, err := view.ParseMapType(cfg.View.MapType)
	if err != nil {
		return nil, err
	}

	v, err := view.New(view.Options{
		Attribution:   cfg.Attribution,
		MapType:       mapType,
		Region:        *cfg.View.Region,
		ViewportWidth: cfg.View.ViewportWidth,
		ShowsTraffic:  cfg.View.ShowsTraffic,
		ShowsPOI:      cfg.View.ShowsPOI,
		FollowUser:    cfg.View.FollowUser,
	})
	if err != nil {
		return nil, err
	}

	m := metrics.NewMetrics(reg)
	m.Markers.Set(float64(store.Len()))

	st := v.Snapshot()
	log.Info().
		Str("map_type", string(st.MapType)).
		Float64("lat", st.Region.Latitude).
		Float64("lon", st.Region.Longitude).
		Str("scale", st.Scale.Label).
		Msg("Server context initialized successfully")

	return &ServerContext{
		Config:      cfg,
		Markers:     store,
		View:        v,
		Metrics:     m,
		Gatherer:    reg,
		PollTimeout: DefaultPollTimeout,
	}, nil
}

// Routes returns the API mux wrapped in request logging.
func (s *ServerContext) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/scale", s.HandleScale)
	for _, format := range []string{"webp", "png", "svg"} {
		mux.HandleFunc("GET /api/scale."+format, s.HandleScaleImage(format))
	}

	mux.HandleFunc("GET /api/markers", s.HandleMarkersList)
	mux.HandleFunc("GET /api/watch/markers", s.HandleMarkersWatch)
	mux.HandleFunc("GET /api/markers/{id}", s.HandleMarkerGet)
	mux.HandleFunc("PUT /api/markers/{id}", s.HandleMarkerPut)
	mux.HandleFunc("DELETE /api/markers/{id}", s.HandleMarkerDelete)

	mux.HandleFunc("GET /api/view", s.HandleViewGet)
	mux.HandleFunc("PATCH /api/view", s.HandleViewPatch)
	mux.HandleFunc("PUT /api/view/region", s.HandleViewRegion)
	mux.HandleFunc("POST /api/view/location", s.HandleViewLocation)

	mux.Handle("GET /metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))

	return RequestLogger(s.Metrics, mux)
}
