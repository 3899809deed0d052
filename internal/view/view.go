// Package view keeps the view-control state of the map screen.
package view

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/woozymasta/mapview/internal/geo"
	"github.com/woozymasta/mapview/internal/scale"

	"github.com/rs/zerolog/log"
)

// MapType is the base layer style.
type MapType string

// Supported map types.
const (
	MapStandard  MapType = "standard"
	MapSatellite MapType = "satellite"
	MapHybrid    MapType = "hybrid"
	MapTerrain   MapType = "terrain"
)

// MapTypes lists supported map types in menu order.
var MapTypes = []MapType{MapStandard, MapSatellite, MapHybrid, MapTerrain}

var (
	// ErrUnknownMapType is returned for map types not in MapTypes.
	ErrUnknownMapType = errors.New("unknown map type")
	// ErrInvalidViewport is returned when a region and pixel width give no usable scale.
	ErrInvalidViewport = errors.New("invalid viewport")
)

// ParseMapType validates a map type name.
func ParseMapType(s string) (MapType, error) {
	t := MapType(s)
	if !slices.Contains(MapTypes, t) {
		return "", fmt.Errorf("%w: %q", ErrUnknownMapType, s)
	}

	return t, nil
}

// Location is a device position report from the geolocation provider.
type Location struct {
	ReportedAt time.Time `json:"reported_at"`
	geo.Coordinate
	Accuracy float64 `json:"accuracy,omitempty"` // meters
}

// State is a point-in-time copy of the view.
type State struct {
	UserLocation *Location    `json:"user_location,omitempty"`
	Attribution  string       `json:"attribution,omitempty"`
	MapType      MapType      `json:"map_type"`
	Region       geo.Region   `json:"region"`
	Scale        scale.Result `json:"scale"`
	ShowsTraffic bool         `json:"shows_traffic"`
	ShowsPOI     bool         `json:"shows_poi"`
	FollowUser   bool         `json:"follow_user"`
}

// Options configures a new View.
type Options struct {
	Attribution   string
	MapType       MapType
	Region        geo.Region
	ViewportWidth float64
	ShowsTraffic  bool
	ShowsPOI      bool
	FollowUser    bool
}

// Patch carries optional changes to the view controls; nil fields are left as is.
type Patch struct {
	MapType      *MapType `json:"map_type,omitempty"`
	ShowsTraffic *bool    `json:"shows_traffic,omitempty"`
	ShowsPOI     *bool    `json:"shows_poi,omitempty"`
	FollowUser   *bool    `json:"follow_user,omitempty"`
}

// View holds the mutable view state. It is safe for concurrent use.
type View struct {
	location      *Location
	attribution   string
	mapType       MapType
	region        geo.Region
	viewportWidth float64
	showsTraffic  bool
	showsPOI      bool
	followUser    bool
	mu            sync.RWMutex
}

// New validates opts and returns a view.
func New(opts Options) (*View, error) {
	if opts.MapType == "" {
		opts.MapType = MapStandard
	}
	if _, err := ParseMapType(string(opts.MapType)); err != nil {
		return nil, err
	}
	if err := opts.Region.Validate(); err != nil {
		return nil, err
	}
	if err := checkViewport(opts.Region, opts.ViewportWidth); err != nil {
		return nil, err
	}

	return &View{
		attribution:   opts.Attribution,
		mapType:       opts.MapType,
		region:        opts.Region,
		viewportWidth: opts.ViewportWidth,
		showsTraffic:  opts.ShowsTraffic,
		showsPOI:      opts.ShowsPOI,
		followUser:    opts.FollowUser,
	}, nil
}

// Snapshot returns the current state with the scale for the configured viewport width.
func (v *View) Snapshot() State {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.snapshot()
}

// Apply changes view controls. Turning follow mode on recenters on the last
// known location. Nothing changes if the patch is invalid.
func (v *View) Apply(p Patch) (State, error) {
	if p.MapType != nil {
		if _, err := ParseMapType(string(*p.MapType)); err != nil {
			return State{}, err
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if p.MapType != nil {
		v.mapType = *p.MapType
	}
	if p.ShowsTraffic != nil {
		v.showsTraffic = *p.ShowsTraffic
	}
	if p.ShowsPOI != nil {
		v.showsPOI = *p.ShowsPOI
	}
	if p.FollowUser != nil {
		v.followUser = *p.FollowUser
		if v.followUser && v.location != nil {
			v.region = v.region.CenteredOn(v.location.Coordinate)
		}
	}

	log.Debug().
		Str("map_type", string(v.mapType)).
		Bool("traffic", v.showsTraffic).
		Bool("poi", v.showsPOI).
		Bool("follow", v.followUser).
		Msg("View controls changed")

	return v.snapshot(), nil
}

// SetRegion records a user pan or zoom. A user-driven region change ends follow mode.
func (v *View) SetRegion(r geo.Region) (State, error) {
	if err := r.Validate(); err != nil {
		return State{}, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	return v.setRegion(r, v.viewportWidth)
}

// SetRegionWidth is SetRegion that also changes the viewport pixel width.
// Neither changes unless both are valid.
func (v *View) SetRegionWidth(r geo.Region, px float64) (State, error) {
	if err := r.Validate(); err != nil {
		return State{}, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	return v.setRegion(r, px)
}

// SetViewportWidth changes the pixel width used for scale estimation.
func (v *View) SetViewportWidth(px float64) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := checkViewport(v.region, px); err != nil {
		return err
	}
	v.viewportWidth = px

	return nil
}

// ReportLocation stores a device location. With follow mode on the region is
// recentered on it, keeping the current zoom.
func (v *View) ReportLocation(loc Location) (State, error) {
	if err := loc.Validate(); err != nil {
		return State{}, err
	}
	if loc.ReportedAt.IsZero() {
		loc.ReportedAt = time.Now().UTC()
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.location = &loc
	if v.followUser {
		v.region = v.region.CenteredOn(loc.Coordinate)
	}

	return v.snapshot(), nil
}

// setRegion must be called with mu held for writing.
func (v *View) setRegion(r geo.Region, px float64) (State, error) {
	if err := checkViewport(r, px); err != nil {
		return State{}, err
	}

	v.region = r
	v.viewportWidth = px
	if v.followUser {
		v.followUser = false
		log.Debug().Msg("Follow mode disabled by region change")
	}

	return v.snapshot(), nil
}

// snapshot must be called with mu held.
func (v *View) snapshot() State {
	st := State{
		Attribution:  v.attribution,
		MapType:      v.mapType,
		Region:       v.region,
		ShowsTraffic: v.showsTraffic,
		ShowsPOI:     v.showsPOI,
		FollowUser:   v.followUser,
		Scale:        scale.EstimateRegion(v.region, v.viewportWidth),
	}
	if v.location != nil {
		loc := *v.location
		st.UserLocation = &loc
	}

	return st
}

func checkViewport(r geo.Region, px float64) error {
	if !scale.RegionViewport(r, px).Valid() {
		return fmt.Errorf("%w: width %v px over %v degrees", ErrInvalidViewport, px, r.LongitudeDelta)
	}

	return nil
}
