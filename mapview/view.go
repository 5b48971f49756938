package mapview

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/paulmach/orb"

	"go-fleetmap/types"
)

var (
	ErrNotReady = errors.New("map widget not loaded")
	ErrClosed   = errors.New("map view closed")
)

const (
	DefaultFlyToZoom   = 15.0
	DefaultFlyToPitch  = 45.0
	DefaultClickWindow = 250 * time.Millisecond
)

// BrusselsViewport is the camera the console opens on.
var BrusselsViewport = Viewport{
	Style:   "mapbox://styles/mapbox/dark-v11",
	Center:  orb.Point{4.3517, 50.8503},
	Zoom:    11.5,
	Pitch:   45,
	Bearing: 0,
}

// BearingFunc returns the camera bearing in degrees for the next fly-to.
type BearingFunc func() float64

// RandomBearing draws a bearing uniformly in [0, 360).
func RandomBearing(rng *rand.Rand) BearingFunc {
	return func() float64 {
		return rng.Float64() * 360
	}
}

// FixedBearing always returns deg.
func FixedBearing(deg float64) BearingFunc {
	return func() float64 {
		return deg
	}
}

type Options struct {
	Viewport    Viewport
	FlyToZoom   float64
	FlyToPitch  float64
	Bearing     BearingFunc
	ClickWindow time.Duration
	Now         func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Viewport == (Viewport{}) {
		o.Viewport = BrusselsViewport
	}
	if o.FlyToZoom == 0 {
		o.FlyToZoom = DefaultFlyToZoom
	}
	if o.FlyToPitch == 0 {
		o.FlyToPitch = DefaultFlyToPitch
	}
	if o.Bearing == nil {
		o.Bearing = FixedBearing(0)
	}
	if o.ClickWindow == 0 {
		o.ClickWindow = DefaultClickWindow
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// SyncResult lists the marker operations one Sync issued.
type SyncResult struct {
	Added   []string `json:"added"`
	Updated []string `json:"updated"`
	Removed []string `json:"removed"`
}

// View mirrors the visible taxis onto a Widget. It is not safe for concurrent use.
type View struct {
	widget          Widget
	opts            Options
	ready           bool
	closed          bool
	markers         map[string]Marker
	lastMarkerClick time.Time
}

// New hands the initial viewport to w. Markers can be attached only after Loaded.
func New(w Widget, opts Options) (*View, error) {
	opts = opts.withDefaults()
	v := &View{
		widget:  w,
		opts:    opts,
		markers: make(map[string]Marker),
	}
	if err := w.Init(opts.Viewport); err != nil {
		return nil, fmt.Errorf("initialising map widget: %w", err)
	}
	return v, nil
}

// Loaded records the widget's "loaded" event.
func (v *View) Loaded() {
	if v.closed {
		return
	}
	v.ready = true
}

func (v *View) Ready() bool {
	return v.ready && !v.closed
}

// MarkerCount is the number of markers currently on the widget.
func (v *View) MarkerCount() int {
	return len(v.markers)
}

// Sync makes the widget show exactly one marker per taxi of visible.
func (v *View) Sync(visible []types.Taxi) (SyncResult, error) {
	var res SyncResult
	if v.closed {
		return res, ErrClosed
	}
	if !v.ready {
		return res, ErrNotReady
	}

	seen := make(map[string]struct{}, len(visible))
	for _, t := range visible {
		seen[t.ID] = struct{}{}
		style, ok := StyleFor(t.Status)
		if !ok {
			return res, fmt.Errorf("taxi %s: no marker style for status %q", t.ID, t.Status)
		}
		m := Marker{
			TaxiID:      t.ID,
			DisplayName: t.DisplayName,
			Position:    t.Position,
			Style:       style,
		}

		prev, exists := v.markers[t.ID]
		switch {
		case !exists:
			if err := v.widget.AddMarker(m); err != nil {
				return res, fmt.Errorf("adding marker %s: %w", t.ID, err)
			}
			res.Added = append(res.Added, t.ID)
		case prev != m:
			if err := v.widget.UpdateMarker(m); err != nil {
				return res, fmt.Errorf("updating marker %s: %w", t.ID, err)
			}
			res.Updated = append(res.Updated, t.ID)
		default:
			continue
		}
		v.markers[t.ID] = m
	}

	stale := make([]string, 0)
	for id := range v.markers {
		if _, ok := seen[id]; !ok {
			stale = append(stale, id)
		}
	}
	sort.Strings(stale)
	for _, id := range stale {
		if err := v.widget.RemoveMarker(id); err != nil {
			return res, fmt.Errorf("removing marker %s: %w", id, err)
		}
		delete(v.markers, id)
		res.Removed = append(res.Removed, id)
	}

	return res, nil
}

// Target computes the fly-to for taxi id from its current position in taxis.
func (v *View) Target(taxis []types.Taxi, id string) (FlyTo, bool) {
	return ComputeTarget(v.opts, taxis, id)
}

// ComputeTarget is Target without a widget, for callers that only need the camera.
func ComputeTarget(opts Options, taxis []types.Taxi, id string) (FlyTo, bool) {
	opts = opts.withDefaults()
	return TargetAt(opts, taxis, id, opts.Bearing())
}

// TargetAt computes the fly-to for taxi id with a bearing chosen by the caller.
// It draws nothing from opts.Bearing.
func TargetAt(opts Options, taxis []types.Taxi, id string, bearing float64) (FlyTo, bool) {
	opts = opts.withDefaults()
	for _, t := range taxis {
		if t.ID != id {
			continue
		}
		return FlyTo{
			TaxiID:  t.ID,
			Center:  t.Position,
			Zoom:    opts.FlyToZoom,
			Pitch:   opts.FlyToPitch,
			Bearing: bearing,
		}, true
	}
	return FlyTo{}, false
}

// Focus issues one fly-to towards taxi id. An unknown id is not an error, nothing happens.
func (v *View) Focus(taxis []types.Taxi, id string) error {
	if v.closed {
		return ErrClosed
	}
	if !v.ready {
		return ErrNotReady
	}
	target, ok := v.Target(taxis, id)
	if !ok {
		return nil
	}
	return v.Fly(target)
}

// Fly sends an already computed camera transition to the widget.
func (v *View) Fly(target FlyTo) error {
	if v.closed {
		return ErrClosed
	}
	if !v.ready {
		return ErrNotReady
	}
	if err := v.widget.FlyTo(target); err != nil {
		return fmt.Errorf("flying to %s: %w", target.TaxiID, err)
	}
	return nil
}

// Close releases the widget. Calling it again is a no-op.
func (v *View) Close() error {
	if v.closed {
		return nil
	}
	v.closed = true
	v.ready = false
	v.markers = make(map[string]Marker)
	return v.widget.Close()
}

// Owns reports whether w is the widget of this view.
func (v *View) Owns(w Widget) bool {
	return v.widget == w
}
