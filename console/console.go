package console

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"go-fleetmap/aggregator"
	"go-fleetmap/generator"
	"go-fleetmap/mapview"
	"go-fleetmap/selection"
	"go-fleetmap/sidebar"
	"go-fleetmap/simulator"
	"go-fleetmap/types"
	"go-fleetmap/zones"
)

// Options configures a single console.
type Options struct {
	TaxiCount int
	Registry  *zones.Registry // cloned, the console owns its counters
	Rand      *rand.Rand
	Now       func() time.Time
	View      mapview.Options
}

// Console is the page-level owner of the live map state: the fleet, the zone counters,
// the filters and the map view. Every method takes the console lock, so ticks, HTTP calls
// and widget events are applied one at a time.
type Console struct {
	mu sync.Mutex

	id        string
	createdAt time.Time
	registry  *zones.Registry
	taxis     []types.Taxi
	zones     []types.Zone
	filters   *selection.State
	sim       *simulator.Simulator
	view      *mapview.View
	viewOpts  mapview.Options
	bearingFn mapview.BearingFunc
	bearing   float64 // of the current selection's fly-to
	ticks     int
	closed    bool
}

// New seeds a console with opts.TaxiCount generated taxis.
func New(id string, opts Options) *Console {
	opts = opts.withDefaults()
	c := newConsole(id, opts)
	c.taxis = generator.New(opts.Rand, opts.Now).Generate(opts.TaxiCount, c.registry)
	c.zones = c.registry.Zones()
	return c
}

// FromDocument builds a console from an existing set of zones and taxis.
func FromDocument(id string, doc types.MapDocument, opts Options) (*Console, error) {
	reg, err := zones.NewRegistry(doc.Zones)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	seen := make(map[string]struct{}, len(doc.Entities))
	for i, t := range doc.Entities {
		if t.ID == "" {
			return nil, fmt.Errorf("%w: taxi at index %d has no id", ErrInvalidDocument, i)
		}
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate taxi id %q", ErrInvalidDocument, t.ID)
		}
		if !t.Status.Valid() {
			return nil, fmt.Errorf("%w: taxi %s has unknown status %q", ErrInvalidDocument, t.ID, t.Status)
		}
		seen[t.ID] = struct{}{}
	}
	opts.Registry = reg
	opts = opts.withDefaults()

	c := newConsole(id, opts)
	c.taxis = make([]types.Taxi, len(doc.Entities))
	copy(c.taxis, doc.Entities)
	c.zones = aggregator.Apply(c.registry, c.taxis)
	return c, nil
}

func newConsole(id string, opts Options) *Console {
	return &Console{
		id:        id,
		createdAt: opts.Now(),
		registry:  opts.Registry.Clone(),
		filters:   selection.New(),
		sim:       simulator.New(opts.Rand, opts.Now),
		viewOpts:  opts.View,
		bearingFn: opts.View.Bearing,
	}
}

func (o Options) withDefaults() Options {
	if o.Registry == nil {
		o.Registry = zones.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(o.Now().UnixNano()))
	}
	if o.View.Now == nil {
		o.View.Now = o.Now
	}
	if o.View.Bearing == nil {
		o.View.Bearing = mapview.FixedBearing(0)
	}
	return o
}

func (c *Console) ID() string {
	return c.id
}

func (c *Console) CreatedAt() time.Time {
	return c.createdAt
}

// Tick runs one simulation step: move, recount, then render. A render failure never
// fails the tick, the data pass is kept.
func (c *Console) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.taxis = c.sim.Tick(c.taxis)
	c.zones = aggregator.Apply(c.registry, c.taxis)
	c.ticks++
	c.render()
}

func (c *Console) Ticks() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticks
}

func (c *Console) Taxis() []types.Taxi {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]types.Taxi, len(c.taxis))
	copy(out, c.taxis)
	return out
}

func (c *Console) Zones() []types.Zone {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]types.Zone, len(c.zones))
	copy(out, c.zones)
	return out
}

func (c *Console) Visible() []types.Taxi {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters.Visible(c.taxis, c.zones)
}

func (c *Console) Filters() selection.Filters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters.Snapshot()
}

// Document returns the zones and taxis as a MapDocument.
func (c *Console) Document() types.MapDocument {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc := types.MapDocument{
		Zones:    make([]types.Zone, len(c.zones)),
		Entities: make([]types.Taxi, len(c.taxis)),
	}
	copy(doc.Zones, c.zones)
	copy(doc.Entities, c.taxis)
	return doc
}

// SidebarInput snapshots everything a sidebar view reads, under a single lock.
func (c *Console) SidebarInput() sidebar.Input {
	c.mu.Lock()
	defer c.mu.Unlock()
	taxis := make([]types.Taxi, len(c.taxis))
	copy(taxis, c.taxis)
	zs := make([]types.Zone, len(c.zones))
	copy(zs, c.zones)
	return sidebar.Input{
		Zones:   zs,
		Taxis:   taxis,
		Visible: c.filters.Visible(c.taxis, c.zones),
		Filters: c.filters.Snapshot(),
	}
}

// Occupancy returns the current counters keyed by zone id and the fleet size.
func (c *Console) Occupancy() (map[string]int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	counts := make(map[string]int, len(c.zones))
	for _, z := range c.zones {
		counts[z.ID] = z.OccupancyCount
	}
	return counts, len(c.taxis)
}

// Select marks id as selected and flies the map to it when the selection changed.
func (c *Console) Select(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectLocked(id)
}

func (c *Console) selectLocked(id string) {
	prev, had := c.filters.Selected()
	c.filters.Select(id)
	if had && prev == id {
		return
	}
	c.bearing = c.bearingFn()
	if c.view == nil {
		return
	}
	target, ok := mapview.TargetAt(c.viewOpts, c.taxis, id, c.bearing)
	if !ok {
		return
	}
	if err := c.view.Fly(target); err != nil {
		c.logger().WithError(err).WithField("taxi_id", id).Warn("Skipping fly-to")
	}
}

func (c *Console) Deselect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters.Deselect()
}

// SelectedTaxi returns the selected taxi as of now. ok is false with no selection or an
// id missing from the fleet.
func (c *Console) SelectedTaxi() (types.Taxi, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.filters.Selected()
	if !ok {
		return types.Taxi{}, false
	}
	for _, t := range c.taxis {
		if t.ID == id {
			return t, true
		}
	}
	return types.Taxi{}, false
}

// FlyTo computes the camera target of the current selection from the current positions.
// The bearing is the one drawn when the selection was made, so reading it has no side effect.
func (c *Console) FlyTo() (mapview.FlyTo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.filters.Selected()
	if !ok {
		return mapview.FlyTo{}, false
	}
	return mapview.TargetAt(c.viewOpts, c.taxis, id, c.bearing)
}

func (c *Console) ToggleZoneFilter(zoneID string) {
	c.mutate(func(f *selection.State) { f.ToggleZoneFilter(zoneID) })
}

func (c *Console) SelectAllZones() {
	c.mutate(func(f *selection.State) { f.SelectAllZones(c.registry.IDs()) })
}

func (c *Console) ClearAllZones() {
	c.mutate(func(f *selection.State) { f.ClearAllZones() })
}

func (c *Console) SetStatusFilter(status types.TaxiStatus) {
	c.mutate(func(f *selection.State) { f.SetStatusFilter(status) })
}

func (c *Console) ClearStatusFilter() {
	c.mutate(func(f *selection.State) { f.ClearStatusFilter() })
}

func (c *Console) SetSearchQuery(q string) {
	c.mutate(func(f *selection.State) { f.SetSearchQuery(q) })
}

func (c *Console) mutate(fn func(*selection.State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.filters)
	c.render()
}

// AttachWidget gives the console a map widget, replacing (and closing) any previous one.
func (c *Console) AttachWidget(w mapview.Widget) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.view != nil {
		if err := c.view.Close(); err != nil {
			c.logger().WithError(err).Warn("Closing replaced map widget")
		}
		c.view = nil
	}

	v, err := mapview.New(w, c.viewOpts)
	if err != nil {
		return err
	}
	c.view = v
	return nil
}

// DetachWidget closes the current map view if it still belongs to w and reports whether it did.
// false means w was already replaced or the console was closed.
func (c *Console) DetachWidget(w mapview.Widget) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.view == nil || !c.view.Owns(w) {
		return false
	}
	if err := c.view.Close(); err != nil {
		c.logger().WithError(err).Warn("Closing map widget")
	}
	c.view = nil
	return true
}

// MarkLoaded records the widget's loaded event and draws the current markers.
func (c *Console) MarkLoaded() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.view == nil {
		return
	}
	c.view.Loaded()
	c.render()
}

// HandleClick applies a widget click to the selection.
func (c *Console) HandleClick(ev mapview.ClickEvent) mapview.ClickAction {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.view == nil {
		return mapview.ClickIgnore
	}
	action := c.view.HandleClick(ev)
	switch action {
	case mapview.ClickSelect:
		c.selectLocked(ev.TaxiID)
	case mapview.ClickDeselect:
		c.filters.Deselect()
	}
	return action
}

// Close releases the map widget. The console ignores ticks afterwards.
func (c *Console) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.view != nil {
		if err := c.view.Close(); err != nil {
			c.logger().WithError(err).Warn("Closing map widget")
		}
		c.view = nil
	}
}

// render mirrors the visible taxis on the widget. Must be called with c.mu held.
func (c *Console) render() {
	if c.view == nil {
		return
	}
	res, err := c.view.Sync(c.filters.Visible(c.taxis, c.zones))
	if errors.Is(err, mapview.ErrNotReady) {
		c.logger().Debug("Map widget not loaded, skipping render")
		return
	}
	if err != nil {
		c.logger().WithError(err).Warn("Render pass failed")
		return
	}
	if len(res.Added)+len(res.Removed) > 0 {
		c.logger().WithFields(log.Fields{
			"added":   len(res.Added),
			"updated": len(res.Updated),
			"removed": len(res.Removed),
		}).Debug("Markers synced")
	}
}

func (c *Console) logger() *log.Entry {
	return log.WithField("session_id", c.id)
}
