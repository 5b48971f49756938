package zones

import (
	"errors"
	"fmt"

	"go-fleetmap/types"
)

var (
	ErrDuplicateZone = errors.New("duplicate zone id")
	ErrEmptyZoneID   = errors.New("empty zone id")
)

// Registry is the ordered, fixed list of zones a console works with.
// Declaration order is preserved and ids never change; only the occupancy counters are rewritten.
type Registry struct {
	zones []types.Zone
	index map[string]int
}

// NewRegistry copies zs into a registry, rejecting empty or repeated ids.
func NewRegistry(zs []types.Zone) (*Registry, error) {
	r := &Registry{
		zones: make([]types.Zone, len(zs)),
		index: make(map[string]int, len(zs)),
	}
	for i, z := range zs {
		if z.ID == "" {
			return nil, fmt.Errorf("zone at index %d: %w", i, ErrEmptyZoneID)
		}
		if _, ok := r.index[z.ID]; ok {
			return nil, fmt.Errorf("zone %q: %w", z.ID, ErrDuplicateZone)
		}
		r.index[z.ID] = i
		r.zones[i] = z
	}
	return r, nil
}

func (r *Registry) Len() int {
	return len(r.zones)
}

// At returns the zone at position i in declaration order.
func (r *Registry) At(i int) types.Zone {
	return r.zones[i]
}

// Zones returns a copy of the zones, counters included.
func (r *Registry) Zones() []types.Zone {
	out := make([]types.Zone, len(r.zones))
	copy(out, r.zones)
	return out
}

func (r *Registry) IDs() []string {
	ids := make([]string, len(r.zones))
	for i, z := range r.zones {
		ids[i] = z.ID
	}
	return ids
}

func (r *Registry) Lookup(id string) (types.Zone, bool) {
	i, ok := r.index[id]
	if !ok {
		return types.Zone{}, false
	}
	return r.zones[i], true
}

// StoreCounts overwrites the occupancy counter of every known zone with the value carried by zs.
// Zones of zs that are not registered are ignored. Registered zones missing from zs are reset to 0.
func (r *Registry) StoreCounts(zs []types.Zone) {
	for i := range r.zones {
		r.zones[i].OccupancyCount = 0
	}
	for _, z := range zs {
		if i, ok := r.index[z.ID]; ok {
			r.zones[i].OccupancyCount = z.OccupancyCount
		}
	}
}

// Clone returns an independent registry so that each console owns its own counters.
func (r *Registry) Clone() *Registry {
	c := &Registry{
		zones: r.Zones(),
		index: make(map[string]int, len(r.index)),
	}
	for k, v := range r.index {
		c.index[k] = v
	}
	return c
}
