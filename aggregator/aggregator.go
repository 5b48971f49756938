package aggregator

import (
	"go-fleetmap/types"
	"go-fleetmap/zones"
)

// Recompute returns a copy of zs whose OccupancyCount is the number of taxis assigned to each zone.
// Counters are rebuilt from zero on every call. Taxis pointing at an unknown zone are skipped.
func Recompute(taxis []types.Taxi, zs []types.Zone) []types.Zone {
	out := make([]types.Zone, len(zs))
	index := make(map[string]int, len(zs))
	for i, z := range zs {
		z.OccupancyCount = 0
		out[i] = z
		index[z.ID] = i
	}

	for _, t := range taxis {
		i, ok := index[t.ZoneID]
		if !ok {
			continue
		}
		out[i].OccupancyCount++
	}
	return out
}

// Apply recomputes the counters of reg from taxis, stores them back and returns the new zone list.
func Apply(reg *zones.Registry, taxis []types.Taxi) []types.Zone {
	zs := Recompute(taxis, reg.Zones())
	reg.StoreCounts(zs)
	return zs
}

// Counts is Recompute keyed by zone id.
func Counts(taxis []types.Taxi, zs []types.Zone) map[string]int {
	counts := make(map[string]int, len(zs))
	for _, z := range Recompute(taxis, zs) {
		counts[z.ID] = z.OccupancyCount
	}
	return counts
}
