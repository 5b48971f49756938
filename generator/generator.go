package generator

import (
	"fmt"
	"math/rand"
	"time"

	"go-fleetmap/aggregator"
	"go-fleetmap/types"
	"go-fleetmap/zones"
)

// PlacementSpan is the width in degrees of the uniform jitter applied around a zone center
// on each axis, so a taxi starts at most PlacementSpan/2 away from its center.
const PlacementSpan = 0.03

// Generator creates the initial fleet of a console. Ids are sequential per generator.
type Generator struct {
	rng        *rand.Rand
	now        func() time.Time
	firstNames []string
	lastNames  []string
	seq        int
}

func New(rng *rand.Rand, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{
		rng:        rng,
		now:        now,
		firstNames: firstNames,
		lastNames:  lastNames,
	}
}

// Generate places count taxis in zones drawn uniformly from reg and initialises the
// occupancy counters of reg. A non-positive count or an empty registry yields an empty fleet.
func (g *Generator) Generate(count int, reg *zones.Registry) []types.Taxi {
	if count <= 0 || reg.Len() == 0 {
		aggregator.Apply(reg, nil)
		return []types.Taxi{}
	}

	taxis := make([]types.Taxi, 0, count)
	for i := 0; i < count; i++ {
		zone := reg.At(g.rng.Intn(reg.Len()))
		position := zone.Center
		position[0] += (g.rng.Float64() - 0.5) * PlacementSpan
		position[1] += (g.rng.Float64() - 0.5) * PlacementSpan

		g.seq++
		taxis = append(taxis, types.Taxi{
			ID:          fmt.Sprintf("taxi-%d", g.seq),
			DisplayName: g.displayName(),
			Position:    position,
			ZoneID:      zone.ID,
			Status:      types.StatusAvailable,
			LastUpdated: g.now(),
		})
	}

	aggregator.Apply(reg, taxis)
	return taxis
}

func (g *Generator) displayName() string {
	first := g.firstNames[g.rng.Intn(len(g.firstNames))]
	last := g.lastNames[g.rng.Intn(len(g.lastNames))]
	return first + " " + last
}
