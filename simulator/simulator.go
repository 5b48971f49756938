package simulator

import (
	"math/rand"
	"time"

	"go-fleetmap/types"
)

const (
	// MoveProbability is the chance for a taxi to move during one tick.
	MoveProbability = 0.2
	// StepSpan is the width in degrees of the uniform step on each axis.
	StepSpan = 0.005
)

// Simulator perturbs taxi positions to imitate live telemetry. It owns no timer.
type Simulator struct {
	rng *rand.Rand
	now func() time.Time
}

func New(rng *rand.Rand, now func() time.Time) *Simulator {
	if now == nil {
		now = time.Now
	}
	return &Simulator{rng: rng, now: now}
}

// Tick returns a new slice where each taxi moved with probability MoveProbability.
// The argument is left untouched and taxis that did not move are copied as is.
func (s *Simulator) Tick(taxis []types.Taxi) []types.Taxi {
	out := make([]types.Taxi, len(taxis))
	for i, t := range taxis {
		if s.rng.Float64() >= MoveProbability {
			out[i] = t
			continue
		}

		t.Position[0] += (s.rng.Float64() - 0.5) * StepSpan
		t.Position[1] += (s.rng.Float64() - 0.5) * StepSpan
		t.Status = types.StatusAvailable
		t.LastUpdated = s.now()
		out[i] = t
	}
	return out
}
