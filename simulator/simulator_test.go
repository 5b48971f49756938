package simulator

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/paulmach/orb"

	"go-fleetmap/types"
)

var (
	start = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	later = start.Add(2 * time.Second)
)

func fleet(n int) []types.Taxi {
	out := make([]types.Taxi, n)
	for i := range out {
		out[i] = types.Taxi{
			ID:          "taxi",
			DisplayName: "Jean Dupont",
			Position:    orb.Point{4.35, 50.85},
			ZoneID:      "bruxelles",
			Status:      types.StatusAvailable,
			LastUpdated: start,
		}
	}
	return out
}

func newTestSimulator(seed int64) *Simulator {
	return New(rand.New(rand.NewSource(seed)), func() time.Time { return later })
}

func TestTickEmpty(t *testing.T) {
	got := newTestSimulator(1).Tick(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty slice, got %v", got)
	}
}

func TestTickDisplacementBound(t *testing.T) {
	in := fleet(5000)
	out := newTestSimulator(5).Tick(in)
	half := StepSpan / 2
	for i := range out {
		dx := math.Abs(out[i].Position.Lon() - in[i].Position.Lon())
		dy := math.Abs(out[i].Position.Lat() - in[i].Position.Lat())
		if dx > half || dy > half {
			t.Fatalf("taxi %d moved %.5f/%.5f", i, dx, dy)
		}
	}
}

func TestTickKeepsIdentity(t *testing.T) {
	in := fleet(500)
	out := newTestSimulator(2).Tick(in)
	for i := range out {
		if out[i].ID != in[i].ID || out[i].DisplayName != in[i].DisplayName || out[i].ZoneID != in[i].ZoneID {
			t.Fatalf("taxi %d changed identity: %+v", i, out[i])
		}
		if out[i].Status != types.StatusAvailable {
			t.Errorf("taxi %d has status %q", i, out[i].Status)
		}
		if out[i].Position == in[i].Position {
			if out[i] != in[i] {
				t.Errorf("unmoved taxi %d is not identical: %+v", i, out[i])
			}
		} else if !out[i].LastUpdated.Equal(later) {
			t.Errorf("moved taxi %d kept timestamp %v", i, out[i].LastUpdated)
		}
	}
}

func TestTickDoesNotMutateInput(t *testing.T) {
	in := fleet(200)
	newTestSimulator(3).Tick(in)
	for i, taxi := range in {
		if taxi.Position != (orb.Point{4.35, 50.85}) || !taxi.LastUpdated.Equal(start) {
			t.Fatalf("input taxi %d mutated: %+v", i, taxi)
		}
	}
}

func TestTickMoveRate(t *testing.T) {
	in := fleet(10000)
	out := newTestSimulator(11).Tick(in)
	moved := 0
	for i := range out {
		if !out[i].LastUpdated.Equal(start) {
			moved++
		}
	}
	rate := float64(moved) / float64(len(in))
	if math.Abs(rate-MoveProbability) > 0.02 {
		t.Errorf("expected move rate %.2f ± 0.02, got %.4f", MoveProbability, rate)
	}
}
