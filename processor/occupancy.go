package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"go-fleetmap/console"
	"go-fleetmap/db"
	"go-fleetmap/types"
)

// SnapshotConsole reads the current occupancy of c into a new snapshot.
func SnapshotConsole(c *console.Console, takenAt time.Time) types.OccupancySnapshot {
	counts, total := c.Occupancy()
	return types.OccupancySnapshot{
		ID:        uuid.NewString(),
		SessionID: c.ID(),
		TakenAt:   takenAt.UTC(),
		Total:     total,
		Counts:    counts,
	}
}

// PersistOccupancy saves one snapshot per open console. Every console is attempted;
// the number saved is returned along with the first error met.
func PersistOccupancy(ctx context.Context, store db.Store, consoles []*console.Console, now func() time.Time) (int, error) {
	var firstErr error
	saved := 0
	for _, c := range consoles {
		snap := SnapshotConsole(c, now())
		if err := store.SaveOccupancy(ctx, snap); err != nil {
			log.WithError(err).WithField("session_id", c.ID()).Error("Failed to persist occupancy")
			if firstErr == nil {
				firstErr = fmt.Errorf("session %s: %w", c.ID(), err)
			}
			continue
		}
		saved++
	}

	log.WithFields(log.Fields{"saved": saved, "consoles": len(consoles)}).Debug("Occupancy persisted")
	return saved, firstErr
}
