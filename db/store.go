package db

import (
	"context"
	"errors"
	"fmt"

	"go-fleetmap/types"
)

var ErrNotFound = errors.New("occupancy snapshot not found")

// Store keeps the occupancy history of the consoles.
type Store interface {
	SaveOccupancy(ctx context.Context, snap types.OccupancySnapshot) error
	LatestOccupancy(ctx context.Context, sessionID string) (types.OccupancySnapshot, error)
	Close() error
}

// Settings selects and configures a Store.
type Settings struct {
	Kind                string // memory, firestore or postgres
	FirebaseCredentials string // base64 encoded service account JSON
	DatabaseURL         string
}

// Open returns the store named by s.Kind.
func Open(ctx context.Context, s Settings) (Store, error) {
	switch s.Kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "firestore":
		return NewFirestoreStore(ctx, s.FirebaseCredentials)
	case "postgres":
		return NewPostgresStore(ctx, s.DatabaseURL)
	}
	return nil, fmt.Errorf("unknown store %q", s.Kind)
}
