package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"go-fleetmap/types"
)

const createOccupancyTable = `
CREATE TABLE IF NOT EXISTS occupancy_snapshot (
	id         TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	taken_at   TIMESTAMPTZ NOT NULL,
	total      INTEGER NOT NULL,
	counts     JSONB NOT NULL
)`

// PostgresStore keeps snapshots in the occupancy_snapshot table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	pool, err := pgxpool.Connect(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if _, err := pool.Exec(ctx, createOccupancyTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating occupancy_snapshot table: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) SaveOccupancy(ctx context.Context, snap types.OccupancySnapshot) error {
	counts, err := json.Marshal(snap.Counts)
	if err != nil {
		return fmt.Errorf("encoding counts: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		"INSERT INTO occupancy_snapshot (id, session_id, taken_at, total, counts) VALUES ($1, $2, $3, $4, $5::jsonb)",
		snap.ID, snap.SessionID, snap.TakenAt, snap.Total, string(counts))
	if err != nil {
		return fmt.Errorf("failed to save occupancy snapshot %s: %w", snap.ID, err)
	}
	return nil
}

func (s *PostgresStore) LatestOccupancy(ctx context.Context, sessionID string) (types.OccupancySnapshot, error) {
	var snap types.OccupancySnapshot
	var counts []byte
	err := s.pool.QueryRow(ctx,
		"SELECT id, session_id, taken_at, total, counts FROM occupancy_snapshot WHERE session_id=$1 ORDER BY taken_at DESC LIMIT 1",
		sessionID).Scan(&snap.ID, &snap.SessionID, &snap.TakenAt, &snap.Total, &counts)
	if errors.Is(err, pgx.ErrNoRows) {
		return snap, ErrNotFound
	}
	if err != nil {
		return snap, fmt.Errorf("querying latest occupancy for %s: %w", sessionID, err)
	}
	if err := json.Unmarshal(counts, &snap.Counts); err != nil {
		return snap, fmt.Errorf("decoding counts of snapshot %s: %w", snap.ID, err)
	}
	return snap, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
