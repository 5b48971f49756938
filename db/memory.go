package db

import (
	"context"
	"sync"

	"go-fleetmap/types"
)

// MemoryStore keeps snapshots in process. Used by default and in tests.
type MemoryStore struct {
	mu    sync.RWMutex
	snaps map[string][]types.OccupancySnapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: make(map[string][]types.OccupancySnapshot)}
}

func (m *MemoryStore) SaveOccupancy(_ context.Context, snap types.OccupancySnapshot) error {
	counts := make(map[string]int, len(snap.Counts))
	for k, v := range snap.Counts {
		counts[k] = v
	}
	snap.Counts = counts

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[snap.SessionID] = append(m.snaps[snap.SessionID], snap)
	return nil
}

func (m *MemoryStore) LatestOccupancy(_ context.Context, sessionID string) (types.OccupancySnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := m.snaps[sessionID]
	if len(list) == 0 {
		return types.OccupancySnapshot{}, ErrNotFound
	}
	latest := list[0]
	for _, s := range list[1:] {
		if !s.TakenAt.Before(latest.TakenAt) {
			latest = s
		}
	}
	return latest, nil
}

// History returns every snapshot saved for sessionID in insertion order.
func (m *MemoryStore) History(sessionID string) []types.OccupancySnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.OccupancySnapshot, len(m.snaps[sessionID]))
	copy(out, m.snaps[sessionID])
	return out
}

func (m *MemoryStore) Close() error {
	return nil
}
