package types

import "time"

// OccupancySnapshot is one persisted reading of the per-zone counters of a console.
type OccupancySnapshot struct {
	ID        string         `json:"id" firestore:"-"`
	SessionID string         `json:"sessionId" firestore:"sessionId"`
	TakenAt   time.Time      `json:"takenAt" firestore:"takenAt"`
	Total     int            `json:"total" firestore:"total"`
	Counts    map[string]int `json:"counts" firestore:"counts"`
}
