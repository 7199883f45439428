package model

import "time"

// Attempt is one persisted completed-quiz record. Attempts are append-only:
// written once on submission, never mutated or deleted.
type Attempt struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty"`
	Name       string    `json:"name" bson:"name"`
	Score      int       `json:"score" bson:"score"`
	Total      int       `json:"total" bson:"total"`
	Percentage float64   `json:"percentage" bson:"percentage"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
}

// LeaderboardEntry is the per-player leaderboard view: the best percentage
// recorded under a given name.
type LeaderboardEntry struct {
	Name       string  `json:"name" bson:"name"`
	Percentage float64 `json:"percentage" bson:"percentage"`
}
