package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"triviarena/internal/cache"
	"triviarena/internal/model"
	"triviarena/internal/repository"
)

// DefaultTopLimit is the leaderboard size served to clients.
const DefaultTopLimit = 5

// LeaderboardService persists completed attempts and serves the ranked
// top-N view. MongoDB is the source of truth; the Redis cache holds a
// best-effort materialized copy of the store's aggregation and the service
// works with a nil cache.
type LeaderboardService struct {
	repo  repository.AttemptRepository
	cache cache.LeaderboardCache
	log   zerolog.Logger
}

// NewLeaderboardService creates a new leaderboard service.
func NewLeaderboardService(repo repository.AttemptRepository, lbCache cache.LeaderboardCache, log zerolog.Logger) *LeaderboardService {
	return &LeaderboardService{
		repo:  repo,
		cache: lbCache,
		log:   log,
	}
}

// RecordAttempt persists one attempt with percentage rounded to two decimal
// places and invalidates the cached leaderboard view. Storage failure wraps
// model.ErrPersistence; cache failure is only logged.
func (s *LeaderboardService) RecordAttempt(ctx context.Context, name string, score, total int) (*model.Attempt, error) {
	attempt := &model.Attempt{
		Name:       name,
		Score:      score,
		Total:      total,
		Percentage: roundPercentage(score, total),
	}

	if err := s.repo.Create(ctx, attempt); err != nil {
		s.log.Error().Err(err).Str("player", name).Msg("failed to save attempt")
		return nil, fmt.Errorf("save attempt: %w", model.ErrPersistence)
	}

	if s.cache != nil {
		// The per-name aggregate (max score, first total) can move in either
		// direction after a write, so the cached view is dropped rather than
		// patched with this attempt's own percentage.
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.Warn().Err(err).Msg("failed to invalidate leaderboard cache")
		}
	}
	return attempt, nil
}

// TopAttempts returns at most limit entries, one per distinct player name,
// sorted by percentage descending. The cache is tried first; on a miss or
// error the Mongo aggregation answers and its result replaces the cached
// view, so the cache only ever holds what the aggregation produced.
func (s *LeaderboardService) TopAttempts(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}

	if s.cache != nil {
		entries, err := s.cache.GetTop(ctx, limit)
		if err == nil && len(entries) > 0 {
			return entries, nil
		}
		if err != nil {
			s.log.Warn().Err(err).Msg("leaderboard cache read failed")
		}
	}

	entries, err := s.repo.TopByName(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", model.ErrPersistence)
	}
	entries = dedupByName(entries, limit)

	if s.cache != nil {
		if err := s.cache.SetTop(ctx, entries); err != nil {
			s.log.Warn().Err(err).Msg("failed to warm leaderboard cache")
		}
	}
	return entries, nil
}

// dedupByName keeps the first (highest-ranked) entry per name. The
// aggregation already groups by name; this guards against a store that
// returns duplicates anyway.
func dedupByName(entries []model.LeaderboardEntry, limit int) []model.LeaderboardEntry {
	seen := make(map[string]struct{}, len(entries))
	out := entries[:0]
	for _, e := range entries {
		if _, ok := seen[e.Name]; ok {
			continue
		}
		seen[e.Name] = struct{}{}
		out = append(out, e)
		if len(out) == limit {
			break
		}
	}
	return out
}
