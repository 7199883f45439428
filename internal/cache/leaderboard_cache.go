package cache

import (
	"context"

	"github.com/redis/go-redis/v9"

	"triviarena/internal/model"
)

const leaderboardKey = "leaderboard:best"

// LeaderboardCache keeps a materialized copy of the ranked top-N view in a
// Redis ZSET so reads are served without hitting MongoDB. The ZSET member is
// the player name, which makes the cache deduplicated by construction. The
// cache never derives rankings itself; it only stores what the store's
// aggregation produced, so both read paths always agree.
type LeaderboardCache interface {
	SetTop(ctx context.Context, entries []model.LeaderboardEntry) error
	GetTop(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
	Invalidate(ctx context.Context) error
}

type leaderboardCache struct {
	client *redis.Client
}

// NewLeaderboardCache creates a new leaderboard cache.
func NewLeaderboardCache(client *redis.Client) LeaderboardCache {
	return &leaderboardCache{client: client}
}

// SetTop atomically replaces the cached view with the given entries.
func (c *leaderboardCache) SetTop(ctx context.Context, entries []model.LeaderboardEntry) error {
	members := make([]redis.Z, len(entries))
	for i, e := range entries {
		members[i] = redis.Z{
			Score:  e.Percentage,
			Member: e.Name,
		}
	}

	pipe := c.client.TxPipeline()
	pipe.Del(ctx, leaderboardKey)
	if len(members) > 0 {
		pipe.ZAdd(ctx, leaderboardKey, members...)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (c *leaderboardCache) GetTop(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]model.LeaderboardEntry, len(results))
	for i, z := range results {
		entries[i] = model.LeaderboardEntry{
			Name:       z.Member.(string),
			Percentage: z.Score,
		}
	}
	return entries, nil
}

// Invalidate drops the cached view so the next read hits the store.
func (c *leaderboardCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, leaderboardKey).Err()
}
