package service

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"triviarena/internal/cache"
	"triviarena/internal/model"
)

// memoryAttemptRepo mimics the Mongo aggregation in memory for tests.
type memoryAttemptRepo struct {
	attempts   []model.Attempt
	failCreate bool
	failTop    bool
}

func (r *memoryAttemptRepo) Create(_ context.Context, attempt *model.Attempt) error {
	if r.failCreate {
		return errors.New("write failed")
	}
	r.attempts = append(r.attempts, *attempt)
	return nil
}

func (r *memoryAttemptRepo) TopByName(_ context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if r.failTop {
		return nil, errors.New("read failed")
	}
	best := make(map[string]model.Attempt)
	for _, a := range r.attempts {
		if prev, ok := best[a.Name]; !ok || a.Score > prev.Score {
			best[a.Name] = a
		}
	}
	entries := make([]model.LeaderboardEntry, 0, len(best))
	for name, a := range best {
		entries = append(entries, model.LeaderboardEntry{
			Name:       name,
			Percentage: roundPercentage(a.Score, a.Total),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Percentage > entries[j].Percentage
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func TestRecordAttemptRoundsPercentage(t *testing.T) {
	repo := &memoryAttemptRepo{}
	svc := NewLeaderboardService(repo, nil, zerolog.Nop())

	cases := []struct {
		score, total int
		want         float64
	}{
		{2, 5, 40.00},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{0, 5, 0},
		{5, 5, 100},
	}
	for _, tc := range cases {
		attempt, err := svc.RecordAttempt(context.Background(), "Alice", tc.score, tc.total)
		if err != nil {
			t.Fatalf("record %d/%d failed: %v", tc.score, tc.total, err)
		}
		if attempt.Percentage != tc.want {
			t.Fatalf("record %d/%d: expected %.2f, got %.2f", tc.score, tc.total, tc.want, attempt.Percentage)
		}
	}
}

func TestRecordAttemptPersistenceError(t *testing.T) {
	svc := NewLeaderboardService(&memoryAttemptRepo{failCreate: true}, nil, zerolog.Nop())

	_, err := svc.RecordAttempt(context.Background(), "Alice", 3, 5)
	if !errors.Is(err, model.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}

func TestTopAttemptsDedupAndOrder(t *testing.T) {
	repo := &memoryAttemptRepo{}
	svc := NewLeaderboardService(repo, nil, zerolog.Nop())
	ctx := context.Background()

	seed := []struct {
		name         string
		score, total int
	}{
		{"Alice", 2, 5},
		{"Alice", 4, 5}, // best for Alice
		{"Bob", 3, 5},
		{"Carol", 5, 5},
		{"Dave", 1, 5},
		{"Erin", 2, 5},
		{"Frank", 4, 5},
		{"Grace", 3, 5},
	}
	for _, a := range seed {
		if _, err := svc.RecordAttempt(ctx, a.name, a.score, a.total); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}

	entries, err := svc.TopAttempts(ctx, DefaultTopLimit)
	if err != nil {
		t.Fatalf("top failed: %v", err)
	}
	if len(entries) != DefaultTopLimit {
		t.Fatalf("expected %d entries, got %d", DefaultTopLimit, len(entries))
	}

	seen := make(map[string]bool)
	for i, e := range entries {
		if seen[e.Name] {
			t.Fatalf("duplicate name %q in leaderboard", e.Name)
		}
		seen[e.Name] = true
		if i > 0 && entries[i-1].Percentage < e.Percentage {
			t.Fatalf("leaderboard not sorted descending at %d: %v", i, entries)
		}
	}
	if entries[0].Name != "Carol" || entries[0].Percentage != 100 {
		t.Fatalf("expected Carol leading with 100, got %+v", entries[0])
	}
}

func TestTopAttemptsServedFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	repo := &memoryAttemptRepo{}
	svc := NewLeaderboardService(repo, cache.NewLeaderboardCache(client), zerolog.Nop())
	ctx := context.Background()

	if _, err := svc.RecordAttempt(ctx, "Alice", 4, 5); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if _, err := svc.RecordAttempt(ctx, "Bob", 2, 5); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	// First read goes to the store and materializes the cache.
	if _, err := svc.TopAttempts(ctx, DefaultTopLimit); err != nil {
		t.Fatalf("warming read failed: %v", err)
	}

	// Break the repo read path: the cache must answer on its own.
	repo.failTop = true

	entries, err := svc.TopAttempts(ctx, DefaultTopLimit)
	if err != nil {
		t.Fatalf("top failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Name != "Alice" || entries[0].Percentage != 80 {
		t.Fatalf("expected Alice at 80 from cache, got %+v", entries[0])
	}
}

func TestTopAttemptsFallsBackToStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	repo := &memoryAttemptRepo{
		attempts: []model.Attempt{
			{Name: "Alice", Score: 4, Total: 5},
			{Name: "Bob", Score: 2, Total: 5},
		},
	}
	svc := NewLeaderboardService(repo, cache.NewLeaderboardCache(client), zerolog.Nop())

	// Cache is empty, so the store answers and re-warms it.
	entries, err := svc.TopAttempts(context.Background(), DefaultTopLimit)
	if err != nil {
		t.Fatalf("top failed: %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "Alice" {
		t.Fatalf("unexpected leaderboard %+v", entries)
	}

	repo.failTop = true
	warmed, err := svc.TopAttempts(context.Background(), DefaultTopLimit)
	if err != nil {
		t.Fatalf("top after warm failed: %v", err)
	}
	if len(warmed) != 2 || warmed[0].Name != "Alice" {
		t.Fatalf("cache was not warmed: %+v", warmed)
	}
}

func TestTopAttemptsAgreeAcrossReadPaths(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	repo := &memoryAttemptRepo{}
	svc := NewLeaderboardService(repo, cache.NewLeaderboardCache(client), zerolog.Nop())
	ctx := context.Background()

	// Alice's higher-scoring attempt has the worse ratio. The aggregation
	// ranks by the max-score attempt (4/20 = 20%), not the best percentage.
	if _, err := svc.RecordAttempt(ctx, "Alice", 4, 20); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if _, err := svc.RecordAttempt(ctx, "Alice", 3, 5); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	fromStore, err := svc.TopAttempts(ctx, DefaultTopLimit)
	if err != nil {
		t.Fatalf("store read failed: %v", err)
	}
	if len(fromStore) != 1 || fromStore[0].Percentage != 20 {
		t.Fatalf("expected Alice at 20 from the store, got %+v", fromStore)
	}

	// The cached view must serve the same ranking as the aggregation.
	repo.failTop = true
	fromCache, err := svc.TopAttempts(ctx, DefaultTopLimit)
	if err != nil {
		t.Fatalf("cache read failed: %v", err)
	}
	if len(fromCache) != 1 || fromCache[0].Name != "Alice" || fromCache[0].Percentage != 20 {
		t.Fatalf("cache diverged from the store: %+v", fromCache)
	}
}
