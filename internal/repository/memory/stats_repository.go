package memory

import (
	"context"

	"github.com/patrickmn/go-cache"
)

// StatsRepository keeps counters in process memory. Used when Redis is not reachable;
// counts are lost on restart.
type StatsRepository struct {
	cache *cache.Cache
}

func NewStatsRepository() *StatsRepository {
	return &StatsRepository{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (r *StatsRepository) Increment(ctx context.Context, counters ...string) error {
	for _, name := range counters {
		// Add fails when the counter already exists, which is fine
		_ = r.cache.Add(name, int64(0), cache.NoExpiration)
		if _, err := r.cache.IncrementInt64(name, 1); err != nil {
			return err
		}
	}
	return nil
}

func (r *StatsRepository) Snapshot(ctx context.Context) (map[string]int64, error) {
	items := r.cache.Items()
	out := make(map[string]int64, len(items))
	for name, item := range items {
		if n, ok := item.Object.(int64); ok {
			out[name] = n
		}
	}
	return out, nil
}
