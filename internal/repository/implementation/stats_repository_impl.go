package implementation

import (
	"context"
	"fmt"
	"strconv"

	"aivaidya-be/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

const DefaultStatsKey = "triage:stats"

type statsRepository struct {
	rdb *redis.Client
	key string
}

// NewStatsRepository stores counters as fields of a single Redis hash so every
// instance behind a load balancer shares them.
func NewStatsRepository(rdb *redis.Client, key string) contract.StatsRepository {
	if key == "" {
		key = DefaultStatsKey
	}
	return &statsRepository{rdb: rdb, key: key}
}

func (r *statsRepository) Increment(ctx context.Context, counters ...string) error {
	if len(counters) == 0 {
		return nil
	}

	pipe := r.rdb.Pipeline()
	for _, name := range counters {
		pipe.HIncrBy(ctx, r.key, name, 1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to increment triage counters: %w", err)
	}
	return nil
}

func (r *statsRepository) Snapshot(ctx context.Context) (map[string]int64, error) {
	raw, err := r.rdb.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read triage counters: %w", err)
	}

	out := make(map[string]int64, len(raw))
	for name, value := range raw {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			continue
		}
		out[name] = n
	}
	return out, nil
}
