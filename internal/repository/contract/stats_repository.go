package contract

import "context"

// StatsRepository keeps monotonically increasing triage counters.
type StatsRepository interface {
	// Increment adds one to each named counter.
	Increment(ctx context.Context, counters ...string) error
	Snapshot(ctx context.Context) (map[string]int64, error)
}
