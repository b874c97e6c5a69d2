package llm

import "context"

type ProbeFunc func(ctx context.Context, model string) error

// FallbackPolicy is the two-state model selection: the preferred model, and a
// known-good model tried exactly once when the preferred one does not exist.
type FallbackPolicy struct {
	Primary  string
	Fallback string
}

// Resolve probes the primary model and, only on a ModelNotFound failure, the
// fallback. Any other failure, or a second ModelNotFound, is returned as is.
func (p FallbackPolicy) Resolve(ctx context.Context, probe ProbeFunc) (string, error) {
	err := probe(ctx, p.Primary)
	if err == nil {
		return p.Primary, nil
	}
	if !IsModelNotFound(err) || p.Fallback == "" || p.Fallback == p.Primary {
		return "", err
	}

	if err := probe(ctx, p.Fallback); err != nil {
		return "", err
	}
	return p.Fallback, nil
}
