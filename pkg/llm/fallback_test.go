package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type probeRecorder struct {
	calls   []string
	results map[string]error
}

func (r *probeRecorder) probe(ctx context.Context, model string) error {
	r.calls = append(r.calls, model)
	return r.results[model]
}

func TestFallbackPolicyResolve(t *testing.T) {
	notFound := NewError(KindModelNotFound, 404, "models/primary is not found")
	quota := NewError(KindUpstream, 429, "quota exceeded")

	tests := []struct {
		name      string
		policy    FallbackPolicy
		results   map[string]error
		wantModel string
		wantCalls []string
		wantKind  ErrorKind
	}{
		{
			name:      "primary resolves",
			policy:    FallbackPolicy{Primary: "primary", Fallback: "fallback"},
			wantModel: "primary",
			wantCalls: []string{"primary"},
		},
		{
			name:      "primary missing, fallback resolves",
			policy:    FallbackPolicy{Primary: "primary", Fallback: "fallback"},
			results:   map[string]error{"primary": notFound},
			wantModel: "fallback",
			wantCalls: []string{"primary", "fallback"},
		},
		{
			name:      "both missing surfaces fatal after one retry",
			policy:    FallbackPolicy{Primary: "primary", Fallback: "fallback"},
			results:   map[string]error{"primary": notFound, "fallback": NewError(KindModelNotFound, 404, "models/fallback is not found")},
			wantCalls: []string{"primary", "fallback"},
			wantKind:  KindModelNotFound,
		},
		{
			name:      "other failure does not trigger fallback",
			policy:    FallbackPolicy{Primary: "primary", Fallback: "fallback"},
			results:   map[string]error{"primary": quota},
			wantCalls: []string{"primary"},
			wantKind:  KindUpstream,
		},
		{
			name:      "no fallback configured",
			policy:    FallbackPolicy{Primary: "primary"},
			results:   map[string]error{"primary": notFound},
			wantCalls: []string{"primary"},
			wantKind:  KindModelNotFound,
		},
		{
			name:      "fallback equal to primary is not retried",
			policy:    FallbackPolicy{Primary: "primary", Fallback: "primary"},
			results:   map[string]error{"primary": notFound},
			wantCalls: []string{"primary"},
			wantKind:  KindModelNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &probeRecorder{results: tt.results}
			model, err := tt.policy.Resolve(context.Background(), rec.probe)

			assert.Equal(t, tt.wantCalls, rec.calls)
			if tt.wantKind != "" {
				require.Error(t, err)
				assert.True(t, IsKind(err, tt.wantKind))
				assert.Empty(t, model)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantModel, model)
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	blocked := SafetyBlocked("SAFETY")
	assert.Equal(t, "SafetyBlocked: SAFETY", blocked.Error())
	assert.Equal(t, 422, blocked.HTTPStatus())

	upstream := NewError(KindUpstream, 429, "Resource has been exhausted")
	assert.Equal(t, "Resource has been exhausted", upstream.Error())
	assert.Equal(t, 429, upstream.HTTPStatus())

	noStatus := AsError(errors.New("dial tcp: connection refused"))
	assert.Equal(t, KindUpstream, noStatus.Kind)
	assert.Equal(t, 500, noStatus.HTTPStatus())
	assert.Nil(t, AsError(nil))
}

type stubProvider struct {
	probes    []string
	generated []string
	probeErr  map[string]error
	text      string
}

func (s *stubProvider) Name() string       { return "stub" }
func (s *stubProvider) CheckConfig() error { return nil }
func (s *stubProvider) Probe(ctx context.Context, model string) error {
	s.probes = append(s.probes, model)
	return s.probeErr[model]
}
func (s *stubProvider) Generate(ctx context.Context, model string, parts []Part, options ...Option) (string, error) {
	s.generated = append(s.generated, model)
	return s.text, nil
}

func TestInvokeUsesResolvedModel(t *testing.T) {
	p := &stubProvider{
		probeErr: map[string]error{"new-model": NewError(KindModelNotFound, 404, "404 model not found")},
		text:     `{"urgency":"routine"}`,
	}

	text, model, err := Invoke(context.Background(), p, FallbackPolicy{Primary: "new-model", Fallback: "old-model"}, []Part{TextPart("hi")})
	require.NoError(t, err)
	assert.Equal(t, "old-model", model)
	assert.Equal(t, `{"urgency":"routine"}`, text)
	assert.Equal(t, []string{"new-model", "old-model"}, p.probes)
	assert.Equal(t, []string{"old-model"}, p.generated)
}

func TestApplyOptions(t *testing.T) {
	o := ApplyOptions(WithTemperature(0.3), WithMaxTokens(12), WithJSONResponse(true))
	assert.Equal(t, Options{Temperature: 0.3, MaxTokens: 12, JSON: true}, o)
}
