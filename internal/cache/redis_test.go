package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/candidate-ranker/internal/pipeline"
	"github.com/jonathan/candidate-ranker/internal/types"
)

func TestDisabled_BypassesEveryCall(t *testing.T) {
	r := Disabled()
	ctx := context.Background()

	assert.False(t, r.Available())
	assert.Error(t, r.Ping(ctx))

	got, err := r.GetMany(ctx, []string{"enriched:1:abc"})
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.NoError(t, r.SetMany(ctx, map[string]types.EnrichedCandidate{"enriched:1:abc": {}}))
	assert.NoError(t, r.Invalidate(ctx))
	assert.NoError(t, r.Close())
}

func TestNilRedis_BypassesEveryCall(t *testing.T) {
	var r *Redis
	ctx := context.Background()

	got, err := r.GetMany(ctx, []string{"k"})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, r.SetMany(ctx, map[string]types.EnrichedCandidate{"k": {}}))
	assert.False(t, r.Available())
}

func TestNewRedis_UnreachableServerBypasses(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	// port 1 is reserved and never runs redis
	r := NewRedis(ctx, Options{Addr: "127.0.0.1:1"})

	assert.False(t, r.Available())
	got, err := r.GetMany(ctx, []string{"enriched:1:abc"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDisabled_WorksAsEnrichmentStore(t *testing.T) {
	var store pipeline.EnrichmentStore = Disabled()
	engine := pipeline.NewEngine(pipeline.Options{Store: store})

	rs := engine.Query([]types.CandidateRecord{{ID: 1, Name: "Ada", MatchScore: 0.5}}, types.DefaultCriteria())

	assert.Len(t, rs.Candidates, 1)
}

func TestDefaultTTLFromEnv(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want time.Duration
	}{
		{name: "unset", env: "", want: DefaultTTL},
		{name: "seconds", env: "30", want: 30 * time.Second},
		{name: "invalid", env: "soon", want: DefaultTTL},
		{name: "negative", env: "-5", want: DefaultTTL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("REDIS_TTL", tt.env)
			assert.Equal(t, tt.want, DefaultTTLFromEnv())
		})
	}
}

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("REDIS_HOST", "cache.internal")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_PASSWORD", " secret ")
	t.Setenv("REDIS_TTL", "")

	opts := OptionsFromEnv()

	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, DefaultTTL, opts.TTL)

	t.Setenv("REDIS_ADDR", "10.0.0.1:7000")
	assert.Equal(t, "10.0.0.1:7000", OptionsFromEnv().Addr)
}

// Requires a running Redis. Set TEST_REDIS_ADDR to run it.
func TestRedis_RoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set, skipping redis test")
	}
	ctx := context.Background()
	r := NewRedis(ctx, Options{Addr: addr, TTL: time.Minute})
	require.True(t, r.Available())
	defer func() { _ = r.Close() }()

	rec := types.CandidateRecord{ID: 42, Name: "Ada", MatchScore: 0.9}
	key := pipeline.CacheKey("none", &rec)
	entry := types.EnrichedCandidate{CandidateRecord: rec, OverallScore: 77, ScoreLabel: "Excellent"}

	require.NoError(t, r.SetMany(ctx, map[string]types.EnrichedCandidate{key: entry}))

	got, err := r.GetMany(ctx, []string{key, "enriched:missing"})
	require.NoError(t, err)
	require.Contains(t, got, key)
	assert.Equal(t, 77, got[key].OverallScore)
	assert.NotContains(t, got, "enriched:missing")

	require.NoError(t, r.Invalidate(ctx))
	got, err = r.GetMany(ctx, []string{key})
	require.NoError(t, err)
	assert.Empty(t, got)
}
