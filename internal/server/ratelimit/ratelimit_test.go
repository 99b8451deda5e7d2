package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_Allow(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
	})
	defer limiter.Stop()

	// Should allow requests up to the burst, which defaults to the limit
	for i := 0; i < 10; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/candidates", "GET")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
	}

	allowed, info := limiter.Allow("127.0.0.1", "/candidates", "GET")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Positive(t, info.RetryAfter)
	assert.LessOrEqual(t, info.RetryAfter, 6*time.Second)
	assert.True(t, info.ResetTime.After(time.Now()))
}

func TestLimiter_Refill(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  20,
		DefaultWindow: time.Second,
		DefaultBurst:  1,
	})
	defer limiter.Stop()

	allowed, _ := limiter.Allow("127.0.0.1", "/candidates", "GET")
	require.True(t, allowed)
	allowed, _ = limiter.Allow("127.0.0.1", "/candidates", "GET")
	require.False(t, allowed)

	// 20 per second refills one token every 50ms
	time.Sleep(80 * time.Millisecond)

	allowed, _ = limiter.Allow("127.0.0.1", "/candidates", "GET")
	assert.True(t, allowed)
}

func TestLimiter_Whitelist(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"127.0.0.1": true},
	})
	defer limiter.Stop()

	for i := 0; i < 50; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/candidates", "GET")
		require.True(t, allowed)
		assert.Zero(t, info.Limit)
	}
	assert.Zero(t, limiter.Len())
}

func TestLimiter_Blacklist(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		Blacklist:     map[string]bool{"10.0.0.1": true},
	})
	defer limiter.Stop()

	allowed, _ := limiter.Allow("10.0.0.1", "/candidates", "GET")
	assert.False(t, allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: false, DefaultLimit: 1, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/candidates", "GET")
		require.True(t, allowed)
		assert.Zero(t, info.Limit)
	}
}

func TestLimiter_EndpointSpecific(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/export", Method: "GET", Limit: 5, Window: time.Hour, Burst: 5},
		},
	})
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/export", "GET")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 5, info.Limit)
	}

	allowed, info := limiter.Allow("127.0.0.1", "/export", "GET")
	assert.False(t, allowed)
	assert.Equal(t, 5, info.Limit)

	// Different endpoint should use default limit
	allowed, info = limiter.Allow("127.0.0.1", "/stats", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)

	// Different client has its own bucket
	allowed, _ = limiter.Allow("127.0.0.2", "/export", "GET")
	assert.True(t, allowed)
}

func TestLimiter_HealthAndPreflightUnlimited(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		allowed, _ := limiter.Allow("127.0.0.1", "/health", "GET")
		assert.True(t, allowed)
		allowed, _ = limiter.Allow("127.0.0.1", "/search", "OPTIONS")
		assert.True(t, allowed)
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
	})
	defer limiter.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := limiter.Allow("127.0.0.1", "/candidates", "GET"); allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, allowedCount)
}

func TestLimiter_CleanupDropsIdleEntries(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		limiter.Allow(fmt.Sprintf("127.0.0.%d", i+1), "/candidates", "GET")
	}
	require.Equal(t, 10, limiter.Len())

	limiter.cleanupBefore(time.Now().Add(-time.Minute))
	assert.Equal(t, 10, limiter.Len())

	limiter.cleanupBefore(time.Now().Add(time.Second))
	assert.Zero(t, limiter.Len())
}

func TestLimiter_StopTwice(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute, CleanupInterval: time.Millisecond})

	limiter.Stop()
	assert.NotPanics(t, limiter.Stop)
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()

	allowed, info := limiter.Allow("127.0.0.1", "/candidates", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}

func TestLoadConfig_FromRate(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "")
	t.Setenv("RATE_LIMIT_DEFAULT_WINDOW", "")
	t.Setenv("RATE_LIMIT_WHITELIST", " 10.0.0.1, ,10.0.0.2")

	cfg := LoadConfig(2.5, 7)

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 150, cfg.DefaultLimit)
	assert.Equal(t, time.Minute, cfg.DefaultWindow)
	assert.Equal(t, 7, cfg.DefaultBurst)
	assert.Equal(t, map[string]bool{"10.0.0.1": true, "10.0.0.2": true}, cfg.Whitelist)
	assert.NotEmpty(t, cfg.EndpointConfigs)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "42")
	t.Setenv("RATE_LIMIT_DEFAULT_WINDOW", "10s")

	cfg := LoadConfig(0, 0)

	assert.Equal(t, 42, cfg.DefaultLimit)
	assert.Equal(t, 10*time.Second, cfg.DefaultWindow)
}

func TestLoadConfig_Disabled(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	assert.False(t, LoadConfig(10, 20).Enabled)
}

func TestMatchEndpoint(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/export", Method: "GET", Limit: 1},
		{Path: "/candidates/", Method: "GET", Limit: 2},
	}

	assert.Equal(t, 1, MatchEndpoint("/export", "GET", configs).Limit)
	assert.Equal(t, 2, MatchEndpoint("/candidates/42", "GET", configs).Limit)
	assert.Nil(t, MatchEndpoint("/export", "POST", configs))
	assert.Nil(t, MatchEndpoint("/stats", "GET", configs))
	assert.Zero(t, MatchEndpoint("/health", "GET", configs).Limit)
}
