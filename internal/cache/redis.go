// Package cache stores enriched candidates in Redis so scores stay stable across queries and restarts.
// When Redis is unreachable the cache is bypassed rather than failing queries.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jonathan/candidate-ranker/internal/pipeline"
	"github.com/jonathan/candidate-ranker/internal/types"
)

// DefaultTTL is used when neither Options.TTL nor REDIS_TTL is set.
const DefaultTTL = 600 * time.Second

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Logger   *zap.Logger
}

// OptionsFromEnv reads REDIS_ADDR (or REDIS_HOST/REDIS_PORT), REDIS_PASSWORD and REDIS_TTL.
func OptionsFromEnv() Options {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		host := strings.TrimSpace(os.Getenv("REDIS_HOST"))
		if host == "" {
			host = "localhost"
		}
		port := strings.TrimSpace(os.Getenv("REDIS_PORT"))
		if port == "" {
			port = "6379"
		}
		addr = host + ":" + port
	}
	return Options{
		Addr:     addr,
		Password: strings.TrimSpace(os.Getenv("REDIS_PASSWORD")),
		TTL:      DefaultTTLFromEnv(),
	}
}

// Redis is a pipeline.EnrichmentStore backed by Redis.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger

	warnedUnavailable atomic.Bool
}

// NewRedis connects to Redis. If the server does not answer a ping the returned
// cache bypasses every call.
func NewRedis(ctx context.Context, opts Options) *Redis {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("cache")

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTLFromEnv()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, bypassing cache", zap.String("addr", opts.Addr), zap.Error(err))
		_ = client.Close()
		return &Redis{ttl: ttl, logger: logger}
	}

	logger.Info("redis connected", zap.String("addr", opts.Addr), zap.Duration("ttl", ttl))
	return &Redis{client: client, ttl: ttl, logger: logger}
}

// Disabled returns a cache that bypasses every call.
func Disabled() *Redis {
	return &Redis{ttl: DefaultTTL, logger: zap.NewNop()}
}

// Available reports whether a Redis connection is in use.
func (r *Redis) Available() bool {
	return !r.isUnavailable()
}

func (r *Redis) isUnavailable() bool {
	return r == nil || r.client == nil
}

func (r *Redis) warnUnavailableOnce(err error) {
	if r == nil || r.logger == nil {
		return
	}
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		r.logger.Warn("redis unavailable, bypassing cache", zap.Error(err))
	}
}

// Ping checks the connection.
func (r *Redis) Ping(ctx context.Context) error {
	if r.isUnavailable() {
		return errors.New("redis unavailable")
	}
	return r.client.Ping(ctx).Err()
}

// Close releases the connection.
func (r *Redis) Close() error {
	if r.isUnavailable() {
		return nil
	}
	return r.client.Close()
}

// GetMany returns the cached entries among keys. Missing and undecodable entries are skipped.
func (r *Redis) GetMany(ctx context.Context, keys []string) (map[string]types.EnrichedCandidate, error) {
	out := make(map[string]types.EnrichedCandidate)
	if r.isUnavailable() || len(keys) == 0 {
		return out, nil
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		r.warnUnavailableOnce(err)
		return out, err
	}

	for i, v := range values {
		s, ok := v.(string)
		if !ok || s == "" {
			continue
		}
		var c types.EnrichedCandidate
		if err := json.Unmarshal([]byte(s), &c); err != nil {
			r.logger.Debug("skipping undecodable cache entry", zap.String("key", keys[i]), zap.Error(err))
			continue
		}
		out[keys[i]] = c
	}
	return out, nil
}

// SetMany writes entries with the cache TTL in a single pipeline.
func (r *Redis) SetMany(ctx context.Context, entries map[string]types.EnrichedCandidate) error {
	if r.isUnavailable() || len(entries) == 0 {
		return nil
	}

	_, err := r.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for key, c := range entries {
			b, err := json.Marshal(c)
			if err != nil {
				return err
			}
			p.Set(ctx, key, b, r.ttl)
		}
		return nil
	})
	if err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

// Invalidate deletes every enriched candidate entry.
func (r *Redis) Invalidate(ctx context.Context) error {
	if r.isUnavailable() {
		return nil
	}

	iter := r.client.Scan(ctx, 0, pipeline.KeyPrefix+"*", 0).Iterator()
	deleted := 0
	for iter.Next(ctx) {
		k := iter.Val()
		if err := r.client.Del(ctx, k).Err(); err != nil {
			r.logger.Warn("redis delete failed", zap.String("key", k), zap.Error(err))
			continue
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	r.logger.Debug("invalidated enriched candidates", zap.Int("deleted", deleted))
	return nil
}

// DefaultTTLFromEnv reads REDIS_TTL in seconds, falling back to DefaultTTL.
func DefaultTTLFromEnv() time.Duration {
	raw := strings.TrimSpace(os.Getenv("REDIS_TTL"))
	if raw == "" {
		return DefaultTTL
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return DefaultTTL
	}
	return time.Duration(v) * time.Second
}
