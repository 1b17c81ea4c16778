package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joseph-ayodele/crewsheet/internal/common"
	"github.com/joseph-ayodele/crewsheet/internal/entity"
)

// Redis keeps results as JSON under prefix+key.
type Redis struct {
	rdb        redis.UniversalClient
	logger     *slog.Logger
	prefix     string
	defaultTTL time.Duration
}

type RedisOption func(*Redis)

func WithPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

func WithDefaultTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) {
		if ttl > 0 {
			r.defaultTTL = ttl
		}
	}
}

func NewRedisClient(cfg common.CacheConfig) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
}

func NewRedis(rdb redis.UniversalClient, logger *slog.Logger, opts ...RedisOption) *Redis {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Redis{rdb: rdb, logger: logger, prefix: "crewsheet:", defaultTTL: time.Hour}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Redis) key(k string) string {
	return r.prefix + "result:" + k
}

func (r *Redis) Get(ctx context.Context, key string) (*entity.ExtractionResult, error) {
	data, err := r.rdb.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, common.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var res entity.ExtractionResult
	if err := json.Unmarshal(data, &res); err != nil {
		r.logger.Warn("cache.redis.decode_failed", "key", key, "err", err)
		return nil, common.ErrCacheMiss
	}
	return &res, nil
}

func (r *Redis) Set(ctx context.Context, key string, res *entity.ExtractionResult, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = r.defaultTTL
	}
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := r.rdb.Set(ctx, r.key(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}
