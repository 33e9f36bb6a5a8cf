package redisclient

import (
	"context"
	"errors"
	"time"

	"atendimentos/cmd/internal/config"

	"github.com/redis/go-redis/v9"
)

const statsKey = "atendimentos:estatisticas"

// StatsCache stores the serialized statistics response under a single key.
type StatsCache struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

type StatsCacheOption func(*StatsCache)

func WithKey(key string) StatsCacheOption {
	return func(s *StatsCache) { s.key = key }
}

func NewStatsCache(rdb *redis.Client, ttl time.Duration, opts ...StatsCacheOption) *StatsCache {
	s := &StatsCache{rdb: rdb, key: statsKey, ttl: ttl}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InitRedisClient connects and pings the server in cfg.
func InitRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

func (s *StatsCache) Get(ctx context.Context) ([]byte, bool, error) {
	b, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *StatsCache) Set(ctx context.Context, payload []byte) error {
	return s.rdb.Set(ctx, s.key, payload, s.ttl).Err()
}

func (s *StatsCache) Invalidate(ctx context.Context) error {
	return s.rdb.Del(ctx, s.key).Err()
}
