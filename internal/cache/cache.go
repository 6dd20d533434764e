// Package cache stores computed aggregates so hot read paths skip the
// database.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"landmarket/server/internal/models"
)

const (
	keyPrefix      = "landmarket:"
	publicStatsKey = keyPrefix + "stats:public"
)

// StatsCache holds the public marketplace counters. A miss is reported as
// (nil, nil).
type StatsCache interface {
	GetPublicStats(ctx context.Context) (*models.PropertyStats, error)
	SetPublicStats(ctx context.Context, stats models.PropertyStats, ttl time.Duration) error
	InvalidatePublicStats(ctx context.Context) error
	Close() error
}

type redisCache struct {
	client *redis.Client
}

// NewRedis connects to addr and pings it once.
func NewRedis(ctx context.Context, addr, password string, db int) (StatsCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &redisCache{client: client}, nil
}

func (r *redisCache) GetPublicStats(ctx context.Context) (*models.PropertyStats, error) {
	data, err := r.client.Get(ctx, publicStatsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var stats models.PropertyStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *redisCache) SetPublicStats(ctx context.Context, stats models.PropertyStats, ttl time.Duration) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, publicStatsKey, data, ttl).Err()
}

func (r *redisCache) InvalidatePublicStats(ctx context.Context) error {
	return r.client.Del(ctx, publicStatsKey).Err()
}

func (r *redisCache) Close() error {
	return r.client.Close()
}

type noopCache struct{}

// NewNoop returns a cache that never hits, used when Redis is not
// configured.
func NewNoop() StatsCache { return noopCache{} }

func (noopCache) GetPublicStats(context.Context) (*models.PropertyStats, error) { return nil, nil }

func (noopCache) SetPublicStats(context.Context, models.PropertyStats, time.Duration) error {
	return nil
}

func (noopCache) InvalidatePublicStats(context.Context) error { return nil }

func (noopCache) Close() error { return nil }
