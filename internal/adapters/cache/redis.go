package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	rediscache "github.com/go-redis/cache/v8"
	"github.com/go-redis/redis/v8"

	"github.com/bnema/gstin-gateway/internal/domain"
	"github.com/bnema/gstin-gateway/internal/log"
)

const redisKeyPrefix = "gstin:verify:"

// Open connects to redis and checks the connection with a ping.
func Open(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// Redis shares cached results between gateway instances. Redis failures are
// logged and reported as misses.
type Redis struct {
	c *rediscache.Cache
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{
		c: rediscache.New(&rediscache.Options{
			Redis:     client,
			Marshal:   json.Marshal,
			Unmarshal: json.Unmarshal,
		}),
	}
}

func (r *Redis) Get(ctx context.Context, gstin string) (domain.VerificationResult, bool) {
	var result domain.VerificationResult
	if err := r.c.Get(ctx, redisKeyPrefix+gstin, &result); err != nil {
		if !errors.Is(err, rediscache.ErrCacheMiss) {
			log.Warn(ctx, "redis cache get failed", "gstin", gstin, "err", err)
		}
		return domain.VerificationResult{}, false
	}
	return result, true
}

func (r *Redis) Set(ctx context.Context, gstin string, result domain.VerificationResult, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	err := r.c.Set(&rediscache.Item{
		Ctx:            ctx,
		Key:            redisKeyPrefix + gstin,
		Value:          result,
		TTL:            ttl,
		SkipLocalCache: true,
	})
	if err != nil {
		log.Warn(ctx, "redis cache set failed", "gstin", gstin, "err", err)
	}
}
