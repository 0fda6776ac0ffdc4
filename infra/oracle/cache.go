package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kopong25/freightquick/core/model"
	coreoracle "github.com/kopong25/freightquick/core/oracle"
	"github.com/kopong25/freightquick/infra/logger"
)

// CacheConfig configures the Redis-backed leg cache.
type CacheConfig struct {
	Addr     string        `json:"addr" koanf:"addr"`
	Password string        `json:"password" koanf:"password"`
	DB       int           `json:"db" koanf:"db"`
	TTL      time.Duration `json:"ttl" koanf:"ttl"`
}

// SetDefaults fills unset fields.
func (c *CacheConfig) SetDefaults() {
	if c.TTL <= 0 {
		c.TTL = 6 * time.Hour
	}
}

// Cache decorates a DistanceOracle with a Redis leg cache. Cache failures
// degrade to the underlying oracle, never to a hard error.
type Cache struct {
	inner coreoracle.DistanceOracle
	rdb   *redis.Client
	ttl   time.Duration
	log   logger.Logger
}

// NewCache creates a Cache over the given oracle.
func NewCache(cfg CacheConfig, inner coreoracle.DistanceOracle, log logger.Logger) (*Cache, error) {
	cfg.SetDefaults()
	if inner == nil || log == nil {
		return nil, fmt.Errorf("oracle: nil parameter provided to NewCache")
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	return &Cache{inner: inner, rdb: rdb, ttl: cfg.TTL, log: log}, nil
}

func cacheKey(from, to model.Location) string {
	return "fq:leg:" + from.Key() + "|" + to.Key()
}

// Distance answers from the cache when possible, otherwise queries the inner
// oracle and stores the result.
func (c *Cache) Distance(ctx context.Context, from, to model.Location) (coreoracle.Distance, error) {
	key := cacheKey(from, to)
	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var d coreoracle.Distance
		if err := json.Unmarshal(raw, &d); err == nil {
			return d, nil
		}
		c.log.Warnf("oracle cache: bad entry for %s, evicting", key)
		c.rdb.Del(ctx, key)
	} else if err != redis.Nil {
		c.log.Warnf("oracle cache: get %s: %v", key, err)
	}

	d, err := c.inner.Distance(ctx, from, to)
	if err != nil {
		return coreoracle.Distance{}, err
	}
	if raw, err := json.Marshal(d); err == nil {
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.log.Warnf("oracle cache: set %s: %v", key, err)
		}
	}
	return d, nil
}

// Close releases the Redis connection.
func (c *Cache) Close() error {
	return c.rdb.Close()
}
