// internal/storage/configcache.go
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"academic-notifications/internal/common/logger"
	"academic-notifications/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	configKeyPrefix = "notify:config:"
	rulesKeyPrefix  = "notify:rules:"
)

// CachedConfigStore is a redis read-through decorator over a ConfigStore.
// Configurations are read on every dispatch and edited rarely, so stale reads
// within the TTL are acceptable. Cache failures degrade to the inner store.
type CachedConfigStore struct {
	inner ConfigStore
	rdb   *redis.Client
	ttl   time.Duration
	log   logger.Logger
}

func NewCachedConfigStore(inner ConfigStore, rdb *redis.Client, ttl time.Duration, log logger.Logger) *CachedConfigStore {
	return &CachedConfigStore{inner: inner, rdb: rdb, ttl: ttl, log: log}
}

func (c *CachedConfigStore) ActiveConfig(ctx context.Context, eventName string) (*models.NotificationConfiguration, error) {
	key := configKeyPrefix + eventName

	if raw, err := c.rdb.Get(ctx, key).Result(); err == nil {
		var cfg models.NotificationConfiguration
		if err := json.Unmarshal([]byte(raw), &cfg); err == nil {
			return &cfg, nil
		}
		// corrupt entry, fall through to the store
		_ = c.rdb.Del(ctx, key).Err()
	} else if err != redis.Nil {
		c.log.Warn("config cache read failed", map[string]interface{}{
			"eventName": eventName, "error": err.Error(),
		})
	}

	cfg, err := c.inner.ActiveConfig(ctx, eventName)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(cfg); err == nil {
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.log.Warn("config cache write failed", map[string]interface{}{
				"eventName": eventName, "error": err.Error(),
			})
		}
	}
	return cfg, nil
}

func (c *CachedConfigStore) Rules(ctx context.Context, configID int64) ([]models.RecipientRule, error) {
	key := fmt.Sprintf("%s%d", rulesKeyPrefix, configID)

	if raw, err := c.rdb.Get(ctx, key).Result(); err == nil {
		var rules []models.RecipientRule
		if err := json.Unmarshal([]byte(raw), &rules); err == nil {
			return rules, nil
		}
		_ = c.rdb.Del(ctx, key).Err()
	} else if err != redis.Nil {
		c.log.Warn("rules cache read failed", map[string]interface{}{
			"configId": configID, "error": err.Error(),
		})
	}

	rules, err := c.inner.Rules(ctx, configID)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(rules); err == nil {
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.log.Warn("rules cache write failed", map[string]interface{}{
				"configId": configID, "error": err.Error(),
			})
		}
	}
	return rules, nil
}

// Invalidate drops the cached entries for one event's configuration. Used by
// configuration tooling after an edit.
func (c *CachedConfigStore) Invalidate(ctx context.Context, eventName string, configID int64) error {
	return c.rdb.Del(ctx, configKeyPrefix+eventName, fmt.Sprintf("%s%d", rulesKeyPrefix, configID)).Err()
}
