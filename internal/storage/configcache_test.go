// internal/storage/configcache_test.go
package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"academic-notifications/internal/common/logger"
	"academic-notifications/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func newCacheFixture(t *testing.T) (*CachedConfigStore, *MemoryStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	inner := NewMemoryStore()
	cached := NewCachedConfigStore(inner, rdb, 5*time.Minute, logger.NewTestLogger(t))
	return cached, inner, mr
}

func TestCachedConfigStore_ReadThrough(t *testing.T) {
	cached, inner, mr := newCacheFixture(t)
	inner.PutConfig(models.NotificationConfiguration{
		ID: 1, EventName: "INSCRIPTION_APPROVED", SubjectTemplate: "Asunto", Active: true,
	}, models.RecipientRule{ID: 1, ConfigID: 1, Bucket: models.BucketTo, Kind: models.RuleFixedEmail, Value: "a@uni.edu", Priority: 1})

	cfg, err := cached.ActiveConfig(context.Background(), "INSCRIPTION_APPROVED")
	assert.NoError(t, err)
	assert.Equal(t, "Asunto", cfg.SubjectTemplate)
	assert.True(t, mr.Exists("notify:config:INSCRIPTION_APPROVED"))

	rules, err := cached.Rules(context.Background(), 1)
	assert.NoError(t, err)
	assert.Len(t, rules, 1)
	assert.True(t, mr.Exists("notify:rules:1"))
}

func TestCachedConfigStore_ServesFromCache(t *testing.T) {
	cached, inner, _ := newCacheFixture(t)
	inner.PutConfig(models.NotificationConfiguration{
		ID: 1, EventName: "INSCRIPTION_APPROVED", SubjectTemplate: "Asunto", Active: true,
	})

	_, err := cached.ActiveConfig(context.Background(), "INSCRIPTION_APPROVED")
	assert.NoError(t, err)

	// a later edit is invisible until the TTL or an invalidation
	inner.PutConfig(models.NotificationConfiguration{
		ID: 1, EventName: "INSCRIPTION_APPROVED", SubjectTemplate: "Nuevo asunto", Active: true,
	})

	cfg, err := cached.ActiveConfig(context.Background(), "INSCRIPTION_APPROVED")
	assert.NoError(t, err)
	assert.Equal(t, "Asunto", cfg.SubjectTemplate)
}

func TestCachedConfigStore_Invalidate(t *testing.T) {
	cached, inner, mr := newCacheFixture(t)
	inner.PutConfig(models.NotificationConfiguration{
		ID: 1, EventName: "INSCRIPTION_APPROVED", SubjectTemplate: "Asunto", Active: true,
	})

	_, err := cached.ActiveConfig(context.Background(), "INSCRIPTION_APPROVED")
	assert.NoError(t, err)

	assert.NoError(t, cached.Invalidate(context.Background(), "INSCRIPTION_APPROVED", 1))
	assert.False(t, mr.Exists("notify:config:INSCRIPTION_APPROVED"))

	inner.PutConfig(models.NotificationConfiguration{
		ID: 1, EventName: "INSCRIPTION_APPROVED", SubjectTemplate: "Nuevo asunto", Active: true,
	})
	cfg, err := cached.ActiveConfig(context.Background(), "INSCRIPTION_APPROVED")
	assert.NoError(t, err)
	assert.Equal(t, "Nuevo asunto", cfg.SubjectTemplate)
}

func TestCachedConfigStore_CorruptEntryFallsBack(t *testing.T) {
	cached, inner, mr := newCacheFixture(t)
	inner.PutConfig(models.NotificationConfiguration{
		ID: 1, EventName: "INSCRIPTION_APPROVED", SubjectTemplate: "Asunto", Active: true,
	})
	mr.Set("notify:config:INSCRIPTION_APPROVED", "not json")

	cfg, err := cached.ActiveConfig(context.Background(), "INSCRIPTION_APPROVED")
	assert.NoError(t, err)
	assert.Equal(t, "Asunto", cfg.SubjectTemplate)
}

func TestCachedConfigStore_RedisFailureDegradesToStore(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet("notify:config:INSCRIPTION_APPROVED").SetErr(errors.New("connection refused"))
	mock.Regexp().ExpectSet("notify:config:INSCRIPTION_APPROVED", `.*`, 5*time.Minute).
		SetErr(errors.New("connection refused"))

	inner := NewMemoryStore()
	inner.PutConfig(models.NotificationConfiguration{
		ID: 1, EventName: "INSCRIPTION_APPROVED", SubjectTemplate: "Asunto", Active: true,
	})
	cached := NewCachedConfigStore(inner, rdb, 5*time.Minute, logger.NewTestLogger(t))

	cfg, err := cached.ActiveConfig(context.Background(), "INSCRIPTION_APPROVED")
	assert.NoError(t, err)
	assert.Equal(t, "Asunto", cfg.SubjectTemplate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedConfigStore_MissPropagatesNotFound(t *testing.T) {
	cached, _, _ := newCacheFixture(t)

	_, err := cached.ActiveConfig(context.Background(), "NO_SUCH_EVENT")
	assert.True(t, IsNotFound(err))
}
