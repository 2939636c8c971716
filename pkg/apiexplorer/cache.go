package apiexplorer

import (
	"context"
	"encoding/json"
	"time"

	"rag-api-explorer-be/internal/pkg/logger"
	"rag-api-explorer-be/pkg/store"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

const infoCacheKeyPrefix = "explorer:info:"

// InfoCache keeps exploration results in a process-local LRU backed by Redis.
// A nil Redis client leaves only the local tier.
type InfoCache struct {
	local  *expirable.LRU[string, *store.APIInfo]
	rdb    *redis.Client
	ttl    time.Duration
	logger logger.ILogger
}

func NewInfoCache(size int, ttl time.Duration, rdb *redis.Client, log logger.ILogger) *InfoCache {
	if size <= 0 {
		size = 128
	}
	return &InfoCache{
		local:  expirable.NewLRU[string, *store.APIInfo](size, nil, ttl),
		rdb:    rdb,
		ttl:    ttl,
		logger: log,
	}
}

func (c *InfoCache) Get(ctx context.Context, baseURL string) (*store.APIInfo, bool) {
	if info, ok := c.local.Get(baseURL); ok {
		return cloneInfo(info), true
	}
	if c.rdb == nil {
		return nil, false
	}

	raw, err := c.rdb.Get(ctx, infoCacheKeyPrefix+baseURL).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("EXPLORER", "Redis cache read failed", map[string]interface{}{
				"url":   baseURL,
				"error": err.Error(),
			})
		}
		return nil, false
	}

	var info store.APIInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, false
	}
	c.local.Add(baseURL, &info)
	return cloneInfo(&info), true
}

func (c *InfoCache) Set(ctx context.Context, info *store.APIInfo) {
	c.local.Add(info.BaseURL, cloneInfo(info))
	if c.rdb == nil {
		return
	}

	raw, err := json.Marshal(info)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, infoCacheKeyPrefix+info.BaseURL, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("EXPLORER", "Redis cache write failed", map[string]interface{}{
			"url":   info.BaseURL,
			"error": err.Error(),
		})
	}
}

func cloneInfo(info *store.APIInfo) *store.APIInfo {
	if info == nil {
		return nil
	}
	out := *info
	out.Endpoints = append([]store.Endpoint(nil), info.Endpoints...)
	return &out
}
