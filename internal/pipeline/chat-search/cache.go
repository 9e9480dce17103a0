package chatsearch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"smartshop-search/internal/common/logger"
	"smartshop-search/internal/common/metrics"
	"smartshop-search/internal/models"
)

const intentKeyPrefix = "smartshop:intent:v1:"

// IntentCache remembers parsed intents per normalized utterance. A nil
// client disables it. Redis faults are logged and treated as misses.
type IntentCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewIntentCache(client *redis.Client, ttl time.Duration, log logger.Logger) *IntentCache {
	return &IntentCache{
		client: client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "intent-cache"}),
	}
}

func (c *IntentCache) Enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// IntentKey hashes the utterance after case folding and whitespace collapse.
func IntentKey(utterance string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(utterance)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return intentKeyPrefix + hex.EncodeToString(sum[:])
}

func (c *IntentCache) Get(ctx context.Context, utterance string) (models.SearchIntent, bool) {
	if !c.Enabled() {
		return models.SearchIntent{}, false
	}

	val, err := c.client.Get(ctx, IntentKey(utterance)).Result()
	if errors.Is(err, redis.Nil) {
		metrics.IntentCacheTotal.WithLabelValues("miss").Inc()
		return models.SearchIntent{}, false
	}
	if err != nil {
		metrics.IntentCacheTotal.WithLabelValues("error").Inc()
		c.logger.Warn("intent cache read failed", map[string]interface{}{"error": err.Error()})
		return models.SearchIntent{}, false
	}

	var cached models.SearchIntent
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		metrics.IntentCacheTotal.WithLabelValues("error").Inc()
		c.logger.Warn("intent cache entry corrupt", map[string]interface{}{"error": err.Error()})
		return models.SearchIntent{}, false
	}

	metrics.IntentCacheTotal.WithLabelValues("hit").Inc()
	return models.NewSearchIntent(cached.Search, cached.MaxPrice), true
}

func (c *IntentCache) Set(ctx context.Context, utterance string, intent models.SearchIntent) {
	if !c.Enabled() {
		return
	}

	data, err := json.Marshal(intent)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, IntentKey(utterance), data, c.ttl).Err(); err != nil {
		c.logger.Warn("intent cache write failed", map[string]interface{}{"error": err.Error()})
	}
}
