package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/petzzshop/ops-backend/internal/config"
	"github.com/petzzshop/ops-backend/internal/domain"
)

const (
	decisionKeyPrefix     = "purchasing:decisions"
	decisionScanBatchSize = 100
)

// DecisionCache stores evaluated decision responses keyed by their filter
// set. The engine is deterministic over a fixed dataset, so responses are
// safe to cache until the underlying signals change.
type DecisionCache interface {
	Get(ctx context.Context, filter domain.DecisionFilter) (*domain.DecisionResponse, bool, error)
	Set(ctx context.Context, filter domain.DecisionFilter, resp *domain.DecisionResponse) error
	InvalidateAll(ctx context.Context) error
}

type redisDecisionCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopDecisionCache struct{}

// NewDecisionCache returns a Redis-backed cache, or a no-op cache when
// caching is disabled.
func NewDecisionCache(cfg config.CacheConfig) (DecisionCache, error) {
	if !cfg.Enabled {
		return &noopDecisionCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisDecisionCache{client: client, ttl: ttl}, nil
}

// NewNoopDecisionCache returns a cache that never hits.
func NewNoopDecisionCache() DecisionCache {
	return &noopDecisionCache{}
}

func (c *redisDecisionCache) Get(ctx context.Context, filter domain.DecisionFilter) (*domain.DecisionResponse, bool, error) {
	key := buildDecisionKey(filter)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var resp domain.DecisionResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, false, fmt.Errorf("decode decision cache: %w", err)
	}

	return &resp, true, nil
}

func (c *redisDecisionCache) Set(ctx context.Context, filter domain.DecisionFilter, resp *domain.DecisionResponse) error {
	key := buildDecisionKey(filter)
	payload, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode decision cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisDecisionCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, decisionKeyPrefix, decisionScanBatchSize)
}

func (n *noopDecisionCache) Get(ctx context.Context, filter domain.DecisionFilter) (*domain.DecisionResponse, bool, error) {
	return nil, false, nil
}

func (n *noopDecisionCache) Set(ctx context.Context, filter domain.DecisionFilter, resp *domain.DecisionResponse) error {
	return nil
}

func (n *noopDecisionCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildDecisionKey(filter domain.DecisionFilter) string {
	return fmt.Sprintf("%s:%s", decisionKeyPrefix, decisionFilterHash(filter))
}

// decisionFilterHash builds a stable key from the normalized filter set so
// equivalent requests share one cache entry.
func decisionFilterHash(filter domain.DecisionFilter) string {
	parts := []string{}

	if filter.Supplier != "" {
		parts = append(parts, "supplier="+strings.ToLower(strings.TrimSpace(filter.Supplier)))
	}
	if filter.Category != "" {
		parts = append(parts, "category="+strings.ToLower(strings.TrimSpace(filter.Category)))
	}
	if filter.Brand != "" {
		parts = append(parts, "brand="+strings.ToLower(strings.TrimSpace(filter.Brand)))
	}
	if filter.StockStatus != "" {
		parts = append(parts, "stock_status="+strings.ToLower(strings.TrimSpace(filter.StockStatus)))
	}
	if filter.Action != "" {
		parts = append(parts, "action="+strings.ToLower(strings.TrimSpace(filter.Action)))
	}
	if filter.MinScore != nil {
		parts = append(parts, fmt.Sprintf("min_score=%.2f", *filter.MinScore))
	}
	if filter.Limit > 0 {
		parts = append(parts, fmt.Sprintf("limit=%d", filter.Limit))
	}

	if len(parts) == 0 {
		return "default"
	}

	sort.Strings(parts)
	raw := strings.Join(parts, "|")
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}
