// Package cache хранит результаты основной классификации в Redis,
// чтобы одинаковые жалобы не отправлялись во внешний сервис повторно.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/smartcare/internal/model"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "smartcare:triage:"

// TriageCache кэш классификаций
type TriageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTriageCache создаёт кэш; ttl <= 0 означает час
func NewTriageCache(client *redis.Client, ttl time.Duration) *TriageCache {
	if client == nil {
		panic("cache: redis client required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TriageCache{client: client, ttl: ttl}
}

// Get возвращает закэшированный результат; (nil, nil) если записи нет
func (c *TriageCache) Get(ctx context.Context, symptoms string) (*model.TriageResult, error) {
	data, err := c.client.Get(ctx, Key(symptoms)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache: get: %w", err)
	}

	var result model.TriageResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("cache: decode: %w", err)
	}
	return &result, nil
}

// Set сохраняет результат с TTL
func (c *TriageCache) Set(ctx context.Context, symptoms string, result *model.TriageResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("cache: encode: %w", err)
	}
	if err := c.client.Set(ctx, Key(symptoms), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: set: %w", err)
	}
	return nil
}

// Key строит ключ по нормализованному тексту жалобы
func Key(symptoms string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(symptoms))))
	return keyPrefix + hex.EncodeToString(sum[:])
}
