package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

// AvailabilityCache はイベント単位の空き在庫マップ（区分名→残数）をキャッシュする
// 派生データであり、常にDBから再構築できる。在庫状態の書き込み先には決してしない
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAvailabilityCache は新しいAvailabilityCacheインスタンスを作成する
func NewAvailabilityCache(client *redis.Client, ttl time.Duration) *AvailabilityCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &AvailabilityCache{client: client, ttl: ttl}
}

// GetCapacity はイベントの空き在庫マップをキャッシュから取得する
func (c *AvailabilityCache) GetCapacity(ctx context.Context, eventID string) (map[string]int, error) {
	key := c.capacityKey(eventID)
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}

	var capacity map[string]int
	if err := json.Unmarshal([]byte(val), &capacity); err != nil {
		return nil, fmt.Errorf("キャッシュ復元に失敗: %w", err)
	}
	return capacity, nil
}

// SetCapacity はイベントの空き在庫マップをキャッシュに保存する
func (c *AvailabilityCache) SetCapacity(ctx context.Context, eventID string, capacity map[string]int) error {
	data, err := json.Marshal(capacity)
	if err != nil {
		return fmt.Errorf("キャッシュ変換に失敗: %w", err)
	}
	if err := c.client.Set(ctx, c.capacityKey(eventID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate はイベントのキャッシュを無効化する
func (c *AvailabilityCache) Invalidate(ctx context.Context, eventID string) error {
	if err := c.client.Del(ctx, c.capacityKey(eventID)).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func (c *AvailabilityCache) capacityKey(eventID string) string {
	return fmt.Sprintf("inventory:available:%s", eventID)
}
