package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"perpboard/internal/core/port"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = 15 * time.Minute

// RedisAdapter keeps the last good price per symbol. Entries expire so
// a stale advisory price never outlives the TTL.
type RedisAdapter struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAdapter(client *redis.Client, ttl time.Duration) port.PriceCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisAdapter{client: client, ttl: ttl}
}

func priceKey(symbol string) string {
	return fmt.Sprintf("lastgood:%s", symbol)
}

func (r *RedisAdapter) SetPrice(ctx context.Context, symbol string, price float64) error {
	value := strconv.FormatFloat(price, 'f', -1, 64)
	if err := r.client.Set(ctx, priceKey(symbol), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set last good price: %w", err)
	}
	return nil
}

func (r *RedisAdapter) GetPrice(ctx context.Context, symbol string) (float64, error) {
	value, err := r.client.Get(ctx, priceKey(symbol)).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, fmt.Errorf("no cached price for %s", symbol)
		}
		return 0, fmt.Errorf("failed to get cached price: %w", err)
	}

	price, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse cached price for %s: %w", symbol, err)
	}
	return price, nil
}

func (r *RedisAdapter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
