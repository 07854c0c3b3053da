package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/pos-cart/internal/core/domain"
)

const (
	cartKeyPrefix     = "cart:"
	idempotencyKeyTTL = 24 * time.Hour
	defaultCartTTL    = 24 * time.Hour
)

// A cart is a hash of {version, data}. The write only lands when the stored
// version is the one the caller read; a missing key counts as version 0.
var saveCartScript = redis.NewScript(`
local key = KEYS[1]
local expected = tonumber(ARGV[1])

local current = tonumber(redis.call('HGET', key, 'version') or '0')
if current ~= expected then
	return 0
end

redis.call('HSET', key, 'version', ARGV[2], 'data', ARGV[3])
redis.call('PEXPIRE', key, ARGV[4])
return 1
`)

type RedisAdapter struct {
	client  *redis.Client
	cartTTL time.Duration
}

func NewRedisAdapter(client *redis.Client, cartTTL time.Duration) *RedisAdapter {
	if cartTTL <= 0 {
		cartTTL = defaultCartTTL
	}
	return &RedisAdapter{client: client, cartTTL: cartTTL}
}

func (r *RedisAdapter) GetCart(ctx context.Context, cartID string) (*domain.Cart, error) {
	data, err := r.client.HGet(ctx, cartKey(cartID), "data").Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	return &cart, nil
}

func (r *RedisAdapter) SaveCart(ctx context.Context, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	result, err := saveCartScript.Run(ctx, r.client, []string{cartKey(cart.ID)},
		cart.Version-1, cart.Version, data, r.cartTTL.Milliseconds(),
	).Int()
	if err != nil {
		return fmt.Errorf("redis save cart: %w", err)
	}
	if result == 0 {
		return domain.ErrVersionConflict
	}
	return nil
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, 1, idempotencyKeyTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func (r *RedisAdapter) ReleaseIdempotency(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis release idempotency key: %w", err)
	}
	return nil
}

func cartKey(cartID string) string {
	return cartKeyPrefix + cartID
}
