package storage

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/pos-cart/internal/core/domain"
)

func setupTestRedis(t *testing.T) (*RedisAdapter, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisAdapter(client, time.Hour), mr
}

func newTestCart(id string) *domain.Cart {
	c := domain.NewCart(id, time.Now().UTC())
	c.AddLine(domain.Product{ID: domain.ProductCheese, Name: "Cheese", Price: 0.90})
	c.Version = 1
	return c
}

func TestRedisSaveAndGetCart(t *testing.T) {
	adapter, mr := setupTestRedis(t)
	ctx := context.Background()

	cart := newTestCart("c1")
	require.NoError(t, adapter.SaveCart(ctx, cart))

	got, err := adapter.GetCart(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", got.ID)
	assert.Equal(t, 1, got.Version)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, domain.ProductCheese, got.Lines[0].Product.ID)

	assert.Equal(t, "1", mr.HGet("cart:c1", "version"))
	assert.Greater(t, mr.TTL("cart:c1"), time.Duration(0))
}

func TestRedisGetCart_NotFound(t *testing.T) {
	adapter, _ := setupTestRedis(t)

	_, err := adapter.GetCart(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrCartNotFound)
}

func TestRedisGetCart_Expired(t *testing.T) {
	adapter, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, adapter.SaveCart(ctx, newTestCart("c1")))
	mr.FastForward(2 * time.Hour)

	_, err := adapter.GetCart(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrCartNotFound)
}

func TestRedisSaveCart_VersionConflict(t *testing.T) {
	adapter, _ := setupTestRedis(t)
	ctx := context.Background()

	cart := newTestCart("c1")
	require.NoError(t, adapter.SaveCart(ctx, cart))

	// creating the same cart again must not overwrite it
	assert.ErrorIs(t, adapter.SaveCart(ctx, newTestCart("c1")), domain.ErrVersionConflict)

	next := cart.Clone()
	next.Version = 2
	require.NoError(t, adapter.SaveCart(ctx, next))

	stale := cart.Clone()
	stale.Version = 2
	assert.ErrorIs(t, adapter.SaveCart(ctx, stale), domain.ErrVersionConflict)
}

func TestRedisSaveCart_ConcurrentWritersOneWins(t *testing.T) {
	adapter, _ := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, adapter.SaveCart(ctx, newTestCart("c1")))

	var successCount atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			next := newTestCart("c1")
			next.Version = 2
			if err := adapter.SaveCart(ctx, next); err == nil {
				successCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successCount.Load())
}

func TestRedisReleaseIdempotency(t *testing.T) {
	adapter, mr := setupTestRedis(t)
	ctx := context.Background()

	ok, err := adapter.SetIdempotency(ctx, "idem:cart:c1:req-1")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, adapter.ReleaseIdempotency(ctx, "idem:cart:c1:req-1"))
	assert.False(t, mr.Exists("idem:cart:c1:req-1"))

	// released keys can be claimed again
	ok, err = adapter.SetIdempotency(ctx, "idem:cart:c1:req-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSetIdempotency_Success(t *testing.T) {
	adapter, _ := setupTestRedis(t)
	ctx := context.Background()

	// First call should succeed
	ok, err := adapter.SetIdempotency(ctx, "test-idem-key")
	require.NoError(t, err)
	assert.True(t, ok)

	// Second call should fail (key exists)
	ok, err = adapter.SetIdempotency(ctx, "test-idem-key")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetIdempotency_Concurrent(t *testing.T) {
	adapter, _ := setupTestRedis(t)
	ctx := context.Background()

	var successCount atomic.Int32
	var wg sync.WaitGroup
	concurrency := 100

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := adapter.SetIdempotency(ctx, "concurrent-idem-key")
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if ok {
				successCount.Add(1)
			}
		}()
	}

	wg.Wait()

	// Only one should succeed
	assert.Equal(t, int32(1), successCount.Load())
}
