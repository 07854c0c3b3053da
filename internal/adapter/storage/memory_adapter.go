package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rl1809/pos-cart/internal/core/domain"
)

type memoryCart struct {
	data      []byte
	version   int
	expiresAt time.Time
}

// MemoryAdapter keeps carts and idempotency keys in process. It mirrors the
// Redis adapter, including expiry and version checks, for single-node runs and tests.
type MemoryAdapter struct {
	mu      sync.Mutex
	carts   map[string]memoryCart
	keys    map[string]time.Time
	cartTTL time.Duration
	now     func() time.Time
}

func NewMemoryAdapter(cartTTL time.Duration) *MemoryAdapter {
	if cartTTL <= 0 {
		cartTTL = defaultCartTTL
	}
	return &MemoryAdapter{
		carts:   make(map[string]memoryCart),
		keys:    make(map[string]time.Time),
		cartTTL: cartTTL,
		now:     time.Now,
	}
}

func (m *MemoryAdapter) GetCart(ctx context.Context, cartID string) (*domain.Cart, error) {
	m.mu.Lock()
	entry, ok := m.liveCart(cartID)
	m.mu.Unlock()
	if !ok {
		return nil, domain.ErrCartNotFound
	}

	var cart domain.Cart
	if err := json.Unmarshal(entry.data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	return &cart, nil
}

func (m *MemoryAdapter) SaveCart(ctx context.Context, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current := 0
	if entry, ok := m.liveCart(cart.ID); ok {
		current = entry.version
	}
	if current != cart.Version-1 {
		return domain.ErrVersionConflict
	}

	m.carts[cart.ID] = memoryCart{
		data:      data,
		version:   cart.Version,
		expiresAt: m.now().Add(m.cartTTL),
	}
	return nil
}

func (m *MemoryAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if exp, ok := m.keys[key]; ok && now.Before(exp) {
		return false, nil
	}
	m.keys[key] = now.Add(idempotencyKeyTTL)
	return true, nil
}

func (m *MemoryAdapter) ReleaseIdempotency(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}

// liveCart must be called with mu held.
func (m *MemoryAdapter) liveCart(cartID string) (memoryCart, bool) {
	entry, ok := m.carts[cartID]
	if !ok {
		return memoryCart{}, false
	}
	if !m.now().Before(entry.expiresAt) {
		delete(m.carts, cartID)
		return memoryCart{}, false
	}
	return entry, true
}
