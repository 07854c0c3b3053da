package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/rl1809/pos-cart/internal/core/domain"
	"github.com/rl1809/pos-cart/internal/core/pricing"
	"github.com/rl1809/pos-cart/internal/metrics"
	"github.com/rl1809/pos-cart/internal/port"
)

type Option func(*CartService)

// WithMutationDelay holds every mutation for d before it is applied. The wait
// is abandoned when the request context ends.
func WithMutationDelay(d time.Duration) Option {
	return func(s *CartService) { s.delay = d }
}

func WithIdempotency(repo port.IdempotencyRepository) Option {
	return func(s *CartService) { s.idem = repo }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *CartService) { s.logger = logger }
}

func WithMetrics(m *metrics.CartMetrics) Option {
	return func(s *CartService) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *CartService) { s.now = now }
}

// CartService applies one mutation at a time per cart and reprices the whole
// cart after each one.
type CartService struct {
	carts   port.CartRepository
	idem    port.IdempotencyRepository
	catalog *CatalogService
	logger  *zap.Logger
	metrics *metrics.CartMetrics
	delay   time.Duration
	now     func() time.Time
	locks   *keyedMutex

	eventQueue chan domain.CartEvent
	closeMu    sync.RWMutex
	closed     bool
}

func NewCartService(carts port.CartRepository, catalog *CatalogService, queueSize int, opts ...Option) *CartService {
	s := &CartService{
		carts:      carts,
		catalog:    catalog,
		logger:     zap.NewNop(),
		now:        time.Now,
		locks:      newKeyedMutex(),
		eventQueue: make(chan domain.CartEvent, queueSize),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.NewCartMetrics(prometheus.NewRegistry())
	}
	return s
}

func (s *CartService) CreateCart(ctx context.Context) (*domain.Cart, error) {
	cart := domain.NewCart(uuid.NewString(), s.now())
	cart.Version = 1

	err := s.carts.SaveCart(ctx, cart)
	s.observe(domain.EventCartCreated, cart.ID, err)
	if err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	s.emit(domain.EventCartCreated, "", cart)
	return cart, nil
}

func (s *CartService) GetCart(ctx context.Context, cartID string) (*domain.Cart, error) {
	return s.load(ctx, cartID)
}

func (s *CartService) AddLine(ctx context.Context, cartID, productID, requestID string) (*domain.Cart, error) {
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		s.observe(domain.EventLineAdded, cartID, err)
		return nil, err
	}

	return s.mutate(ctx, mutation{
		op:        domain.EventLineAdded,
		cartID:    cartID,
		productID: productID,
		requestID: requestID,
		apply: func(c *domain.Cart) error {
			c.AddLine(*product)
			return nil
		},
	})
}

func (s *CartService) RemoveLine(ctx context.Context, cartID, productID, requestID string) (*domain.Cart, error) {
	return s.mutate(ctx, mutation{
		op:        domain.EventLineRemoved,
		cartID:    cartID,
		productID: productID,
		requestID: requestID,
		apply: func(c *domain.Cart) error {
			return c.RemoveLine(productID)
		},
	})
}

// SetQuantity replaces the quantity of an existing line; zero removes the line.
func (s *CartService) SetQuantity(ctx context.Context, cartID, productID string, quantity int, requestID string) (*domain.Cart, error) {
	return s.mutate(ctx, mutation{
		op:        domain.EventQuantitySet,
		cartID:    cartID,
		productID: productID,
		requestID: requestID,
		apply: func(c *domain.Cart) error {
			return c.SetQuantity(productID, quantity)
		},
	})
}

func (s *CartService) IncrementLine(ctx context.Context, cartID, productID, requestID string) (*domain.Cart, error) {
	return s.mutate(ctx, mutation{
		op:        domain.EventLineIncremented,
		cartID:    cartID,
		productID: productID,
		requestID: requestID,
		apply: func(c *domain.Cart) error {
			return c.IncrementLine(productID)
		},
	})
}

func (s *CartService) DecrementLine(ctx context.Context, cartID, productID, requestID string) (*domain.Cart, error) {
	return s.mutate(ctx, mutation{
		op:        domain.EventLineDecremented,
		cartID:    cartID,
		productID: productID,
		requestID: requestID,
		apply: func(c *domain.Cart) error {
			return c.DecrementLine(productID)
		},
	})
}

func (s *CartService) ClearCart(ctx context.Context, cartID, requestID string) (*domain.Cart, error) {
	return s.mutate(ctx, mutation{
		op:        domain.EventCartCleared,
		cartID:    cartID,
		requestID: requestID,
		apply: func(c *domain.Cart) error {
			c.Clear()
			return nil
		},
	})
}

func (s *CartService) GetEventQueue() <-chan domain.CartEvent {
	return s.eventQueue
}

// Close stops event delivery; mutations after Close still succeed but emit nothing.
func (s *CartService) Close() {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.eventQueue)
	}
}

type mutation struct {
	op        domain.CartEventType
	cartID    string
	productID string
	requestID string
	apply     func(*domain.Cart) error
}

func (s *CartService) mutate(ctx context.Context, m mutation) (cart *domain.Cart, err error) {
	defer func() { s.observe(m.op, m.cartID, err) }()

	if m.requestID != "" && s.idem != nil {
		key := idempotencyKey(m.cartID, m.requestID)
		ok, claimErr := s.idem.SetIdempotency(ctx, key)
		if claimErr != nil {
			return nil, fmt.Errorf("idempotency check failed: %w", claimErr)
		}
		if !ok {
			return nil, domain.ErrDuplicateRequest
		}
		// A request that did not land must stay retryable under the same ID.
		defer func() {
			if err != nil {
				s.releaseIdempotency(ctx, key)
			}
		}()
	}

	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(m.cartID)
	defer unlock()

	current, err := s.load(ctx, m.cartID)
	if err != nil {
		return nil, err
	}

	next := current.Clone()
	if err := m.apply(next); err != nil {
		return nil, err
	}
	s.recompute(next)
	next.Version = current.Version + 1
	next.UpdatedAt = s.now()

	if err := s.carts.SaveCart(ctx, next); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	s.emit(m.op, m.productID, next)
	return next, nil
}

func (s *CartService) releaseIdempotency(ctx context.Context, key string) {
	if err := s.idem.ReleaseIdempotency(context.WithoutCancel(ctx), key); err != nil {
		s.logger.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(err))
	}
}

func (s *CartService) load(ctx context.Context, cartID string) (*domain.Cart, error) {
	cart, err := s.carts.GetCart(ctx, cartID)
	if errors.Is(err, domain.ErrCartNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if err := pricing.Validate(cart.Lines); err != nil {
		return nil, fmt.Errorf("%w: cart %s: %w", domain.ErrCorruptCart, cartID, err)
	}
	return cart, nil
}

func (s *CartService) recompute(c *domain.Cart) {
	start := time.Now()
	c.CartComputation = pricing.Recompute(c.Lines)
	s.metrics.RecomputeSeconds.Observe(time.Since(start).Seconds())
}

func (s *CartService) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *CartService) emit(op domain.CartEventType, productID string, c *domain.Cart) {
	event := domain.CartEvent{
		ID:           uuid.NewString(),
		CartID:       c.ID,
		Version:      c.Version,
		Type:         op,
		ProductID:    productID,
		Subtotal:     c.Subtotal,
		TotalSavings: c.TotalSavings,
		FinalTotal:   c.FinalTotal,
		ItemCount:    c.ItemCount(),
		Offers:       append([]domain.AppliedOffer(nil), c.Offers...),
		OccurredAt:   s.now(),
	}

	s.closeMu.RLock()
	defer s.closeMu.RUnlock()
	if s.closed {
		return
	}

	select {
	case s.eventQueue <- event:
	default:
		s.metrics.EventsDropped.Inc()
		s.logger.Warn("event queue full, dropping cart event",
			zap.String("cart_id", c.ID), zap.String("type", string(op)))
	}
}

func (s *CartService) observe(op domain.CartEventType, cartID string, err error) {
	result := resultLabel(err)
	s.metrics.Mutations.WithLabelValues(string(op), result).Inc()

	switch result {
	case "ok":
		s.logger.Debug("cart updated", zap.String("op", string(op)), zap.String("cart_id", cartID))
	case "error":
		s.logger.Error("cart update failed", zap.String("op", string(op)), zap.String("cart_id", cartID), zap.Error(err))
	default:
		s.logger.Info("cart update rejected", zap.String("op", string(op)), zap.String("cart_id", cartID), zap.Error(err))
	}
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrCorruptCart):
		return "error"
	case errors.Is(err, domain.ErrCartNotFound),
		errors.Is(err, domain.ErrLineNotFound),
		errors.Is(err, domain.ErrProductNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidQuantity):
		return "invalid"
	case errors.Is(err, domain.ErrDuplicateRequest):
		return "duplicate"
	case errors.Is(err, domain.ErrVersionConflict):
		return "conflict"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}

func idempotencyKey(cartID, requestID string) string {
	return fmt.Sprintf("idem:cart:%s:%s", cartID, requestID)
}
