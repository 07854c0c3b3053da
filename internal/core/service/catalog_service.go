package service

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/rl1809/pos-cart/internal/core/domain"
	"github.com/rl1809/pos-cart/internal/port"
)

// CatalogService caches products in process. Products never change once
// defined, so entries are kept for the life of the process.
type CatalogService struct {
	repo port.CatalogRepository
	sfg  singleflight.Group // Prevents concurrent loads of the same product

	mu    sync.RWMutex
	cache map[string]domain.Product
}

func NewCatalogService(repo port.CatalogRepository) *CatalogService {
	return &CatalogService{
		repo:  repo,
		cache: make(map[string]domain.Product),
	}
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	for _, p := range products {
		s.cache[p.ID] = p
	}
	s.mu.Unlock()

	return products, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	s.mu.RLock()
	p, ok := s.cache[productID]
	s.mu.RUnlock()
	if ok {
		return &p, nil
	}

	// The load is shared by every waiter, so one caller going away must not fail the rest.
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := s.sfg.Do(productID, func() (interface{}, error) {
		loaded, err := s.repo.GetProduct(loadCtx, productID)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.cache[loaded.ID] = *loaded
		s.mu.Unlock()

		return *loaded, nil
	})
	if err != nil {
		return nil, err
	}

	product := v.(domain.Product)
	return &product, nil
}
