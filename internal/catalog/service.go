package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stocklane/stocklane/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	Create(ctx context.Context, input ProductInput) (int64, error)
	Update(ctx context.Context, id int64, input ProductInput) error
	Archive(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (Product, error)
	List(ctx context.Context, filters ListFilters) ([]Product, int, error)
	ListLowStock(ctx context.Context) ([]LowStockItem, error)
}

// CachePort is the tagged cache consumed by listings.
type CachePort interface {
	FetchJSON(ctx context.Context, key string, tags []string, dest any, loader func(context.Context) (any, error)) error
	Invalidate(ctx context.Context, tags ...string) error
}

// Service coordinates catalog operations.
type Service struct {
	repo   RepositoryPort
	cache  CachePort
	logger *slog.Logger
}

// NewService builds a Service.
func NewService(repo RepositoryPort, cache CachePort, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// ListResult bundles a product page with pagination metadata.
type ListResult struct {
	Products   []Product         `json:"products"`
	Pagination shared.Pagination `json:"pagination"`
}

// Create validates and inserts a product.
func (s *Service) Create(ctx context.Context, input ProductInput) (Product, error) {
	if err := validateProduct(input); err != nil {
		return Product{}, err
	}
	id, err := s.repo.Create(ctx, input)
	if err != nil {
		s.logger.Error("create product failed", slog.Any("error", err))
		return Product{}, fmt.Errorf("catalog: create: %w", shared.ErrPersistence)
	}
	s.invalidate(ctx)
	return s.repo.Get(ctx, id)
}

// Update validates and updates a product's descriptive fields and prices.
func (s *Service) Update(ctx context.Context, id int64, input ProductInput) (Product, error) {
	if err := validateProduct(input); err != nil {
		return Product{}, err
	}
	if err := s.repo.Update(ctx, id, input); err != nil {
		return Product{}, err
	}
	s.invalidate(ctx)
	return s.repo.Get(ctx, id)
}

// Archive marks a product archived, removing it from active listings and
// reports. Archiving is the only removal path for products with history.
func (s *Service) Archive(ctx context.Context, id int64) error {
	if err := s.repo.Archive(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Get returns a single product.
func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	return s.repo.Get(ctx, id)
}

// List returns a cached page of products.
func (s *Service) List(ctx context.Context, filters ListFilters) (ListResult, error) {
	key := fmt.Sprintf("products:list:%d:%d:%t:%s", filters.Page, filters.PerPage, filters.IncludeArchived, filters.Search)
	var result ListResult
	err := s.cache.FetchJSON(ctx, key, []string{"products"}, &result, func(ctx context.Context) (any, error) {
		products, total, err := s.repo.List(ctx, filters)
		if err != nil {
			return nil, err
		}
		return ListResult{
			Products:   products,
			Pagination: shared.NewPagination(filters.Page, filters.PerPage, total),
		}, nil
	})
	if err != nil {
		return ListResult{}, err
	}
	return result, nil
}

// CheckLowStock returns the current low-stock set without caching; it backs
// the notification poll.
func (s *Service) CheckLowStock(ctx context.Context) ([]LowStockItem, error) {
	return s.repo.ListLowStock(ctx)
}

func (s *Service) invalidate(ctx context.Context) {
	// Archiving or repricing shifts listings and valuation; eviction failure
	// must not undo the committed write.
	if err := s.cache.Invalidate(ctx, "products", "reports"); err != nil {
		s.logger.Warn("catalog cache invalidation failed", slog.Any("error", err))
	}
}
