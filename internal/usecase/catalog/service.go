// Package catalog implements product CRUD and paginated listing.
package catalog

import (
	"context"
	"fmt"

	"github.com/shoplens/catalog/internal/domain"
)

// DefaultPageSize is the list page size when the caller does not specify one.
const DefaultPageSize = 12

// Service handles product lifecycle operations.
type Service struct {
	repo     Repository
	pageSize int
}

// New creates a catalog service.
func New(repo Repository) *Service {
	return &Service{repo: repo, pageSize: DefaultPageSize}
}

// WithPageSize overrides the default list page size.
func (s *Service) WithPageSize(n int) *Service {
	if n > 0 {
		s.pageSize = n
	}
	return s
}

// Page is one slice of the catalog sorted by ascending price.
type Page struct {
	Total       int64
	CurrentPage int
	TotalPages  int
	Products    []domain.Product
}

// List returns the requested page. Non-positive limit and page fall back to
// the defaults (page size and page 1).
func (s *Service) List(ctx context.Context, limit, page int) (Page, error) {
	if limit <= 0 {
		limit = s.pageSize
	}
	if page <= 0 {
		page = 1
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return Page{}, fmt.Errorf("count products: %w", err)
	}

	offset := int64(page-1) * int64(limit)
	products, err := s.repo.List(ctx, offset, int64(limit))
	if err != nil {
		return Page{}, fmt.Errorf("list products: %w", err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return Page{
		Total:       total,
		CurrentPage: page,
		TotalPages:  totalPages,
		Products:    products,
	}, nil
}

// Get fetches one product by id.
func (s *Service) Get(ctx context.Context, id string) (domain.Product, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product %s: %w", id, err)
	}
	return p, nil
}

// Create validates and stores a new product.
func (s *Service) Create(ctx context.Context, p *domain.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.repo.Insert(ctx, p); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// Update validates and overwrites an existing product, returning the stored
// document.
func (s *Service) Update(ctx context.Context, id string, p domain.Product) (domain.Product, error) {
	if err := p.Validate(); err != nil {
		return domain.Product{}, err
	}
	updated, err := s.repo.Update(ctx, id, p)
	if err != nil {
		return domain.Product{}, fmt.Errorf("update product %s: %w", id, err)
	}
	return updated, nil
}

// Delete removes a product by id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	return nil
}
