package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/shoplens/catalog/internal/domain"
	domsearch "github.com/shoplens/catalog/internal/domain/search"
	"github.com/shoplens/catalog/internal/logger"
	"github.com/shoplens/catalog/internal/metrics"
)

// DefaultLimit caps the number of products returned per search call.
const DefaultLimit = 10

// Service runs the natural-language search pipeline: extract attributes,
// compile them into a store filter, fetch matching products.
type Service struct {
	repo      Repository
	extractor Extractor
	limit     int
}

// New creates a search service.
func New(repo Repository, extractor Extractor) *Service {
	return &Service{repo: repo, extractor: extractor, limit: DefaultLimit}
}

// WithLimit overrides the per-search result cap.
func (s *Service) WithLimit(limit int) *Service {
	if limit > 0 {
		s.limit = limit
	}
	return s
}

// Result is a resolved search: the original query, the attributes it resolved
// to, and the matching products sorted by ascending price.
type Result struct {
	Query      string
	Attributes domsearch.Attributes
	Products   []domain.Product
}

// Search resolves a query end to end. Extraction failures are absorbed: the
// pipeline degrades to naive keyword splitting and still produces a
// best-effort result. Store failures surface, since the response cannot be
// trusted without the data.
func (s *Service) Search(ctx context.Context, query string) (Result, error) {
	attrs, err := s.extractor.Extract(ctx, query)
	if err != nil {
		logger.FromContext(ctx).Warn("attribute extraction failed, falling back to keywords",
			zap.String("query", query), zap.Error(err))
		metrics.ExtractionFallbacksTotal.Inc()
		attrs = domsearch.Fallback(query)
	}

	filter := Compile(attrs)
	logger.FromContext(ctx).Debug("compiled search filter",
		zap.Any("attributes", attrs), zap.Any("filter", filter))

	products, err := s.repo.Find(ctx, filter, s.limit)
	if err != nil {
		return Result{}, fmt.Errorf("find products: %w", err)
	}

	return Result{Query: query, Attributes: attrs, Products: products}, nil
}
