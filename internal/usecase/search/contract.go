package search

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/shoplens/catalog/internal/domain"
	domsearch "github.com/shoplens/catalog/internal/domain/search"
)

// Extractor turns a free-text query into structured attributes.
type Extractor interface {
	Extract(ctx context.Context, query string) (domsearch.Attributes, error)
}

// Repository runs compiled filters against the product store.
type Repository interface {
	Find(ctx context.Context, filter bson.M, limit int) ([]domain.Product, error)
}
