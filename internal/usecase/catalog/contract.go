package catalog

import (
	"context"

	"github.com/shoplens/catalog/internal/domain"
)

// Repository defines the storage contract for catalog CRUD.
type Repository interface {
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, offset, limit int64) ([]domain.Product, error)
	Get(ctx context.Context, id string) (domain.Product, error)
	Insert(ctx context.Context, p *domain.Product) error
	Update(ctx context.Context, id string, p domain.Product) (domain.Product, error)
	Delete(ctx context.Context, id string) error
}
