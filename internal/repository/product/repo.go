// Package product is the MongoDB-backed product repository.
package product

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shoplens/catalog/internal/domain"
)

// priceAsc is the stable default ordering for every listing and search.
var priceAsc = bson.D{{Key: "price", Value: 1}}

// searchProjection limits search results to the fields the search response
// exposes.
var searchProjection = bson.M{
	"name":        1,
	"description": 1,
	"price":       1,
	"category":    1,
	"imageUrl":    1,
	"attributes":  1,
}

// Repository persists products in a MongoDB collection.
type Repository struct {
	coll *mongo.Collection
}

// New creates a product repository over the given collection.
func New(coll *mongo.Collection) *Repository {
	return &Repository{coll: coll}
}

// Count returns the total number of products.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// List returns a page of products sorted by ascending price.
func (r *Repository) List(ctx context.Context, offset, limit int64) ([]domain.Product, error) {
	opts := options.Find().
		SetSort(priceAsc).
		SetSkip(offset).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return decodeAll(ctx, cursor)
}

// Get fetches a product by its hex id.
func (r *Repository) Get(ctx context.Context, id string) (domain.Product, error) {
	oid, err := objectID(id)
	if err != nil {
		return domain.Product{}, err
	}

	var p domain.Product
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Product{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Insert stores a new product, assigning its id and timestamps.
func (r *Repository) Insert(ctx context.Context, p *domain.Product) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Attributes == nil {
		p.Attributes = map[string]any{}
	}

	res, err := r.coll.InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid
	}
	return nil
}

// InsertMany stores a batch of products in one round trip.
func (r *Repository) InsertMany(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	now := time.Now().UTC()
	docs := make([]any, len(products))
	for i := range products {
		products[i].CreatedAt = now
		products[i].UpdatedAt = now
		if products[i].Attributes == nil {
			products[i].Attributes = map[string]any{}
		}
		docs[i] = products[i]
	}

	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert products: %w", err)
	}
	return nil
}

// Update overwrites the mutable fields of an existing product and returns the
// stored document.
func (r *Repository) Update(ctx context.Context, id string, p domain.Product) (domain.Product, error) {
	oid, err := objectID(id)
	if err != nil {
		return domain.Product{}, err
	}

	set := bson.M{
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"category":    p.Category,
		"imageUrl":    p.ImageURL,
		"updatedAt":   time.Now().UTC(),
	}
	if p.Attributes != nil {
		set["attributes"] = p.Attributes
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated domain.Product
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Product{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("update product: %w", err)
	}
	return updated, nil
}

// Delete removes a product by id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Find runs a compiled search filter, projecting the search response fields,
// sorted by ascending price and capped at limit.
func (r *Repository) Find(ctx context.Context, filter bson.M, limit int) ([]domain.Product, error) {
	opts := options.Find().
		SetProjection(searchProjection).
		SetSort(priceAsc).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	return decodeAll(ctx, cursor)
}

func decodeAll(ctx context.Context, cursor *mongo.Cursor) ([]domain.Product, error) {
	products := []domain.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

// objectID parses a hex id. Unparseable ids map to ErrNotFound: such an id
// cannot reference any stored product.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.ObjectID{}, domain.ErrNotFound
	}
	return oid, nil
}
