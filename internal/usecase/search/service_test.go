package search

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/shoplens/catalog/internal/domain"
	domsearch "github.com/shoplens/catalog/internal/domain/search"
)

type stubExtractor struct {
	attrs domsearch.Attributes
	err   error
	calls int
}

func (s *stubExtractor) Extract(_ context.Context, _ string) (domsearch.Attributes, error) {
	s.calls++
	return s.attrs, s.err
}

type stubRepo struct {
	products   []domain.Product
	err        error
	gotFilter  bson.M
	gotLimit   int
	findCalled bool
}

func (s *stubRepo) Find(_ context.Context, filter bson.M, limit int) ([]domain.Product, error) {
	s.findCalled = true
	s.gotFilter = filter
	s.gotLimit = limit
	return s.products, s.err
}

func TestService_Search(t *testing.T) {
	attrs := domsearch.Attributes{
		Keywords:   []string{"sofa"},
		Categories: []string{"Furniture"},
	}
	products := []domain.Product{{Name: "Modern Sofa", Price: 799}}
	extractor := &stubExtractor{attrs: attrs}
	repo := &stubRepo{products: products}

	result, err := New(repo, extractor).Search(context.Background(), "blue sofa")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if result.Query != "blue sofa" {
		t.Errorf("result.Query = %q", result.Query)
	}
	if !reflect.DeepEqual(result.Attributes, attrs) {
		t.Errorf("result.Attributes = %+v, want %+v", result.Attributes, attrs)
	}
	if !reflect.DeepEqual(result.Products, products) {
		t.Errorf("result.Products = %v, want %v", result.Products, products)
	}
	if !reflect.DeepEqual(repo.gotFilter, Compile(attrs)) {
		t.Errorf("repo filter = %v, want compiled attributes", repo.gotFilter)
	}
	if repo.gotLimit != DefaultLimit {
		t.Errorf("repo limit = %d, want %d", repo.gotLimit, DefaultLimit)
	}
}

func TestService_Search_ExtractionFailureFallsBack(t *testing.T) {
	extractor := &stubExtractor{err: errors.New("completion API unreachable")}
	repo := &stubRepo{}

	result, err := New(repo, extractor).Search(context.Background(), "Blue SOFA under 900")
	if err != nil {
		t.Fatalf("Search() error = %v, extraction failures must not surface", err)
	}
	if !repo.findCalled {
		t.Fatal("repository was not queried after fallback")
	}

	wantKeywords := []string{"blue", "sofa", "under", "900"}
	if !reflect.DeepEqual(result.Attributes.Keywords, wantKeywords) {
		t.Errorf("fallback keywords = %v, want %v", result.Attributes.Keywords, wantKeywords)
	}
	if len(result.Attributes.Categories) != 0 {
		t.Errorf("fallback categories = %v, want none", result.Attributes.Categories)
	}
}

func TestService_Search_StoreErrorSurfaces(t *testing.T) {
	storeErr := errors.New("server selection timeout")
	repo := &stubRepo{err: storeErr}

	_, err := New(repo, &stubExtractor{}).Search(context.Background(), "sofa")
	if !errors.Is(err, storeErr) {
		t.Fatalf("Search() error = %v, want wrapped store error", err)
	}
}

func TestService_WithLimit(t *testing.T) {
	repo := &stubRepo{}
	svc := New(repo, &stubExtractor{}).WithLimit(25)

	if _, err := svc.Search(context.Background(), "sofa"); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if repo.gotLimit != 25 {
		t.Errorf("repo limit = %d, want 25", repo.gotLimit)
	}

	// non-positive overrides are ignored
	if svc.WithLimit(0).limit != 25 {
		t.Errorf("limit after WithLimit(0) = %d, want 25", svc.limit)
	}
}
