// Package seed populates an empty catalog with demo products.
package seed

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/shoplens/catalog/internal/domain"
	"github.com/shoplens/catalog/internal/domain/category"
)

// Store is the persistence surface the seeder needs.
type Store interface {
	Count(ctx context.Context) (int64, error)
	InsertMany(ctx context.Context, products []domain.Product) error
}

// PerCategory is how many products each category gets.
const PerCategory = 20

type template struct {
	name        string
	description string
	minPrice    float64
	maxPrice    float64
}

var templates = map[string]template{
	"Beauty":              {"Face Cream", "Hydrating face cream with natural ingredients", 19, 79},
	"Fragrances":          {"Luxury Perfume", "Long-lasting fragrance with premium ingredients", 49, 299},
	"Furniture":           {"Modern Sofa", "Comfortable and stylish modern sofa with premium materials", 499, 1999},
	"Groceries":           {"Organic Groceries", "Fresh organic produce and pantry staples", 5, 50},
	"Home Decoration":     {"Wall Art", "Contemporary wall art pieces for home decoration", 29, 199},
	"Kitchen Accessories": {"Kitchen Set", "Complete set of essential kitchen accessories", 49, 299},
	"Laptops":             {"Premium Laptop", "High-performance laptop with latest specifications", 799, 2499},
	"Mens Shirts":         {"Classic Shirt", "Premium cotton shirt with modern fit", 29, 99},
	"Mens Shoes":          {"Running Shoes", "Professional running shoes with advanced cushioning", 79, 199},
	"Mens Watches":        {"Luxury Watch", "Elegant luxury watch with premium movement", 199, 999},
	"Mobile Accessories":  {"Phone Case", "Protective phone case with stylish design", 15, 49},
	"Motorcycle":          {"Motorcycle Helmet", "Safety-certified motorcycle helmet with ventilation", 99, 299},
	"Skin Care":           {"Face Serum", "Anti-aging serum with vitamin C", 29, 149},
	"Smartphones":         {"Smartphone", "Latest smartphone with advanced camera system", 499, 1299},
	"Sports Accessories":  {"Sports Bag", "Durable sports bag with multiple compartments", 29, 99},
	"Sunglasses":          {"Designer Sunglasses", "UV-protected designer sunglasses", 79, 299},
	"Tablets":             {"Tablet", "Versatile tablet for work and entertainment", 299, 999},
	"Tops":                {"Casual Top", "Comfortable and stylish casual top", 19, 59},
	"Vehicle":             {"Car Accessories", "Essential car accessories and maintenance items", 9, 99},
	"Womens Bags":         {"Designer Bag", "Luxurious designer handbag with premium materials", 199, 999},
	"Womens Dresses":      {"Evening Dress", "Elegant evening dress for special occasions", 79, 299},
	"Womens Jewellery":    {"Diamond Necklace", "Stunning diamond necklace with precious metals", 299, 1999},
	"Womens Shoes":        {"High Heels", "Comfortable high heels with cushioned sole", 49, 199},
	"Womens Watches":      {"Luxury Watch", "Elegant luxury watch with premium movement", 199, 999},
}

var (
	colors = []string{"Black", "White", "Silver", "Blue", "Red", "Gold", "Brown", "Green", "Purple"}
	sizes  = []string{"Small", "Medium", "Large", "XL", "XXL"}
)

// Run seeds the store with demo products unless it already holds any.
func Run(ctx context.Context, store Store, log *zap.Logger) error {
	count, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("count existing products: %w", err)
	}
	if count > 0 {
		log.Info("catalog already populated, skipping seed", zap.Int64("products", count))
		return nil
	}

	products := Generate(rand.New(rand.NewSource(time.Now().UnixNano())))
	if err := store.InsertMany(ctx, products); err != nil {
		return fmt.Errorf("seed products: %w", err)
	}

	log.Info("seeded catalog", zap.Int("products", len(products)))
	return nil
}

// Generate builds PerCategory demo products for every known category.
func Generate(rng *rand.Rand) []domain.Product {
	products := make([]domain.Product, 0, len(category.Names())*PerCategory)
	for _, cat := range category.Names() {
		for i := 0; i < PerCategory; i++ {
			products = append(products, product(rng, cat))
		}
	}
	return products
}

func product(rng *rand.Rand, cat string) domain.Product {
	tpl := templates[cat]

	price := tpl.minPrice + math.Floor(rng.Float64()*(tpl.maxPrice-tpl.minPrice))
	color := colors[rng.Intn(len(colors))]
	size := sizes[rng.Intn(len(sizes))]
	inStock := rng.Float64() > 0.2
	rating := math.Round((rng.Float64()*3+2)*10) / 10

	stockText := "In stock"
	if !inStock {
		stockText = "Out of stock"
	}

	return domain.Product{
		Name: fmt.Sprintf("%s %s %s", tpl.name, color, size),
		Description: fmt.Sprintf("%s Available in %s color and %s size. %s. Rated %.1f/5.0 by our customers.",
			tpl.description, color, size, stockText, rating),
		Price:    price,
		Category: cat,
		ImageURL: "https://placehold.co/400x300?text=" + url.QueryEscape(color+" "+tpl.name),
		Attributes: map[string]any{
			"color":        color,
			"size":         size,
			"inStock":      inStock,
			"rating":       rating,
			"manufacturer": cat + " Pro",
			"modelYear":    2023 + rng.Intn(2),
		},
	}
}
