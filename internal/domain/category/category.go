// Package category holds the closed catalog category enumeration.
//
// The list is consumed in two places that must never drift apart: the
// extraction prompt sent to the completion API and the response validator
// that discards unknown categories.
package category

// names is the canonical ordering; it matches the seeded catalog.
var names = []string{
	"Beauty",
	"Fragrances",
	"Furniture",
	"Groceries",
	"Home Decoration",
	"Kitchen Accessories",
	"Laptops",
	"Mens Shirts",
	"Mens Shoes",
	"Mens Watches",
	"Mobile Accessories",
	"Motorcycle",
	"Skin Care",
	"Smartphones",
	"Sports Accessories",
	"Sunglasses",
	"Tablets",
	"Tops",
	"Vehicle",
	"Womens Bags",
	"Womens Dresses",
	"Womens Jewellery",
	"Womens Shoes",
	"Womens Watches",
}

var known = func() map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}()

// Valid reports whether name is a member of the enumeration. Matching is
// exact: validation keeps only the canonical spellings the prompt advertises.
func Valid(name string) bool {
	_, ok := known[name]
	return ok
}

// Names returns the canonical category list. The caller must not mutate it.
func Names() []string {
	return names
}
