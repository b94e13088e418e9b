// Package search defines the data contract between attribute extraction and
// query compilation.
package search

import (
	"strings"

	"github.com/shoplens/catalog/internal/domain/category"
)

// Attributes is the structured form of a free-text search query. Every field
// is independently optional; absence is a nil pointer or empty slice, never a
// missing key in the JSON rendering. Values are immutable once built.
type Attributes struct {
	Keywords   []string     `json:"keywords"`
	Categories []string     `json:"categories"`
	MinPrice   *float64     `json:"minPrice"`
	MaxPrice   *float64     `json:"maxPrice"`
	Attrs      ProductAttrs `json:"attributes"`
}

// ProductAttrs are the structured per-product facets.
type ProductAttrs struct {
	Color   *string  `json:"color"`
	Size    *string  `json:"size"`
	Rating  *float64 `json:"rating"`
	InStock *bool    `json:"inStock"`
}

// FromRaw validates an untyped completion response field by field. The model
// output has no structural guarantee, so every field is re-checked at runtime:
// wrong-typed values become nil, unknown categories are dropped silently.
// Rating is not clamped to [1,5]; out-of-range numbers pass through.
func FromRaw(raw map[string]any) Attributes {
	attrs := Attributes{
		Keywords:   stringSlice(raw["keywords"]),
		Categories: knownCategories(raw["categories"]),
	}
	attrs.MinPrice = floatOrNil(raw["minPrice"])
	attrs.MaxPrice = floatOrNil(raw["maxPrice"])

	if nested, ok := raw["attributes"].(map[string]any); ok {
		attrs.Attrs.Color = stringOrNil(nested["color"])
		attrs.Attrs.Size = stringOrNil(nested["size"])
		attrs.Attrs.Rating = floatOrNil(nested["rating"])
		attrs.Attrs.InStock = boolOrNil(nested["inStock"])
	}
	return attrs
}

// Fallback builds the degraded value used when extraction is unavailable or
// unparsable: the lower-cased whitespace split of the query as keywords and
// every other field empty. It is indistinguishable in shape from a successful
// extraction.
func Fallback(query string) Attributes {
	kw := strings.Fields(strings.ToLower(query))
	if kw == nil {
		kw = []string{}
	}
	return Attributes{Keywords: kw, Categories: []string{}}
}

func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return []string{}
		}
		out = append(out, s)
	}
	return out
}

func knownCategories(v any) []string {
	out := []string{}
	items, ok := v.([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		if s, ok := item.(string); ok && category.Valid(s) {
			out = append(out, s)
		}
	}
	return out
}

func floatOrNil(v any) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case int:
		f := float64(n)
		return &f
	default:
		return nil
	}
}

func stringOrNil(v any) *string {
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}

func boolOrNil(v any) *bool {
	if b, ok := v.(bool); ok {
		return &b
	}
	return nil
}
