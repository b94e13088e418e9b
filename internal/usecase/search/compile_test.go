package search

import (
	"reflect"
	"regexp"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shoplens/catalog/internal/domain"
	domsearch "github.com/shoplens/catalog/internal/domain/search"
)

func f64(v float64) *float64 { return &v }
func str(v string) *string   { return &v }
func boolp(v bool) *bool     { return &v }

func TestCompile_EmptyAttributesMatchEverything(t *testing.T) {
	filter := Compile(domsearch.Attributes{})
	if len(filter) != 0 {
		t.Errorf("Compile(empty) = %v, want universal filter bson.M{}", filter)
	}

	filter = Compile(domsearch.Fallback(""))
	if len(filter) != 0 {
		t.Errorf("Compile(Fallback(\"\")) = %v, want universal filter", filter)
	}
}

func TestCompile_Keywords(t *testing.T) {
	filter := Compile(domsearch.Attributes{Keywords: []string{"blue", "sofa"}})

	conditions := mustAnd(t, filter, 1)
	want := bson.M{"$text": bson.M{"$search": "blue sofa", "$caseSensitive": false}}
	if !reflect.DeepEqual(conditions[0], want) {
		t.Errorf("text condition = %v, want %v", conditions[0], want)
	}
}

func TestCompile_PriceRange(t *testing.T) {
	tests := []struct {
		name     string
		min, max *float64
		want     bson.M
	}{
		{"both bounds", f64(100), f64(900), bson.M{"$gte": 100.0, "$lte": 900.0}},
		{"min only", f64(100), nil, bson.M{"$gte": 100.0}},
		{"max only", nil, f64(900), bson.M{"$lte": 900.0}},
		{"inverted bounds pass through", f64(900), f64(100), bson.M{"$gte": 900.0, "$lte": 100.0}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			filter := Compile(domsearch.Attributes{MinPrice: tc.min, MaxPrice: tc.max})
			conditions := mustAnd(t, filter, 1)
			if !reflect.DeepEqual(conditions[0], bson.M{"price": tc.want}) {
				t.Errorf("price condition = %v, want %v", conditions[0], tc.want)
			}
		})
	}
}

func TestCompile_ColorFallsBackToTextFields(t *testing.T) {
	filter := Compile(domsearch.Attributes{
		Attrs: domsearch.ProductAttrs{Color: str("blue")},
	})

	conditions := mustAnd(t, filter, 1)
	or, ok := conditions[0]["$or"].([]bson.M)
	if !ok || len(or) != 3 {
		t.Fatalf("color condition = %v, want $or of three matches", conditions[0])
	}
	fields := []string{}
	for _, m := range or {
		for k, v := range m {
			fields = append(fields, k)
			re, ok := v.(primitive.Regex)
			if !ok || re.Options != "i" {
				t.Errorf("match on %s = %v, want case-insensitive regex", k, v)
			}
		}
	}
	want := []string{"attributes.color", "description", "name"}
	if !reflect.DeepEqual(fields, want) {
		t.Errorf("color matches fields %v, want %v", fields, want)
	}
}

func TestCompile_SizeRatingInStock(t *testing.T) {
	filter := Compile(domsearch.Attributes{
		Attrs: domsearch.ProductAttrs{
			Size:    str("XL"),
			Rating:  f64(4),
			InStock: boolp(false),
		},
	})

	conditions := mustAnd(t, filter, 3)

	if _, ok := conditions[0]["attributes.size"].(primitive.Regex); !ok {
		t.Errorf("size condition = %v, want regex on attributes.size", conditions[0])
	}
	if !reflect.DeepEqual(conditions[1], bson.M{"attributes.rating": bson.M{"$gte": 4.0}}) {
		t.Errorf("rating condition = %v", conditions[1])
	}
	// false is a meaningful filter value, not an absent one
	if !reflect.DeepEqual(conditions[2], bson.M{"attributes.inStock": false}) {
		t.Errorf("inStock condition = %v", conditions[2])
	}
}

func TestCompile_ZeroRatingIgnored(t *testing.T) {
	filter := Compile(domsearch.Attributes{
		Attrs: domsearch.ProductAttrs{Rating: f64(0)},
	})
	if len(filter) != 0 {
		t.Errorf("Compile with zero rating = %v, want universal filter", filter)
	}
}

func TestCompile_CategoriesCaseInsensitive(t *testing.T) {
	filter := Compile(domsearch.Attributes{Categories: []string{"furniture"}})

	conditions := mustAnd(t, filter, 1)
	in, ok := conditions[0]["category"].(bson.M)["$in"].([]primitive.Regex)
	if !ok || len(in) != 1 {
		t.Fatalf("category condition = %v, want $in of regex patterns", conditions[0])
	}
	re := regexp.MustCompile("(?" + in[0].Options + ")" + in[0].Pattern)
	if !re.MatchString("Furniture") {
		t.Errorf("pattern %q does not match %q", in[0].Pattern, "Furniture")
	}
}

func TestCompile_AllFacetsAreConjoined(t *testing.T) {
	filter := Compile(domsearch.Attributes{
		Keywords:   []string{"sofa"},
		Categories: []string{"Furniture"},
		MinPrice:   f64(100),
		MaxPrice:   f64(900),
		Attrs: domsearch.ProductAttrs{
			Color:   str("blue"),
			Size:    str("large"),
			Rating:  f64(4),
			InStock: boolp(true),
		},
	})

	mustAnd(t, filter, 7)
}

// End-to-end at the compiler boundary: the filter for "blue sofa under 900"
// selects the blue sofa and rejects the red one.
func TestCompile_BlueSofaUnder900(t *testing.T) {
	attrs := domsearch.Attributes{
		Keywords:   []string{"sofa"},
		Categories: []string{"Furniture"},
		MaxPrice:   f64(900),
		Attrs:      domsearch.ProductAttrs{Color: str("blue")},
	}
	filter := Compile(attrs)

	blue := domain.Product{
		Name:        "Modern Sofa",
		Description: "Comfortable blue sofa with premium materials",
		Price:       799,
		Category:    "Furniture",
		Attributes:  map[string]any{"color": "Blue"},
	}
	red := domain.Product{
		Name:        "Modern Sofa",
		Description: "Comfortable red sofa with premium materials",
		Price:       850,
		Category:    "Furniture",
		Attributes:  map[string]any{"color": "Red"},
	}
	expensive := domain.Product{
		Name:        "Designer Sofa",
		Description: "Luxurious blue sofa",
		Price:       1200,
		Category:    "Furniture",
		Attributes:  map[string]any{"color": "Blue"},
	}

	if !matchesFilter(t, filter, blue) {
		t.Error("blue sofa at 799 must match")
	}
	if matchesFilter(t, filter, red) {
		t.Error("red sofa must not match")
	}
	if matchesFilter(t, filter, expensive) {
		t.Error("sofa above the price bound must not match")
	}
}

func mustAnd(t *testing.T, filter bson.M, n int) []bson.M {
	t.Helper()
	conditions, ok := filter["$and"].([]bson.M)
	if !ok {
		t.Fatalf("filter %v has no $and clause", filter)
	}
	if len(conditions) != n {
		t.Fatalf("len(conditions) = %d, want %d", len(conditions), n)
	}
	return conditions
}

// matchesFilter evaluates the subset of the MongoDB filter language the
// compiler emits against an in-memory product. The $text condition
// approximates the store's text index over name, description and category.
func matchesFilter(t *testing.T, filter bson.M, p domain.Product) bool {
	t.Helper()
	conditions, ok := filter["$and"].([]bson.M)
	if !ok {
		return true // universal filter
	}
	for _, c := range conditions {
		if !matchesCondition(t, c, p) {
			return false
		}
	}
	return true
}

func matchesCondition(t *testing.T, cond bson.M, p domain.Product) bool {
	t.Helper()
	for field, expected := range cond {
		switch field {
		case "$text":
			search := expected.(bson.M)["$search"].(string)
			text := strings.ToLower(p.Name + " " + p.Description + " " + p.Category)
			anyTokenMatches := false
			for _, token := range strings.Fields(strings.ToLower(search)) {
				if strings.Contains(text, token) {
					anyTokenMatches = true
					break
				}
			}
			if !anyTokenMatches {
				return false
			}
		case "$or":
			anyMatch := false
			for _, sub := range expected.([]bson.M) {
				if matchesCondition(t, sub, p) {
					anyMatch = true
					break
				}
			}
			if !anyMatch {
				return false
			}
		default:
			if !matchesField(t, field, expected, p) {
				return false
			}
		}
	}
	return true
}

func matchesField(t *testing.T, field string, expected any, p domain.Product) bool {
	t.Helper()
	value := fieldValue(field, p)

	switch exp := expected.(type) {
	case primitive.Regex:
		s, ok := value.(string)
		return ok && regexp.MustCompile("(?"+exp.Options+")"+exp.Pattern).MatchString(s)
	case bson.M:
		if in, ok := exp["$in"].([]primitive.Regex); ok {
			s, _ := value.(string)
			for _, re := range in {
				if regexp.MustCompile("(?"+re.Options+")"+re.Pattern).MatchString(s) {
					return true
				}
			}
			return false
		}
		num, ok := toFloat(value)
		if !ok {
			return false
		}
		if gte, ok := exp["$gte"]; ok {
			if bound, _ := toFloat(gte); num < bound {
				return false
			}
		}
		if lte, ok := exp["$lte"]; ok {
			if bound, _ := toFloat(lte); num > bound {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(value, expected)
	}
}

func fieldValue(field string, p domain.Product) any {
	switch field {
	case "name":
		return p.Name
	case "description":
		return p.Description
	case "price":
		return p.Price
	case "category":
		return p.Category
	default:
		if attr, ok := strings.CutPrefix(field, "attributes."); ok {
			return p.Attributes[attr]
		}
		return nil
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
