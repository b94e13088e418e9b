package search

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	domsearch "github.com/shoplens/catalog/internal/domain/search"
)

// Compile turns extracted attributes into a MongoDB filter document. It is
// pure and total: every attribute value maps to a well-formed filter, and the
// all-empty value maps to bson.M{}, which matches every product.
//
// Each populated facet contributes one condition and the conditions are
// combined with $and, so every facet narrows the result set. Conflicting
// facets legitimately produce zero results; precision over recall.
func Compile(attrs domsearch.Attributes) bson.M {
	conditions := make([]bson.M, 0, 7)

	if len(attrs.Keywords) > 0 {
		conditions = append(conditions, bson.M{"$text": bson.M{
			"$search":        strings.Join(attrs.Keywords, " "),
			"$caseSensitive": false,
		}})
	}

	if attrs.MinPrice != nil || attrs.MaxPrice != nil {
		price := bson.M{}
		if attrs.MinPrice != nil {
			price["$gte"] = *attrs.MinPrice
		}
		if attrs.MaxPrice != nil {
			price["$lte"] = *attrs.MaxPrice
		}
		conditions = append(conditions, bson.M{"price": price})
	}

	// Seed data does not reliably populate attributes.color, so color also
	// matches against description and name for acceptable recall.
	if c := attrs.Attrs.Color; c != nil && *c != "" {
		re := ciSubstring(*c)
		conditions = append(conditions, bson.M{"$or": []bson.M{
			{"attributes.color": re},
			{"description": re},
			{"name": re},
		}})
	}

	if s := attrs.Attrs.Size; s != nil && *s != "" {
		conditions = append(conditions, bson.M{"attributes.size": ciSubstring(*s)})
	}

	if r := attrs.Attrs.Rating; r != nil && *r > 0 {
		conditions = append(conditions, bson.M{"attributes.rating": bson.M{"$gte": *r}})
	}

	if attrs.Attrs.InStock != nil {
		conditions = append(conditions, bson.M{"attributes.inStock": *attrs.Attrs.InStock})
	}

	if len(attrs.Categories) > 0 {
		patterns := make([]primitive.Regex, len(attrs.Categories))
		for i, cat := range attrs.Categories {
			patterns[i] = ciSubstring(cat)
		}
		conditions = append(conditions, bson.M{"category": bson.M{"$in": patterns}})
	}

	if len(conditions) == 0 {
		return bson.M{}
	}
	return bson.M{"$and": conditions}
}

// ciSubstring builds a case-insensitive substring pattern. The input comes
// from a model response, so regex metacharacters are escaped.
func ciSubstring(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}
