package openai

import (
	"strings"

	"github.com/shoplens/catalog/internal/domain/category"
)

// systemPrompt is the fixed extraction instruction. The category list comes
// from the same enumeration the response validator uses, so the prompt and
// the validator cannot drift apart.
var systemPrompt = buildSystemPrompt()

func buildSystemPrompt() string {
	var b strings.Builder
	b.WriteString(`Extract search criteria from the user query. Return JSON with the following structure:
{
  "keywords": ["word1", "word2"],
  "categories": ["category1", "category2"],
  "minPrice": number or null,
  "maxPrice": number or null,
  "attributes": {
    "color": string or null,
    "size": string or null,
    "rating": number or null,
    "inStock": boolean or null
  }
}

Important rules:
1. Available categories are: `)
	b.WriteString(strings.Join(category.Names(), ", "))
	b.WriteString(`

2. Map product types to correct categories:
   - Furniture items (sofa, chair, table) -> Furniture
   - Electronics (phone, tablet, laptop) -> Smartphones/Tablets/Laptops
   - Clothing items -> Mens/Womens categories based on type
   - Beauty items -> Beauty or Skin Care
   - Accessories -> appropriate category (Mobile/Sports/etc.)

3. minPrice and maxPrice must be numbers or null
4. rating must be a number between 1 and 5 or null
5. keywords should not include price numbers or attribute values
6. Always try to map to the most specific category available

Example mappings:
- "blue sofa" -> categories: ["Furniture"], attributes: {color: "blue"}
- "expensive laptop" -> categories: ["Laptops"], maxPrice: 2000
- "women's dress" -> categories: ["Womens Dresses"]
- "beauty cream" -> categories: ["Beauty", "Skin Care"]
- "men's watch" -> categories: ["Mens Watches"]`)
	return b.String()
}
