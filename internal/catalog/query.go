package catalog

import (
	"sort"
	"strings"

	"storefront-service/internal/models"
)

// promoKeywords are reserved search terms that switch the text filter to
// "active discounts only" instead of substring matching.
var promoKeywords = map[string]struct{}{
	"oferta":      {},
	"ofertas":     {},
	"promo":       {},
	"promocion":   {},
	"promociones": {},
	"descuento":   {},
	"descuentos":  {},
}

// IsPromoKeyword reports whether the normalized search text is one of the
// reserved promotion keywords.
func IsPromoKeyword(text string) bool {
	_, ok := promoKeywords[strings.ToLower(strings.TrimSpace(text))]
	return ok
}

// Query runs the catalog query pipeline over a priced snapshot. Stages
// run in fixed order: text normalization, promo-keyword or substring
// filtering, category filtering, stable sort, pagination. Text and
// category filters always AND-compose. The input is never mutated; the
// result holds references into the snapshot.
func Query(catalog []models.PricedProduct, params models.QueryParams) models.QueryResult {
	text := strings.ToLower(strings.TrimSpace(params.SearchText))

	list := make([]models.PricedProduct, 0, len(catalog))
	if _, promo := promoKeywords[text]; promo {
		for _, p := range catalog {
			if p.HasDiscount() {
				list = append(list, p)
			}
		}
	} else if text != "" {
		for _, p := range catalog {
			if matchesText(&p.Product, text) {
				list = append(list, p)
			}
		}
	} else {
		list = append(list, catalog...)
	}

	if params.ActiveCategory != "" {
		category := strings.ToUpper(params.ActiveCategory)
		filtered := list[:0]
		for _, p := range list {
			if p.Category() == category {
				filtered = append(filtered, p)
			}
		}
		list = filtered
	}

	sortProducts(list, params.SortMode)

	total := len(list)
	result := models.QueryResult{
		TotalMatched: total,
		IsEmpty:      total == 0,
		Page:         1,
	}

	if params.PageSize == nil {
		result.Items = list
		if total > 0 {
			result.TotalPages = 1
		}
		return result
	}

	size := *params.PageSize
	if size < 1 {
		size = 1
	}
	totalPages := (total + size - 1) / size
	result.TotalPages = totalPages

	page := params.Page
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}
	result.Page = page

	if total == 0 {
		result.Items = []models.PricedProduct{}
		return result
	}

	start := (page - 1) * size
	end := start + size
	if end > total {
		end = total
	}
	result.Items = list[start:end]
	return result
}

func matchesText(p *models.Product, text string) bool {
	return strings.Contains(strings.ToLower(p.Title), text) ||
		strings.Contains(strings.ToLower(p.Description), text) ||
		strings.Contains(strings.ToLower(p.SKU), text)
}

// sortProducts orders the list in place. Price modes compare effective
// prices, name modes compare titles case-insensitively. The sort is
// stable so equal keys keep their catalog order.
func sortProducts(list []models.PricedProduct, mode models.SortMode) {
	switch mode {
	case models.SortPriceAsc:
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].EffectivePrice.LessThan(list[j].EffectivePrice)
		})
	case models.SortPriceDesc:
		sort.SliceStable(list, func(i, j int) bool {
			return list[j].EffectivePrice.LessThan(list[i].EffectivePrice)
		})
	case models.SortNameAsc:
		sort.SliceStable(list, func(i, j int) bool {
			return strings.ToLower(list[i].Title) < strings.ToLower(list[j].Title)
		})
	case models.SortNameDesc:
		sort.SliceStable(list, func(i, j int) bool {
			return strings.ToLower(list[j].Title) < strings.ToLower(list[i].Title)
		})
	}
}

// DeriveCategories extracts the uppercased first character of every
// non-empty sku, deduped and sorted. Used to build category navigation.
func DeriveCategories(catalog []models.PricedProduct) []string {
	seen := make(map[string]struct{})
	for i := range catalog {
		c := catalog[i].Category()
		if c == "" {
			continue
		}
		seen[c] = struct{}{}
	}

	categories := make([]string, 0, len(seen))
	for c := range seen {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories
}
