package pricing

import (
	"time"

	"storefront-service/internal/models"

	"github.com/shopspring/decimal"
)

// Engine resolves discount pricing for a catalog snapshot.
type Engine struct {
	// roundPlaces is the number of decimal places kept on effective
	// prices: 2 for minor-unit currencies, 0 for whole-unit pricing.
	roundPlaces int32
}

// NewEngine creates a pricing engine. wholeUnits switches rounding from
// 2 decimal places to whole currency units. Both modes round half away
// from zero.
func NewEngine(wholeUnits bool) *Engine {
	places := int32(2)
	if wholeUnits {
		places = 0
	}
	return &Engine{roundPlaces: places}
}

var oneHundred = decimal.NewFromInt(100)

// Apply resolves pricing for every product against the discount table.
// A discount is active iff its sku matches and now <= ExpiresAt (the
// expiry boundary is inclusive). Output order matches input order; no
// product is dropped or duplicated, and at most one discount applies per
// product. Apply has no side effects and is idempotent for a fixed now.
func (e *Engine) Apply(products []models.Product, discounts []models.Discount, now time.Time) []models.PricedProduct {
	winners := winnerBySKU(discounts)

	priced := make([]models.PricedProduct, 0, len(products))
	for _, p := range products {
		pp := models.PricedProduct{
			Product:        p,
			EffectivePrice: p.Price,
		}
		if p.Stock != nil {
			pp.IsSoldOut = *p.Stock == 0
			pp.IsLowStock = *p.Stock == 1
		}

		if d, ok := winners[p.SKU]; ok && !now.After(d.ExpiresAt) {
			factor := decimal.NewFromInt(1).Sub(d.Percentage.Div(oneHundred))
			effective := p.Price.Mul(factor).Round(e.roundPlaces)

			original := p.Price
			percent := d.Percentage
			pp.EffectivePrice = effective
			pp.OriginalPrice = &original
			pp.DiscountPercent = &percent
		}

		priced = append(priced, pp)
	}
	return priced
}

// winnerBySKU picks one discount per sku. On duplicates the first record
// in source order wins. Discounts referencing unknown skus simply never
// match a product.
func winnerBySKU(discounts []models.Discount) map[string]models.Discount {
	winners := make(map[string]models.Discount, len(discounts))
	for _, d := range discounts {
		if _, seen := winners[d.SKU]; seen {
			continue
		}
		winners[d.SKU] = d
	}
	return winners
}
