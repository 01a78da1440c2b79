package pricing

import (
	"testing"
	"time"

	"storefront-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func product(sku, title, price string) models.Product {
	return models.Product{SKU: sku, Title: title, Price: dec(price)}
}

func TestApplyActiveDiscount(t *testing.T) {
	engine := NewEngine(false)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	products := []models.Product{product("C001", "Tee", "50.00")}
	discounts := []models.Discount{
		{SKU: "C001", Percentage: dec("20"), ExpiresAt: now.Add(24 * time.Hour)},
	}

	priced := engine.Apply(products, discounts, now)
	require.Len(t, priced, 1)

	assert.True(t, priced[0].HasDiscount())
	assert.Equal(t, "40", priced[0].EffectivePrice.String())
	assert.Equal(t, "50", priced[0].OriginalPrice.String())
	assert.Equal(t, "20", priced[0].DiscountPercent.String())
}

func TestExpiryBoundaryIsInclusive(t *testing.T) {
	engine := NewEngine(false)
	expiry := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	products := []models.Product{product("C001", "Tee", "50.00")}
	discounts := []models.Discount{
		{SKU: "C001", Percentage: dec("20"), ExpiresAt: expiry},
	}

	// A discount expiring exactly now still applies.
	atBoundary := engine.Apply(products, discounts, expiry)
	assert.True(t, atBoundary[0].HasDiscount())

	// One microsecond past the boundary it no longer does.
	past := engine.Apply(products, discounts, expiry.Add(time.Microsecond))
	assert.False(t, past[0].HasDiscount())
	assert.Equal(t, "50", past[0].EffectivePrice.String())
}

func TestDuplicateDiscountFirstWins(t *testing.T) {
	engine := NewEngine(false)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	expiry := now.Add(time.Hour)

	products := []models.Product{product("C001", "Tee", "100.00")}
	discounts := []models.Discount{
		{SKU: "C001", Percentage: dec("10"), ExpiresAt: expiry},
		{SKU: "C001", Percentage: dec("50"), ExpiresAt: expiry},
	}

	priced := engine.Apply(products, discounts, now)
	require.Len(t, priced, 1)
	assert.Equal(t, "90", priced[0].EffectivePrice.String())
	assert.Equal(t, "10", priced[0].DiscountPercent.String())
}

func TestNoDiscountsPreservesOrderAndPrices(t *testing.T) {
	engine := NewEngine(false)
	now := time.Now()

	products := []models.Product{
		product("Z003", "Shoe", "200.00"),
		product("C001", "Tee", "50.00"),
		product("A002", "Cap", "25.00"),
	}

	priced := engine.Apply(products, nil, now)
	require.Len(t, priced, 3)
	for i := range products {
		assert.Equal(t, products[i].SKU, priced[i].SKU)
		assert.True(t, priced[i].EffectivePrice.Equal(products[i].Price))
		assert.Nil(t, priced[i].OriginalPrice)
		assert.Nil(t, priced[i].DiscountPercent)
	}
}

func TestUnknownSKUDiscountIgnored(t *testing.T) {
	engine := NewEngine(false)
	now := time.Now()

	products := []models.Product{product("C001", "Tee", "50.00")}
	discounts := []models.Discount{
		{SKU: "NOPE", Percentage: dec("30"), ExpiresAt: now.Add(time.Hour)},
	}

	priced := engine.Apply(products, discounts, now)
	require.Len(t, priced, 1)
	assert.False(t, priced[0].HasDiscount())
}

func TestRoundingHalfAwayFromZero(t *testing.T) {
	engine := NewEngine(false)
	now := time.Now()

	// 10.05 * 50% = 5.025, which rounds up to 5.03.
	products := []models.Product{product("C001", "Tee", "10.05")}
	discounts := []models.Discount{
		{SKU: "C001", Percentage: dec("50"), ExpiresAt: now.Add(time.Hour)},
	}

	priced := engine.Apply(products, discounts, now)
	assert.Equal(t, "5.03", priced[0].EffectivePrice.StringFixed(2))
}

func TestWholeUnitRounding(t *testing.T) {
	engine := NewEngine(true)
	now := time.Now()

	// 199 * 85% = 169.15, rounded to whole soles.
	products := []models.Product{product("Z001", "Shoe", "199")}
	discounts := []models.Discount{
		{SKU: "Z001", Percentage: dec("15"), ExpiresAt: now.Add(time.Hour)},
	}

	priced := engine.Apply(products, discounts, now)
	assert.Equal(t, "169", priced[0].EffectivePrice.String())
}

func TestStockFlags(t *testing.T) {
	engine := NewEngine(false)
	now := time.Now()

	zero, one, two := 0, 1, 2
	products := []models.Product{
		{SKU: "C001", Price: dec("10"), Stock: &zero},
		{SKU: "C002", Price: dec("10"), Stock: &one},
		{SKU: "C003", Price: dec("10"), Stock: &two},
		{SKU: "C004", Price: dec("10")},
	}

	priced := engine.Apply(products, nil, now)
	assert.True(t, priced[0].IsSoldOut)
	assert.False(t, priced[0].IsLowStock)
	assert.True(t, priced[1].IsLowStock)
	assert.False(t, priced[1].IsSoldOut)
	assert.False(t, priced[2].IsSoldOut)
	assert.False(t, priced[2].IsLowStock)
	assert.False(t, priced[3].IsSoldOut)
	assert.False(t, priced[3].IsLowStock)
}

func TestApplyIsIdempotent(t *testing.T) {
	engine := NewEngine(false)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	products := []models.Product{
		product("C001", "Tee", "49.99"),
		product("Z002", "Shoe", "159.90"),
	}
	discounts := []models.Discount{
		{SKU: "Z002", Percentage: dec("25"), ExpiresAt: now.Add(time.Hour)},
	}

	first := engine.Apply(products, discounts, now)
	second := engine.Apply(products, discounts, now)
	assert.Equal(t, first, second)
}
