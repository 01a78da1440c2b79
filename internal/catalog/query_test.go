package catalog

import (
	"testing"

	"storefront-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func priced(sku, title, price string) models.PricedProduct {
	return models.PricedProduct{
		Product:        models.Product{SKU: sku, Title: title, Price: dec(price)},
		EffectivePrice: dec(price),
	}
}

func discounted(sku, title, price, effective string) models.PricedProduct {
	p := priced(sku, title, price)
	original := dec(price)
	percent := dec("10")
	p.EffectivePrice = dec(effective)
	p.OriginalPrice = &original
	p.DiscountPercent = &percent
	return p
}

func skus(items []models.PricedProduct) []string {
	out := make([]string, len(items))
	for i := range items {
		out[i] = items[i].SKU
	}
	return out
}

func TestEmptySearchKeepsAll(t *testing.T) {
	catalog := []models.PricedProduct{
		priced("C001", "Tee A", "50"),
		priced("Z002", "Shoe B", "200"),
	}

	result := Query(catalog, models.QueryParams{SearchText: "   "})
	assert.Equal(t, 2, result.TotalMatched)
	assert.False(t, result.IsEmpty)
	assert.Equal(t, []string{"C001", "Z002"}, skus(result.Items))
}

func TestSubstringSearchIsCaseInsensitive(t *testing.T) {
	catalog := []models.PricedProduct{
		priced("C001", "Camiseta Negra", "50"),
		priced("Z002", "Zapatilla", "200"),
	}
	catalog[1].Description = "Edición NEGRA limitada"

	result := Query(catalog, models.QueryParams{SearchText: "negra"})
	assert.Equal(t, []string{"C001", "Z002"}, skus(result.Items))

	bySKU := Query(catalog, models.QueryParams{SearchText: "z0"})
	assert.Equal(t, []string{"Z002"}, skus(bySKU.Items))
}

func TestPromoKeywordRestrictsToActiveDiscounts(t *testing.T) {
	catalog := []models.PricedProduct{
		priced("C001", "Tee oferta del dia", "50"), // title mentions the keyword but has no discount
		discounted("Z002", "Shoe B", "200", "180"),
	}

	for _, keyword := range []string{"oferta", "OFERTAS", " Promo ", "promocion", "promociones", "descuento", "descuentos"} {
		result := Query(catalog, models.QueryParams{SearchText: keyword})
		assert.Equal(t, []string{"Z002"}, skus(result.Items), "keyword %q", keyword)
	}
}

func TestPromoKeywordAndCategoryCompose(t *testing.T) {
	catalog := []models.PricedProduct{
		priced("C001", "Tee A", "50"),
		discounted("Z002", "Shoe B", "200", "150"),
		discounted("C003", "Tee C", "60", "30"),
	}

	result := Query(catalog, models.QueryParams{SearchText: "oferta", ActiveCategory: "Z"})
	assert.Equal(t, []string{"Z002"}, skus(result.Items))
	assert.Equal(t, 1, result.TotalMatched)
}

func TestCategoryFilterMatchesLowercaseSKUs(t *testing.T) {
	catalog := []models.PricedProduct{
		priced("c001", "Tee A", "50"),
		priced("Z002", "Shoe B", "200"),
	}

	result := Query(catalog, models.QueryParams{ActiveCategory: "c"})
	assert.Equal(t, []string{"c001"}, skus(result.Items))
}

func TestSortByEffectivePrice(t *testing.T) {
	catalog := []models.PricedProduct{
		priced("C001", "Tee", "100"),
		discounted("Z002", "Shoe", "300", "50"), // cheap after discount
	}

	asc := Query(catalog, models.QueryParams{SortMode: models.SortPriceAsc})
	assert.Equal(t, []string{"Z002", "C001"}, skus(asc.Items))

	desc := Query(catalog, models.QueryParams{SortMode: models.SortPriceDesc})
	assert.Equal(t, []string{"C001", "Z002"}, skus(desc.Items))
}

func TestSortIsStableOnEqualPrices(t *testing.T) {
	catalog := []models.PricedProduct{
		priced("C001", "First", "50"),
		priced("C002", "Second", "50"),
		priced("C003", "Third", "50"),
	}

	asc := Query(catalog, models.QueryParams{SortMode: models.SortPriceAsc})
	assert.Equal(t, []string{"C001", "C002", "C003"}, skus(asc.Items))

	desc := Query(catalog, models.QueryParams{SortMode: models.SortPriceDesc})
	assert.Equal(t, []string{"C001", "C002", "C003"}, skus(desc.Items))
}

func TestSortByNameCaseInsensitive(t *testing.T) {
	catalog := []models.PricedProduct{
		priced("C001", "zapato", "50"),
		priced("C002", "Abrigo", "50"),
		priced("C003", "medias", "50"),
	}

	az := Query(catalog, models.QueryParams{SortMode: models.SortNameAsc})
	assert.Equal(t, []string{"C002", "C003", "C001"}, skus(az.Items))

	za := Query(catalog, models.QueryParams{SortMode: models.SortNameDesc})
	assert.Equal(t, []string{"C001", "C003", "C002"}, skus(za.Items))
}

func TestNaturalSortPreservesInputOrder(t *testing.T) {
	catalog := []models.PricedProduct{
		priced("Z009", "Last alpha", "900"),
		priced("A001", "First alpha", "10"),
	}

	result := Query(catalog, models.QueryParams{SortMode: models.SortNatural})
	assert.Equal(t, []string{"Z009", "A001"}, skus(result.Items))
}

func TestPaginationSlices(t *testing.T) {
	catalog := []models.PricedProduct{
		priced("C001", "A", "10"),
		priced("C002", "B", "20"),
		priced("C003", "C", "30"),
	}

	size := 2
	page1 := Query(catalog, models.QueryParams{Page: 1, PageSize: &size})
	require.Equal(t, 2, len(page1.Items))
	assert.Equal(t, []string{"C001", "C002"}, skus(page1.Items))
	assert.Equal(t, 3, page1.TotalMatched)
	assert.Equal(t, 2, page1.TotalPages)
	assert.Equal(t, 1, page1.Page)

	page2 := Query(catalog, models.QueryParams{Page: 2, PageSize: &size})
	assert.Equal(t, []string{"C003"}, skus(page2.Items))
}

func TestPaginationClampsOutOfRangePage(t *testing.T) {
	catalog := []models.PricedProduct{
		priced("C001", "A", "10"),
		priced("C002", "B", "20"),
		priced("C003", "C", "30"),
	}

	size := 2
	result := Query(catalog, models.QueryParams{Page: 5, PageSize: &size})
	assert.Equal(t, 2, result.Page)
	assert.Equal(t, []string{"C003"}, skus(result.Items))

	below := Query(catalog, models.QueryParams{Page: 0, PageSize: &size})
	assert.Equal(t, 1, below.Page)
	assert.Equal(t, []string{"C001", "C002"}, skus(below.Items))
}

func TestNilPageSizeDisablesPagination(t *testing.T) {
	catalog := []models.PricedProduct{
		priced("C001", "A", "10"),
		priced("C002", "B", "20"),
		priced("C003", "C", "30"),
	}

	result := Query(catalog, models.QueryParams{Page: 7})
	assert.Equal(t, 3, len(result.Items))
	assert.Equal(t, 1, result.TotalPages)
	assert.Equal(t, 1, result.Page)
}

func TestEmptyResultIsNotAnError(t *testing.T) {
	catalog := []models.PricedProduct{
		priced("C001", "Tee", "50"),
	}

	size := 10
	result := Query(catalog, models.QueryParams{SearchText: "nothing matches this", Page: 1, PageSize: &size})
	assert.True(t, result.IsEmpty)
	assert.Equal(t, 0, result.TotalMatched)
	assert.Equal(t, 0, result.TotalPages)
	assert.Equal(t, 1, result.Page)
	assert.Empty(t, result.Items)
}

func TestQueryDoesNotMutateCatalogOrder(t *testing.T) {
	catalog := []models.PricedProduct{
		priced("Z001", "B", "200"),
		priced("A002", "A", "10"),
	}

	Query(catalog, models.QueryParams{SortMode: models.SortPriceAsc})
	assert.Equal(t, "Z001", catalog[0].SKU)
	assert.Equal(t, "A002", catalog[1].SKU)
}

func TestDeriveCategories(t *testing.T) {
	catalog := []models.PricedProduct{
		priced("c1", "x", "1"),
		priced("C2", "y", "1"),
		priced("z1", "z", "1"),
	}

	assert.Equal(t, []string{"C", "Z"}, DeriveCategories(catalog))
}

func TestDeriveCategoriesSkipsEmptySKUs(t *testing.T) {
	catalog := []models.PricedProduct{
		priced("", "x", "1"),
		priced("b1", "y", "1"),
	}

	assert.Equal(t, []string{"B"}, DeriveCategories(catalog))
}

func TestIsPromoKeyword(t *testing.T) {
	assert.True(t, IsPromoKeyword("  Oferta "))
	assert.False(t, IsPromoKeyword("ofertón"))
	assert.False(t, IsPromoKeyword(""))
}
