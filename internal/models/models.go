package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog entry loaded from the items source.
// The first character of the SKU (uppercased) encodes the product category.
type Product struct {
	SKU         string          `json:"sku"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Sizes       []string        `json:"sizes,omitempty"`
	Stock       *int            `json:"stock,omitempty"`
	Instagram   string          `json:"instagram,omitempty"`
	WhatsApp    string          `json:"whatsapp,omitempty"`
}

// Category returns the uppercased first character of the SKU, or "" when
// the SKU is empty.
func (p *Product) Category() string {
	if p.SKU == "" {
		return ""
	}
	return strings.ToUpper(p.SKU[:1])
}

// Discount is a normalized discount record. The loader maps both wire
// shapes of the discount source onto this type.
type Discount struct {
	SKU        string          `json:"sku"`
	Percentage decimal.Decimal `json:"percentage"`
	ExpiresAt  time.Time       `json:"expires_at"`
}

// PricedProduct wraps a Product with its discount pricing resolved.
// OriginalPrice and DiscountPercent are set only while a discount is active.
type PricedProduct struct {
	Product
	EffectivePrice  decimal.Decimal  `json:"effective_price"`
	OriginalPrice   *decimal.Decimal `json:"original_price,omitempty"`
	DiscountPercent *decimal.Decimal `json:"discount_percent,omitempty"`
	IsSoldOut       bool             `json:"is_sold_out"`
	IsLowStock      bool             `json:"is_low_stock"`
}

// HasDiscount reports whether an active discount was applied.
func (p *PricedProduct) HasDiscount() bool {
	return p.OriginalPrice != nil
}

// Settings holds presentation defaults from the settings source.
type Settings struct {
	Instagram      string            `json:"instagram"`
	WhatsApp       string            `json:"whatsapp"`
	Currency       string            `json:"currency"`
	CategoryLabels map[string]string `json:"category_labels,omitempty"`
}

// Snapshot is an immutable point-in-time view of the catalog. It is
// rebuilt in full on every load and replaced atomically; nothing mutates
// a published snapshot.
type Snapshot struct {
	Version   string          `json:"version"`
	LoadedAt  time.Time       `json:"loaded_at"`
	Products  []Product       `json:"products"`
	Discounts []Discount      `json:"discounts"`
	Priced    []PricedProduct `json:"priced"`
	Settings  Settings        `json:"settings"`
}

// SortMode selects the ordering applied by the query pipeline.
type SortMode string

const (
	SortNatural   SortMode = "natural"
	SortPriceAsc  SortMode = "price_asc"
	SortPriceDesc SortMode = "price_desc"
	SortNameAsc   SortMode = "name_az"
	SortNameDesc  SortMode = "name_za"
)

// QueryParams are the inputs of a single catalog query.
// A nil PageSize disables pagination.
type QueryParams struct {
	SearchText     string
	ActiveCategory string
	SortMode       SortMode
	Page           int
	PageSize       *int
}

// QueryResult is the output of the query pipeline. IsEmpty is true iff
// nothing matched, regardless of pagination.
type QueryResult struct {
	Items        []PricedProduct `json:"items"`
	TotalMatched int             `json:"total_matched"`
	TotalPages   int             `json:"total_pages"`
	Page         int             `json:"page"`
	IsEmpty      bool            `json:"is_empty"`
}
