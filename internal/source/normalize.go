package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ParseProducts decodes the items payload. A product without a usable sku
// aborts the whole load: category membership and discount matching both
// key off the sku, so a sku-less record cannot participate in the catalog.
func ParseProducts(data []byte) ([]models.Product, error) {
	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("%w: items: %v", ErrSourceUnavailable, err)
	}

	for i := range products {
		if products[i].SKU == "" {
			return nil, &ValidationError{
				Source: "items",
				Reason: fmt.Sprintf("product at index %d has no sku", i),
			}
		}
		if products[i].Price.IsNegative() {
			return nil, &ValidationError{
				Source: "items",
				Reason: fmt.Sprintf("product %s has negative price", products[i].SKU),
			}
		}
	}
	return products, nil
}

// discountRecord accepts both field-name conventions seen in the wild.
type discountRecord struct {
	SKU        string           `json:"sku"`
	Percentage *decimal.Decimal `json:"percentage"`
	Percent    *decimal.Decimal `json:"percent"`
	Expires    string           `json:"expires"`
	EndDate    string           `json:"endDate"`
}

// ParseDiscounts decodes the discounts payload and normalizes it to the
// canonical Discount shape. The source is either an array of records or a
// map keyed by sku; both are accepted. Records with a percentage outside
// (0,100] or an unparseable expiry are skipped with a warning. Duplicate
// skus resolve first-in-source-order: later records for a seen sku are
// dropped here so the pricing engine never sees duplicates.
func ParseDiscounts(data []byte) ([]models.Discount, error) {
	records, err := decodeDiscountRecords(data)
	if err != nil {
		return nil, fmt.Errorf("%w: discounts: %v", ErrSourceUnavailable, err)
	}

	logger := util.GetLogger()
	seen := make(map[string]struct{}, len(records))
	discounts := make([]models.Discount, 0, len(records))
	for _, r := range records {
		if r.SKU == "" {
			skipDiscount(logger, r.SKU, "missing sku")
			continue
		}
		if _, dup := seen[r.SKU]; dup {
			continue
		}

		pct := r.Percentage
		if pct == nil {
			pct = r.Percent
		}
		if pct == nil || !pct.IsPositive() || pct.GreaterThan(oneHundred) {
			skipDiscount(logger, r.SKU, "percentage outside (0,100]")
			continue
		}

		raw := r.Expires
		if raw == "" {
			raw = r.EndDate
		}
		expires, err := parseExpiry(raw)
		if err != nil {
			skipDiscount(logger, r.SKU, "unparseable expiry")
			continue
		}

		seen[r.SKU] = struct{}{}
		discounts = append(discounts, models.Discount{
			SKU:        r.SKU,
			Percentage: *pct,
			ExpiresAt:  expires,
		})
	}
	return discounts, nil
}

var oneHundred = decimal.NewFromInt(100)

func skipDiscount(logger *zap.Logger, sku, reason string) {
	util.DiscountsSkippedTotal.WithLabelValues(reason).Inc()
	logger.Warn("Skipping discount record",
		zap.String("sku", sku),
		zap.String("reason", reason))
}

func decodeDiscountRecords(data []byte) ([]discountRecord, error) {
	var asArray []discountRecord
	if err := json.Unmarshal(data, &asArray); err == nil {
		return asArray, nil
	}

	// Map shape: keys are skus, values carry the discount fields. Object
	// key order follows the document, so first-in-source-order still
	// holds; Go's map iteration would break that, so decode in two steps
	// using a raw key scan.
	keys, err := orderedKeys(data)
	if err != nil {
		return nil, err
	}
	var asMap map[string]discountRecord
	if err := json.Unmarshal(data, &asMap); err != nil {
		return nil, err
	}

	records := make([]discountRecord, 0, len(asMap))
	for _, sku := range keys {
		r := asMap[sku]
		r.SKU = sku
		records = append(records, r)
	}
	return records, nil
}

// orderedKeys returns the top-level object keys in document order.
func orderedKeys(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("discounts: expected object or array")
	}

	var keys []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("discounts: unexpected token %v", keyTok)
		}
		keys = append(keys, key)

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// parseExpiry accepts RFC 3339 timestamps and plain dates. A date-only
// value means midnight UTC of that day, matching how the storefront's
// previous loader interpreted it.
func parseExpiry(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty expiry")
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

// ParseSettings decodes the settings payload, applying the storefront
// defaults for absent fields.
func ParseSettings(data []byte) (models.Settings, error) {
	settings := models.Settings{Instagram: "#", Currency: "S/"}
	if err := json.Unmarshal(data, &settings); err != nil {
		return models.Settings{}, fmt.Errorf("%w: settings: %v", ErrSourceUnavailable, err)
	}
	if settings.Currency == "" {
		settings.Currency = "S/"
	}
	return settings, nil
}
