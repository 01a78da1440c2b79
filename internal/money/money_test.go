package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFallbackFormatting(t *testing.T) {
	f := NewFormatter("!!!", "PEN")

	out := f.Format(decimal.RequireFromString("49.9"), "S/")
	assert.Equal(t, "S/ 49.90", out)
}

func TestFallbackOnBadCurrencyCode(t *testing.T) {
	f := NewFormatter("es-PE", "SOLES")

	out := f.Format(decimal.RequireFromString("10"), "S/")
	assert.Equal(t, "S/ 10.00", out)
}

func TestLocaleAwareFormattingCarriesAmount(t *testing.T) {
	f := NewFormatter("es-PE", "PEN")

	out := f.Format(decimal.RequireFromString("1250.50"), "S/")
	assert.NotEmpty(t, out)
	assert.Contains(t, out, "50")
}
