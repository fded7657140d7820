// Package pricing computes package list prices and discounts from the
// prices of the courses a package bundles.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	half    = decimal.NewFromFloat(0.5)
)

// Item is anything with an identifier and a list price.
type Item struct {
	ID    string
	Price float64
}

// Quote summarises the pricing of a package draft.
type Quote struct {
	OriginalPrice      float64 `json:"originalPrice"`
	Price              float64 `json:"price"`
	DiscountPercentage int     `json:"discountPercentage"`
	// Overpriced is set when the package costs more than its courses
	// bought separately; the discount is then negative and left as is.
	Overpriced bool `json:"overpriced"`
}

// OriginalPrice sums the prices of catalog items whose id is selected.
// Each catalog item counts at most once and unknown ids are ignored.
func OriginalPrice(selected []string, catalog []Item) float64 {
	if len(selected) == 0 {
		return 0
	}
	wanted := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		wanted[id] = struct{}{}
	}
	sum := decimal.Zero
	for _, item := range catalog {
		if _, ok := wanted[item.ID]; ok {
			sum = sum.Add(decimal.NewFromFloat(item.Price))
		}
	}
	return sum.InexactFloat64()
}

// DiscountPercentage returns round(100*(original-price)/original) for a
// price typed into a form. An empty or unparsable price, or a zero
// original price, yields 0. No clamping is applied.
func DiscountPercentage(originalPrice float64, packagePrice string) int {
	raw := strings.TrimSpace(packagePrice)
	if raw == "" {
		return 0
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return 0
	}
	return discount(decimal.NewFromFloat(originalPrice), price)
}

// Discount is DiscountPercentage for an already numeric price.
func Discount(originalPrice, packagePrice float64) int {
	return discount(decimal.NewFromFloat(originalPrice), decimal.NewFromFloat(packagePrice))
}

// NewQuote prices a package draft in one pass.
func NewQuote(selected []string, catalog []Item, packagePrice string) Quote {
	original := OriginalPrice(selected, catalog)
	q := Quote{
		OriginalPrice:      original,
		DiscountPercentage: DiscountPercentage(original, packagePrice),
	}
	if price, err := decimal.NewFromString(strings.TrimSpace(packagePrice)); err == nil {
		q.Price = price.InexactFloat64()
	}
	q.Overpriced = q.DiscountPercentage < 0
	return q
}

// discount rounds half up towards positive infinity, so -0.5 becomes 0
// and 0.5 becomes 1.
func discount(original, price decimal.Decimal) int {
	if original.IsZero() {
		return 0
	}
	ratio := original.Sub(price).Mul(hundred).Div(original)
	return int(ratio.Add(half).Floor().IntPart())
}
