// Package pricing computes unit prices from quantity tiers and option modifiers, and
// order totals from line items.
package pricing

import (
	"errors"
	"fmt"
	"sort"

	"github.com/kendall-kelly/printshop-api/models"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrUnknownOption   = errors.New("unknown product option")
	ErrInvalidDiscount = errors.New("invalid discount")
)

// UnitPrice returns the per-unit price of product at quantity with the selected options.
// The tier with the highest MinQuantity not above quantity replaces the base price; each
// selected option adds its modifier.
func UnitPrice(product models.Product, quantity int, selected map[string]string) (decimal.Decimal, error) {
	if quantity <= 0 {
		return decimal.Zero, ErrInvalidQuantity
	}

	price := product.BasePrice
	tiers := append([]models.PriceTier(nil), product.PriceTiers...)
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].MinQuantity < tiers[j].MinQuantity })
	for _, tier := range tiers {
		if tier.MinQuantity <= quantity {
			price = tier.UnitPrice
		}
	}

	for optionType, value := range selected {
		option, ok := findOption(product.Options, optionType, value)
		if !ok {
			return decimal.Zero, fmt.Errorf("%w: %s=%s", ErrUnknownOption, optionType, value)
		}
		price = price.Add(option.PriceModifier)
	}

	if price.IsNegative() {
		price = decimal.Zero
	}
	return Round(price), nil
}

func findOption(options []models.ProductOption, optionType, value string) (models.ProductOption, bool) {
	for _, option := range options {
		if option.OptionType == optionType && option.Value == value {
			return option, true
		}
	}
	return models.ProductOption{}, false
}

// LineTotal is unit price times quantity.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return Round(unitPrice.Mul(decimal.NewFromInt(int64(quantity))))
}

// Round rounds to cents.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
