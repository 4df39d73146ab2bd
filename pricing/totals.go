package pricing

import (
	"fmt"

	"github.com/kendall-kelly/printshop-api/models"
	"github.com/shopspring/decimal"
)

// Rates holds the store-wide inputs to order totals.
type Rates struct {
	TaxRate               decimal.Decimal // fraction, e.g. 0.0825
	ShippingFlatRate      decimal.Decimal
	FreeShippingThreshold decimal.Decimal // zero disables free shipping
}

// Totals is the monetary breakdown of an order.
type Totals struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Compute derives the totals of items. Line totals are trusted as fixed at order
// creation; everything else is recomputed.
func Compute(items []models.OrderItem, method models.DeliveryMethod, discount decimal.Decimal, rates Rates) (Totals, error) {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal)
	}

	shipping := decimal.Zero
	if method == models.DeliveryShipping {
		shipping = rates.ShippingFlatRate
		if rates.FreeShippingThreshold.IsPositive() && subtotal.GreaterThanOrEqual(rates.FreeShippingThreshold) {
			shipping = decimal.Zero
		}
	}

	tax := Round(subtotal.Mul(rates.TaxRate))
	gross := subtotal.Add(shipping).Add(tax)

	if discount.IsNegative() {
		return Totals{}, fmt.Errorf("%w: must not be negative", ErrInvalidDiscount)
	}
	if discount.GreaterThan(gross) {
		return Totals{}, fmt.Errorf("%w: exceeds order amount %s", ErrInvalidDiscount, gross.StringFixed(2))
	}

	return Totals{
		Subtotal: Round(subtotal),
		Shipping: Round(shipping),
		Tax:      tax,
		Discount: Round(discount),
		Total:    Round(gross.Sub(discount)),
	}, nil
}

// Apply copies the totals onto the order.
func (t Totals) Apply(order *models.Order) {
	order.Subtotal = t.Subtotal
	order.ShippingCost = t.Shipping
	order.Tax = t.Tax
	order.Discount = t.Discount
	order.Total = t.Total
}
