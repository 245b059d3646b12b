// Package discount holds the pure pricing rules: coupon evaluation, the
// free-shipping threshold and the final-total clamp. Nothing here touches
// state; a result must be recomputed whenever the subtotal it was derived
// from changes.
package discount

import (
	"strings"

	"github.com/shopspring/decimal"
)

// coupons maps upper-cased codes to percentage discounts.
var coupons = map[string]decimal.Decimal{
	"SAVE10":  decimal.NewFromFloat(0.10),
	"SAVE20":  decimal.NewFromFloat(0.20),
	"WELCOME": decimal.NewFromFloat(0.15),
}

var (
	freeShippingThreshold = decimal.NewFromFloat(50.00)
	standardShippingFee   = decimal.NewFromFloat(9.99)
)

type Result struct {
	Code       string          `json:"code"`
	Percentage decimal.Decimal `json:"percentage"`
	AmountOff  decimal.Decimal `json:"amount_off"`
	Valid      bool            `json:"valid"`
}

// Evaluate matches code case-insensitively against the coupon table and
// computes the discount for the given subtotal, rounded half-up to cents.
// Unknown codes yield an invalid result with a zero amount.
func Evaluate(code string, subtotal decimal.Decimal) Result {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	pct, ok := coupons[normalized]
	if !ok {
		return Result{Code: code, Percentage: decimal.Zero, AmountOff: decimal.Zero}
	}
	return Result{
		Code:       normalized,
		Percentage: pct,
		AmountOff:  subtotal.Mul(pct).Round(2),
		Valid:      true,
	}
}

// ShippingFee is waived when the pre-discount subtotal exceeds the
// threshold. This is a standing rule, not a coupon effect; the two compose
// additively in Total.
func ShippingFee(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(freeShippingThreshold) {
		return decimal.Zero
	}
	return standardShippingFee
}

// Total is subtotal - amountOff + shipping, clamped at zero so an
// overcomputed discount can never produce a negative charge.
func Total(subtotal, amountOff, shipping decimal.Decimal) decimal.Decimal {
	total := subtotal.Sub(amountOff).Add(shipping)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}
