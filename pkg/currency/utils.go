package currency

import (
	"fmt"
	"math"
)

// ProcessingFeeRate is the platform cut applied to every purchase.
const ProcessingFeeRate = 0.02

type CurrencyUtils struct{}

func NewCurrencyUtils() *CurrencyUtils {
	return &CurrencyUtils{}
}

// ProcessingFee computes the platform fee for a purchase amount, rounded
// to 8 decimal places so ETH amounts stay stable across re-computation.
func (u *CurrencyUtils) ProcessingFee(amount float64) float64 {
	return u.RoundAmount(amount * ProcessingFeeRate)
}

// NetAmount is what the seller receives after the recorded fee. The fee
// is passed in rather than recomputed so the stored value stays
// authoritative.
func (u *CurrencyUtils) NetAmount(amount, fee float64) float64 {
	return u.RoundAmount(amount - fee)
}

// RoundAmount rounds a monetary value to 8 decimal places.
func (u *CurrencyUtils) RoundAmount(value float64) float64 {
	return math.Round(value*1e8) / 1e8
}

// FormatAmount renders a marketplace amount with its currency code.
func (u *CurrencyUtils) FormatAmount(amount float64, code string) string {
	return fmt.Sprintf("%.8f %s", amount, code)
}
