// Package money provides fixed-point decimal helpers shared by the pricing
// engine. All monetary arithmetic flows through Quantize so that every
// intermediate result carries exactly two decimal digits.
package money

import "github.com/shopspring/decimal"

// Scale is the number of decimal digits carried by monetary amounts.
const Scale = 2

var hundred = decimal.NewFromInt(100)

// Quantize rounds an amount to two decimal places, halves rounding up.
// Quantizing an already-quantized amount returns it unchanged.
func Quantize(d decimal.Decimal) decimal.Decimal {
	if d.Sign() >= 0 {
		return d.Round(Scale)
	}
	// Round is half-away-from-zero; for negative amounts half-up means
	// rounding the half toward zero instead.
	neg := d.Neg()
	if neg.Round(Scale).Sub(neg).Equal(halfULP) {
		return neg.RoundDown(Scale).Neg()
	}
	return d.Round(Scale)
}

var halfULP = decimal.New(5, -(Scale + 1)) // 0.005

// ApplyPercent returns amount * (1 + pct/100), quantized.
func ApplyPercent(amount, pct decimal.Decimal) decimal.Decimal {
	return Quantize(amount.Add(PercentOf(amount, pct)))
}

// PercentOf returns amount * pct/100, quantized.
func PercentOf(amount, pct decimal.Decimal) decimal.Decimal {
	return Quantize(amount.Mul(pct).Div(hundred))
}

// AddFixed returns amount + v, quantized.
func AddFixed(amount, v decimal.Decimal) decimal.Decimal {
	return Quantize(amount.Add(v))
}

// ClampZero returns zero when amount is negative, amount otherwise.
func ClampZero(amount decimal.Decimal) (decimal.Decimal, bool) {
	if amount.Sign() < 0 {
		return decimal.Zero, true
	}
	return amount, false
}
