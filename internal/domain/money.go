package domain

import (
	"github.com/shopspring/decimal"
)

// Conversion is the outcome of moving an amount across currencies.
type Conversion struct {
	Rate  decimal.Decimal
	Gross decimal.Decimal // amount * rate
	Fee   decimal.Decimal // Gross * ConversionFeeRate
	Net   decimal.Decimal // Gross - Fee, credited to the target
}

// Convert applies rate to amount and deducts the conversion fee from the
// converted amount, not from the original.
func Convert(amount, rate decimal.Decimal) Conversion {
	gross := amount.Mul(rate)
	fee := gross.Mul(ConversionFeeRate)
	return Conversion{
		Rate:  rate,
		Gross: gross,
		Fee:   fee,
		Net:   gross.Sub(fee),
	}
}

// SameCurrency is the identity conversion: rate 1, no fee.
func SameCurrency(amount decimal.Decimal) Conversion {
	return Conversion{
		Rate:  decimal.NewFromInt(1),
		Gross: amount,
		Fee:   decimal.Zero,
		Net:   amount,
	}
}

// Percent returns part/whole*100, or zero when whole is zero.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100))
}
