package domain

import (
	"fmt"
	"strings"
)

// Currency is an ISO 4217 code from the supported set.
type Currency string

const (
	CurrencyAUD Currency = "AUD"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

var supportedCurrencies = []Currency{CurrencyAUD, CurrencyUSD, CurrencyEUR, CurrencyGBP}

// SupportedCurrencies returns the fixed currency set in declaration order.
func SupportedCurrencies() []Currency {
	out := make([]Currency, len(supportedCurrencies))
	copy(out, supportedCurrencies)
	return out
}

// ParseCurrency normalizes s and checks it against the supported set.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if c.Valid() {
		return c, nil
	}
	return "", fmt.Errorf("unsupported currency: %q", s)
}

// Valid reports whether c is in the supported set.
func (c Currency) Valid() bool {
	for _, s := range supportedCurrencies {
		if c == s {
			return true
		}
	}
	return false
}

func (c Currency) String() string {
	return string(c)
}
