package repository

import (
	"time"

	"github.com/ayo6706/banking-agent/internal/domain"
	"github.com/shopspring/decimal"
)

// DefaultAccounts is the three-account portfolio loaded at startup.
func DefaultAccounts() []domain.Account {
	return []domain.Account{
		{
			ID:                   domain.AccountAUD,
			Currency:             domain.CurrencyAUD,
			Balance:              decimal.NewFromInt(5000),
			Status:               domain.AccountStatusActive,
			DailyTransferLimit:   decimal.NewFromInt(10000),
			MonthlyTransferLimit: decimal.NewFromInt(50000),
			TransfersToday:       decimal.Zero,
			TransfersThisMonth:   decimal.NewFromInt(2500),
		},
		{
			ID:                   domain.AccountUSD,
			Currency:             domain.CurrencyUSD,
			Balance:              decimal.NewFromInt(3200),
			Status:               domain.AccountStatusActive,
			DailyTransferLimit:   decimal.NewFromInt(8000),
			MonthlyTransferLimit: decimal.NewFromInt(40000),
			TransfersToday:       decimal.NewFromInt(500),
			TransfersThisMonth:   decimal.NewFromInt(1800),
		},
		{
			ID:                   domain.AccountEUR,
			Currency:             domain.CurrencyEUR,
			Balance:              decimal.NewFromInt(2800),
			Status:               domain.AccountStatusActive,
			DailyTransferLimit:   decimal.NewFromInt(7000),
			MonthlyTransferLimit: decimal.NewFromInt(35000),
			TransfersToday:       decimal.Zero,
			TransfersThisMonth:   decimal.NewFromInt(1200),
		},
	}
}

// DefaultRates is the static rate table. Rates are not symmetric.
func DefaultRates() []domain.FXRate {
	now := time.Now().UTC()
	rate := func(from, to domain.Currency, r string) domain.FXRate {
		return domain.FXRate{From: from, To: to, Rate: decimal.RequireFromString(r), Timestamp: now}
	}
	return []domain.FXRate{
		rate(domain.CurrencyAUD, domain.CurrencyUSD, "0.65"),
		rate(domain.CurrencyAUD, domain.CurrencyEUR, "0.60"),
		rate(domain.CurrencyUSD, domain.CurrencyAUD, "1.54"),
		rate(domain.CurrencyUSD, domain.CurrencyEUR, "0.92"),
		rate(domain.CurrencyEUR, domain.CurrencyAUD, "1.67"),
		rate(domain.CurrencyEUR, domain.CurrencyUSD, "1.09"),
	}
}
