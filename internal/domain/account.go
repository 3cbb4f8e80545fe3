package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	AccountStatusActive AccountStatus = "active"
	AccountStatusFrozen AccountStatus = "frozen"
	AccountStatusClosed AccountStatus = "closed"
)

// Account is a single-currency account with running transfer counters.
// TransfersToday and TransfersThisMonth are cumulative and never reset.
type Account struct {
	ID                   string          `json:"id"`
	Currency             Currency        `json:"currency"`
	Balance              decimal.Decimal `json:"balance"`
	Status               AccountStatus   `json:"status"`
	DailyTransferLimit   decimal.Decimal `json:"dailyTransferLimit"`
	MonthlyTransferLimit decimal.Decimal `json:"monthlyTransferLimit"`
	TransfersToday       decimal.Decimal `json:"transfersToday"`
	TransfersThisMonth   decimal.Decimal `json:"transfersThisMonth"`
}

// IsActive reports whether the account may send or receive funds.
func (a Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// DailyRemaining is the unused part of the daily limit. It can be negative.
func (a Account) DailyRemaining() decimal.Decimal {
	return a.DailyTransferLimit.Sub(a.TransfersToday)
}

// MonthlyRemaining is the unused part of the monthly limit. It can be negative.
func (a Account) MonthlyRemaining() decimal.Decimal {
	return a.MonthlyTransferLimit.Sub(a.TransfersThisMonth)
}

// FXRate is the number of units of To per unit of From.
type FXRate struct {
	From      Currency        `json:"from"`
	To        Currency        `json:"to"`
	Rate      decimal.Decimal `json:"rate"`
	Timestamp time.Time       `json:"timestamp"`
}

// Pair renders the rate pair as FROM/TO.
func (r FXRate) Pair() string {
	return string(r.From) + "/" + string(r.To)
}
