package repository

import (
	"context"
	"errors"

	"github.com/ayo6706/banking-agent/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrRateNotFound    = errors.New("fx rate not found")
)

// AccountStore is the account data contract consumed by services.
// Mutations are immediate and visible to subsequent reads.
type AccountStore interface {
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	// ListAccounts returns every account in a stable enumeration order.
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	UpdateBalance(ctx context.Context, id string, balance decimal.Decimal) error
	// AddTransferVolume accumulates amount into both transfer counters.
	AddTransferVolume(ctx context.Context, id string, amount decimal.Decimal) error
}

// RateTable is the read-only FX rate contract.
type RateTable interface {
	GetRate(ctx context.Context, from, to domain.Currency) (*domain.FXRate, error)
	ListRates(ctx context.Context) ([]domain.FXRate, error)
}
