package service

import (
	"context"
	"fmt"

	"github.com/ayo6706/banking-agent/internal/observability"
	"github.com/ayo6706/banking-agent/internal/repository"
	"go.uber.org/zap"
)

// Invariant names reported by reconciliation.
const (
	InvariantNonNegativeBalance = "non_negative_balance"
	InvariantDailyLimit         = "daily_limit"
	InvariantMonthlyLimit       = "monthly_limit"
)

// Violation is an account whose state breaks an invariant that pre-transfer
// checks are supposed to uphold.
type Violation struct {
	AccountID string `json:"accountId"`
	Invariant string `json:"invariant"`
	Detail    string `json:"detail"`
}

// ReconciliationService verifies account state invariants.
type ReconciliationService struct {
	accounts repository.AccountStore
}

// NewReconciliationService creates a reconciliation service.
func NewReconciliationService(accounts repository.AccountStore) *ReconciliationService {
	return &ReconciliationService{accounts: accounts}
}

// Audit scans every account and returns the violations found.
func (s *ReconciliationService) Audit(ctx context.Context) ([]Violation, error) {
	all, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	var out []Violation
	for _, a := range all {
		balance, _ := a.Balance.Float64()
		observability.SetAccountBalance(a.ID, string(a.Currency), balance)
		if !a.DailyTransferLimit.IsZero() {
			r, _ := a.TransfersToday.Div(a.DailyTransferLimit).Float64()
			observability.SetLimitUtilization(a.ID, "daily", r)
		}
		if !a.MonthlyTransferLimit.IsZero() {
			r, _ := a.TransfersThisMonth.Div(a.MonthlyTransferLimit).Float64()
			observability.SetLimitUtilization(a.ID, "monthly", r)
		}

		if a.Balance.IsNegative() {
			out = append(out, Violation{a.ID, InvariantNonNegativeBalance,
				fmt.Sprintf("balance %s is negative", a.Balance.String())})
		}
		if a.TransfersToday.GreaterThan(a.DailyTransferLimit) {
			out = append(out, Violation{a.ID, InvariantDailyLimit,
				fmt.Sprintf("transfers today %s exceed limit %s", a.TransfersToday.String(), a.DailyTransferLimit.String())})
		}
		if a.TransfersThisMonth.GreaterThan(a.MonthlyTransferLimit) {
			out = append(out, Violation{a.ID, InvariantMonthlyLimit,
				fmt.Sprintf("transfers this month %s exceed limit %s", a.TransfersThisMonth.String(), a.MonthlyTransferLimit.String())})
		}
	}
	return out, nil
}

// Run audits the store and logs every violation. Violations are not errors.
func (s *ReconciliationService) Run(ctx context.Context) error {
	violations, err := s.Audit(ctx)
	if err != nil {
		return err
	}
	if len(violations) == 0 {
		zap.L().Info("Accounts reconciled")
		return nil
	}
	for _, v := range violations {
		observability.IncrementInvariantViolation(v.AccountID, v.Invariant)
		zap.L().Error("CRITICAL: account invariant violated",
			zap.String("account_id", v.AccountID),
			zap.String("invariant", v.Invariant),
			zap.String("detail", v.Detail),
		)
	}
	return nil
}
