package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ayo6706/banking-agent/internal/domain"
	"github.com/ayo6706/banking-agent/internal/models"
	"github.com/ayo6706/banking-agent/internal/repository"
)

// PreConditionValidator runs the ordered pre-transfer battery. Every check is
// evaluated and all violations are reported together, except that a missing
// source or an unresolvable target ends validation early.
type PreConditionValidator struct {
	accounts repository.AccountStore
	rates    repository.RateTable
	targets  *TargetResolver
}

func NewPreConditionValidator(accounts repository.AccountStore, rates repository.RateTable, targets *TargetResolver) *PreConditionValidator {
	return &PreConditionValidator{accounts: accounts, rates: rates, targets: targets}
}

// Validate never mutates req. The returned result carries the resolved
// request so callers see the inferred target even on failure.
func (v *PreConditionValidator) Validate(ctx context.Context, req models.TransferRequest) (models.ValidationResult, error) {
	res := models.ValidationResult{Request: req, Errors: []string{}}

	if !req.Amount.IsPositive() {
		res.Errors = append(res.Errors, fmt.Sprintf("Invalid amount %s: must be greater than zero", req.Amount.String()))
		return res, nil
	}

	from, err := v.lookup(ctx, req.FromAccount)
	if err != nil {
		return res, err
	}
	if from == nil {
		res.Errors = append(res.Errors, fmt.Sprintf("Source account %s not found", req.FromAccount))
		return res, nil
	}

	if res.Request.ToAccount == "" {
		target, err := v.targets.Resolve(ctx, req.FromAccount, req.PreferredCurrency)
		if err != nil {
			return res, err
		}
		if target == "" {
			res.Errors = append(res.Errors, "No suitable target account found")
			return res, nil
		}
		res.Request.ToAccount = target
	}

	to, err := v.lookup(ctx, res.Request.ToAccount)
	if err != nil {
		return res, err
	}
	if to == nil {
		res.Errors = append(res.Errors, fmt.Sprintf("Target account %s not found", res.Request.ToAccount))
		return res, nil
	}

	if !from.IsActive() {
		res.Errors = append(res.Errors, fmt.Sprintf("Source account is %s", from.Status))
	}
	if !to.IsActive() {
		res.Errors = append(res.Errors, fmt.Sprintf("Target account is %s", to.Status))
	}

	amount := req.Amount
	if from.Balance.LessThan(amount) {
		res.Errors = append(res.Errors, fmt.Sprintf("Insufficient funds. Available: %s, Required: %s", from.Balance.String(), amount.String()))
	}
	if amount.GreaterThan(from.DailyTransferLimit) {
		res.Errors = append(res.Errors, fmt.Sprintf("Amount exceeds daily transfer limit of %s", from.DailyTransferLimit.String()))
	}
	if from.TransfersToday.Add(amount).GreaterThan(from.DailyTransferLimit) {
		res.Errors = append(res.Errors, fmt.Sprintf("Transfer would exceed daily limit. Today's transfers: %s", from.TransfersToday.String()))
	}
	if from.TransfersThisMonth.Add(amount).GreaterThan(from.MonthlyTransferLimit) {
		res.Errors = append(res.Errors, fmt.Sprintf("Transfer would exceed monthly limit. This month's transfers: %s", from.TransfersThisMonth.String()))
	}

	if from.Currency != to.Currency && req.HasFXThreshold() {
		rate, err := v.rates.GetRate(ctx, from.Currency, to.Currency)
		switch {
		case errors.Is(err, repository.ErrRateNotFound):
			res.Errors = append(res.Errors, fmt.Sprintf("FX rate not available for %s to %s", from.Currency, to.Currency))
		case err != nil:
			return res, fmt.Errorf("validate fx threshold: %w", err)
		case rate.Rate.GreaterThan(*req.FXThreshold):
			res.Errors = append(res.Errors, fmt.Sprintf("FX rate %s exceeds threshold %s", rate.Rate.String(), req.FXThreshold.String()))
		}
	}

	res.Valid = len(res.Errors) == 0
	return res, nil
}

// lookup maps not-found to a nil account so callers can report it as a
// validation error rather than a failure.
func (v *PreConditionValidator) lookup(ctx context.Context, id string) (*domain.Account, error) {
	if id == "" {
		return nil, nil
	}
	a, err := v.accounts.GetAccount(ctx, id)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load account %s: %w", id, err)
	}
	return a, nil
}
