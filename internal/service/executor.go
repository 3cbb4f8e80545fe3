package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ayo6706/banking-agent/internal/domain"
	"github.com/ayo6706/banking-agent/internal/lock"
	"github.com/ayo6706/banking-agent/internal/models"
	"github.com/ayo6706/banking-agent/internal/observability"
	"github.com/ayo6706/banking-agent/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TransferExecutor validates and applies transfers. The source and target
// accounts stay locked from validation until the last mutation.
type TransferExecutor struct {
	accounts  repository.AccountStore
	rates     repository.RateTable
	validator *PreConditionValidator
	targets   *TargetResolver
	locker    lock.Locker
	now       func() time.Time
}

func NewTransferExecutor(accounts repository.AccountStore, rates repository.RateTable, validator *PreConditionValidator, targets *TargetResolver, locker lock.Locker) *TransferExecutor {
	return &TransferExecutor{
		accounts:  accounts,
		rates:     rates,
		validator: validator,
		targets:   targets,
		locker:    locker,
		now:       time.Now,
	}
}

// Execute returns a failed result, not an error, when validation rejects the
// request or no rate exists for the pair. Errors are infrastructure failures;
// a failure after the source was debited is not rolled back.
func (e *TransferExecutor) Execute(ctx context.Context, req models.TransferRequest) (*models.TransferResult, error) {
	if req.ToAccount == "" && req.FromAccount != "" {
		target, err := e.targets.Resolve(ctx, req.FromAccount, req.PreferredCurrency)
		if err != nil {
			return nil, err
		}
		req.ToAccount = target
	}

	release, err := e.acquire(ctx, req.FromAccount, req.ToAccount)
	if err != nil {
		observability.IncrementTransfer("lock_failed")
		return nil, fmt.Errorf("lock transfer accounts: %w", err)
	}
	defer release()

	validation, err := e.validator.Validate(ctx, req)
	if err != nil {
		return nil, err
	}
	if !validation.Valid {
		observability.IncrementTransfer("rejected")
		return &models.TransferResult{
			Success: false,
			Message: "Transfer failed: " + strings.Join(validation.Errors, ", "),
		}, nil
	}
	req = validation.Request

	from, err := e.accounts.GetAccount(ctx, req.FromAccount)
	if err != nil {
		return e.missingAccount(err)
	}
	to, err := e.accounts.GetAccount(ctx, req.ToAccount)
	if err != nil {
		return e.missingAccount(err)
	}

	conv := domain.SameCurrency(req.Amount)
	if from.Currency != to.Currency {
		rate, err := e.rates.GetRate(ctx, from.Currency, to.Currency)
		if errors.Is(err, repository.ErrRateNotFound) {
			observability.IncrementTransfer("rejected")
			return &models.TransferResult{
				Success: false,
				Message: fmt.Sprintf("FX rate not available for %s to %s", from.Currency, to.Currency),
			}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("load fx rate: %w", err)
		}
		conv = domain.Convert(req.Amount, rate.Rate)
	}

	if err := e.apply(ctx, *from, *to, req.Amount, conv.Net); err != nil {
		observability.IncrementTransfer("failed")
		return nil, err
	}

	txID := e.transactionID()
	observability.IncrementTransfer("completed")
	zap.L().Info("transfer completed",
		zap.String("transaction_id", txID),
		zap.String("from_account", from.ID),
		zap.String("to_account", to.ID),
		zap.String("amount", req.Amount.String()),
		zap.String("final_amount", conv.Net.String()),
	)

	details := &models.TransferDetails{
		FromAccount: from.ID,
		ToAccount:   to.ID,
		Amount:      req.Amount,
		Fee:         conv.Fee,
		FinalAmount: conv.Net,
	}
	if from.Currency != to.Currency {
		rate := conv.Rate
		details.ExchangeRate = &rate
	}

	return &models.TransferResult{
		Success:       true,
		TransactionID: txID,
		Message:       "Transfer completed successfully",
		Details:       details,
	}, nil
}

// apply debits the source by the original amount, credits the target by the
// net amount and then bumps the source counters. Steps run in order with no
// compensation.
func (e *TransferExecutor) apply(ctx context.Context, from, to domain.Account, amount, credit decimal.Decimal) error {
	if err := e.accounts.UpdateBalance(ctx, from.ID, from.Balance.Sub(amount)); err != nil {
		return fmt.Errorf("debit %s: %w", from.ID, err)
	}
	if err := e.accounts.UpdateBalance(ctx, to.ID, to.Balance.Add(credit)); err != nil {
		zap.L().Error("transfer left source debited without credit",
			zap.String("from_account", from.ID),
			zap.String("to_account", to.ID),
			zap.String("amount", amount.String()),
			zap.Error(err),
		)
		return fmt.Errorf("credit %s: %w", to.ID, err)
	}
	if err := e.accounts.AddTransferVolume(ctx, from.ID, amount); err != nil {
		zap.L().Error("transfer applied without counter update",
			zap.String("from_account", from.ID),
			zap.String("amount", amount.String()),
			zap.Error(err),
		)
		return fmt.Errorf("record transfer volume %s: %w", from.ID, err)
	}
	return nil
}

func (e *TransferExecutor) acquire(ctx context.Context, keys ...string) (func(), error) {
	var nonEmpty []string
	for _, k := range keys {
		if k != "" {
			nonEmpty = append(nonEmpty, k)
		}
	}
	if len(nonEmpty) == 0 || e.locker == nil {
		return func() {}, nil
	}
	return e.locker.Acquire(ctx, nonEmpty...)
}

func (e *TransferExecutor) missingAccount(err error) (*models.TransferResult, error) {
	if errors.Is(err, repository.ErrAccountNotFound) {
		observability.IncrementTransfer("rejected")
		return &models.TransferResult{Success: false, Message: "One of the accounts could not be found."}, nil
	}
	return nil, fmt.Errorf("load transfer account: %w", err)
}

// transactionID is TXN-<unix millis>-<6 random uppercase hex chars>.
func (e *TransferExecutor) transactionID() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("TXN-%d-%s", e.now().UnixMilli(), suffix)
}
