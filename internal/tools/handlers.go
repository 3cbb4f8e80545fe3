package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ayo6706/banking-agent/internal/domain"
	"github.com/ayo6706/banking-agent/internal/models"
	"github.com/ayo6706/banking-agent/internal/repository"
	"github.com/shopspring/decimal"
)

// transferArgs is the wire shape shared by the transfer tools. Amount is a
// pointer so an omitted value can be told apart from zero.
type transferArgs struct {
	Amount            *decimal.Decimal `json:"amount"`
	FromAccount       string           `json:"fromAccount"`
	ToAccount         string           `json:"toAccount"`
	FXThreshold       *decimal.Decimal `json:"fxThreshold"`
	PreferredCurrency string           `json:"preferredCurrency"`
}

func (a transferArgs) request() (models.TransferRequest, error) {
	req := models.TransferRequest{
		FromAccount: a.FromAccount,
		ToAccount:   a.ToAccount,
		FXThreshold: a.FXThreshold,
	}
	if a.Amount != nil {
		req.Amount = *a.Amount
	}
	if a.PreferredCurrency != "" {
		cur, err := domain.ParseCurrency(a.PreferredCurrency)
		if err != nil {
			return req, badArgs("invalid preferredCurrency: %v", err)
		}
		req.PreferredCurrency = cur
	}
	return req, nil
}

func (r *Registry) transferFunds(ctx context.Context, raw json.RawMessage) (any, error) {
	var args transferArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	req, err := args.request()
	if err != nil {
		return nil, err
	}
	return r.deps.Executor.Execute(ctx, req)
}

func (r *Registry) getAccountDetails(ctx context.Context, raw json.RawMessage) (any, error) {
	var args struct {
		AccountID string `json:"accountId"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	a, err := r.deps.Accounts.GetAccount(ctx, args.AccountID)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return ErrorPayload{Error: fmt.Sprintf("Account %s not found", args.AccountID)}, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *Registry) getAllAccounts(ctx context.Context, _ json.RawMessage) (any, error) {
	return r.deps.Accounts.ListAccounts(ctx)
}

func (r *Registry) getFXRate(ctx context.Context, raw json.RawMessage) (any, error) {
	var args struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	from, err := domain.ParseCurrency(args.From)
	if err != nil {
		return nil, badArgs("invalid from: %v", err)
	}
	to, err := domain.ParseCurrency(args.To)
	if err != nil {
		return nil, badArgs("invalid to: %v", err)
	}
	rate, err := r.deps.Rates.GetRate(ctx, from, to)
	if errors.Is(err, repository.ErrRateNotFound) {
		return ErrorPayload{Error: fmt.Sprintf("FX rate not available for %s to %s", from, to)}, nil
	}
	if err != nil {
		return nil, err
	}
	return rate, nil
}

// ValidateTransferResult reports validation without executing. SuggestedTarget
// is set only when the request is invalid.
type ValidateTransferResult struct {
	Valid           bool     `json:"valid"`
	Errors          []string `json:"errors"`
	ToAccount       string   `json:"toAccount,omitempty"`
	SuggestedTarget *string  `json:"suggestedTarget"`
}

func (r *Registry) validateTransfer(ctx context.Context, raw json.RawMessage) (any, error) {
	var args transferArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	req, err := args.request()
	if err != nil {
		return nil, err
	}
	res, err := r.deps.Validator.Validate(ctx, req)
	if err != nil {
		return nil, err
	}
	out := ValidateTransferResult{Valid: res.Valid, Errors: res.Errors, ToAccount: res.Request.ToAccount}
	if !res.Valid {
		target, err := r.deps.Targets.Resolve(ctx, req.FromAccount, "")
		if err != nil {
			return nil, err
		}
		if target != "" {
			out.SuggestedTarget = &target
		}
	}
	return out, nil
}

func (r *Registry) smartTransferFunds(ctx context.Context, raw json.RawMessage) (any, error) {
	var args struct {
		UserInput string `json:"userInput"`
		transferArgs
	}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	req, err := args.request()
	if err != nil {
		return nil, err
	}
	out, err := r.deps.Agent.SmartTransfer(ctx, args.UserInput, req)
	if err != nil {
		return nil, err
	}
	return out.Payload(), nil
}

func (r *Registry) analyzeTransferIntent(ctx context.Context, raw json.RawMessage) (any, error) {
	var args struct {
		UserInput    string       `json:"userInput"`
		ProvidedArgs transferArgs `json:"providedArgs"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	req, err := args.ProvidedArgs.request()
	if err != nil {
		return nil, err
	}
	return r.deps.Agent.AnalyzeIntent(ctx, args.UserInput, req)
}

func (r *Registry) intelligentAccountCheck(ctx context.Context, raw json.RawMessage) (any, error) {
	var args struct {
		UserInput string `json:"userInput"`
		AccountID string `json:"accountId"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	return r.deps.Insight.Check(ctx, args.UserInput, args.AccountID)
}
