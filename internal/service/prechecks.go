package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ayo6706/banking-agent/internal/domain"
	"github.com/ayo6706/banking-agent/internal/models"
	"github.com/ayo6706/banking-agent/internal/observability"
	"github.com/ayo6706/banking-agent/internal/repository"
	"go.uber.org/zap"
)

// CheckName identifies a pre-check.
type CheckName string

const (
	CheckAccountStatus        CheckName = "validate_account_status"
	CheckBalanceSufficiency   CheckName = "check_balance_sufficiency"
	CheckTransferLimits       CheckName = "verify_transfer_limits"
	CheckFXRates              CheckName = "check_fx_rates"
	CheckFXRisk               CheckName = "assess_fx_risk"
	CheckLargeTransferAuth    CheckName = "verify_large_transfer_authorization"
	CheckAccountAccess        CheckName = "verify_account_access"
	CheckAggregateAccountData CheckName = "aggregate_account_data"
	CheckPortfolioMetrics     CheckName = "calculate_portfolio_metrics"
)

// IsCritical reports whether a failure of this check blocks execution.
func (c CheckName) IsCritical() bool {
	switch c {
	case CheckAccountStatus, CheckBalanceSufficiency, CheckTransferLimits:
		return true
	default:
		return false
	}
}

// CheckResult is the uniform output of every pre-check. Details holds the
// check-specific figures.
type CheckResult struct {
	Check   CheckName      `json:"check"`
	Passed  bool           `json:"passed"`
	Issues  []string       `json:"issues"`
	Details map[string]any `json:"details,omitempty"`
}

type checkFunc func(ctx context.Context, args models.TransferRequest) (CheckResult, error)

// PreCheckOrchestrator selects and runs the pre-checks relevant to an intent.
type PreCheckOrchestrator struct {
	accounts repository.AccountStore
	rates    repository.RateTable
	checks   map[CheckName]checkFunc
}

func NewPreCheckOrchestrator(accounts repository.AccountStore, rates repository.RateTable) *PreCheckOrchestrator {
	o := &PreCheckOrchestrator{accounts: accounts, rates: rates}
	o.checks = map[CheckName]checkFunc{
		CheckAccountStatus:        o.accountStatus,
		CheckBalanceSufficiency:   o.balanceSufficiency,
		CheckTransferLimits:       o.transferLimits,
		CheckFXRates:              o.fxRates,
		CheckFXRisk:               o.fxRisk,
		CheckLargeTransferAuth:    o.largeTransferAuth,
		CheckAccountAccess:        o.accountAccess,
		CheckAggregateAccountData: o.aggregateAccounts,
		CheckPortfolioMetrics:     o.portfolioMetrics,
	}
	return o
}

// AllChecks lists every check the orchestrator can run.
func AllChecks() []CheckName {
	return []CheckName{
		CheckAccountStatus,
		CheckBalanceSufficiency,
		CheckTransferLimits,
		CheckFXRates,
		CheckFXRisk,
		CheckLargeTransferAuth,
		CheckAccountAccess,
		CheckAggregateAccountData,
		CheckPortfolioMetrics,
	}
}

// RequiredChecks returns the checks for intent in execution order.
func (o *PreCheckOrchestrator) RequiredChecks(ctx context.Context, intent domain.Intent, args models.TransferRequest) ([]CheckName, error) {
	switch intent {
	case domain.IntentTransferFunds:
		checks := []CheckName{CheckAccountStatus, CheckBalanceSufficiency, CheckTransferLimits}
		from, err := o.account(ctx, args.FromAccount)
		if err != nil {
			return nil, err
		}
		if from != nil {
			conversion, err := impliesConversion(ctx, o.accounts, *from, args)
			if err != nil {
				return nil, err
			}
			if conversion {
				checks = append(checks, CheckFXRates, CheckFXRisk)
			}
		}
		if args.Amount.GreaterThan(domain.LargeTransferThreshold) {
			checks = append(checks, CheckLargeTransferAuth)
		}
		return checks, nil
	case domain.IntentCheckAccount:
		return []CheckName{CheckAccountAccess}, nil
	case domain.IntentPortfolioOverview:
		return []CheckName{CheckAggregateAccountData, CheckPortfolioMetrics}, nil
	default:
		return []CheckName{}, nil
	}
}

// Run executes checks against the current account and rate state.
func (o *PreCheckOrchestrator) Run(ctx context.Context, checks []CheckName, args models.TransferRequest) (map[CheckName]CheckResult, error) {
	results := make(map[CheckName]CheckResult, len(checks))
	for _, name := range checks {
		fn, ok := o.checks[name]
		if !ok {
			return nil, fmt.Errorf("unknown pre-check %q", name)
		}
		res, err := fn(ctx, args)
		if err != nil {
			return nil, fmt.Errorf("pre-check %s: %w", name, err)
		}
		res.Check = name
		if res.Issues == nil {
			res.Issues = []string{}
		}
		if !res.Passed {
			observability.IncrementPreCheckFailure(string(name))
			zap.L().Debug("pre-check failed", zap.String("check", string(name)), zap.Strings("issues", res.Issues))
		}
		results[name] = res
	}
	return results, nil
}

// CriticalFailures returns failed critical checks in the order they were run.
func CriticalFailures(order []CheckName, results map[CheckName]CheckResult) []CheckResult {
	var out []CheckResult
	for _, name := range order {
		res, ok := results[name]
		if ok && name.IsCritical() && !res.Passed {
			out = append(out, res)
		}
	}
	return out
}

func (o *PreCheckOrchestrator) accountStatus(ctx context.Context, args models.TransferRequest) (CheckResult, error) {
	res := CheckResult{Passed: true}
	for _, side := range []struct {
		label string
		id    string
	}{{"Source", args.FromAccount}, {"Target", args.ToAccount}} {
		if side.id == "" {
			continue
		}
		a, err := o.account(ctx, side.id)
		if err != nil {
			return res, err
		}
		switch {
		case a == nil:
			res.Passed = false
			res.Issues = append(res.Issues, fmt.Sprintf("%s account %s not found", side.label, side.id))
		case !a.IsActive():
			res.Passed = false
			res.Issues = append(res.Issues, fmt.Sprintf("%s account is %s", side.label, a.Status))
		}
	}
	return res, nil
}

func (o *PreCheckOrchestrator) balanceSufficiency(ctx context.Context, args models.TransferRequest) (CheckResult, error) {
	a, err := o.account(ctx, args.FromAccount)
	if err != nil {
		return CheckResult{}, err
	}
	if a == nil {
		return CheckResult{Passed: false, Issues: []string{"Account not found"}}, nil
	}
	res := CheckResult{
		Passed: !a.Balance.LessThan(args.Amount),
		Details: map[string]any{
			"available": a.Balance,
			"required":  args.Amount,
		},
	}
	if !res.Passed {
		res.Issues = []string{"Insufficient funds"}
	}
	return res, nil
}

func (o *PreCheckOrchestrator) transferLimits(ctx context.Context, args models.TransferRequest) (CheckResult, error) {
	a, err := o.account(ctx, args.FromAccount)
	if err != nil {
		return CheckResult{}, err
	}
	if a == nil {
		return CheckResult{Passed: false, Issues: []string{"Account not found"}}, nil
	}
	var issues []string
	if args.Amount.GreaterThan(a.DailyTransferLimit) {
		issues = append(issues, fmt.Sprintf("Exceeds daily limit of %s", a.DailyTransferLimit.String()))
	}
	if a.TransfersToday.Add(args.Amount).GreaterThan(a.DailyTransferLimit) {
		issues = append(issues, fmt.Sprintf("Would exceed daily limit (used: %s)", a.TransfersToday.String()))
	}
	if a.TransfersThisMonth.Add(args.Amount).GreaterThan(a.MonthlyTransferLimit) {
		issues = append(issues, fmt.Sprintf("Would exceed monthly limit (used: %s)", a.TransfersThisMonth.String()))
	}
	return CheckResult{
		Passed: len(issues) == 0,
		Issues: issues,
		Details: map[string]any{
			"dailyRemaining":   a.DailyRemaining(),
			"monthlyRemaining": a.MonthlyRemaining(),
		},
	}, nil
}

// targetCurrency is the named target's currency, else the preferred one.
func (o *PreCheckOrchestrator) targetCurrency(ctx context.Context, args models.TransferRequest) (domain.Currency, error) {
	if args.ToAccount != "" {
		to, err := o.account(ctx, args.ToAccount)
		if err != nil || to == nil {
			return "", err
		}
		return to.Currency, nil
	}
	return args.PreferredCurrency, nil
}

func (o *PreCheckOrchestrator) fxRates(ctx context.Context, args models.TransferRequest) (CheckResult, error) {
	from, err := o.account(ctx, args.FromAccount)
	if err != nil {
		return CheckResult{}, err
	}
	if from == nil {
		return CheckResult{Passed: false, Issues: []string{"Account not found"}}, nil
	}
	target, err := o.targetCurrency(ctx, args)
	if err != nil {
		return CheckResult{}, err
	}
	if target == "" || target == from.Currency {
		return CheckResult{Passed: true, Details: map[string]any{"required": false}}, nil
	}

	details := map[string]any{
		"required": true,
		"pair":     string(from.Currency) + "/" + string(target),
	}
	rate, err := o.rates.GetRate(ctx, from.Currency, target)
	if errors.Is(err, repository.ErrRateNotFound) {
		return CheckResult{
			Passed:  false,
			Issues:  []string{fmt.Sprintf("FX rate not available for %s to %s", from.Currency, target)},
			Details: details,
		}, nil
	}
	if err != nil {
		return CheckResult{}, err
	}
	details["rate"] = rate.Rate
	details["timestamp"] = rate.Timestamp
	return CheckResult{Passed: true, Details: details}, nil
}

func (o *PreCheckOrchestrator) fxRisk(ctx context.Context, args models.TransferRequest) (CheckResult, error) {
	fx, err := o.fxRates(ctx, args)
	if err != nil {
		return CheckResult{}, err
	}
	if required, _ := fx.Details["required"].(bool); !required {
		return CheckResult{Passed: true, Details: map[string]any{"risk": "none"}}, nil
	}
	var issues []string
	if !args.HasFXThreshold() {
		issues = append(issues, "No rate threshold set")
	}
	risk := "low"
	if len(issues) > 0 {
		risk = "medium"
	}
	details := map[string]any{"risk": risk}
	if rate, ok := fx.Details["rate"]; ok {
		details["currentRate"] = rate
	}
	return CheckResult{Passed: len(issues) == 0, Issues: issues, Details: details}, nil
}

// largeTransferAuth is a placeholder that always authorizes.
func (o *PreCheckOrchestrator) largeTransferAuth(_ context.Context, args models.TransferRequest) (CheckResult, error) {
	return CheckResult{
		Passed: true,
		Details: map[string]any{
			"required":   args.Amount.GreaterThan(domain.LargeTransferAuthThreshold),
			"authorized": true,
			"threshold":  domain.LargeTransferAuthThreshold,
		},
	}, nil
}

func (o *PreCheckOrchestrator) accountAccess(ctx context.Context, args models.TransferRequest) (CheckResult, error) {
	if args.FromAccount == "" {
		return CheckResult{Passed: true, Details: map[string]any{"scope": "all"}}, nil
	}
	a, err := o.account(ctx, args.FromAccount)
	if err != nil {
		return CheckResult{}, err
	}
	if a == nil {
		return CheckResult{Passed: false, Issues: []string{fmt.Sprintf("Account %s not found", args.FromAccount)}}, nil
	}
	return CheckResult{Passed: true, Details: map[string]any{"accountId": a.ID, "status": a.Status}}, nil
}

func (o *PreCheckOrchestrator) aggregateAccounts(ctx context.Context, _ models.TransferRequest) (CheckResult, error) {
	all, err := o.accounts.ListAccounts(ctx)
	if err != nil {
		return CheckResult{}, fmt.Errorf("list accounts: %w", err)
	}
	balances := map[string]any{}
	for cur, sum := range balancesByCurrency(all) {
		balances[string(cur)] = sum
	}
	return CheckResult{
		Passed: len(all) > 0,
		Issues: emptyPortfolioIssue(len(all)),
		Details: map[string]any{
			"accountCount":       len(all),
			"balancesByCurrency": balances,
		},
	}, nil
}

func (o *PreCheckOrchestrator) portfolioMetrics(ctx context.Context, _ models.TransferRequest) (CheckResult, error) {
	all, err := o.accounts.ListAccounts(ctx)
	if err != nil {
		return CheckResult{}, fmt.Errorf("list accounts: %w", err)
	}
	m := computePortfolioMetrics(all)
	return CheckResult{
		Passed: len(all) > 0,
		Issues: emptyPortfolioIssue(len(all)),
		Details: map[string]any{
			"activeAccounts":      m.Active,
			"currencies":          m.Currencies,
			"dailyUtilization":    m.DailyUtilization,
			"monthlyUtilization":  m.MonthlyUtilization,
			"nominalTotalBalance": m.NominalTotal,
		},
	}, nil
}

func (o *PreCheckOrchestrator) account(ctx context.Context, id string) (*domain.Account, error) {
	if id == "" {
		return nil, nil
	}
	a, err := o.accounts.GetAccount(ctx, id)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load account %s: %w", id, err)
	}
	return a, nil
}

func emptyPortfolioIssue(n int) []string {
	if n == 0 {
		return []string{"No accounts available"}
	}
	return nil
}
