package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ayo6706/banking-agent/internal/domain"
	"github.com/ayo6706/banking-agent/internal/models"
	"github.com/ayo6706/banking-agent/internal/observability"
	"github.com/ayo6706/banking-agent/internal/repository"
	"github.com/shopspring/decimal"
)

var (
	amountPattern  = regexp.MustCompile(`\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?`)
	accountPattern = regexp.MustCompile(`(?i)\b(?:(from)\s+(?:my\s+|the\s+)?)?(aud|usd|eur|gbp)[\s\-]?account`)
)

// ElicitationEngine works out what a transfer request is missing, which
// risks it carries and what to recommend.
type ElicitationEngine struct {
	accounts   repository.AccountStore
	classifier TextClassifier
}

func NewElicitationEngine(accounts repository.AccountStore, classifier TextClassifier) *ElicitationEngine {
	return &ElicitationEngine{accounts: accounts, classifier: classifier}
}

// Analyze classifies text and inspects args. An amount or source account found
// in text suppresses the matching prompt and is reported in Recovered, but
// Args stays exactly as supplied.
func (e *ElicitationEngine) Analyze(ctx context.Context, text string, args models.TransferRequest) (*models.ReasoningContext, error) {
	rc := &models.ReasoningContext{
		Intent:          e.classifier.Classify(text),
		MissingInfo:     []string{},
		Risks:           []string{},
		Recommendations: []string{},
		Prompts:         []models.ElicitationPrompt{},
		Args:            args,
	}

	if rc.Intent == domain.IntentTransferFunds {
		if err := e.checkMissing(ctx, rc, text); err != nil {
			return nil, err
		}
	}
	rc.RequiresElicitation = len(rc.Prompts) > 0

	from, err := e.sourceAccount(ctx, rc.Args.FromAccount)
	if err != nil {
		return nil, err
	}
	if from != nil {
		conversion, err := e.involvesConversion(ctx, *from, rc.Args)
		if err != nil {
			return nil, err
		}
		e.assessRisks(rc, *from, conversion)
		if err := e.recommend(ctx, rc, *from, conversion); err != nil {
			return nil, err
		}
	}

	for _, p := range rc.Prompts {
		observability.IncrementElicitation(string(p.Priority))
	}
	return rc, nil
}

func (e *ElicitationEngine) checkMissing(ctx context.Context, rc *models.ReasoningContext, text string) error {
	if !rc.Args.HasAmount() {
		if amt, ok := amountFromText(text); ok {
			recovered(rc).Amount = &amt
		} else {
			rc.MissingInfo = append(rc.MissingInfo, "amount")
			rc.Prompts = append(rc.Prompts, models.ElicitationPrompt{
				Question: "How much would you like to transfer?",
				Context:  "I need to know the transfer amount to proceed safely.",
				Priority: domain.PriorityHigh,
			})
		}
	}

	var all []domain.Account
	listAll := func() ([]domain.Account, error) {
		if all != nil {
			return all, nil
		}
		var err error
		all, err = e.accounts.ListAccounts(ctx)
		if err != nil {
			return nil, fmt.Errorf("list accounts: %w", err)
		}
		return all, nil
	}

	if rc.Args.FromAccount == "" {
		if id, ok := accountFromText(text); ok {
			recovered(rc).FromAccount = id
		} else {
			accounts, err := listAll()
			if err != nil {
				return err
			}
			options := make([]string, 0, len(accounts))
			for _, a := range accounts {
				options = append(options, fmt.Sprintf("%s account (%s)", a.Currency, a.ID))
			}
			rc.MissingInfo = append(rc.MissingInfo, "fromAccount")
			rc.Prompts = append(rc.Prompts, models.ElicitationPrompt{
				Question:         "Which account would you like to transfer from?",
				Context:          "Please specify the source account for the transfer.",
				SuggestedOptions: options,
				Priority:         domain.PriorityHigh,
			})
		}
	}

	if rc.Args.ToAccount == "" && rc.Args.PreferredCurrency == "" {
		accounts, err := listAll()
		if err != nil {
			return err
		}
		var options []string
		seen := map[domain.Currency]bool{}
		for _, a := range accounts {
			if seen[a.Currency] {
				continue
			}
			seen[a.Currency] = true
			options = append(options, fmt.Sprintf("%s account", a.Currency))
		}
		rc.Prompts = append(rc.Prompts, models.ElicitationPrompt{
			Question:         "Which currency or account would you prefer for the destination?",
			Context:          "I can suggest the best target account, but knowing your preference helps.",
			SuggestedOptions: options,
			Priority:         domain.PriorityMedium,
		})
	}

	if rc.Args.FromAccount != "" && !rc.Args.HasFXThreshold() {
		from, err := e.sourceAccount(ctx, rc.Args.FromAccount)
		if err != nil {
			return err
		}
		if from != nil {
			conversion, err := e.involvesConversion(ctx, *from, rc.Args)
			if err != nil {
				return err
			}
			if conversion {
				rc.Prompts = append(rc.Prompts, models.ElicitationPrompt{
					Question: "Do you have a maximum acceptable exchange rate for this transfer?",
					Context:  "This transfer involves currency conversion. Setting a threshold can protect you from unfavorable rates.",
					Priority: domain.PriorityLow,
				})
			}
		}
	}
	return nil
}

func (e *ElicitationEngine) assessRisks(rc *models.ReasoningContext, from domain.Account, conversion bool) {
	amount := rc.Args.Amount
	if !amount.IsPositive() {
		return
	}
	if amount.GreaterThan(from.Balance.Mul(domain.LargeAmountBalanceRatio)) {
		rc.Risks = append(rc.Risks, "Large transfer amount (>80% of account balance)")
	}
	if from.TransfersToday.Add(amount).GreaterThan(from.DailyTransferLimit.Mul(domain.DailyLimitWarnRatio)) {
		rc.Risks = append(rc.Risks, "Approaching daily transfer limit")
	}
	if from.TransfersThisMonth.Add(amount).GreaterThan(from.MonthlyTransferLimit.Mul(domain.MonthlyLimitWarnRatio)) {
		rc.Risks = append(rc.Risks, "Approaching monthly transfer limit")
	}
	if !rc.Args.HasFXThreshold() && conversion {
		rc.Risks = append(rc.Risks, "No FX rate protection set for currency conversion")
	}
}

func (e *ElicitationEngine) recommend(ctx context.Context, rc *models.ReasoningContext, from domain.Account, conversion bool) error {
	if rc.Args.ToAccount == "" && rc.Args.HasAmount() {
		all, err := e.accounts.ListAccounts(ctx)
		if err != nil {
			return fmt.Errorf("list accounts: %w", err)
		}
		if target := suggestTarget(from, all); target != nil {
			rc.Recommendations = append(rc.Recommendations,
				fmt.Sprintf("Consider transferring to %s account for better diversification", target.Currency))
		}
	}
	if conversion {
		rc.Recommendations = append(rc.Recommendations, "Consider monitoring FX rates over the next few days for better conversion rates")
	}
	if rc.Args.HasAmount() && rc.Args.Amount.LessThan(domain.SmallTransferThreshold) {
		rc.Recommendations = append(rc.Recommendations, "Small transfers may have proportionally higher fees. Consider consolidating smaller amounts.")
	}
	return nil
}

func recovered(rc *models.ReasoningContext) *models.TextRecovery {
	if rc.Recovered == nil {
		rc.Recovered = &models.TextRecovery{}
	}
	return rc.Recovered
}

// involvesConversion is true when the named target, or the preferred currency
// if no target is named, differs from the source currency.
func (e *ElicitationEngine) involvesConversion(ctx context.Context, from domain.Account, args models.TransferRequest) (bool, error) {
	return impliesConversion(ctx, e.accounts, from, args)
}

func (e *ElicitationEngine) sourceAccount(ctx context.Context, id string) (*domain.Account, error) {
	if id == "" {
		return nil, nil
	}
	a, err := e.accounts.GetAccount(ctx, id)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load source account: %w", err)
	}
	return a, nil
}

func impliesConversion(ctx context.Context, accounts repository.AccountStore, from domain.Account, args models.TransferRequest) (bool, error) {
	if args.ToAccount != "" {
		to, err := accounts.GetAccount(ctx, args.ToAccount)
		if errors.Is(err, repository.ErrAccountNotFound) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("load target account: %w", err)
		}
		return to.Currency != from.Currency, nil
	}
	return args.PreferredCurrency != "" && args.PreferredCurrency != from.Currency, nil
}

func amountFromText(text string) (decimal.Decimal, bool) {
	m := amountPattern.FindString(text)
	if m == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(m, ",", ""))
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

// accountFromText prefers an account introduced by "from"; otherwise the
// first account named.
func accountFromText(text string) (string, bool) {
	matches := accountPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return "", false
	}
	pick := matches[0]
	for _, m := range matches {
		if m[1] != "" {
			pick = m
			break
		}
	}
	return strings.ToUpper(pick[2]) + "-account", true
}
