package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ayo6706/banking-agent/internal/domain"
	"github.com/ayo6706/banking-agent/internal/repository"
	"github.com/shopspring/decimal"
)

var (
	lowBalanceThreshold      = decimal.NewFromInt(500)
	modestBalanceThreshold   = decimal.NewFromInt(1000)
	highUtilizationRatio     = decimal.RequireFromString("0.9")
	elevatedUtilizationRatio = decimal.RequireFromString("0.7")
)

// AccountOption is offered when the account to analyze cannot be inferred.
type AccountOption struct {
	ID      string `json:"id"`
	Display string `json:"display"`
}

type Utilization struct {
	DailyTransferUtilization   decimal.Decimal `json:"dailyTransferUtilization"`
	MonthlyTransferUtilization decimal.Decimal `json:"monthlyTransferUtilization"`
	BalanceUtilization         string          `json:"balanceUtilization"`
}

type BalanceComparison struct {
	ComparedToAverage string          `json:"comparedToAverage"`
	Difference        decimal.Decimal `json:"difference"`
	Percentile        decimal.Decimal `json:"percentile"`
}

type BalanceAnalysis struct {
	Current     decimal.Decimal    `json:"current"`
	Trend       string             `json:"trend"`
	Comparative *BalanceComparison `json:"comparative"`
}

type LimitWindow struct {
	Limit                 decimal.Decimal `json:"limit"`
	Used                  decimal.Decimal `json:"used"`
	Remaining             decimal.Decimal `json:"remaining"`
	UtilizationPercentage decimal.Decimal `json:"utilizationPercentage"`
}

type LimitAnalysis struct {
	Daily   LimitWindow `json:"daily"`
	Monthly LimitWindow `json:"monthly"`
}

type AccountAnalysis struct {
	HealthScore int              `json:"healthScore"`
	Utilization Utilization      `json:"utilizationAnalysis"`
	Balance     *BalanceAnalysis `json:"balanceAnalysis,omitempty"`
	Limits      *LimitAnalysis   `json:"limitAnalysis,omitempty"`
}

// AccountCheck is the outcome of an account question. Exactly one of
// NeedsElicitation, Error or Account is set.
type AccountCheck struct {
	Intent            domain.AccountQuery `json:"intent"`
	NeedsElicitation  bool                `json:"needsElicitation,omitempty"`
	Question          string              `json:"question,omitempty"`
	Options           []AccountOption     `json:"options,omitempty"`
	Error             string              `json:"error,omitempty"`
	AvailableAccounts []string            `json:"availableAccounts,omitempty"`
	Account           *domain.Account     `json:"account,omitempty"`
	Analysis          *AccountAnalysis    `json:"analysis,omitempty"`
	Recommendations   []string            `json:"recommendations,omitempty"`
}

// AccountInsight answers free-text questions about a single account.
type AccountInsight struct {
	accounts repository.AccountStore
	queries  *KeywordClassifier[domain.AccountQuery]
}

func NewAccountInsight(accounts repository.AccountStore) *AccountInsight {
	return &AccountInsight{accounts: accounts, queries: NewAccountQueryClassifier()}
}

// Check analyzes accountID, or the account whose currency code appears in
// text when accountID is empty.
func (s *AccountInsight) Check(ctx context.Context, text, accountID string) (*AccountCheck, error) {
	all, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	out := &AccountCheck{Intent: s.queries.Match(text)}
	if accountID == "" {
		accountID = inferAccount(text, all)
	}
	if accountID == "" {
		out.NeedsElicitation = true
		out.Question = "Which account would you like me to analyze?"
		for _, a := range all {
			out.Options = append(out.Options, AccountOption{
				ID:      a.ID,
				Display: fmt.Sprintf("%s Account (Balance: %s)", a.Currency, a.Balance.String()),
			})
		}
		return out, nil
	}

	account, err := s.accounts.GetAccount(ctx, accountID)
	if errors.Is(err, repository.ErrAccountNotFound) {
		out.Error = fmt.Sprintf("Account %s not found", accountID)
		for _, a := range all {
			out.AvailableAccounts = append(out.AvailableAccounts, a.ID)
		}
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load account %s: %w", accountID, err)
	}

	analysis := &AccountAnalysis{
		HealthScore: HealthScore(*account),
		Utilization: utilizationOf(*account),
	}
	switch out.Intent {
	case domain.AccountQueryBalance:
		analysis.Balance = &BalanceAnalysis{
			Current:     account.Balance,
			Trend:       "stable",
			Comparative: compareBalance(*account, all),
		}
	case domain.AccountQueryLimits:
		analysis.Limits = &LimitAnalysis{
			Daily:   limitWindow(account.DailyTransferLimit, account.TransfersToday),
			Monthly: limitWindow(account.MonthlyTransferLimit, account.TransfersThisMonth),
		}
	}

	out.Account = account
	out.Analysis = analysis
	out.Recommendations = accountRecommendations(*account)
	return out, nil
}

// HealthScore starts at 100 and deducts for a low balance, heavy monthly
// limit use and an inactive status. It never goes below zero.
func HealthScore(a domain.Account) int {
	score := 100
	switch {
	case a.Balance.LessThan(lowBalanceThreshold):
		score -= 20
	case a.Balance.LessThan(modestBalanceThreshold):
		score -= 10
	}

	if !a.MonthlyTransferLimit.IsZero() {
		ratio := a.TransfersThisMonth.Div(a.MonthlyTransferLimit)
		switch {
		case ratio.GreaterThan(highUtilizationRatio):
			score -= 30
		case ratio.GreaterThan(elevatedUtilizationRatio):
			score -= 15
		}
	}

	if !a.IsActive() {
		score -= 50
	}
	if score < 0 {
		return 0
	}
	return score
}

func utilizationOf(a domain.Account) Utilization {
	return Utilization{
		DailyTransferUtilization:   domain.Percent(a.TransfersToday, a.DailyTransferLimit).Round(2),
		MonthlyTransferUtilization: domain.Percent(a.TransfersThisMonth, a.MonthlyTransferLimit).Round(2),
		BalanceUtilization:         "N/A",
	}
}

func limitWindow(limit, used decimal.Decimal) LimitWindow {
	return LimitWindow{
		Limit:                 limit,
		Used:                  used,
		Remaining:             limit.Sub(used),
		UtilizationPercentage: domain.Percent(used, limit).Round(2),
	}
}

// compareBalance places a against the other accounts. Percentile is the share
// of other balances strictly below a's. Returns nil with no other accounts.
func compareBalance(a domain.Account, all []domain.Account) *BalanceComparison {
	var (
		sum   decimal.Decimal
		n     int64
		below int64
	)
	for _, o := range all {
		if o.ID == a.ID {
			continue
		}
		sum = sum.Add(o.Balance)
		n++
		if o.Balance.LessThan(a.Balance) {
			below++
		}
	}
	if n == 0 {
		return nil
	}
	avg := sum.Div(decimal.NewFromInt(n))
	position := "below"
	if a.Balance.GreaterThan(avg) {
		position = "above"
	}
	return &BalanceComparison{
		ComparedToAverage: position,
		Difference:        a.Balance.Sub(avg).Abs().Round(2),
		Percentile:        domain.Percent(decimal.NewFromInt(below), decimal.NewFromInt(n)).Round(2),
	}
}

func accountRecommendations(a domain.Account) []string {
	recs := []string{}
	if a.Balance.LessThan(modestBalanceThreshold) {
		recs = append(recs, "Consider maintaining a higher balance for better account flexibility")
	}
	if a.TransfersThisMonth.GreaterThan(a.MonthlyTransferLimit.Mul(domain.MonthlyLimitWarnRatio)) {
		recs = append(recs, "Approaching monthly transfer limit - plan upcoming transfers carefully")
	}
	if a.Currency == domain.CurrencyAUD {
		recs = append(recs, "Consider diversifying into other currencies if you have international exposure")
	}
	return recs
}

// inferAccount returns the first account whose currency code appears in text.
func inferAccount(text string, all []domain.Account) string {
	lower := strings.ToLower(text)
	for _, a := range all {
		if strings.Contains(lower, strings.ToLower(string(a.Currency))) {
			return a.ID
		}
	}
	return ""
}

// PortfolioMetrics summarizes every account. NominalTotal adds balances
// across currencies without conversion.
type PortfolioMetrics struct {
	Active             int             `json:"activeAccounts"`
	Currencies         []string        `json:"currencies"`
	DailyUtilization   decimal.Decimal `json:"dailyUtilization"`
	MonthlyUtilization decimal.Decimal `json:"monthlyUtilization"`
	NominalTotal       decimal.Decimal `json:"nominalTotalBalance"`
}

func computePortfolioMetrics(all []domain.Account) PortfolioMetrics {
	var (
		m                       PortfolioMetrics
		today, daily            decimal.Decimal
		thisMonth, monthlyLimit decimal.Decimal
		seen                    = map[domain.Currency]bool{}
	)
	m.Currencies = []string{}
	for _, a := range all {
		if a.IsActive() {
			m.Active++
		}
		if !seen[a.Currency] {
			seen[a.Currency] = true
			m.Currencies = append(m.Currencies, string(a.Currency))
		}
		m.NominalTotal = m.NominalTotal.Add(a.Balance)
		today = today.Add(a.TransfersToday)
		daily = daily.Add(a.DailyTransferLimit)
		thisMonth = thisMonth.Add(a.TransfersThisMonth)
		monthlyLimit = monthlyLimit.Add(a.MonthlyTransferLimit)
	}
	m.DailyUtilization = domain.Percent(today, daily).Round(2)
	m.MonthlyUtilization = domain.Percent(thisMonth, monthlyLimit).Round(2)
	return m
}

func balancesByCurrency(all []domain.Account) map[domain.Currency]decimal.Decimal {
	out := make(map[domain.Currency]decimal.Decimal)
	for _, a := range all {
		out[a.Currency] = out[a.Currency].Add(a.Balance)
	}
	return out
}
