// Package prompts renders analysis prompts from the current account state.
package prompts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/ayo6706/banking-agent/internal/domain"
	"github.com/ayo6706/banking-agent/internal/repository"
	"github.com/shopspring/decimal"
)

var ErrUnknownPrompt = errors.New("unknown prompt")

type Name string

const (
	AccountAnalysis   Name = "account_analysis"
	TransferAdvisor   Name = "transfer_advisor"
	PortfolioOverview Name = "portfolio_overview"
)

type Argument struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

type Definition struct {
	Name        Name       `json:"name"`
	Description string     `json:"description"`
	Arguments   []Argument `json:"arguments"`
}

// Result carries either the rendered prompt or a business error.
type Result struct {
	Prompt string `json:"prompt,omitempty"`
	Error  string `json:"error,omitempty"`
}

type renderFunc func(ctx context.Context, args map[string]string) (Result, error)

type entry struct {
	def    Definition
	render renderFunc
}

type Catalogue struct {
	accounts repository.AccountStore
	order    []Name
	entries  map[Name]entry
}

var (
	accountAnalysisTmpl = template.Must(template.New(string(AccountAnalysis)).Parse(`Analyze this account and provide recommendations:

Account: {{.ID}}
Currency: {{.Currency}}
Balance: {{.Balance}}
Status: {{.Status}}
Daily Limit: {{.DailyTransferLimit}} (Used today: {{.TransfersToday}})
Monthly Limit: {{.MonthlyTransferLimit}} (Used this month: {{.TransfersThisMonth}})

Please assess:
1. Account health and utilization
2. Risk factors
3. Optimization opportunities
4. Recommended actions`))

	transferAdvisorTmpl = template.Must(template.New(string(TransferAdvisor)).Parse(`Provide transfer recommendations for:

Source Account: {{.Source}}
Proposed Amount: {{.Amount}}
All Accounts: {{.Accounts}}

Recommend:
1. Best target account and reasoning
2. Optimal transfer amount
3. FX considerations
4. Risk assessment
5. Alternative strategies`))

	portfolioOverviewTmpl = template.Must(template.New(string(PortfolioOverview)).Parse(`Analyze this complete portfolio:

{{.Accounts}}

Total Portfolio Value: {{.Total}}
{{- range .ByCurrency}}
{{.Currency}} holdings: {{.Balance}}
{{- end}}

Provide:
1. Currency allocation analysis
2. Risk assessment
3. Diversification recommendations
4. Rebalancing suggestions
5. Performance optimization tips`))
)

func NewCatalogue(accounts repository.AccountStore) *Catalogue {
	c := &Catalogue{accounts: accounts, entries: make(map[Name]entry)}
	c.register(Definition{
		Name:        AccountAnalysis,
		Description: "Analyze account health and provide recommendations",
		Arguments: []Argument{
			{Name: "accountId", Description: "Account ID to analyze", Required: true},
		},
	}, c.accountAnalysis)
	c.register(Definition{
		Name:        TransferAdvisor,
		Description: "Get intelligent transfer recommendations based on current portfolio",
		Arguments: []Argument{
			{Name: "fromAccount", Description: "Source account for transfer analysis", Required: true},
			{Name: "amount", Description: "Amount considering for transfer", Required: true},
		},
	}, c.transferAdvisor)
	c.register(Definition{
		Name:        PortfolioOverview,
		Description: "Get comprehensive portfolio analysis and optimization suggestions",
		Arguments:   []Argument{},
	}, c.portfolioOverview)
	return c
}

func (c *Catalogue) register(def Definition, render renderFunc) {
	c.order = append(c.order, def.Name)
	c.entries[def.Name] = entry{def: def, render: render}
}

// List returns the prompt definitions in catalogue order.
func (c *Catalogue) List() []Definition {
	defs := make([]Definition, 0, len(c.order))
	for _, name := range c.order {
		defs = append(defs, c.entries[name].def)
	}
	return defs
}

// Get renders the named prompt. Unknown names wrap ErrUnknownPrompt; missing
// arguments and accounts are reported in Result.Error.
func (c *Catalogue) Get(ctx context.Context, name string, args map[string]any) (Result, error) {
	e, ok := c.entries[Name(name)]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownPrompt, name)
	}

	values := make(map[string]string, len(args))
	for k, v := range args {
		if v == nil {
			continue
		}
		values[k] = strings.TrimSpace(fmt.Sprint(v))
	}
	for _, arg := range e.def.Arguments {
		if arg.Required && values[arg.Name] == "" {
			return Result{Error: fmt.Sprintf("Missing required argument: %s", arg.Name)}, nil
		}
	}
	return e.render(ctx, values)
}

func (c *Catalogue) accountAnalysis(ctx context.Context, args map[string]string) (Result, error) {
	acct, res, err := c.account(ctx, args["accountId"])
	if acct == nil {
		return res, err
	}
	return render(accountAnalysisTmpl, acct)
}

func (c *Catalogue) transferAdvisor(ctx context.Context, args map[string]string) (Result, error) {
	acct, res, err := c.account(ctx, args["fromAccount"])
	if acct == nil {
		return res, err
	}
	all, err := c.accounts.ListAccounts(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list accounts: %w", err)
	}
	source, err := indentJSON(acct)
	if err != nil {
		return Result{}, err
	}
	accounts, err := indentJSON(all)
	if err != nil {
		return Result{}, err
	}
	return render(transferAdvisorTmpl, map[string]string{
		"Source":   source,
		"Amount":   args["amount"],
		"Accounts": accounts,
	})
}

type currencyHolding struct {
	Currency domain.Currency
	Balance  decimal.Decimal
}

func (c *Catalogue) portfolioOverview(ctx context.Context, _ map[string]string) (Result, error) {
	all, err := c.accounts.ListAccounts(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list accounts: %w", err)
	}
	accounts, err := indentJSON(all)
	if err != nil {
		return Result{}, err
	}

	total := decimal.Zero
	var holdings []currencyHolding
	index := make(map[domain.Currency]int)
	for _, a := range all {
		total = total.Add(a.Balance)
		i, ok := index[a.Currency]
		if !ok {
			index[a.Currency] = len(holdings)
			holdings = append(holdings, currencyHolding{Currency: a.Currency, Balance: a.Balance})
			continue
		}
		holdings[i].Balance = holdings[i].Balance.Add(a.Balance)
	}

	return render(portfolioOverviewTmpl, struct {
		Accounts   string
		Total      decimal.Decimal
		ByCurrency []currencyHolding
	}{accounts, total, holdings})
}

func (c *Catalogue) account(ctx context.Context, id string) (*domain.Account, Result, error) {
	acct, err := c.accounts.GetAccount(ctx, id)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil, Result{Error: fmt.Sprintf("Account %s not found", id)}, nil
	}
	if err != nil {
		return nil, Result{}, fmt.Errorf("get account %s: %w", id, err)
	}
	return acct, Result{}, nil
}

func render(tmpl *template.Template, data any) (Result, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return Result{}, fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return Result{Prompt: buf.String()}, nil
}

func indentJSON(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode accounts: %w", err)
	}
	return string(b), nil
}
