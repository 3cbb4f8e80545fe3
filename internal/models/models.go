package models

import (
	"github.com/ayo6706/banking-agent/internal/domain"
	"github.com/shopspring/decimal"
)

// TransferRequest is the caller's intent to move money. ToAccount and
// PreferredCurrency are optional; FXThreshold is nil when not supplied.
type TransferRequest struct {
	Amount            decimal.Decimal  `json:"amount"`
	FromAccount       string           `json:"fromAccount"`
	ToAccount         string           `json:"toAccount,omitempty"`
	FXThreshold       *decimal.Decimal `json:"fxThreshold,omitempty"`
	PreferredCurrency domain.Currency  `json:"preferredCurrency,omitempty"`
}

// HasAmount reports whether a positive amount was supplied.
func (r TransferRequest) HasAmount() bool {
	return r.Amount.IsPositive()
}

// HasFXThreshold reports whether a positive rate ceiling was supplied.
func (r TransferRequest) HasFXThreshold() bool {
	return r.FXThreshold != nil && r.FXThreshold.IsPositive()
}

// ValidationResult carries the outcome of the pre-condition battery together
// with the request as resolved (target account filled in when inferred).
type ValidationResult struct {
	Valid   bool            `json:"valid"`
	Errors  []string        `json:"errors"`
	Request TransferRequest `json:"request"`
}

// TransferDetails describes an executed transfer.
type TransferDetails struct {
	FromAccount  string           `json:"fromAccount"`
	ToAccount    string           `json:"toAccount"`
	Amount       decimal.Decimal  `json:"amount"`
	ExchangeRate *decimal.Decimal `json:"exchangeRate,omitempty"`
	Fee          decimal.Decimal  `json:"fee"`
	FinalAmount  decimal.Decimal  `json:"finalAmount"`
}

// TransferResult is returned for every execution attempt.
type TransferResult struct {
	Success       bool             `json:"success"`
	TransactionID string           `json:"transactionId,omitempty"`
	Message       string           `json:"message"`
	Details       *TransferDetails `json:"details,omitempty"`
}

// ElicitationPrompt is a clarifying question for the caller.
type ElicitationPrompt struct {
	Question         string          `json:"question"`
	Context          string          `json:"context"`
	SuggestedOptions []string        `json:"suggestedOptions,omitempty"`
	Priority         domain.Priority `json:"priority"`
}

// TextRecovery holds values read from the free text. They only stand in for
// a missing argument when deciding what to ask; they are never executed.
type TextRecovery struct {
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	FromAccount string           `json:"fromAccount,omitempty"`
}

// ReasoningContext is the output of intent analysis. Args holds the caller's
// arguments unchanged.
type ReasoningContext struct {
	Intent              domain.Intent       `json:"userIntent"`
	MissingInfo         []string            `json:"missingInfo"`
	Risks               []string            `json:"risks"`
	Recommendations     []string            `json:"recommendations"`
	RequiresElicitation bool                `json:"requiresElicitation"`
	Prompts             []ElicitationPrompt `json:"elicitationPrompts"`
	Args                TransferRequest     `json:"providedArgs"`
	Recovered           *TextRecovery       `json:"recoveredFromText,omitempty"`
}

// HighPriorityPrompts returns the prompts that block execution.
func (c *ReasoningContext) HighPriorityPrompts() []ElicitationPrompt {
	var out []ElicitationPrompt
	for _, p := range c.Prompts {
		if p.Priority == domain.PriorityHigh {
			out = append(out, p)
		}
	}
	return out
}
