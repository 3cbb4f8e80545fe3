package service

import (
	"strings"

	"github.com/ayo6706/banking-agent/internal/domain"
)

// TextClassifier maps free text to an intent.
type TextClassifier interface {
	Classify(text string) domain.Intent
}

// KeywordRule assigns Label when any keyword is a substring of the input.
type KeywordRule[T ~string] struct {
	Label    T
	Keywords []string
}

// KeywordClassifier does case-insensitive substring matching. Rules are tried
// in order and the first hit wins.
type KeywordClassifier[T ~string] struct {
	rules    []KeywordRule[T]
	fallback T
}

func NewKeywordClassifier[T ~string](fallback T, rules ...KeywordRule[T]) *KeywordClassifier[T] {
	return &KeywordClassifier[T]{rules: rules, fallback: fallback}
}

func (c *KeywordClassifier[T]) Match(text string) T {
	lower := strings.ToLower(text)
	for _, r := range c.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				return r.Label
			}
		}
	}
	return c.fallback
}

// IntentClassifier is the default TextClassifier.
type IntentClassifier struct {
	*KeywordClassifier[domain.Intent]
}

func NewIntentClassifier() *IntentClassifier {
	return &IntentClassifier{NewKeywordClassifier(domain.IntentUnclear,
		KeywordRule[domain.Intent]{Label: domain.IntentTransferFunds, Keywords: []string{"transfer", "move", "send"}},
		KeywordRule[domain.Intent]{Label: domain.IntentCheckAccount, Keywords: []string{"balance", "account", "check"}},
		KeywordRule[domain.Intent]{Label: domain.IntentCheckFXRate, Keywords: []string{"rate", "exchange", "fx"}},
		KeywordRule[domain.Intent]{Label: domain.IntentPortfolioOverview, Keywords: []string{"all", "portfolio", "overview"}},
	)}
}

func (c *IntentClassifier) Classify(text string) domain.Intent {
	return c.Match(text)
}

// NewAccountQueryClassifier narrows account questions for intelligentAccountCheck.
func NewAccountQueryClassifier() *KeywordClassifier[domain.AccountQuery] {
	return NewKeywordClassifier(domain.AccountQueryGeneral,
		KeywordRule[domain.AccountQuery]{Label: domain.AccountQueryBalance, Keywords: []string{"balance"}},
		KeywordRule[domain.AccountQuery]{Label: domain.AccountQueryLimits, Keywords: []string{"limit", "transfer"}},
		KeywordRule[domain.AccountQuery]{Label: domain.AccountQueryStatus, Keywords: []string{"status"}},
		KeywordRule[domain.AccountQuery]{Label: domain.AccountQueryHistory, Keywords: []string{"history", "transaction"}},
	)
}
