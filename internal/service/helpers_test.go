package service

import (
	"testing"

	"github.com/ayo6706/banking-agent/internal/domain"
	"github.com/ayo6706/banking-agent/internal/lock"
	"github.com/ayo6706/banking-agent/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type fixture struct {
	store       *repository.MemoryStore
	targets     *TargetResolver
	validator   *PreConditionValidator
	executor    *TransferExecutor
	elicitation *ElicitationEngine
	prechecks   *PreCheckOrchestrator
	agent       *Agent
}

func newFixture(t *testing.T, accounts []domain.Account, rates []domain.FXRate) *fixture {
	t.Helper()
	store := repository.NewMemoryStore(accounts, rates)
	targets := NewTargetResolver(store)
	validator := NewPreConditionValidator(store, store, targets)
	executor := NewTransferExecutor(store, store, validator, targets, lock.NewLocalLocker())
	elicitation := NewElicitationEngine(store, NewIntentClassifier())
	prechecks := NewPreCheckOrchestrator(store, store)
	return &fixture{
		store:       store,
		targets:     targets,
		validator:   validator,
		executor:    executor,
		elicitation: elicitation,
		prechecks:   prechecks,
		agent:       NewAgent(elicitation, prechecks, executor),
	}
}

func defaultFixture(t *testing.T) *fixture {
	return newFixture(t, repository.DefaultAccounts(), repository.DefaultRates())
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}

func account(id string, cur domain.Currency, balance string) domain.Account {
	return domain.Account{
		ID:                   id,
		Currency:             cur,
		Balance:              dec(balance),
		Status:               domain.AccountStatusActive,
		DailyTransferLimit:   dec("10000"),
		MonthlyTransferLimit: dec("50000"),
	}
}
