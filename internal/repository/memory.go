package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/ayo6706/banking-agent/internal/domain"
	"github.com/shopspring/decimal"
)

// MemoryStore keeps accounts and rates in process memory. It guards its maps
// but provides no isolation across a read-then-write sequence; callers that
// need one hold a lock.Locker around it.
type MemoryStore struct {
	mu        sync.RWMutex
	order     []string
	accounts  map[string]*domain.Account
	rateOrder []string
	rates     map[string]domain.FXRate
}

// NewMemoryStore seeds a store. Enumeration order follows the input slices.
func NewMemoryStore(accounts []domain.Account, rates []domain.FXRate) *MemoryStore {
	s := &MemoryStore{
		accounts: make(map[string]*domain.Account, len(accounts)),
		rates:    make(map[string]domain.FXRate, len(rates)),
	}
	for _, a := range accounts {
		if _, ok := s.accounts[a.ID]; !ok {
			s.order = append(s.order, a.ID)
		}
		cp := a
		s.accounts[a.ID] = &cp
	}
	for _, r := range rates {
		key := rateKey(r.From, r.To)
		if _, ok := s.rates[key]; !ok {
			s.rateOrder = append(s.rateOrder, key)
		}
		s.rates[key] = r
	}
	return s
}

// NewDefaultStore returns a store seeded with the default portfolio.
func NewDefaultStore() *MemoryStore {
	return NewMemoryStore(DefaultAccounts(), DefaultRates())
}

func (s *MemoryStore) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, fmt.Errorf("get account %q: %w", id, ErrAccountNotFound)
	}
	cp := *a
	return &cp, nil
}

func (s *MemoryStore) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Account, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.accounts[id])
	}
	return out, nil
}

func (s *MemoryStore) UpdateBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return fmt.Errorf("update balance %q: %w", id, ErrAccountNotFound)
	}
	a.Balance = balance
	return nil
}

func (s *MemoryStore) AddTransferVolume(ctx context.Context, id string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return fmt.Errorf("add transfer volume %q: %w", id, ErrAccountNotFound)
	}
	a.TransfersToday = a.TransfersToday.Add(amount)
	a.TransfersThisMonth = a.TransfersThisMonth.Add(amount)
	return nil
}

func (s *MemoryStore) GetRate(ctx context.Context, from, to domain.Currency) (*domain.FXRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rates[rateKey(from, to)]
	if !ok {
		return nil, fmt.Errorf("get rate %s/%s: %w", from, to, ErrRateNotFound)
	}
	return &r, nil
}

func (s *MemoryStore) ListRates(ctx context.Context) ([]domain.FXRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.FXRate, 0, len(s.rateOrder))
	for _, key := range s.rateOrder {
		out = append(out, s.rates[key])
	}
	return out, nil
}

func rateKey(from, to domain.Currency) string {
	return string(from) + "-" + string(to)
}
