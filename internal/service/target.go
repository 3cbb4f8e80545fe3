package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ayo6706/banking-agent/internal/domain"
	"github.com/ayo6706/banking-agent/internal/repository"
)

// TargetResolver picks a destination account when the caller did not name one.
type TargetResolver struct {
	accounts repository.AccountStore
}

func NewTargetResolver(accounts repository.AccountStore) *TargetResolver {
	return &TargetResolver{accounts: accounts}
}

// Resolve returns the chosen account id, or "" when no active account other
// than the source exists. An unknown source resolves to "".
func (r *TargetResolver) Resolve(ctx context.Context, fromID string, preferred domain.Currency) (string, error) {
	from, err := r.accounts.GetAccount(ctx, fromID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("resolve target: %w", err)
	}

	all, err := r.accounts.ListAccounts(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve target: list accounts: %w", err)
	}

	candidates := eligibleTargets(*from, all)
	if len(candidates) == 0 {
		return "", nil
	}

	if preferred != "" {
		for _, c := range candidates {
			if c.Currency == preferred {
				return c.ID, nil
			}
		}
	}

	if best := diversificationPick(*from, candidates); best != nil {
		return best.ID, nil
	}
	return candidates[0].ID, nil
}

// eligibleTargets keeps active accounts other than from, in enumeration order.
func eligibleTargets(from domain.Account, all []domain.Account) []domain.Account {
	out := make([]domain.Account, 0, len(all))
	for _, a := range all {
		if a.ID == from.ID || !a.IsActive() {
			continue
		}
		out = append(out, a)
	}
	return out
}

// diversificationPick returns the lowest-balance candidate holding a currency
// other than from's. Ties keep the earlier account.
func diversificationPick(from domain.Account, candidates []domain.Account) *domain.Account {
	var best *domain.Account
	for i := range candidates {
		c := &candidates[i]
		if c.Currency == from.Currency {
			continue
		}
		if best == nil || c.Balance.LessThan(best.Balance) {
			best = c
		}
	}
	return best
}

// suggestTarget applies the diversification heuristic without a currency
// preference, falling back to the first eligible account.
func suggestTarget(from domain.Account, all []domain.Account) *domain.Account {
	candidates := eligibleTargets(from, all)
	if len(candidates) == 0 {
		return nil
	}
	if best := diversificationPick(from, candidates); best != nil {
		return best
	}
	return &candidates[0]
}
