// Package lock serializes read-validate-write sequences per account.
package lock

import (
	"context"
	"errors"
	"sort"
)

var ErrNoKeys = errors.New("lock: at least one key is required")

// Locker grants exclusive access to a set of keys. Keys are de-duplicated and
// taken in sorted order so two callers locking overlapping sets cannot deadlock.
type Locker interface {
	Acquire(ctx context.Context, keys ...string) (release func(), err error)
}

func normalizeKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
