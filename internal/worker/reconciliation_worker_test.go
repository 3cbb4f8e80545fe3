package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ayo6706/banking-agent/internal/domain"
	"github.com/ayo6706/banking-agent/internal/repository"
	"github.com/ayo6706/banking-agent/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingAuditor struct {
	calls atomic.Int32
	err   error
}

func (a *countingAuditor) Run(context.Context) error {
	a.calls.Add(1)
	return a.err
}

func TestReconciliationWorkerRunsImmediatelyAndOnInterval(t *testing.T) {
	auditor := &countingAuditor{}
	stop := NewReconciliationWorker(auditor).WithInterval(10 * time.Millisecond).Run(context.Background())

	require.Eventually(t, func() bool { return auditor.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	stop()

	after := auditor.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, auditor.calls.Load(), "no passes after stop returns")
}

func TestReconciliationWorkerStop(t *testing.T) {
	tests := []struct {
		name string
		stop func(cancel context.CancelFunc, stop func())
	}{
		{name: "stop function", stop: func(_ context.CancelFunc, stop func()) { stop() }},
		{name: "context cancel", stop: func(cancel context.CancelFunc, stop func()) { cancel(); stop() }},
		{name: "stop twice", stop: func(_ context.CancelFunc, stop func()) { stop(); stop() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			auditor := &countingAuditor{err: errors.New("boom")}
			stop := NewReconciliationWorker(auditor).WithInterval(time.Hour).Run(ctx)

			require.Eventually(t, func() bool { return auditor.calls.Load() == 1 }, time.Second, time.Millisecond)

			done := make(chan struct{})
			go func() {
				tt.stop(cancel, stop)
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("worker did not stop")
			}
		})
	}
}

func TestWithIntervalIgnoresNonPositive(t *testing.T) {
	w := NewReconciliationWorker(&countingAuditor{}).WithInterval(0).WithInterval(-time.Second)
	assert.Equal(t, time.Minute, w.interval)
}

func TestReconciliationWorkerWithService(t *testing.T) {
	accounts := repository.DefaultAccounts()
	accounts[0].Balance = decimal.NewFromInt(-5)
	store := repository.NewMemoryStore(accounts, repository.DefaultRates())
	svc := service.NewReconciliationService(store)

	stop := NewReconciliationWorker(svc).WithInterval(time.Hour).Run(context.Background())
	defer stop()

	violations, err := svc.Audit(context.Background())
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, domain.AccountAUD, violations[0].AccountID)
	assert.Equal(t, service.InvariantNonNegativeBalance, violations[0].Invariant)
}
