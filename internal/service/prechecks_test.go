package service

import (
	"context"
	"testing"

	"github.com/ayo6706/banking-agent/internal/domain"
	"github.com/ayo6706/banking-agent/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequiredChecks(t *testing.T) {
	tests := []struct {
		name   string
		intent domain.Intent
		args   models.TransferRequest
		want   []CheckName
	}{
		{
			name:   "same currency transfer",
			intent: domain.IntentTransferFunds,
			args:   models.TransferRequest{Amount: dec("100"), FromAccount: domain.AccountAUD, PreferredCurrency: domain.CurrencyAUD},
			want:   []CheckName{CheckAccountStatus, CheckBalanceSufficiency, CheckTransferLimits},
		},
		{
			name:   "conversion adds fx checks",
			intent: domain.IntentTransferFunds,
			args:   models.TransferRequest{Amount: dec("100"), FromAccount: domain.AccountAUD, ToAccount: domain.AccountUSD},
			want:   []CheckName{CheckAccountStatus, CheckBalanceSufficiency, CheckTransferLimits, CheckFXRates, CheckFXRisk},
		},
		{
			name:   "large amount adds authorization",
			intent: domain.IntentTransferFunds,
			args:   models.TransferRequest{Amount: dec("5000.01"), FromAccount: domain.AccountAUD},
			want:   []CheckName{CheckAccountStatus, CheckBalanceSufficiency, CheckTransferLimits, CheckLargeTransferAuth},
		},
		{
			name:   "exactly the large threshold",
			intent: domain.IntentTransferFunds,
			args:   models.TransferRequest{Amount: dec("5000"), FromAccount: domain.AccountAUD},
			want:   []CheckName{CheckAccountStatus, CheckBalanceSufficiency, CheckTransferLimits},
		},
		{
			name:   "account check",
			intent: domain.IntentCheckAccount,
			want:   []CheckName{CheckAccountAccess},
		},
		{
			name:   "portfolio",
			intent: domain.IntentPortfolioOverview,
			want:   []CheckName{CheckAggregateAccountData, CheckPortfolioMetrics},
		},
		{
			name:   "fx rate intent has none",
			intent: domain.IntentCheckFXRate,
			want:   []CheckName{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := defaultFixture(t)
			got, err := f.prechecks.RequiredChecks(context.Background(), tt.intent, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRun_EveryCheckIsDispatched(t *testing.T) {
	f := defaultFixture(t)
	args := models.TransferRequest{Amount: dec("100"), FromAccount: domain.AccountAUD, ToAccount: domain.AccountUSD}

	results, err := f.prechecks.Run(context.Background(), AllChecks(), args)
	require.NoError(t, err)
	require.Len(t, results, len(AllChecks()))
	for name, res := range results {
		assert.Equal(t, name, res.Check)
		assert.NotNil(t, res.Issues)
	}
}

func TestRun_UnknownCheck(t *testing.T) {
	f := defaultFixture(t)
	_, err := f.prechecks.Run(context.Background(), []CheckName{"nope"}, models.TransferRequest{})
	assert.Error(t, err)
}

func TestRun_TransferChecks(t *testing.T) {
	f := defaultFixture(t)
	ctx := context.Background()
	args := models.TransferRequest{Amount: dec("6000"), FromAccount: domain.AccountAUD, ToAccount: "ghost"}

	results, err := f.prechecks.Run(ctx, []CheckName{
		CheckAccountStatus, CheckBalanceSufficiency, CheckTransferLimits, CheckLargeTransferAuth,
	}, args)
	require.NoError(t, err)

	status := results[CheckAccountStatus]
	assert.False(t, status.Passed)
	assert.Equal(t, []string{"Target account ghost not found"}, status.Issues)

	balance := results[CheckBalanceSufficiency]
	assert.False(t, balance.Passed)
	assert.Equal(t, []string{"Insufficient funds"}, balance.Issues)
	assertDecimal(t, "5000", balance.Details["available"].(decimal.Decimal))

	limits := results[CheckTransferLimits]
	assert.True(t, limits.Passed)
	assertDecimal(t, "10000", limits.Details["dailyRemaining"].(decimal.Decimal))
	assertDecimal(t, "47500", limits.Details["monthlyRemaining"].(decimal.Decimal))

	auth := results[CheckLargeTransferAuth]
	assert.True(t, auth.Passed)
	assert.Equal(t, false, auth.Details["required"])
	assert.Equal(t, true, auth.Details["authorized"])

	failed := CriticalFailures([]CheckName{CheckAccountStatus, CheckBalanceSufficiency, CheckTransferLimits, CheckLargeTransferAuth}, results)
	require.Len(t, failed, 2)
	assert.Equal(t, CheckAccountStatus, failed[0].Check)
	assert.Equal(t, CheckBalanceSufficiency, failed[1].Check)
}

func TestRun_FXChecks(t *testing.T) {
	f := defaultFixture(t)
	ctx := context.Background()

	results, err := f.prechecks.Run(ctx, []CheckName{CheckFXRates, CheckFXRisk}, models.TransferRequest{
		Amount: dec("100"), FromAccount: domain.AccountEUR, PreferredCurrency: domain.CurrencyGBP,
	})
	require.NoError(t, err)
	assert.False(t, results[CheckFXRates].Passed)
	assert.Equal(t, []string{"FX rate not available for EUR to GBP"}, results[CheckFXRates].Issues)
	assert.Equal(t, "medium", results[CheckFXRisk].Details["risk"])

	results, err = f.prechecks.Run(ctx, []CheckName{CheckFXRates, CheckFXRisk}, models.TransferRequest{
		Amount: dec("100"), FromAccount: domain.AccountEUR, ToAccount: domain.AccountUSD, FXThreshold: decPtr("1.2"),
	})
	require.NoError(t, err)
	assert.True(t, results[CheckFXRates].Passed)
	assert.Equal(t, "EUR/USD", results[CheckFXRates].Details["pair"])
	assertDecimal(t, "1.09", results[CheckFXRates].Details["rate"].(decimal.Decimal))
	assert.True(t, results[CheckFXRisk].Passed)
	assert.Equal(t, "low", results[CheckFXRisk].Details["risk"])

	results, err = f.prechecks.Run(ctx, []CheckName{CheckFXRisk}, models.TransferRequest{
		Amount: dec("100"), FromAccount: domain.AccountEUR, ToAccount: domain.AccountEUR,
	})
	require.NoError(t, err)
	assert.Equal(t, "none", results[CheckFXRisk].Details["risk"])
}

func TestCheckName_IsCritical(t *testing.T) {
	critical := map[CheckName]bool{
		CheckAccountStatus:      true,
		CheckBalanceSufficiency: true,
		CheckTransferLimits:     true,
	}
	for _, name := range AllChecks() {
		assert.Equal(t, critical[name], name.IsCritical(), name)
	}
}
