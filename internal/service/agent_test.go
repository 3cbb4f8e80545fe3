package service

import (
	"context"
	"testing"

	"github.com/ayo6706/banking-agent/internal/domain"
	"github.com/ayo6706/banking-agent/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmartTransfer_AsksForMissingInformation(t *testing.T) {
	f := defaultFixture(t)
	out, err := f.agent.SmartTransfer(context.Background(), "I want to move some money", models.TransferRequest{})
	require.NoError(t, err)

	require.NotNil(t, out.Elicitation)
	assert.Nil(t, out.Rejection)
	assert.Nil(t, out.Completed)
	assert.Same(t, out.Elicitation, out.Payload())

	e := out.Elicitation
	assert.True(t, e.NeedsElicitation)
	assert.Equal(t, domain.IntentTransferFunds, e.Intent)
	require.Len(t, e.Questions, 2)
	for _, q := range e.Questions {
		assert.Equal(t, domain.PriorityHigh, q.Priority)
	}
}

func TestSmartTransfer_RejectsOnCriticalPreCheck(t *testing.T) {
	f := defaultFixture(t)
	ctx := context.Background()
	out, err := f.agent.SmartTransfer(ctx, "send it", models.TransferRequest{
		Amount: dec("6000"), FromAccount: domain.AccountAUD, ToAccount: domain.AccountUSD,
	})
	require.NoError(t, err)

	require.NotNil(t, out.Rejection)
	r := out.Rejection
	assert.False(t, r.CanProceed)
	assert.Equal(t, "Pre-condition checks failed", r.Reason)
	assert.Equal(t, []CheckFailure{{Check: CheckBalanceSufficiency, Issues: []string{"Insufficient funds"}}}, r.Failures)
	assert.Equal(t, []string{"Consider transferring 5000 instead of 6000"}, r.Suggestions)
	assert.Contains(t, r.PreCheckResults, CheckLargeTransferAuth)

	aud, _ := f.store.GetAccount(ctx, domain.AccountAUD)
	assertDecimal(t, "5000", aud.Balance)
}

func TestSmartTransfer_LimitSuggestion(t *testing.T) {
	busy := account("BUSY", domain.CurrencyAUD, "100000")
	busy.TransfersToday = dec("9000")
	f := newFixture(t, []domain.Account{busy, account("OTHER", domain.CurrencyAUD, "0")}, nil)

	out, err := f.agent.SmartTransfer(context.Background(), "transfer", models.TransferRequest{
		Amount: dec("2000"), FromAccount: "BUSY", ToAccount: "OTHER",
	})
	require.NoError(t, err)
	require.NotNil(t, out.Rejection)
	assert.Equal(t, []string{"Transfer up to 1000 today, or wait until tomorrow"}, out.Rejection.Suggestions)
}

func TestSmartTransfer_Executes(t *testing.T) {
	f := defaultFixture(t)
	out, err := f.agent.SmartTransfer(context.Background(), "transfer 200 from AUD account to USD", models.TransferRequest{
		Amount: dec("200"), FromAccount: domain.AccountAUD, ToAccount: domain.AccountUSD,
	})
	require.NoError(t, err)

	require.NotNil(t, out.Completed)
	c := out.Completed
	assert.True(t, c.Success)
	require.NotNil(t, c.Transfer)
	assert.Equal(t, domain.AccountAUD, c.Transfer.Details.FromAccount)
	assertDecimal(t, "200", c.Transfer.Details.Amount)
	assert.Equal(t, []CheckName{
		CheckAccountStatus, CheckBalanceSufficiency, CheckTransferLimits, CheckFXRates, CheckFXRisk,
	}, c.Reasoning.PreChecksExecuted)
	assert.Contains(t, c.Reasoning.Risks, "No FX rate protection set for currency conversion")
}

func TestSmartTransfer_NeverExecutesTextOnlyValues(t *testing.T) {
	tests := []struct {
		name string
		text string
		args models.TransferRequest
	}{
		{
			name: "destination named before source",
			text: "move 100 to EUR-account from AUD-account",
		},
		{
			name: "amount with thousands separator",
			text: "send 1,500 from aud account",
			args: models.TransferRequest{ToAccount: domain.AccountUSD},
		},
		{
			name: "source only in text",
			text: "send from usd account",
			args: models.TransferRequest{Amount: dec("50"), ToAccount: domain.AccountEUR},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := defaultFixture(t)
			ctx := context.Background()
			before, err := f.store.ListAccounts(ctx)
			require.NoError(t, err)

			out, err := f.agent.SmartTransfer(ctx, tt.text, tt.args)
			require.NoError(t, err)

			assert.Nil(t, out.Elicitation)
			assert.Nil(t, out.Completed)
			require.NotNil(t, out.Rejection)
			assert.False(t, out.Rejection.CanProceed)

			after, err := f.store.ListAccounts(ctx)
			require.NoError(t, err)
			require.Len(t, after, len(before))
			for i := range before {
				assertDecimal(t, before[i].Balance.String(), after[i].Balance)
				assertDecimal(t, before[i].TransfersToday.String(), after[i].TransfersToday)
			}
		})
	}
}

func TestAnalyzeIntent_ReportsRecoveredValues(t *testing.T) {
	f := defaultFixture(t)
	out, err := f.agent.AnalyzeIntent(context.Background(), "move 1,500 to EUR-account from AUD-account", models.TransferRequest{})
	require.NoError(t, err)

	require.NotNil(t, out.Analysis.RecoveredFromText)
	require.NotNil(t, out.Analysis.RecoveredFromText.Amount)
	assertDecimal(t, "1500", *out.Analysis.RecoveredFromText.Amount)
	assert.Equal(t, domain.AccountAUD, out.Analysis.RecoveredFromText.FromAccount)
	assert.Empty(t, out.Analysis.MissingInformation)
}

func TestAnalyzeIntent(t *testing.T) {
	f := defaultFixture(t)
	out, err := f.agent.AnalyzeIntent(context.Background(), "send", models.TransferRequest{
		FromAccount: domain.AccountAUD, ToAccount: domain.AccountUSD,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.IntentTransferFunds, out.Analysis.DetectedIntent)
	assert.Equal(t, "high", out.Analysis.Confidence)
	assert.Equal(t, []string{"amount"}, out.Analysis.MissingInformation)
	assert.True(t, out.Elicitation.Required)

	require.Len(t, out.Elicitation.PriorityOrder, 2)
	assert.Equal(t, domain.PriorityHigh, out.Elicitation.PriorityOrder[0].Priority)
	assert.Equal(t, domain.PriorityLow, out.Elicitation.PriorityOrder[1].Priority)
	assert.Equal(t, []string{"Please provide: How much would you like to transfer?"}, out.NextSteps)
}

func TestAnalyzeIntent_NextSteps(t *testing.T) {
	tests := []struct {
		name string
		text string
		args models.TransferRequest
		want []string
	}{
		{
			name: "unclear and complete",
			text: "hmm",
			want: []string{"Ready to execute transfer with provided information"},
		},
		{
			name: "risky",
			text: "hmm",
			args: models.TransferRequest{Amount: dec("4500"), FromAccount: domain.AccountAUD, ToAccount: domain.AccountAUD},
			want: []string{"Review the identified risks before proceeding"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := defaultFixture(t)
			out, err := f.agent.AnalyzeIntent(context.Background(), tt.text, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.NextSteps)
			if tt.text == "hmm" {
				assert.Equal(t, "low", out.Analysis.Confidence)
			}
		})
	}
}
