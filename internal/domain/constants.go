package domain

import "github.com/shopspring/decimal"

// Seeded account identifiers.
const (
	AccountAUD = "AUD-account"
	AccountUSD = "USD-account"
	AccountEUR = "EUR-account"
)

var (
	// ConversionFeeRate is the flat fee charged on the converted amount.
	ConversionFeeRate = decimal.RequireFromString("0.001")

	// LargeTransferThreshold adds the authorization pre-check above this amount.
	LargeTransferThreshold = decimal.NewFromInt(5000)
	// LargeTransferAuthThreshold is where the authorization placeholder reports it as required.
	LargeTransferAuthThreshold = decimal.NewFromInt(10000)
	// SmallTransferThreshold flags fee-inefficient transfers.
	SmallTransferThreshold = decimal.NewFromInt(100)

	// Risk ratios used by the elicitation engine.
	LargeAmountBalanceRatio = decimal.RequireFromString("0.8")
	DailyLimitWarnRatio     = decimal.RequireFromString("0.9")
	MonthlyLimitWarnRatio   = decimal.RequireFromString("0.8")
)
