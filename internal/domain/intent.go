package domain

// Intent is the classified purpose of a free-text request.
type Intent string

const (
	IntentTransferFunds     Intent = "transfer_funds"
	IntentCheckAccount      Intent = "check_account"
	IntentCheckFXRate       Intent = "check_fx_rate"
	IntentPortfolioOverview Intent = "portfolio_overview"
	IntentUnclear           Intent = "unclear"
)

// AccountQuery narrows a check_account request to what the caller wants to see.
type AccountQuery string

const (
	AccountQueryBalance AccountQuery = "check_balance"
	AccountQueryLimits  AccountQuery = "check_limits"
	AccountQueryStatus  AccountQuery = "check_status"
	AccountQueryHistory AccountQuery = "check_history"
	AccountQueryGeneral AccountQuery = "general_info"
)

// Priority ranks elicitation prompts.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank orders priorities from high to low; unknown values rank last.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}
