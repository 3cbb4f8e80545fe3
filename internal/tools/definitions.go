package tools

// Name identifies a tool on the tool-calling surface.
type Name string

const (
	TransferFunds           Name = "transferFunds"
	GetAccountDetails       Name = "getAccountDetails"
	GetAllAccounts          Name = "getAllAccounts"
	GetFXRate               Name = "getFXRate"
	ValidateTransfer        Name = "validateTransfer"
	SmartTransferFunds      Name = "smartTransferFunds"
	AnalyzeTransferIntent   Name = "analyzeTransferIntent"
	IntelligentAccountCheck Name = "intelligentAccountCheck"
)

// Property is a single JSON-schema property.
type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// Schema is the JSON-schema-shaped parameter contract of a tool.
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required"`
}

// Definition describes a tool to callers.
type Definition struct {
	Name        Name   `json:"name"`
	Description string `json:"description"`
	InputSchema Schema `json:"inputSchema"`
}

func currencyProperty(description string) Property {
	return Property{Type: "string", Description: description, Enum: []string{"AUD", "USD", "EUR", "GBP"}}
}

func transferProperties() map[string]Property {
	return map[string]Property{
		"amount":            {Type: "number", Description: "Amount to transfer"},
		"fromAccount":       {Type: "string", Description: "Source account ID"},
		"toAccount":         {Type: "string", Description: "Target account ID (optional - will auto-select if not provided)"},
		"fxThreshold":       {Type: "number", Description: "Maximum acceptable FX rate (optional)"},
		"preferredCurrency": currencyProperty("Preferred target currency when auto-selecting target"),
	}
}

var (
	transferFundsDef = Definition{
		Name:        TransferFunds,
		Description: "Transfer funds between accounts with intelligent target selection and pre-condition validation",
		InputSchema: Schema{Type: "object", Properties: transferProperties(), Required: []string{"amount", "fromAccount"}},
	}
	getAccountDetailsDef = Definition{
		Name:        GetAccountDetails,
		Description: "Get detailed information about a specific account",
		InputSchema: Schema{
			Type:       "object",
			Properties: map[string]Property{"accountId": {Type: "string", Description: "Account ID to retrieve details for"}},
			Required:   []string{"accountId"},
		},
	}
	getAllAccountsDef = Definition{
		Name:        GetAllAccounts,
		Description: "Get summary of all user accounts",
		InputSchema: Schema{Type: "object", Properties: map[string]Property{}, Required: []string{}},
	}
	getFXRateDef = Definition{
		Name:        GetFXRate,
		Description: "Get current foreign exchange rate between two currencies",
		InputSchema: Schema{
			Type: "object",
			Properties: map[string]Property{
				"from": currencyProperty("Source currency"),
				"to":   currencyProperty("Target currency"),
			},
			Required: []string{"from", "to"},
		},
	}
	validateTransferDef = Definition{
		Name:        ValidateTransfer,
		Description: "Validate a transfer request without executing it",
		InputSchema: Schema{Type: "object", Properties: transferProperties(), Required: []string{"amount", "fromAccount"}},
	}
	smartTransferFundsDef = Definition{
		Name:        SmartTransferFunds,
		Description: "Intelligent transfer with context analysis, elicitation, and pre-condition checking",
		InputSchema: Schema{
			Type: "object",
			Properties: func() map[string]Property {
				p := transferProperties()
				p["userInput"] = Property{Type: "string", Description: "The user's original request or intent"}
				return p
			}(),
			Required: []string{"userInput"},
		},
	}
	analyzeTransferIntentDef = Definition{
		Name:        AnalyzeTransferIntent,
		Description: "Analyze incomplete transfer requests and provide elicitation prompts",
		InputSchema: Schema{
			Type: "object",
			Properties: map[string]Property{
				"userInput":    {Type: "string", Description: "The user's transfer request"},
				"providedArgs": {Type: "object", Description: "Any arguments already provided"},
			},
			Required: []string{"userInput"},
		},
	}
	intelligentAccountCheckDef = Definition{
		Name:        IntelligentAccountCheck,
		Description: "Smart account analysis with contextual recommendations",
		InputSchema: Schema{
			Type: "object",
			Properties: map[string]Property{
				"userInput": {Type: "string", Description: "User's request about account information"},
				"accountId": {Type: "string", Description: "Account ID to analyze (optional - will infer if not provided)"},
			},
			Required: []string{"userInput"},
		},
	}
)
