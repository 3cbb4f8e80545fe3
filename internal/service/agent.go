package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/ayo6706/banking-agent/internal/domain"
	"github.com/ayo6706/banking-agent/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ElicitationRequired is returned when high-priority information is missing.
type ElicitationRequired struct {
	NeedsElicitation bool                       `json:"needsElicitation"`
	Intent           domain.Intent              `json:"intent"`
	MissingInfo      []string                   `json:"missingInfo"`
	Questions        []models.ElicitationPrompt `json:"questions"`
	Context          string                     `json:"context"`
	SuggestedActions []string                   `json:"suggestedActions"`
}

type CheckFailure struct {
	Check  CheckName `json:"check"`
	Issues []string  `json:"issues"`
}

// PreCheckRejection is returned when a critical pre-check fails.
type PreCheckRejection struct {
	CanProceed      bool                      `json:"canProceed"`
	Reason          string                    `json:"reason"`
	Failures        []CheckFailure            `json:"failures"`
	Suggestions     []string                  `json:"suggestions"`
	PreCheckResults map[CheckName]CheckResult `json:"preCheckResults"`
}

type TransferReasoning struct {
	Intent            domain.Intent `json:"intent"`
	PreChecksExecuted []CheckName   `json:"preChecksExecuted"`
	Risks             []string      `json:"risks"`
	Recommendations   []string      `json:"recommendations"`
}

// SmartTransferCompleted carries the executor's result, successful or not.
type SmartTransferCompleted struct {
	Success         bool                      `json:"success"`
	Transfer        *models.TransferResult    `json:"transfer"`
	Reasoning       TransferReasoning         `json:"reasoning"`
	PreCheckResults map[CheckName]CheckResult `json:"preCheckResults"`
}

// SmartTransferOutcome holds exactly one of its variants.
type SmartTransferOutcome struct {
	Elicitation *ElicitationRequired
	Rejection   *PreCheckRejection
	Completed   *SmartTransferCompleted
}

// Payload returns the variant that is set.
func (o SmartTransferOutcome) Payload() any {
	switch {
	case o.Elicitation != nil:
		return o.Elicitation
	case o.Rejection != nil:
		return o.Rejection
	default:
		return o.Completed
	}
}

type IntentSummary struct {
	DetectedIntent     domain.Intent        `json:"detectedIntent"`
	Confidence         string               `json:"confidence"`
	MissingInformation []string             `json:"missingInformation"`
	IdentifiedRisks    []string             `json:"identifiedRisks"`
	RecoveredFromText  *models.TextRecovery `json:"recoveredFromText,omitempty"`
}

type ElicitationSummary struct {
	Required      bool                       `json:"required"`
	Prompts       []models.ElicitationPrompt `json:"prompts"`
	PriorityOrder []models.ElicitationPrompt `json:"priorityOrder"`
}

// IntentAnalysis is the read-only view of a transfer request.
type IntentAnalysis struct {
	Analysis        IntentSummary      `json:"analysis"`
	Elicitation     ElicitationSummary `json:"elicitation"`
	Recommendations []string           `json:"recommendations"`
	NextSteps       []string           `json:"nextSteps"`
}

// Agent runs the reasoning path: classify, elicit, pre-check, execute.
type Agent struct {
	elicitation *ElicitationEngine
	prechecks   *PreCheckOrchestrator
	executor    *TransferExecutor
}

func NewAgent(elicitation *ElicitationEngine, prechecks *PreCheckOrchestrator, executor *TransferExecutor) *Agent {
	return &Agent{elicitation: elicitation, prechecks: prechecks, executor: executor}
}

// SmartTransfer stops before execution when a high-priority prompt is open or
// a critical pre-check fails. Medium and low prompts do not block.
func (a *Agent) SmartTransfer(ctx context.Context, text string, args models.TransferRequest) (SmartTransferOutcome, error) {
	rc, err := a.elicitation.Analyze(ctx, text, args)
	if err != nil {
		return SmartTransferOutcome{}, err
	}

	if high := rc.HighPriorityPrompts(); len(high) > 0 {
		return SmartTransferOutcome{Elicitation: &ElicitationRequired{
			NeedsElicitation: true,
			Intent:           rc.Intent,
			MissingInfo:      rc.MissingInfo,
			Questions:        high,
			Context:          "I need some additional information to process your transfer safely.",
			SuggestedActions: rc.Recommendations,
		}}, nil
	}

	// Values recovered from text only silence prompts; execution uses what the
	// caller supplied, so a text-only source or amount fails the pre-checks.
	req := rc.Args
	checks, err := a.prechecks.RequiredChecks(ctx, rc.Intent, req)
	if err != nil {
		return SmartTransferOutcome{}, err
	}
	zap.L().Debug("pre-checks selected", zap.String("intent", string(rc.Intent)), zap.Any("checks", checks))

	results, err := a.prechecks.Run(ctx, checks, req)
	if err != nil {
		return SmartTransferOutcome{}, err
	}

	if failed := CriticalFailures(checks, results); len(failed) > 0 {
		rej := &PreCheckRejection{
			CanProceed:      false,
			Reason:          "Pre-condition checks failed",
			Suggestions:     recoverySuggestions(failed, req.Amount),
			PreCheckResults: results,
		}
		for _, f := range failed {
			rej.Failures = append(rej.Failures, CheckFailure{Check: f.Check, Issues: f.Issues})
		}
		return SmartTransferOutcome{Rejection: rej}, nil
	}

	transfer, err := a.executor.Execute(ctx, req)
	if err != nil {
		return SmartTransferOutcome{}, err
	}
	return SmartTransferOutcome{Completed: &SmartTransferCompleted{
		Success:  transfer.Success,
		Transfer: transfer,
		Reasoning: TransferReasoning{
			Intent:            rc.Intent,
			PreChecksExecuted: checks,
			Risks:             rc.Risks,
			Recommendations:   rc.Recommendations,
		},
		PreCheckResults: results,
	}}, nil
}

// AnalyzeIntent reports what a request is missing without touching state.
func (a *Agent) AnalyzeIntent(ctx context.Context, text string, args models.TransferRequest) (*IntentAnalysis, error) {
	rc, err := a.elicitation.Analyze(ctx, text, args)
	if err != nil {
		return nil, err
	}

	confidence := "high"
	if rc.Intent == domain.IntentUnclear {
		confidence = "low"
	}

	ordered := slices.Clone(rc.Prompts)
	slices.SortStableFunc(ordered, func(x, y models.ElicitationPrompt) int {
		return y.Priority.Rank() - x.Priority.Rank()
	})

	return &IntentAnalysis{
		Analysis: IntentSummary{
			DetectedIntent:     rc.Intent,
			Confidence:         confidence,
			MissingInformation: rc.MissingInfo,
			IdentifiedRisks:    rc.Risks,
			RecoveredFromText:  rc.Recovered,
		},
		Elicitation: ElicitationSummary{
			Required:      rc.RequiresElicitation,
			Prompts:       rc.Prompts,
			PriorityOrder: ordered,
		},
		Recommendations: rc.Recommendations,
		NextSteps:       nextSteps(rc),
	}, nil
}

func nextSteps(rc *models.ReasoningContext) []string {
	steps := []string{}
	if rc.RequiresElicitation {
		if high := rc.HighPriorityPrompts(); len(high) > 0 {
			questions := make([]string, 0, len(high))
			for _, p := range high {
				questions = append(questions, p.Question)
			}
			steps = append(steps, "Please provide: "+strings.Join(questions, ", "))
		}
	}
	if len(rc.Risks) > 0 {
		steps = append(steps, "Review the identified risks before proceeding")
	}
	if len(steps) == 0 {
		steps = append(steps, "Ready to execute transfer with provided information")
	}
	return steps
}

func recoverySuggestions(failed []CheckResult, amount decimal.Decimal) []string {
	suggestions := []string{}
	for _, f := range failed {
		switch f.Check {
		case CheckBalanceSufficiency:
			if available, ok := f.Details["available"].(decimal.Decimal); ok {
				suggestions = append(suggestions, fmt.Sprintf("Consider transferring %s instead of %s", available.String(), amount.String()))
			}
		case CheckTransferLimits:
			if remaining, ok := f.Details["dailyRemaining"].(decimal.Decimal); ok && remaining.IsPositive() {
				suggestions = append(suggestions, fmt.Sprintf("Transfer up to %s today, or wait until tomorrow", remaining.String()))
			}
		}
	}
	return suggestions
}
