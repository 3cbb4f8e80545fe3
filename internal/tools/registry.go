// Package tools exposes banking operations as named tools with JSON arguments.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ayo6706/banking-agent/internal/observability"
	"github.com/ayo6706/banking-agent/internal/repository"
	"github.com/ayo6706/banking-agent/internal/service"
	"go.uber.org/zap"
)

var ErrUnknownTool = errors.New("unknown tool")

// ErrorPayload is returned in place of a result when a call cannot be served.
// It is a response value, not a transport failure.
type ErrorPayload struct {
	Error     string          `json:"error"`
	Tool      Name            `json:"tool,omitempty"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// argumentError marks a contract violation in the caller's arguments.
type argumentError struct{ msg string }

func (e *argumentError) Error() string { return e.msg }

func badArgs(format string, args ...any) error {
	return &argumentError{msg: fmt.Sprintf(format, args...)}
}

type handlerFunc func(ctx context.Context, raw json.RawMessage) (any, error)

type tool struct {
	def    Definition
	handle handlerFunc
}

// Dependencies are the services the tools delegate to.
type Dependencies struct {
	Accounts  repository.AccountStore
	Rates     repository.RateTable
	Targets   *service.TargetResolver
	Validator *service.PreConditionValidator
	Executor  *service.TransferExecutor
	Agent     *service.Agent
	Insight   *service.AccountInsight
}

// Registry dispatches tool calls by name. Every definition is paired with
// its handler at construction, so a listed tool is always callable.
type Registry struct {
	deps  Dependencies
	order []Name
	tools map[Name]tool
}

func NewRegistry(deps Dependencies) *Registry {
	r := &Registry{deps: deps, tools: make(map[Name]tool)}
	for _, t := range []tool{
		{transferFundsDef, r.transferFunds},
		{getAccountDetailsDef, r.getAccountDetails},
		{getAllAccountsDef, r.getAllAccounts},
		{getFXRateDef, r.getFXRate},
		{validateTransferDef, r.validateTransfer},
		{smartTransferFundsDef, r.smartTransferFunds},
		{analyzeTransferIntentDef, r.analyzeTransferIntent},
		{intelligentAccountCheckDef, r.intelligentAccountCheck},
	} {
		r.order = append(r.order, t.def.Name)
		r.tools[t.def.Name] = t
	}
	return r
}

// Definitions lists the tools in declaration order.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.tools[n].def)
	}
	return out
}

// Call runs the named tool. Unknown names return ErrUnknownTool. Argument
// contract violations come back as an ErrorPayload with a nil error.
func (r *Registry) Call(ctx context.Context, name string, raw json.RawMessage) (any, error) {
	t, ok := r.tools[Name(name)]
	if !ok {
		observability.IncrementToolCall("unknown", "unknown_tool")
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	raw = normalizeArgs(raw)
	if err := checkRequired(t.def.InputSchema, raw); err != nil {
		return r.argumentFailure(t.def.Name, raw, err), nil
	}

	out, err := t.handle(ctx, raw)
	var argErr *argumentError
	if errors.As(err, &argErr) {
		return r.argumentFailure(t.def.Name, raw, err), nil
	}
	if err != nil {
		observability.IncrementToolCall(string(t.def.Name), "error")
		zap.L().Error("tool call failed", zap.String("tool", string(t.def.Name)), zap.Error(err))
		return nil, fmt.Errorf("tool %s: %w", t.def.Name, err)
	}
	observability.IncrementToolCall(string(t.def.Name), "ok")
	return out, nil
}

func (r *Registry) argumentFailure(name Name, raw json.RawMessage, err error) ErrorPayload {
	observability.IncrementToolCall(string(name), "bad_arguments")
	return ErrorPayload{Error: err.Error(), Tool: name, Arguments: raw}
}

func normalizeArgs(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return json.RawMessage("{}")
	}
	return trimmed
}

func checkRequired(schema Schema, raw json.RawMessage) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return badArgs("arguments must be a JSON object: %v", err)
	}
	for _, key := range schema.Required {
		v, ok := fields[key]
		if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return badArgs("missing required argument %q", key)
		}
	}
	return nil
}

func decodeArgs(raw json.RawMessage, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return badArgs("invalid arguments: %v", err)
	}
	return nil
}
