package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ayo6706/banking-agent/internal/api/middleware"
	"github.com/ayo6706/banking-agent/internal/prompts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PromptHandler struct {
	catalogue *prompts.Catalogue
	logger    *zap.Logger
}

func NewPromptHandler(catalogue *prompts.Catalogue, logger *zap.Logger) *PromptHandler {
	return &PromptHandler{catalogue: catalogue, logger: logger}
}

func (h *PromptHandler) List(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]any{"prompts": h.catalogue.List()})
}

// Get renders a prompt from the JSON argument object in the body. An empty
// body means no arguments.
func (h *PromptHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	args := map[string]any{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &args); err != nil {
			RespondError(w, r, http.StatusBadRequest, "request/invalid-json", "Prompt arguments must be a JSON object")
			return
		}
	}

	res, err := h.catalogue.Get(r.Context(), name, args)
	if errors.Is(err, prompts.ErrUnknownPrompt) {
		RespondError(w, r, http.StatusNotFound, "prompts/unknown", fmt.Sprintf("Unknown prompt: %s", name))
		return
	}
	if err != nil {
		h.logger.Error("prompt render failed",
			zap.String("prompt", name),
			zap.String("trace_id", middleware.TraceIDFromContext(r.Context())),
			zap.Error(err),
		)
		RespondError(w, r, http.StatusInternalServerError, "prompts/failed", "Prompt could not be rendered")
		return
	}

	RespondJSON(w, http.StatusOK, res)
}
