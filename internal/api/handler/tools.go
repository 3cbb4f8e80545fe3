package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ayo6706/banking-agent/internal/api/middleware"
	"github.com/ayo6706/banking-agent/internal/tools"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ToolHandler struct {
	registry *tools.Registry
	logger   *zap.Logger
}

func NewToolHandler(registry *tools.Registry, logger *zap.Logger) *ToolHandler {
	return &ToolHandler{registry: registry, logger: logger}
}

type listToolsResponse struct {
	Tools []tools.Definition `json:"tools"`
}

func (h *ToolHandler) List(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, listToolsResponse{Tools: h.registry.Definitions()})
}

// Call invokes the tool named in the path with the body as its arguments.
// Business failures come back as 200 with an error field; only unknown tools
// and internal faults become problem documents.
func (h *ToolHandler) Call(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	out, err := h.registry.Call(r.Context(), name, json.RawMessage(body))
	if errors.Is(err, tools.ErrUnknownTool) {
		RespondError(w, r, http.StatusNotFound, "tools/unknown", fmt.Sprintf("Unknown tool: %s", name))
		return
	}
	if err != nil {
		h.logger.Error("tool call failed",
			zap.String("tool", name),
			zap.String("trace_id", middleware.TraceIDFromContext(r.Context())),
			zap.Error(err),
		)
		RespondError(w, r, http.StatusInternalServerError, "tools/failed", "Tool call failed")
		return
	}

	RespondJSON(w, http.StatusOK, out)
}
