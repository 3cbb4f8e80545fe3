package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/ayo6706/banking-agent/internal/api/problem"
)

const maxBodyBytes = 1 << 20

// RespondJSON writes data as a JSON response.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// RespondError writes a problem document. A bare slug is expanded to a full type URI.
func RespondError(w http.ResponseWriter, r *http.Request, status int, problemType, message string) {
	if problemType != "" && problemType != "about:blank" && !strings.HasPrefix(problemType, "http") {
		problemType = problem.Type(problemType)
	}
	problem.Write(w, r, status, problemType, http.StatusText(status), message)
}

// readBody returns the request body, rejecting anything over maxBodyBytes.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		RespondError(w, r, http.StatusRequestEntityTooLarge, "request/too-large", "Request body exceeds 1 MiB")
		return nil, false
	}
	return body, true
}
