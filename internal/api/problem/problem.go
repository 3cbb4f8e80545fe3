// Package problem writes RFC 7807 problem documents.
package problem

import (
	"encoding/json"
	"net/http"
)

const (
	contentType = "application/problem+json"
	baseTypeURL = "https://errors.banking-agent.dev/"
	traceHeader = "X-Trace-ID"
)

// Details represents RFC 7807 Problem Details.
type Details struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	TraceID  string `json:"trace_id,omitempty"`
}

// Type expands a slug into a problem type URI.
func Type(slug string) string {
	return baseTypeURL + slug
}

// Write sends a problem document. An empty title defaults to the status text.
func Write(w http.ResponseWriter, r *http.Request, status int, problemType, title, detail string) {
	if title == "" {
		title = http.StatusText(status)
	}
	if problemType == "" {
		problemType = "about:blank"
	}
	d := Details{
		Type:    problemType,
		Title:   title,
		Status:  status,
		Detail:  detail,
		TraceID: w.Header().Get(traceHeader),
	}
	if r != nil {
		d.Instance = r.URL.Path
		if d.TraceID == "" {
			d.TraceID = r.Header.Get(traceHeader)
		}
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(d)
}
