package middleware

import (
	"bytes"
	"net/http"
)

// responseRecorder tracks the status and size of a response and, when
// capture is set, keeps a copy of the body.
type responseRecorder struct {
	http.ResponseWriter
	status      int
	written     int
	wroteHeader bool
	capture     *bytes.Buffer
}

func newRecorder(w http.ResponseWriter) *responseRecorder {
	return &responseRecorder{ResponseWriter: w, status: http.StatusOK}
}

func newCapturingRecorder(w http.ResponseWriter) *responseRecorder {
	rr := newRecorder(w)
	rr.capture = &bytes.Buffer{}
	return rr
}

func (rr *responseRecorder) WriteHeader(code int) {
	if rr.wroteHeader {
		return
	}
	rr.status = code
	rr.wroteHeader = true
	rr.ResponseWriter.WriteHeader(code)
}

func (rr *responseRecorder) Write(b []byte) (int, error) {
	if !rr.wroteHeader {
		rr.WriteHeader(http.StatusOK)
	}
	if rr.capture != nil {
		rr.capture.Write(b)
	}
	n, err := rr.ResponseWriter.Write(b)
	rr.written += n
	return n, err
}

func (rr *responseRecorder) Unwrap() http.ResponseWriter {
	return rr.ResponseWriter
}
