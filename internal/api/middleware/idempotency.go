package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/ayo6706/banking-agent/internal/api/problem"
	"github.com/ayo6706/banking-agent/internal/idempotency"
	"github.com/ayo6706/banking-agent/internal/observability"
	"go.uber.org/zap"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	ReplayHeader      = "X-Idempotent-Replay"
)

// replayWait bounds how long a duplicate waits for the first request to finish.
const replayWait = 5 * time.Second

// IdempotencyMiddleware replays the recorded response for a repeated
// Idempotency-Key. Requests without the header, and all requests when store
// is nil, pass straight through. Server errors and panics are not recorded so
// the caller can retry under the same key.
func IdempotencyMiddleware(store *idempotency.Store, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyHeader)
			if store == nil || key == "" || r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				problem.Write(w, r, http.StatusBadRequest, problem.Type("request/unreadable-body"), "", "Failed to read request body")
				return
			}
			_ = r.Body.Close()
			r.Body = io.NopCloser(bytes.NewReader(body))

			ctx := r.Context()
			hash := hashRequest(r.URL.Path, body)
			log := logger.With(zap.String("idempotency_key", key), zap.String("trace_id", TraceIDFromContext(ctx)))

			rec, err := store.Lookup(ctx, key, hash)
			switch {
			case err == nil:
				observability.IncrementIdempotencyEvent("replay")
				replay(w, rec)
				return
			case errors.Is(err, idempotency.ErrHashMismatch):
				observability.IncrementIdempotencyEvent("hash_mismatch")
				conflict(w, r, "Idempotency-Key was already used with a different request")
				return
			case errors.Is(err, idempotency.ErrInProgress):
				waitAndReplay(w, r, store, key, hash, log)
				return
			case !errors.Is(err, idempotency.ErrNotFound):
				observability.IncrementIdempotencyEvent("lookup_error")
				log.Warn("idempotency lookup failed", zap.Error(err))
			}

			reserved, err := store.Reserve(ctx, key, hash)
			if err != nil {
				observability.IncrementIdempotencyEvent("reserve_error")
				log.Error("idempotency reserve failed", zap.Error(err))
				problem.Write(w, r, http.StatusServiceUnavailable, problem.Type("idempotency/unavailable"), "", "Idempotency store unavailable")
				return
			}
			if !reserved {
				waitAndReplay(w, r, store, key, hash, log)
				return
			}
			observability.IncrementIdempotencyEvent("reserved")

			// Anything short of a finalized record frees the key, including a
			// panic on its way to the recover middleware.
			finalized := false
			defer func() {
				if !finalized {
					store.Release(context.WithoutCancel(ctx), key)
					observability.IncrementIdempotencyEvent("released")
				}
			}()

			rr := newCapturingRecorder(w)
			next.ServeHTTP(rr, r)

			if rr.status >= http.StatusInternalServerError {
				return
			}

			contentType := rr.Header().Get("Content-Type")
			if contentType == "" {
				contentType = "application/json"
			}
			if _, err := store.Finalize(ctx, key, hash, rr.status, rr.capture.Bytes(), contentType); err != nil {
				observability.IncrementIdempotencyEvent("finalize_error")
				log.Warn("idempotency finalize failed", zap.Error(err))
				return
			}
			finalized = true
			observability.IncrementIdempotencyEvent("finalized")
		})
	}
}

func waitAndReplay(w http.ResponseWriter, r *http.Request, store *idempotency.Store, key, hash string, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(r.Context(), replayWait)
	defer cancel()
	rec, err := store.WaitForCompletion(ctx, key, hash)
	if err == nil {
		observability.IncrementIdempotencyEvent("replay_after_wait")
		replay(w, rec)
		return
	}
	if errors.Is(err, idempotency.ErrHashMismatch) {
		observability.IncrementIdempotencyEvent("hash_mismatch")
		conflict(w, r, "Idempotency-Key was already used with a different request")
		return
	}
	observability.IncrementIdempotencyEvent("in_progress_conflict")
	log.Warn("idempotency wait failed", zap.Error(err))
	conflict(w, r, "A request with this Idempotency-Key is still being processed")
}

func conflict(w http.ResponseWriter, r *http.Request, detail string) {
	problem.Write(w, r, http.StatusConflict, problem.Type("idempotency/conflict"), "", detail)
}

func hashRequest(path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func replay(w http.ResponseWriter, rec *idempotency.Record) {
	w.Header().Set("Content-Type", rec.ContentType)
	w.Header().Set(ReplayHeader, "true")
	w.WriteHeader(rec.Status)
	_, _ = w.Write(rec.Body)
}
