package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ayo6706/banking-agent/internal/api"
	"github.com/ayo6706/banking-agent/internal/config"
	"github.com/ayo6706/banking-agent/internal/domain"
	"github.com/ayo6706/banking-agent/internal/idempotency"
	"github.com/ayo6706/banking-agent/internal/lock"
	"github.com/ayo6706/banking-agent/internal/prompts"
	"github.com/ayo6706/banking-agent/internal/repository"
	"github.com/ayo6706/banking-agent/internal/service"
	"github.com/ayo6706/banking-agent/internal/tools"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	router chi.Router
	store  *repository.MemoryStore
	mr     *miniredis.Miniredis
}

type serverOption func(*config.Config)

func withRateLimit(rps int) serverOption {
	return func(c *config.Config) { c.RateLimitRPS = rps }
}

// newTestServer wires the router to a fresh seeded store. withRedis enables
// idempotency and the readiness ping against miniredis.
func newTestServer(t *testing.T, withRedis bool, opts ...serverOption) *testServer {
	t.Helper()
	cfg := &config.Config{HTTPPort: "0", RateLimitRPS: 1000, LockBackend: config.LockBackendLocal}
	for _, opt := range opts {
		opt(cfg)
	}

	store := repository.NewDefaultStore()
	targets := service.NewTargetResolver(store)
	validator := service.NewPreConditionValidator(store, store, targets)
	executor := service.NewTransferExecutor(store, store, validator, targets, lock.NewLocalLocker())
	elicitation := service.NewElicitationEngine(store, service.NewIntentClassifier())
	prechecks := service.NewPreCheckOrchestrator(store, store)
	registry := tools.NewRegistry(tools.Dependencies{
		Accounts:  store,
		Rates:     store,
		Targets:   targets,
		Validator: validator,
		Executor:  executor,
		Agent:     service.NewAgent(elicitation, prechecks, executor),
		Insight:   service.NewAccountInsight(store),
	})

	ts := &testServer{store: store}
	var (
		idem   *idempotency.Store
		client redis.Cmdable
	)
	if withRedis {
		ts.mr = miniredis.RunT(t)
		rc := redis.NewClient(&redis.Options{Addr: ts.mr.Addr()})
		t.Cleanup(func() { _ = rc.Close() })
		idem = idempotency.NewStore(rc, time.Hour)
		client = rc
	}

	ts.router = api.NewRouter(cfg, zap.NewNop(), registry, prompts.NewCatalogue(store), idem, client).Routes()
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func balance(t *testing.T, ts *testServer, id string) string {
	t.Helper()
	a, err := ts.store.GetAccount(testContext(t), id)
	require.NoError(t, err)
	return a.Balance.String()
}

func TestHealth(t *testing.T) {
	t.Run("live", func(t *testing.T) {
		rec := newTestServer(t, false).do(t, http.MethodGet, "/health/live", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", rec.Body.String())
	})

	t.Run("ready without redis", func(t *testing.T) {
		rec := newTestServer(t, false).do(t, http.MethodGet, "/health/ready", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "ready", body["status"])
		assert.NotContains(t, body["checks"], "redis")
	})

	t.Run("ready with redis", func(t *testing.T) {
		rec := newTestServer(t, true).do(t, http.MethodGet, "/health/ready", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", decodeBody(t, rec)["checks"].(map[string]any)["redis"])
	})

	t.Run("redis down", func(t *testing.T) {
		ts := newTestServer(t, true)
		ts.mr.Close()
		rec := ts.do(t, http.MethodGet, "/health/ready", "", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	})
}

func TestListTools(t *testing.T) {
	rec := newTestServer(t, false).do(t, http.MethodGet, "/v1/tools", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Tools []tools.Definition `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Tools, 8)
	assert.Equal(t, tools.TransferFunds, body.Tools[0].Name)
	assert.Equal(t, tools.IntelligentAccountCheck, body.Tools[7].Name)
}

func TestCallTool(t *testing.T) {
	tests := []struct {
		name       string
		tool       string
		body       string
		wantStatus int
		check      func(t *testing.T, body map[string]any)
	}{
		{
			name:       "account details",
			tool:       "getAccountDetails",
			body:       `{"accountId":"EUR-account"}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "EUR-account", body["id"])
				assert.Equal(t, "EUR", body["currency"])
			},
		},
		{
			name:       "account not found is a payload",
			tool:       "getAccountDetails",
			body:       `{"accountId":"JPY-account"}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "Account JPY-account not found", body["error"])
			},
		},
		{
			name:       "missing argument echoes the call",
			tool:       "getFXRate",
			body:       `{"from":"AUD"}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Contains(t, body["error"], "to")
				assert.Equal(t, "getFXRate", body["tool"])
				assert.Equal(t, map[string]any{"from": "AUD"}, body["arguments"])
			},
		},
		{
			name:       "empty body for a tool without arguments",
			tool:       "getAllAccounts",
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown tool",
			tool:       "closeAccount",
			body:       `{}`,
			wantStatus: http.StatusNotFound,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "https://errors.banking-agent.dev/tools/unknown", body["type"])
				assert.Equal(t, "Unknown tool: closeAccount", body["detail"])
				assert.Equal(t, "/v1/tools/closeAccount", body["instance"])
				assert.NotEmpty(t, body["trace_id"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newTestServer(t, false).do(t, http.MethodPost, "/v1/tools/"+tt.tool, tt.body, nil)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.check == nil {
				return
			}
			tt.check(t, decodeBody(t, rec))
		})
	}
}

func TestTransferToolMutatesStore(t *testing.T) {
	ts := newTestServer(t, false)
	body := `{"amount":1000,"fromAccount":"AUD-account","toAccount":"USD-account"}`

	rec := ts.do(t, http.MethodPost, "/v1/tools/transferFunds", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeBody(t, rec)
	assert.Equal(t, true, out["success"])
	assert.Regexp(t, `^TXN-\d+-[0-9A-F]{6}$`, out["transactionId"])

	assert.Equal(t, "4000", balance(t, ts, domain.AccountAUD))
	assert.Equal(t, "3849.35", balance(t, ts, domain.AccountUSD))
}

func TestIdempotentToolCalls(t *testing.T) {
	transfer := `{"amount":500,"fromAccount":"AUD-account","toAccount":"EUR-account"}`

	t.Run("replay returns the recorded response once", func(t *testing.T) {
		ts := newTestServer(t, true)
		headers := map[string]string{"Idempotency-Key": "k-1"}

		first := ts.do(t, http.MethodPost, "/v1/tools/transferFunds", transfer, headers)
		require.Equal(t, http.StatusOK, first.Code)
		assert.Empty(t, first.Header().Get("X-Idempotent-Replay"))

		second := ts.do(t, http.MethodPost, "/v1/tools/transferFunds", transfer, headers)
		require.Equal(t, http.StatusOK, second.Code)
		assert.Equal(t, "true", second.Header().Get("X-Idempotent-Replay"))
		assert.Equal(t, first.Body.String(), second.Body.String())

		assert.Equal(t, "4500", balance(t, ts, domain.AccountAUD))
	})

	t.Run("different body under the same key conflicts", func(t *testing.T) {
		ts := newTestServer(t, true)
		headers := map[string]string{"Idempotency-Key": "k-2"}

		require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/v1/tools/transferFunds", transfer, headers).Code)
		rec := ts.do(t, http.MethodPost, "/v1/tools/transferFunds",
			`{"amount":700,"fromAccount":"AUD-account","toAccount":"EUR-account"}`, headers)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "https://errors.banking-agent.dev/idempotency/conflict", decodeBody(t, rec)["type"])
		assert.Equal(t, "4500", balance(t, ts, domain.AccountAUD))
	})

	t.Run("same body on another tool conflicts", func(t *testing.T) {
		ts := newTestServer(t, true)
		headers := map[string]string{"Idempotency-Key": "k-3"}

		require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/v1/tools/validateTransfer", transfer, headers).Code)
		rec := ts.do(t, http.MethodPost, "/v1/tools/transferFunds", transfer, headers)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "5000", balance(t, ts, domain.AccountAUD))
	})

	t.Run("no key executes every time", func(t *testing.T) {
		ts := newTestServer(t, true)
		for i := 0; i < 2; i++ {
			require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/v1/tools/transferFunds", transfer, nil).Code)
		}
		assert.Equal(t, "4000", balance(t, ts, domain.AccountAUD))
	})

	t.Run("key ignored without redis", func(t *testing.T) {
		ts := newTestServer(t, false)
		headers := map[string]string{"Idempotency-Key": "k-4"}
		for i := 0; i < 2; i++ {
			rec := ts.do(t, http.MethodPost, "/v1/tools/transferFunds", transfer, headers)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Empty(t, rec.Header().Get("X-Idempotent-Replay"))
		}
		assert.Equal(t, "4000", balance(t, ts, domain.AccountAUD))
	})
}

func TestPrompts(t *testing.T) {
	ts := newTestServer(t, false)

	t.Run("list", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/v1/prompts", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decodeBody(t, rec)["prompts"], 3)
	})

	tests := []struct {
		name       string
		prompt     string
		body       string
		wantStatus int
		wantField  string
		wantText   string
	}{
		{"render", "account_analysis", `{"accountId":"AUD-account"}`, http.StatusOK, "prompt", "Account: AUD-account"},
		{"no arguments", "portfolio_overview", "", http.StatusOK, "prompt", "Total Portfolio Value"},
		{"missing account", "transfer_advisor", `{"fromAccount":"X","amount":5}`, http.StatusOK, "error", "Account X not found"},
		{"unknown prompt", "tax_planner", `{}`, http.StatusNotFound, "detail", "Unknown prompt: tax_planner"},
		{"invalid json", "account_analysis", `[1,2`, http.StatusBadRequest, "type", "request/invalid-json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/v1/prompts/"+tt.prompt, tt.body, nil)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Contains(t, decodeBody(t, rec)[tt.wantField], tt.wantText)
		})
	}
}

func TestRoutingProblems(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.do(t, http.MethodGet, "/v1/accounts", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	rec = ts.do(t, http.MethodDelete, "/v1/tools", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestTraceHeader(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.do(t, http.MethodGet, "/health/live", "", map[string]string{"X-Trace-ID": "trace-123"})
	assert.Equal(t, "trace-123", rec.Header().Get("X-Trace-ID"))

	rec = ts.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Len(t, rec.Header().Get("X-Trace-ID"), 36)
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, false, withRateLimit(1))

	first := ts.do(t, http.MethodGet, "/v1/tools", "", nil)
	require.Equal(t, http.StatusOK, first.Code)

	second := ts.do(t, http.MethodGet, "/v1/tools", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "https://errors.banking-agent.dev/rate-limited", decodeBody(t, second)["type"])

	health := ts.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, health.Code)
}

func TestDocs(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.do(t, http.MethodGet, "/openapi.yaml", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/v1/tools/{name}")

	rec = ts.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// testContext mirrors testing.T.Context (Go 1.24+): a context canceled when
// the test finishes.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
