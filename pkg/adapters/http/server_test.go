package http_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/qualifica"
	"github.com/aretw0/qualifica/pkg/adapters/memory"
	qhttp "github.com/aretw0/qualifica/pkg/adapters/http"
	"github.com/aretw0/qualifica/pkg/domain"
	"github.com/aretw0/qualifica/pkg/observability"
	"github.com/aretw0/qualifica/pkg/qualifier"
	"github.com/aretw0/qualifica/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var leadCatalog = domain.Catalog{
	{Order: 0, Text: "Você é o decisor?", HotCriteria: "sim", ColdCriteria: "não", Weight: 1},
	{Order: 1, Text: "Qual o orçamento?", HotCriteria: "acima de 10 mil", Weight: 3},
}

func newServer(t *testing.T, opts ...qhttp.Option) (*qhttp.Server, *qualifier.Service) {
	t.Helper()
	engine := qualifica.New()
	svc := qualifier.New(engine,
		session.NewManager(memory.NewStore()),
		memory.NewCatalogs(map[string]domain.Catalog{"acme": leadCatalog}),
	)
	srv := &qhttp.Server{Engine: engine, Conversations: svc, Streams: qhttp.NewStreamManager()}
	for _, opt := range opts {
		opt(srv)
	}
	return srv, svc
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeResult(t *testing.T, w *httptest.ResponseRecorder) domain.Result {
	t.Helper()
	var res domain.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res), w.Body.String())
	return res
}

func TestAdvance_Stateless(t *testing.T) {
	h := qhttp.NewHandler(qualifica.New())

	body := `{
		"tenantId": "acme",
		"conversationId": "5511999999999@s.whatsapp.net",
		"rawAnswer": "acima de 10 mil reais",
		"catalog": [
			{"order": "1", "text": "Qual o orçamento?", "hot_criteria": "acima de 10 mil", "weight": "3"},
			{"order": 0, "text": "Você é o decisor?", "hotCriteria": "sim", "warmThreshold": null}
		],
		"priorSession": {"currentStep": 1, "scoreTotal": 10, "status": "in_progress"}
	}`
	w := do(t, h, http.MethodPost, "/v1/advance", body)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decodeResult(t, w)
	assert.Equal(t, domain.Completed(domain.Warm, 40), res.Outcome)
	assert.Equal(t, "5511999999999", res.ConversationID)
	assert.Equal(t, domain.Session{CurrentStep: 2, ScoreTotal: 40, Status: domain.StatusDone}, res.Session)
}

func TestAdvance_ValidationErrorIs422(t *testing.T) {
	h := qhttp.NewHandler(qualifica.New())

	w := do(t, h, http.MethodPost, "/v1/advance", `{"tenantId": "acme", "conversationId": "  ", "rawAnswer": "sim"}`)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	res := decodeResult(t, w)
	assert.Equal(t, domain.OutcomeValidationError, res.Outcome.Kind)
	assert.Equal(t, "conversationId is required", res.Outcome.Message)
}

func TestAdvance_BadRequests(t *testing.T) {
	h := qhttp.NewHandler(qualifica.New())

	tests := []struct {
		name string
		body string
	}{
		{"MalformedJSON", `{"tenantId":`},
		{"BadWeight", `{"tenantId":"acme","conversationId":"1","catalog":[{"text":"q","weight":"heavy"}]}`},
		{"TooLarge", `{"tenantId":"acme","conversationId":"1","rawAnswer":"` + strings.Repeat("a", 5000) + `"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/v1/advance", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

			var resp qhttp.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "Bad Request", resp.Error)
		})
	}
}

func TestConversation_Lifecycle(t *testing.T) {
	srv, _ := newServer(t)
	h := srv.Routes()
	path := "/v1/tenants/acme/conversations/5511999999999"

	w := do(t, h, http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodPost, path+"/answers", `{"answer": ""}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.AskNext("Você é o decisor?"), decodeResult(t, w).Outcome)

	w = do(t, h, http.MethodPost, path+"/answers", `{"answer": "Sim, sou eu"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.AskNext("Qual o orçamento?"), decodeResult(t, w).Outcome)

	w = do(t, h, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, w.Code)
	var stored domain.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stored))
	assert.Equal(t, domain.Session{CurrentStep: 1, ScoreTotal: 10, Status: domain.StatusInProgress}, stored)

	w = do(t, h, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConversation_ErrorMapping(t *testing.T) {
	srv, _ := newServer(t)
	h := srv.Routes()

	w := do(t, h, http.MethodPost, "/v1/tenants/unknown/conversations/1/answers", `{"answer": "sim"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodPost, "/v1/tenants/acme/conversations/1/answers", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	big := strings.Repeat("a", 10_000)
	w = do(t, h, http.MethodPost, "/v1/tenants/acme/conversations/1/answers", `{"answer": "`+big+`"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/v1/tenants/%20/conversations/1/answers", `{"answer": "sim"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "tenantId is required", decodeResult(t, w).Outcome.Message)

	w = do(t, h, http.MethodPost, "/v1/tenants/acme/conversations/1/answers", `{"answer": "\u0001"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodGet, "/v1/tenants/acme:x/conversations/1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConversationRoutesRequireService(t *testing.T) {
	h := qhttp.NewHandler(qualifica.New())

	w := do(t, h, http.MethodPost, "/v1/tenants/acme/conversations/1/answers", `{"answer": "sim"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubscribeEvents_StreamsResults(t *testing.T) {
	srv, _ := newServer(t)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/v1/tenants/acme/conversations/5511@s.whatsapp.net/events", nil)
	require.NoError(t, err)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	readUntil := func(prefix string) string {
		for lines.Scan() {
			if strings.HasPrefix(lines.Text(), prefix) {
				return lines.Text()
			}
		}
		t.Fatalf("stream ended before %q: %v", prefix, lines.Err())
		return ""
	}

	// The subscription is registered before the ping is written.
	readUntil("event: ping")
	assert.Equal(t, 1, srv.Streams.Subscribers("acme:5511"))

	answer, err := ts.Client().Post(ts.URL+"/v1/tenants/acme/conversations/5511/answers", "application/json", strings.NewReader(`{"answer": ""}`))
	require.NoError(t, err)
	answer.Body.Close()
	require.Equal(t, http.StatusOK, answer.StatusCode)

	readUntil("event: result")
	data := readUntil("data: ")
	assert.Contains(t, data, `"promptText":"Você é o decisor?"`)
	assert.Contains(t, data, `"conversationId":"5511"`)
}

func TestHealthInfoAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	engine := qualifica.New(qualifica.WithLifecycleHooks(metrics.Hooks()))
	h := qhttp.NewHandler(engine, qhttp.WithMetrics(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	w := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/v1/info", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"app":"qualifica-http"`)

	w = do(t, h, http.MethodPost, "/v1/advance", `{"tenantId":"acme","conversationId":"1","rawAnswer":""}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "qualifica_resets_total 1")
}

func TestCORSPreflight(t *testing.T) {
	h := qhttp.NewHandler(qualifica.New())

	w := do(t, h, http.MethodOptions, "/v1/advance", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestStreamManager_DropsWhenFull(t *testing.T) {
	sm := qhttp.NewStreamManager()
	ch, cancel := sm.Subscribe("acme:1")

	for i := 0; i < 20; i++ {
		sm.Broadcast("acme:1", "msg")
	}
	assert.Len(t, ch, 10)

	cancel()
	cancel()
	assert.Equal(t, 0, sm.Subscribers("acme:1"))
}
