package server

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buker/latamai/internal/backend"
	"github.com/buker/latamai/internal/chat"
	"github.com/buker/latamai/internal/logging"
)

type fakeBackend struct {
	chatRaw    json.RawMessage
	chatErr    error
	sourcesRaw json.RawMessage
	sourcesErr error

	chatCalls int
	lastReq   chat.Request
}

func (f *fakeBackend) ChatRaw(ctx context.Context, req chat.Request) (json.RawMessage, error) {
	f.chatCalls++
	f.lastReq = req
	return f.chatRaw, f.chatErr
}

func (f *fakeBackend) SourcesRaw(ctx context.Context) (json.RawMessage, error) {
	return f.sourcesRaw, f.sourcesErr
}

type instantClock struct{}

func (instantClock) After(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

func newTestServer(t *testing.T, fb *fakeBackend) http.Handler {
	t.Helper()
	s, err := New(Options{Backend: fb, Clock: instantClock{}, Version: "test"})
	require.NoError(t, err)
	return s.Handler()
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// =============================================================================
// PROXY ROUTES
// =============================================================================

func TestNew_RequiresBackend(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestChat_InvalidPayload(t *testing.T) {
	fb := &fakeBackend{}
	rec := do(newTestServer(t, fb), http.MethodPost, "/api/chat", "{not json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Payload invalido."}`, rec.Body.String())
	assert.Zero(t, fb.chatCalls)
}

func TestChat_QuestionRequired(t *testing.T) {
	for _, body := range []string{`{}`, `null`, `{"question":"   "}`, `{"question":"","messages":[]}`} {
		fb := &fakeBackend{}
		rec := do(newTestServer(t, fb), http.MethodPost, "/api/chat", body)

		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.JSONEq(t, `{"error":"La pregunta es obligatoria."}`, rec.Body.String(), body)
		assert.Zero(t, fb.chatCalls, body)
	}
}

func TestChat_ForwardsVerbatim(t *testing.T) {
	backendBody := `{"answer":"Costa, sierra y selva.","sources":[],"extra_field":{"kept":true}}`
	fb := &fakeBackend{chatRaw: json.RawMessage(backendBody)}

	rec := do(newTestServer(t, fb), http.MethodPost, "/api/chat",
		`{"question":"  Cultura de Peru  ","messages":[{"role":"user","content":"Cultura de Peru"}]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, backendBody, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Cultura de Peru", fb.lastReq.Question)
	assert.Equal(t, []chat.Turn{{Role: chat.RoleUser, Content: "Cultura de Peru"}}, fb.lastReq.Messages)
}

func TestChat_MissingHistoryIsEmpty(t *testing.T) {
	fb := &fakeBackend{chatRaw: json.RawMessage(`{}`)}
	do(newTestServer(t, fb), http.MethodPost, "/api/chat", `{"question":"hola"}`)

	assert.NotNil(t, fb.lastReq.Messages)
	assert.Empty(t, fb.lastReq.Messages)
}

func TestChat_UpstreamError(t *testing.T) {
	fb := &fakeBackend{chatErr: &backend.UpstreamError{Endpoint: backend.EndpointChat, Status: 500, Detail: "boom"}}
	rec := do(newTestServer(t, fb), http.MethodPost, "/api/chat", `{"question":"hola"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"error":"El backend LATAM respondio con error.","detail":"boom"}`, rec.Body.String())
}

func TestChat_Unavailable(t *testing.T) {
	fb := &fakeBackend{chatErr: &backend.UnavailableError{Endpoint: backend.EndpointChat, Err: context.DeadlineExceeded}}
	rec := do(newTestServer(t, fb), http.MethodPost, "/api/chat", `{"question":"hola"}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t,
		`{"error":"No se pudo conectar con el backend local. Inicia FastAPI en http://127.0.0.1:8000."}`,
		rec.Body.String())
}

func TestSources(t *testing.T) {
	fb := &fakeBackend{sourcesRaw: json.RawMessage(`{"sources":[{"id":"undp","name":"UNDP"}]}`)}
	rec := do(newTestServer(t, fb), http.MethodGet, "/api/sources", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"sources":[{"id":"undp","name":"UNDP"}]}`, rec.Body.String())
}

func TestSources_Errors(t *testing.T) {
	fb := &fakeBackend{sourcesErr: &backend.UpstreamError{Endpoint: backend.EndpointSources, Status: 404, Detail: ""}}
	rec := do(newTestServer(t, fb), http.MethodGet, "/api/sources", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"error":"El backend LATAM respondio con error en /v1/sources.","detail":""}`, rec.Body.String())

	fb = &fakeBackend{sourcesErr: &backend.UnavailableError{Endpoint: backend.EndpointSources, Err: net.ErrClosed}}
	rec = do(newTestServer(t, fb), http.MethodGet, "/api/sources", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t,
		`{"error":"No se pudo conectar con el backend local para fuentes. Inicia el backend en http://127.0.0.1:8000."}`,
		rec.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	rec := do(newTestServer(t, &fakeBackend{}), http.MethodGet, "/api/chat", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := do(newTestServer(t, &fakeBackend{}), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"version":"test"}`, rec.Body.String())
}

// =============================================================================
// REVEAL STREAM
// =============================================================================

type sseEvent struct {
	name string
	data map[string]any
}

func readEvents(t *testing.T, body string) []sseEvent {
	t.Helper()
	var events []sseEvent
	var current sseEvent
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			current.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &current.data))
		case line == "":
			events = append(events, current)
			current = sseEvent{}
		}
	}
	return events
}

func TestChatStream(t *testing.T) {
	answer := "**Peru**: costa."
	fb := &fakeBackend{chatRaw: json.RawMessage(`{"answer":"` + answer + `","data_cutoff":"2024-12"}`)}
	rec := do(newTestServer(t, fb), http.MethodPost, "/api/chat/stream", `{"question":"Peru"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	events := readEvents(t, rec.Body.String())
	require.NotEmpty(t, events)

	meta := events[0]
	assert.Equal(t, "meta", meta.name)
	assert.Equal(t, "2024-12", meta.data["data_cutoff"])
	assert.Equal(t, "lexical", meta.data["retrieval_mode"])
	assert.Equal(t, "rule-based", meta.data["llm_runtime"])

	deltas := events[1 : len(events)-1]
	assert.Len(t, deltas, (len(answer)+1)/2)
	for _, ev := range deltas {
		assert.Equal(t, "delta", ev.name)
		assert.True(t, strings.HasPrefix(answer, ev.data["text"].(string)))
	}

	last := events[len(events)-1]
	assert.Equal(t, "complete", last.name)
	assert.Equal(t, answer, last.data["text"])
	assert.Equal(t, "<p><strong>Peru</strong>: costa.</p>\n", last.data["html"])
}

func TestChatStream_MissingAnswer(t *testing.T) {
	fb := &fakeBackend{chatRaw: json.RawMessage(`{}`)}
	rec := do(newTestServer(t, fb), http.MethodPost, "/api/chat/stream", `{"question":"Peru"}`)

	events := readEvents(t, rec.Body.String())
	last := events[len(events)-1]
	assert.Equal(t, chat.MissingAnswer, last.data["text"])
}

func TestChatStream_ErrorsBeforeStream(t *testing.T) {
	fb := &fakeBackend{chatErr: &backend.UnavailableError{Endpoint: backend.EndpointChat, Err: net.ErrClosed}}
	rec := do(newTestServer(t, fb), http.MethodPost, "/api/chat/stream", `{"question":"Peru"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	fb = &fakeBackend{chatRaw: json.RawMessage(`{"answer":42}`)}
	rec = do(newTestServer(t, fb), http.MethodPost, "/api/chat/stream", `{"question":"Peru"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do(newTestServer(t, &fakeBackend{}), http.MethodPost, "/api/chat/stream", `{"question":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// PAGES
// =============================================================================

func TestLandingPage(t *testing.T) {
	rec := do(newTestServer(t, &fakeBackend{}), http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Respuestas regionales claras, trazables y sin ruido.")
	assert.Contains(t, body, "Republica Dominicana")
	assert.Contains(t, body, `href="/chat"`)
	assert.Contains(t, body, ThemeStorageKey)
}

func TestChatPage(t *testing.T) {
	rec := do(newTestServer(t, &fakeBackend{}), http.MethodGet, "/chat", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Hola, soy tu agente LATAM</h1>")
	for _, prompt := range chat.QuickPrompts {
		assert.Contains(t, body, prompt)
	}
}

func TestUnknownPath(t *testing.T) {
	rec := do(newTestServer(t, &fakeBackend{}), http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStaticAssets(t *testing.T) {
	h := newTestServer(t, &fakeBackend{})
	for _, path := range []string{"/static/app.css", "/static/chat.js", "/static/theme.js"} {
		rec := do(h, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

func TestRequestID(t *testing.T) {
	h := newTestServer(t, &fakeBackend{})

	rec := do(h, http.MethodGet, "/healthz", "")
	_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	assert.NoError(t, err)

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEqual(t, "<script>", rec.Header().Get(RequestIDHeader))
}

func TestSecurityHeaders(t *testing.T) {
	rec := do(newTestServer(t, &fakeBackend{}), http.MethodGet, "/", "")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'self'")
}

func TestRateLimit(t *testing.T) {
	s, err := New(Options{Backend: &fakeBackend{}, RateLimit: 0.001, RateBurst: 2})
	require.NoError(t, err)
	h := s.Handler()

	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/healthz", "").Code)

	rec := do(h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestRateLimiter_PerClient(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"))

	unlimited := NewRateLimiter(0, 0)
	for i := 0; i < 100; i++ {
		assert.True(t, unlimited.Allow("10.0.0.1"))
	}
}

func TestRecovery(t *testing.T) {
	h := Chain(RecoveryMiddleware(logging.Discard()))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := do(h, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Error interno del servidor."}`, rec.Body.String())
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(mark("a"), mark("b"), mark("c"))(http.NotFoundHandler())
	do(h, http.MethodGet, "/", "")
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

// =============================================================================
// LIFECYCLE
// =============================================================================

func TestServe_Shutdown(t *testing.T) {
	s, err := New(Options{Backend: &fakeBackend{}})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

// slowBackend holds chat calls until released.
type slowBackend struct {
	started chan struct{}
	release chan struct{}
}

func (b *slowBackend) ChatRaw(ctx context.Context, req chat.Request) (json.RawMessage, error) {
	close(b.started)
	select {
	case <-b.release:
		return json.RawMessage(`{"answer":"Hola"}`), nil
	case <-ctx.Done():
		return nil, &backend.UnavailableError{Endpoint: backend.EndpointChat, Err: ctx.Err()}
	}
}

func (b *slowBackend) SourcesRaw(ctx context.Context) (json.RawMessage, error) {
	return json.RawMessage(`{"sources":[]}`), nil
}

func TestServe_ShutdownDrainsInFlightRequest(t *testing.T) {
	sb := &slowBackend{started: make(chan struct{}), release: make(chan struct{})}
	s, err := New(Options{Backend: sb})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	type result struct {
		status int
		body   string
		err    error
	}
	results := make(chan result, 1)
	go func() {
		resp, err := http.Post("http://"+ln.Addr().String()+"/api/chat", "application/json",
			strings.NewReader(`{"question":"hola","messages":[]}`))
		if err != nil {
			results <- result{err: err}
			return
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		results <- result{status: resp.StatusCode, body: string(body), err: err}
	}()

	select {
	case <-sb.started:
	case <-time.After(5 * time.Second):
		t.Fatal("request never reached the backend")
	}

	cancel()
	// Shutdown must wait for the request instead of failing it.
	select {
	case err := <-done:
		t.Fatalf("server stopped with a request in flight: %v", err)
	case <-time.After(100 * time.Millisecond):
	}
	close(sb.release)

	select {
	case r := <-results:
		require.NoError(t, r.err)
		assert.Equal(t, http.StatusOK, r.status)
		assert.JSONEq(t, `{"answer":"Hola"}`, r.body)
	case <-time.After(5 * time.Second):
		t.Fatal("in-flight request did not complete")
	}

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
