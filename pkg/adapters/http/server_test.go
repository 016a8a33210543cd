package http

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/adflow/pkg/domain"
)

type fakeEngine struct {
	mu       sync.Mutex
	requests []domain.Request
	states   map[string]*domain.State
	err      error
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{states: map[string]*domain.State{}}
}

func (f *fakeEngine) Handle(ctx context.Context, req domain.Request) (*domain.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if req.SessionID == "" {
		req.SessionID = "generated"
	}
	s := domain.NewState(req.SessionID)
	if req.Fields.AccessToken != "" {
		s.AccessToken = domain.Ptr(req.Fields.AccessToken)
	}
	if req.ExplicitIntent != "" {
		s.CurrentStep = domain.Stage(req.ExplicitIntent)
		if req.ExplicitIntent == string(domain.StageAnalyze) {
			s.SetError("no subject data available")
		}
	}
	f.states[req.SessionID] = s
	return domain.NewResponse(s), nil
}

func (f *fakeEngine) State(ctx context.Context, id string) (*domain.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.states[id]; ok {
		return s, nil
	}
	return nil, domain.ErrSessionNotFound
}

func (f *fakeEngine) last() domain.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_Chat(t *testing.T) {
	eng := newFakeEngine()
	h := NewServer(eng).Handler()

	rec := do(t, h, http.MethodPost, "/api/workflow/chat", `{"session_id":"s1","message":"hi\u0007 there","fields":{"num_images":"2"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp domain.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "s1", resp.SessionID)
	assert.Equal(t, domain.StageIngest, resp.CurrentStep)

	got := eng.last()
	assert.Equal(t, "hi there", got.Message)
	require.NotNil(t, got.Fields.NumImages)
	assert.Equal(t, 2, *got.Fields.NumImages)
}

func TestServer_ChatRejectsBadInput(t *testing.T) {
	eng := newFakeEngine()
	h := NewServer(eng).Handler()

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"missing message", `{"session_id":"s1"}`, http.StatusBadRequest},
		{"not json", `{"session_id":`, http.StatusBadRequest},
		{"bad field type", `{"message":"x","script_index":"first"}`, http.StatusBadRequest},
		{"oversized message", `{"message":"` + strings.Repeat("a", 9000) + `"}`, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/workflow/chat", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
	assert.Empty(t, eng.requests)
}

func TestServer_ChatEngineFailure(t *testing.T) {
	eng := newFakeEngine()
	eng.err = errors.New("redis down")
	h := NewServer(eng).Handler()

	rec := do(t, h, http.MethodPost, "/api/workflow/chat", `{"message":"hi"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "redis")
}

func TestServer_RunStage(t *testing.T) {
	eng := newFakeEngine()
	h := NewServer(eng).Handler()

	rec := do(t, h, http.MethodPost, "/api/workflow/select_avatar", `{"session_id":"s1","avatar_id":"av-2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	got := eng.last()
	assert.Equal(t, "select_avatar", got.ExplicitIntent)
	assert.Equal(t, "av-2", got.Fields.AvatarID)

	// Stage failures are reported in the payload with 200.
	rec = do(t, h, http.MethodPost, "/api/workflow/analyze", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp domain.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "no subject data available", *resp.Error)
}

func TestServer_RunStageUnknown(t *testing.T) {
	eng := newFakeEngine()
	h := NewServer(eng).Handler()

	for _, stage := range []string{"teleport", "confirm_restart"} {
		rec := do(t, h, http.MethodPost, "/api/workflow/"+stage, `{}`)
		assert.Equal(t, http.StatusNotFound, rec.Code, stage)
	}
	assert.Empty(t, eng.requests)
}

func TestServer_GetState(t *testing.T) {
	eng := newFakeEngine()
	eng.states["s1"] = domain.NewState("s1")
	h := NewServer(eng).Handler()

	rec := do(t, h, http.MethodGet, "/api/workflow/state/s1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"session_id":"s1"`)

	rec = do(t, h, http.MethodGet, "/api/workflow/state/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_MasksAccessToken(t *testing.T) {
	eng := newFakeEngine()
	h := NewServer(eng).Handler()

	rec := do(t, h, http.MethodPost, "/api/workflow/authenticate_campaign",
		`{"session_id":"s1","access_token":"EAAB-secret"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "EAAB-secret", eng.last().Fields.AccessToken, "the engine still gets the token")
	assert.NotContains(t, rec.Body.String(), "EAAB-secret")
	assert.Contains(t, rec.Body.String(), `"access_token":"***"`)

	rec = do(t, h, http.MethodGet, "/api/workflow/state/s1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "EAAB-secret")
	assert.Equal(t, "EAAB-secret", *eng.states["s1"].AccessToken, "masking works on a copy")

	sm := NewStreamManager(nil)
	ch, cancel := sm.Subscribe("s1")
	defer cancel()
	sm.Observe(context.Background(), domain.NewState("s1"), eng.states["s1"])
	msg := <-ch
	assert.NotContains(t, msg, "EAAB-secret")
	assert.Contains(t, msg, `"***"`)
}

func TestServer_ListStagesAndHealth(t *testing.T) {
	h := NewServer(newFakeEngine(), WithVersion("1.2.3\n")).Handler()

	rec := do(t, h, http.MethodGet, "/api/workflow/stages", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stages []stageInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stages))
	require.Len(t, stages, len(domain.ForwardOrder))
	assert.Equal(t, domain.StageIngest, stages[0].Name)
	assert.Equal(t, domain.StageAnalyze, stages[0].Next)

	rec = do(t, h, http.MethodGet, "/health", "")
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/info", "")
	assert.JSONEq(t, `{"app":"adflow-http","version":"1.2.3"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_MetricsAndCORS(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("adflow_stage_runs_total 1\n"))
	})
	h := NewServer(newFakeEngine(), WithMetrics(metrics)).Handler()

	rec := do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "adflow_stage_runs_total")

	rec = do(t, h, http.MethodOptions, "/api/workflow/chat", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_EventsRequireSession(t *testing.T) {
	h := NewServer(newFakeEngine()).Handler()
	rec := do(t, h, http.MethodGet, "/events", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func readEvent(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	var lines []string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		if line == "" {
			return strings.Join(lines, "\n")
		}
		lines = append(lines, line)
	}
}

func TestServer_EventsStreamDiffs(t *testing.T) {
	streams := NewStreamManager(nil)
	srv := httptest.NewServer(NewServer(newFakeEngine(), WithStreams(streams)).Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events?session_id=s1&watch=scripts", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	r := bufio.NewReader(resp.Body)
	assert.Equal(t, "event: ping\ndata: connected", readEvent(t, r))
	assert.Equal(t, 1, streams.Subscribers("s1"))

	old := domain.NewState("s1")
	// Only touches messages: filtered out by watch=scripts.
	withMessage := old.Clone()
	withMessage.AppendMessage(domain.RoleUser, "hello")
	streams.Observe(ctx, old, withMessage)

	withScripts := withMessage.Clone()
	withScripts.Scripts = []string{"a", "b"}
	streams.Observe(ctx, withMessage, withScripts)

	event := readEvent(t, r)
	require.True(t, strings.HasPrefix(event, "data: "), event)
	var diff domain.StateDiff
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(event, "data: ")), &diff))
	assert.Equal(t, "s1", diff.SessionID)
	assert.JSONEq(t, `["a","b"]`, string(diff.Fields["scripts"]))
	assert.Empty(t, diff.Messages)
}

func TestStreamManager_SubscribeBroadcast(t *testing.T) {
	sm := NewStreamManager(nil)
	ch, cancel := sm.Subscribe("s1")
	other, cancelOther := sm.Subscribe("s2")
	defer cancelOther()

	sm.Broadcast("s1", "one")
	assert.Equal(t, "one", <-ch)
	assert.Empty(t, other)

	// No change, no event.
	s := domain.NewState("s1")
	sm.Observe(context.Background(), s, s.Clone())
	assert.Empty(t, ch)

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, sm.Subscribers("s1"))
}

func TestStreamManager_DropsWhenFull(t *testing.T) {
	sm := NewStreamManager(nil)
	ch, cancel := sm.Subscribe("s1")
	defer cancel()

	for i := 0; i < subscriberBuffer+5; i++ {
		sm.Broadcast("s1", "x")
	}
	assert.Len(t, ch, subscriberBuffer)
}
