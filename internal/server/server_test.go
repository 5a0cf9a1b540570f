package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/postsmith/internal/db"
	"github.com/jonathan/postsmith/internal/llm"
	"github.com/jonathan/postsmith/internal/pipeline"
	"github.com/jonathan/postsmith/internal/session"
	"github.com/jonathan/postsmith/internal/types"
)

// MockRunner implements Runner with function fields.
type MockRunner struct {
	GenerateFunc   func(ctx context.Context, cache *session.Cache, req pipeline.GenerateRequest) (*pipeline.Result, error)
	RegenerateFunc func(ctx context.Context, cache *session.Cache, req pipeline.RegenerateRequest) (*pipeline.Result, error)
}

func (m *MockRunner) Generate(ctx context.Context, cache *session.Cache, req pipeline.GenerateRequest) (*pipeline.Result, error) {
	return m.GenerateFunc(ctx, cache, req)
}

func (m *MockRunner) Regenerate(ctx context.Context, cache *session.Cache, req pipeline.RegenerateRequest) (*pipeline.Result, error) {
	return m.RegenerateFunc(ctx, cache, req)
}

type mockHistory struct {
	gens      []db.Generation
	lastLimit int
	err       error
}

func (m *mockHistory) ListGenerations(_ context.Context, limit int) ([]db.Generation, error) {
	m.lastLimit = limit
	return m.gens, m.err
}

func newTestServer(runner Runner, history HistoryStore) (*Server, *session.Registry) {
	reg := session.NewRegistry()
	s := New(Config{Port: 0}, Deps{Runner: runner, Sessions: reg, History: history, Logger: zerolog.Nop()})
	return s, reg
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

const generateJSON = `{
	"provider": "gemini",
	"api_key": "k",
	"page": {"html": "<div class=\"text-body-medium\">Engineer</div>"},
	"mode": "post",
	"tone": "Direct"
}`

func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer(&MockRunner{}, nil)

	w := do(t, s.Handler(), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(&MockRunner{}, nil)

	w := do(t, s.Handler(), http.MethodOptions, "/sessions", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSessionLifecycle(t *testing.T) {
	s, reg := newTestServer(&MockRunner{}, nil)
	h := s.Handler()

	w := do(t, h, http.MethodPost, "/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code)

	var created SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	_, err := uuid.Parse(created.SessionID)
	require.NoError(t, err)
	assert.Empty(t, created.Modes)
	assert.Equal(t, 1, reg.Len())

	w = do(t, h, http.MethodGet, "/sessions/"+created.SessionID, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodDelete, "/sessions/"+created.SessionID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/sessions/"+created.SessionID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, types.Kind("not_found"), decodeError(t, w).Kind)
}

func TestGenerate_Success(t *testing.T) {
	var got pipeline.GenerateRequest
	runner := &MockRunner{
		GenerateFunc: func(_ context.Context, cache *session.Cache, req pipeline.GenerateRequest) (*pipeline.Result, error) {
			got = req
			cfg := types.GenerationConfig{Mode: types.ModePost, Tone: "Direct", Length: types.LengthMedium}
			cache.Store(types.ModePost, types.Profile{Profession: "Engineer"}, cfg)
			return &pipeline.Result{Text: "Hello", Prompt: "secret prompt", Mode: types.ModePost, Provider: llm.ProviderGemini, Config: cfg}, nil
		},
	}
	s, reg := newTestServer(runner, nil)
	sess := reg.Create()

	w := do(t, s.Handler(), http.MethodPost, "/sessions/"+sess.ID+"/generate", generateJSON)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result pipeline.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "Hello", result.Text)
	assert.Empty(t, result.Prompt)

	assert.Equal(t, sess.ID, got.SessionID)
	assert.Equal(t, llm.ProviderGemini, got.Provider)
	assert.Equal(t, types.ModePost, got.Options.Mode)
	assert.Equal(t, "Direct", got.Options.Tone)
	assert.Contains(t, got.Page.HTML, "Engineer")

	assert.Equal(t, []types.Mode{types.ModePost}, sess.Cache.Modes())
}

func TestGenerate_ShowPrompt(t *testing.T) {
	runner := &MockRunner{
		GenerateFunc: func(context.Context, *session.Cache, pipeline.GenerateRequest) (*pipeline.Result, error) {
			return &pipeline.Result{Text: "Hello", Prompt: "the prompt"}, nil
		},
	}
	s, reg := newTestServer(runner, nil)
	sess := reg.Create()

	w := do(t, s.Handler(), http.MethodPost, "/sessions/"+sess.ID+"/generate?show_prompt=true", generateJSON)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "the prompt")
}

func TestGenerate_SchemaViolation(t *testing.T) {
	called := false
	runner := &MockRunner{
		GenerateFunc: func(context.Context, *session.Cache, pipeline.GenerateRequest) (*pipeline.Result, error) {
			called = true
			return nil, nil
		},
	}
	s, reg := newTestServer(runner, nil)
	sess := reg.Create()

	w := do(t, s.Handler(), http.MethodPost, "/sessions/"+sess.ID+"/generate", `{"provider": "gemini"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, types.KindPrecondition, resp.Kind)
	assert.NotEmpty(t, resp.Details)
	assert.False(t, called)
}

func TestGenerate_UnknownSession(t *testing.T) {
	s, _ := newTestServer(&MockRunner{}, nil)

	w := do(t, s.Handler(), http.MethodPost, "/sessions/missing/generate", generateJSON)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenerate_BusySession(t *testing.T) {
	s, reg := newTestServer(&MockRunner{}, nil)
	sess := reg.Create()
	release, err := sess.Acquire()
	require.NoError(t, err)
	defer release()

	w := do(t, s.Handler(), http.MethodPost, "/sessions/"+sess.ID+"/generate", generateJSON)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, types.Kind("conflict"), decodeError(t, w).Kind)
}

func TestGenerate_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantKind types.Kind
		wantMsg  string
	}{
		{
			name:     "precondition",
			err:      types.NewPreconditionError("article_url", "enter an article URL for comment mode"),
			wantCode: http.StatusBadRequest,
			wantKind: types.KindPrecondition,
			wantMsg:  "enter an article URL for comment mode",
		},
		{
			name:     "provider failure",
			err:      &llm.GenerationError{Provider: llm.ProviderOpenAI, Status: 429, Message: "rate limited"},
			wantCode: http.StatusBadGateway,
			wantKind: types.KindGeneration,
			wantMsg:  "rate limited",
		},
		{
			name:     "timeout",
			err:      &llm.GenerationError{Provider: llm.ProviderGemini, Timeout: true, Message: "Gemini request timed out"},
			wantCode: http.StatusGatewayTimeout,
			wantKind: types.KindGeneration,
			wantMsg:  "Gemini request timed out",
		},
		{
			name:     "internal",
			err:      errors.New("boom"),
			wantCode: http.StatusInternalServerError,
			wantKind: types.KindInternal,
			wantMsg:  "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &MockRunner{
				GenerateFunc: func(context.Context, *session.Cache, pipeline.GenerateRequest) (*pipeline.Result, error) {
					return nil, tt.err
				},
			}
			s, reg := newTestServer(runner, nil)
			sess := reg.Create()

			w := do(t, s.Handler(), http.MethodPost, "/sessions/"+sess.ID+"/generate", generateJSON)

			assert.Equal(t, tt.wantCode, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.wantKind, resp.Kind)
			assert.Equal(t, tt.wantMsg, resp.Error)
		})
	}
}

func TestGenerate_ReleasesSession(t *testing.T) {
	runner := &MockRunner{
		GenerateFunc: func(context.Context, *session.Cache, pipeline.GenerateRequest) (*pipeline.Result, error) {
			return nil, errors.New("boom")
		},
	}
	s, reg := newTestServer(runner, nil)
	sess := reg.Create()

	do(t, s.Handler(), http.MethodPost, "/sessions/"+sess.ID+"/generate", generateJSON)

	release, err := sess.Acquire()
	require.NoError(t, err)
	release()
}

func TestGenerateStream(t *testing.T) {
	runner := &MockRunner{
		GenerateFunc: func(_ context.Context, _ *session.Cache, req pipeline.GenerateRequest) (*pipeline.Result, error) {
			req.OnProgress(pipeline.ProgressEvent{Step: pipeline.StepExtract, Message: "Extracting profile…"})
			req.OnProgress(pipeline.ProgressEvent{Step: pipeline.StepDone, Message: "Post generated!"})
			return &pipeline.Result{Text: "Hello", Mode: types.ModePost}, nil
		},
	}
	s, reg := newTestServer(runner, nil)
	sess := reg.Create()

	w := do(t, s.Handler(), http.MethodPost, "/sessions/"+sess.ID+"/generate/stream", generateJSON)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	var events []string
	scanner := bufio.NewScanner(strings.NewReader(w.Body.String()))
	for scanner.Scan() {
		if name, ok := strings.CutPrefix(scanner.Text(), "event: "); ok {
			events = append(events, name)
		}
	}
	assert.Equal(t, []string{"progress", "progress", "result"}, events)
	assert.Contains(t, w.Body.String(), "Post generated!")
}

func TestGenerateStream_Error(t *testing.T) {
	runner := &MockRunner{
		GenerateFunc: func(context.Context, *session.Cache, pipeline.GenerateRequest) (*pipeline.Result, error) {
			return nil, &llm.GenerationError{Provider: llm.ProviderOpenAI, Message: "OpenAI returned empty text", Empty: true}
		},
	}
	s, reg := newTestServer(runner, nil)
	sess := reg.Create()

	w := do(t, s.Handler(), http.MethodPost, "/sessions/"+sess.ID+"/generate/stream", generateJSON)

	assert.Contains(t, w.Body.String(), "event: error")
	assert.Contains(t, w.Body.String(), "OpenAI returned empty text")
}

func TestRegenerate(t *testing.T) {
	var got pipeline.RegenerateRequest
	runner := &MockRunner{
		RegenerateFunc: func(_ context.Context, _ *session.Cache, req pipeline.RegenerateRequest) (*pipeline.Result, error) {
			got = req
			return &pipeline.Result{Text: "Again", Mode: req.Mode, Regenerated: true}, nil
		},
	}
	s, reg := newTestServer(runner, nil)
	sess := reg.Create()

	body := `{"mode": "comment", "provider": "openai", "api_key": "k", "tone": "Warm", "length": "long"}`
	w := do(t, s.Handler(), http.MethodPost, "/sessions/"+sess.ID+"/regenerate", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, types.ModeComment, got.Mode)
	assert.Equal(t, llm.ProviderOpenAI, got.Provider)
	require.NotNil(t, got.Overrides.Tone)
	assert.Equal(t, "Warm", *got.Overrides.Tone)
	require.NotNil(t, got.Overrides.Length)
	assert.Equal(t, types.LengthLong, *got.Overrides.Length)
	assert.Nil(t, got.Overrides.Topic)
	assert.Contains(t, w.Body.String(), `"regenerated":true`)
}

func TestRegenerate_NothingCached(t *testing.T) {
	runner := &MockRunner{
		RegenerateFunc: func(context.Context, *session.Cache, pipeline.RegenerateRequest) (*pipeline.Result, error) {
			return nil, types.NewPreconditionError("mode", "no previous post to regenerate; generate one first")
		},
	}
	s, reg := newTestServer(runner, nil)
	sess := reg.Create()

	w := do(t, s.Handler(), http.MethodPost, "/sessions/"+sess.ID+"/regenerate", `{"mode": "post", "provider": "gemini", "api_key": "k"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistory(t *testing.T) {
	history := &mockHistory{gens: []db.Generation{{ID: uuid.New(), Mode: "post", Text: "Hello"}}}
	s, _ := newTestServer(&MockRunner{}, history)

	w := do(t, s.Handler(), http.MethodGet, "/history?limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, history.lastLimit)
	assert.Contains(t, w.Body.String(), `"count":1`)

	w = do(t, s.Handler(), http.MethodGet, "/history?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistory_NotConfigured(t *testing.T) {
	s, _ := newTestServer(&MockRunner{}, nil)

	w := do(t, s.Handler(), http.MethodGet, "/history", "")
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	s, _ := newTestServer(&MockRunner{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
