package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/jonathan/postsmith/internal/fetch"
	"github.com/jonathan/postsmith/internal/llm"
	"github.com/jonathan/postsmith/internal/pipeline"
	"github.com/jonathan/postsmith/internal/schemas"
	"github.com/jonathan/postsmith/internal/session"
	"github.com/jonathan/postsmith/internal/types"
)

// maxBodyBytes caps request bodies; saved profile pages fit comfortably.
const maxBodyBytes = 4 << 20

type pageBody struct {
	URL  string `json:"url"`
	HTML string `json:"html"`
}

// GenerateBody is the request body of POST /sessions/{id}/generate.
type GenerateBody struct {
	Provider         string   `json:"provider"`
	APIKey           string   `json:"api_key"`
	ScraperKey       string   `json:"scraper_api_key"`
	Page             pageBody `json:"page"`
	Mode             string   `json:"mode"`
	Tone             string   `json:"tone"`
	Length           string   `json:"length"`
	Topic            string   `json:"topic"`
	CustomProfession string   `json:"custom_profession"`
	ArticleURL       string   `json:"article_url"`
	ArticleText      string   `json:"article_text"`
}

// RegenerateBody is the request body of POST /sessions/{id}/regenerate.
// Nil fields keep the cached value.
type RegenerateBody struct {
	Mode             string  `json:"mode"`
	Provider         string  `json:"provider"`
	APIKey           string  `json:"api_key"`
	Tone             *string `json:"tone"`
	Length           *string `json:"length"`
	Topic            *string `json:"topic"`
	CustomProfession *string `json:"custom_profession"`
}

// SessionResponse describes a session and its cached modes.
type SessionResponse struct {
	SessionID string       `json:"session_id"`
	CreatedAt time.Time    `json:"created_at"`
	Modes     []types.Mode `json:"modes"`
}

// decodeBody validates the body against the named schema, then decodes it into v.
func decodeBody(w http.ResponseWriter, r *http.Request, schema string, v any) error {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return types.NewPreconditionError("body", "failed to read request body: %v", err)
	}
	if err := schemas.Validate(schema, raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return types.NewPreconditionError("body", "invalid JSON: %v", err)
	}
	return nil
}

func (b GenerateBody) request(sessionID string) (pipeline.GenerateRequest, error) {
	mode, err := types.ParseMode(b.Mode)
	if err != nil {
		return pipeline.GenerateRequest{}, err
	}
	return pipeline.GenerateRequest{
		SessionID:  sessionID,
		Page:       fetch.Source{URL: b.Page.URL, HTML: b.Page.HTML},
		Provider:   llm.ProviderID(b.Provider),
		APIKey:     b.APIKey,
		ScraperKey: b.ScraperKey,
		Options: types.ConfigOptions{
			Mode:             mode,
			Tone:             b.Tone,
			Length:           types.Length(b.Length),
			Topic:            b.Topic,
			CustomProfession: b.CustomProfession,
			ArticleURL:       b.ArticleURL,
			ArticleText:      b.ArticleText,
		},
	}, nil
}

func (b RegenerateBody) request(sessionID string) (pipeline.RegenerateRequest, error) {
	mode, err := types.ParseMode(b.Mode)
	if err != nil {
		return pipeline.RegenerateRequest{}, err
	}
	overrides := types.Overrides{
		Tone:             b.Tone,
		Topic:            b.Topic,
		CustomProfession: b.CustomProfession,
	}
	if b.Length != nil {
		l, err := types.ParseLength(*b.Length)
		if err != nil {
			return pipeline.RegenerateRequest{}, err
		}
		overrides.Length = &l
	}
	return pipeline.RegenerateRequest{
		SessionID: sessionID,
		Mode:      mode,
		Provider:  llm.ProviderID(b.Provider),
		APIKey:    b.APIKey,
		Overrides: overrides,
	}, nil
}

// handleCreateSession creates an empty session.
func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	sess := s.sessions.Create()
	s.jsonResponse(w, http.StatusCreated, SessionResponse{
		SessionID: sess.ID,
		CreatedAt: sess.CreatedAt,
		Modes:     sess.Cache.Modes(),
	})
}

// handleGetSession reports which modes have a cached pair.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, SessionResponse{
		SessionID: sess.ID,
		CreatedAt: sess.CreatedAt,
		Modes:     sess.Cache.Modes(),
	})
}

// handleDeleteSession drops the session and its cache.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.PathValue("id")); err != nil {
		s.errorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// acquire looks up the session and marks it busy for the duration of one flow.
func (s *Server) acquire(id string) (*session.Session, func(), error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, nil, err
	}
	release, err := sess.Acquire()
	if err != nil {
		return nil, nil, err
	}
	return sess, release, nil
}

// handleGenerate runs a first generation and replies with the result.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var body GenerateBody
	if err := decodeBody(w, r, schemas.GenerateRequest, &body); err != nil {
		s.errorResponse(w, err)
		return
	}

	sess, release, err := s.acquire(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	defer release()

	req, err := body.request(sess.ID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	result, err := s.runner.Generate(r.Context(), sess.Cache, req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.present(r, result))
}

// handleGenerateStream runs a first generation, streaming progress events over SSE.
func (s *Server) handleGenerateStream(w http.ResponseWriter, r *http.Request) {
	var body GenerateBody
	if err := decodeBody(w, r, schemas.GenerateRequest, &body); err != nil {
		s.errorResponse(w, err)
		return
	}

	sess, release, err := s.acquire(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	defer release()

	req, err := body.request(sess.ID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	req.OnProgress = func(event pipeline.ProgressEvent) {
		if err := sse.WriteEvent("progress", event); err != nil {
			s.log.Debug().Err(err).Msg("failed to write progress event")
		}
	}

	result, err := s.runner.Generate(r.Context(), sess.Cache, req)
	if err != nil {
		sse.WriteError(err)
		return
	}
	if err := sse.WriteEvent("result", s.present(r, result)); err != nil {
		s.log.Debug().Err(err).Msg("failed to write result event")
	}
}

// handleRegenerate generates again from the session's cached pair.
func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	var body RegenerateBody
	if err := decodeBody(w, r, schemas.RegenerateRequest, &body); err != nil {
		s.errorResponse(w, err)
		return
	}

	sess, release, err := s.acquire(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	defer release()

	req, err := body.request(sess.ID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	result, err := s.runner.Regenerate(r.Context(), sess.Cache, req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.present(r, result))
}

// present strips the composed prompt unless the caller asked for it.
func (s *Server) present(r *http.Request, result *pipeline.Result) *pipeline.Result {
	out := *result
	if show, _ := strconv.ParseBool(r.URL.Query().Get("show_prompt")); !show {
		out.Prompt = ""
	}
	return &out
}

// handleHistory lists recorded generations, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.jsonResponse(w, http.StatusNotImplemented, ErrorResponse{
			Error: "generation history is not configured",
			Kind:  types.KindInternal,
		})
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.errorResponse(w, types.NewPreconditionError("limit", "invalid limit %q", raw))
			return
		}
		limit = n
	}

	gens, err := s.history.ListGenerations(r.Context(), limit)
	if err != nil {
		s.errorResponse(w, fmt.Errorf("failed to list generations: %w", err))
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"generations": gens, "count": len(gens)})
}
