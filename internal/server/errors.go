package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/jonathan/postsmith/internal/llm"
	"github.com/jonathan/postsmith/internal/schemas"
	"github.com/jonathan/postsmith/internal/session"
	"github.com/jonathan/postsmith/internal/types"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error   string               `json:"error"`
	Kind    types.Kind           `json:"kind"`
	Details []schemas.FieldError `json:"details,omitempty"`
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrBusy):
		return http.StatusConflict
	}

	var gen *llm.GenerationError
	if errors.As(err, &gen) && gen.Timeout {
		return http.StatusGatewayTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}

	switch types.Classify(err) {
	case types.KindPrecondition, types.KindUnsupportedProvider:
		return http.StatusBadRequest
	case types.KindFetch, types.KindGeneration:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(err error) ErrorResponse {
	kind := types.Classify(err)
	switch {
	case errors.Is(err, session.ErrNotFound):
		kind = "not_found"
	case errors.Is(err, session.ErrBusy):
		kind = "conflict"
	}

	resp := ErrorResponse{Error: types.Message(err), Kind: kind}
	var verr *schemas.ValidationError
	if errors.As(err, &verr) {
		resp.Error = "request body does not match schema"
		resp.Details = verr.Errors
	}
	return resp
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Int("status", status).Msg("request failed")
	}
	s.jsonResponse(w, status, errorBody(err))
}
