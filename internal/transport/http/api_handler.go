package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"millionaire-quiz/internal/app"
	"millionaire-quiz/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// APIHandler exposes game sessions over plain JSON requests.
type APIHandler struct {
	service *app.GameService
}

func NewAPIHandler(service *app.GameService) *APIHandler {
	return &APIHandler{service: service}
}

type startRequest struct {
	ConfigID string `json:"configId"`
}

type sessionResponse struct {
	SessionID string      `json:"sessionId"`
	View      domain.View `json:"view"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *APIHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	payload, err := decode[startRequest](r.Body)
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if payload.ConfigID == "" {
		writeError(w, fmt.Errorf("%w: configId is required", errBadRequest))
		return
	}
	session, err := h.service.Start(r.Context(), payload.ConfigID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{SessionID: session.ID(), View: session.Sequencer().View()})
}

func (h *APIHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.View(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *APIHandler) ApplyAction(w http.ResponseWriter, r *http.Request) {
	action, err := decode[domain.Action](r.Body)
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	view, err := h.service.Apply(r.Context(), chi.URLParam(r, "sessionID"), action)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *APIHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if _, err := h.service.Session(sessionID); err != nil {
		writeError(w, err)
		return
	}
	h.service.End(r.Context(), sessionID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) Ladder(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.Ladder(r.Context(), chi.URLParam(r, "configID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

var errBadRequest = errors.New("bad request")

func decode[T any](body io.Reader) (T, error) {
	var payload T
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		return payload, err
	}
	return payload, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("write response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrConfigNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrGameFinished), errors.Is(err, domain.ErrGameOver),
		errors.Is(err, domain.ErrNotAnsweredCorrectly):
		return http.StatusConflict
	case errors.Is(err, errBadRequest), app.IsInvariantViolation(err),
		errors.Is(err, domain.ErrUnknownAction), errors.Is(err, domain.ErrSelectionMode),
		errors.Is(err, domain.ErrEmptySelection):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidConfig):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
