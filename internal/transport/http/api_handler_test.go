package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"millionaire-quiz/internal/app"
	"millionaire-quiz/internal/domain"
	"millionaire-quiz/internal/infra/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSessionLifecycle(t *testing.T) {
	router := NewRouter(newTestService(), RouterOptions{})

	rec := doJSON(t, router, http.MethodPost, "/api/sessions", map[string]string{"configId": "final"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var started sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &started))
	require.NotEmpty(t, started.SessionID)
	assert.Equal(t, "last", started.View.StepID)
	assert.Equal(t, "A", started.View.Answers[0].Letter)

	path := "/api/sessions/" + started.SessionID
	rec = doJSON(t, router, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, path+"/actions", domain.Action{Type: domain.ActionOpenAmounts})
	require.Equal(t, http.StatusOK, rec.Code)
	var view domain.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.True(t, view.AmountsOpen)

	// A wrong answer on the only step ends the game; the session is reset.
	rec = doJSON(t, router, http.MethodPost, path+"/actions", domain.Action{Type: domain.ActionAnswer, AnswerID: "y"})
	require.Equal(t, http.StatusOK, rec.Code)
	view = domain.View{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, domain.StatusInProgress, view.Status)
	assert.Equal(t, domain.RouteGameOver, view.Route)
	assert.False(t, view.Locked)

	// The game-over screen has no answers to click until the player starts again.
	rec = doJSON(t, router, http.MethodPost, path+"/actions", domain.Action{Type: domain.ActionAnswer, AnswerID: "x"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = doJSON(t, router, http.MethodPost, path+"/actions", domain.Action{Type: domain.ActionTryAgain})
	require.Equal(t, http.StatusOK, rec.Code)
	view = domain.View{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, domain.RoutePlay, view.Route)
	assert.Equal(t, 0, view.StepIndex)

	rec = doJSON(t, router, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, router, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = doJSON(t, router, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLockedInputIsIgnored(t *testing.T) {
	// The reveal never completes, so the session stays locked.
	pending := app.SchedulerFunc(func(time.Duration, func()) {})
	configs := memory.NewConfigRepository(memory.NewStaticConfigLoader(sampleConfigs()), time.Minute)
	router := NewRouter(app.NewGameService(memory.NewSessionStore(), configs, app.WithScheduler(pending)), RouterOptions{})

	rec := doJSON(t, router, http.MethodPost, "/api/sessions", map[string]string{"configId": "final"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var started sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &started))
	path := "/api/sessions/" + started.SessionID + "/actions"

	rec = doJSON(t, router, http.MethodPost, path, domain.Action{Type: domain.ActionAnswer, AnswerID: "x"})
	require.Equal(t, http.StatusOK, rec.Code)

	for _, action := range []domain.Action{
		{Type: domain.ActionAnswer, AnswerID: "y"},
		{Type: domain.ActionOpenAmounts},
		{Type: domain.ActionTryAgain},
	} {
		rec = doJSON(t, router, http.MethodPost, path, action)
		require.Equal(t, http.StatusOK, rec.Code, action.Type)
		var view domain.View
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
		assert.True(t, view.Locked, action.Type)
		assert.Equal(t, domain.RevealCorrect, view.Reveal, action.Type)
		assert.False(t, view.AmountsOpen, action.Type)
	}
}

func TestAPIErrors(t *testing.T) {
	router := NewRouter(newTestService(), RouterOptions{})

	rec := doJSON(t, router, http.MethodPost, "/api/sessions", map[string]string{"configId": "nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/sessions", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/sessions", map[string]any{"configId": "final", "extra": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/sessions", map[string]string{"configId": "final"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var started sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &started))
	path := "/api/sessions/" + started.SessionID + "/actions"

	rec = doJSON(t, router, http.MethodPost, path, domain.Action{Type: domain.ActionAnswer, AnswerID: "zz"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = doJSON(t, router, http.MethodPost, path, domain.Action{Type: domain.ActionSubmit})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = doJSON(t, router, http.MethodPost, path, domain.Action{Type: "jump"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = doJSON(t, router, http.MethodPost, "/api/sessions/missing/actions", domain.Action{Type: domain.ActionSubmit})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLadderEndpoint(t *testing.T) {
	router := NewRouter(newTestService(), RouterOptions{})

	rec := doJSON(t, router, http.MethodGet, "/api/configs/final/ladder", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []domain.AmountView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, domain.AmountActive, rows[0].State)
	assert.Contains(t, rows[0].Label, "1,000")

	rec = doJSON(t, router, http.MethodGet, "/api/configs/nope/ladder", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthz(t *testing.T) {
	router := NewRouter(newTestService(), RouterOptions{})
	rec := doJSON(t, router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: domain.ErrSessionNotFound, want: http.StatusNotFound},
		{err: fmt.Errorf("wrap: %w", domain.ErrConfigNotFound), want: http.StatusNotFound},
		{err: domain.ErrGameFinished, want: http.StatusConflict},
		{err: domain.ErrGameOver, want: http.StatusConflict},
		{err: domain.ErrAnswerNotFound, want: http.StatusBadRequest},
		{err: domain.ErrEmptySelection, want: http.StatusBadRequest},
		{err: fmt.Errorf("load: %w", domain.ErrInvalidConfig), want: http.StatusUnprocessableEntity},
		{err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://play.example"})
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, check(req))
	req.Header.Set("Origin", "https://play.example")
	assert.True(t, check(req))
	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(req))
	assert.True(t, originChecker([]string{"*"})(req))
}
