package http

import (
	"encoding/json"
	"net/http"

	"millionaire-quiz/internal/app"
	"millionaire-quiz/internal/domain"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type WSHandler struct {
	service         *app.GameService
	defaultConfigID string
	upgrader        websocket.Upgrader
}

func NewWSHandler(service *app.GameService, defaultConfigID string, checkOrigin func(r *http.Request) bool) *WSHandler {
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &WSHandler{
		service:         service,
		defaultConfigID: defaultConfigID,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

type inboundMessage struct {
	Type    domain.ActionType `json:"type"`
	Payload json.RawMessage   `json:"payload"`
}

type answerPayload struct {
	AnswerID domain.AnswerID `json:"answerId"`
}

type joinedPayload struct {
	SessionID string      `json:"sessionId"`
	View      domain.View `json:"view"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and plays one session over the
// connection. ?sessionId attaches to an existing session; otherwise a new one
// is started for ?configId and ended when the socket closes.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	configID := r.URL.Query().Get("configId")
	if configID == "" {
		configID = h.defaultConfigID
	}
	if sessionID == "" && configID == "" {
		http.Error(w, "missing configId or sessionId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	owned := sessionID == ""
	if owned {
		session, err := h.service.Start(r.Context(), configID)
		if err != nil {
			_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
			return
		}
		sessionID = session.ID()
		defer h.service.End(r.Context(), sessionID)
	}

	view, err := h.service.View(r.Context(), sessionID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	updates, cancel, err := h.service.Subscribe(r.Context(), sessionID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Only the writer goroutine touches the connection for writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Warn().Err(err).Str("session", sessionID).Msg("ws write error")
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "joined", Payload: joinedPayload{SessionID: sessionID, View: view}}

	go func() {
		defer close(updatesDone)
		for {
			select {
			case ev, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- eventMessage(ev):
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		var payload answerPayload
		if len(inbound.Payload) > 0 {
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid payload"}}
				continue
			}
		}
		action := domain.Action{Type: inbound.Type, AnswerID: payload.AnswerID}
		if _, err := h.service.Apply(r.Context(), sessionID, action); err != nil {
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func eventMessage(ev domain.Event) outboundMessage[any] {
	if ev.Type == domain.EventNavigate {
		return outboundMessage[any]{Type: string(ev.Type), Payload: ev.Navigation}
	}
	return outboundMessage[any]{Type: string(ev.Type), Payload: ev.View}
}
