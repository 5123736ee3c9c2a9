package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"quiz-session-service/internal/app"
	"quiz-session-service/internal/domain"
)

// WSHandler owns live session sockets: one handshake, then two loops per
// connection until either side closes.
type WSHandler struct {
	service  *app.SessionService
	upgrader websocket.Upgrader
	log      *slog.Logger
}

func NewWSHandler(service *app.SessionService, log *slog.Logger) *WSHandler {
	if log == nil {
		log = slog.Default()
	}
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// clientMessage is the only inbound frame shape the protocol defines: an
// Auth message with an optional credential.
type clientMessage struct {
	Type  string  `json:"type"`
	Value *string `json:"value"`
}

// ServeWS upgrades the request and runs the connection to completion.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "missing session id", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// Handshake: the first frame classifies the connection. A socket error
	// here ends the connection; a malformed frame downgrades to participant.
	_, raw, err := conn.ReadMessage()
	if err != nil {
		return
	}
	role := domain.ReceiverParticipant
	var auth clientMessage
	if err := json.Unmarshal(raw, &auth); err == nil && auth.Type == "Auth" {
		role = h.service.ResolveRole(r.Context(), sessionID, auth.Value)
	} else {
		h.log.Debug("first frame was not auth", "session", sessionID)
	}

	// All writes to the socket go through one channel so the ready notice
	// and forwarded events are never interleaved.
	send := make(chan domain.Event, 16)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for ev := range send {
			if err := conn.WriteJSON(ev); err != nil {
				h.log.Debug("ws write error", "session", sessionID, "error", err)
				return
			}
		}
	}()

	send <- domain.ReadyEvent(role)

	events, cancel := h.service.Hub().Subscribe(sessionID)
	defer cancel()

	closeSignals := make(chan struct{})
	forwardDone := make(chan struct{})
	go func() {
		defer close(forwardDone)
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				if ev.HostOnly() && role != domain.ReceiverHost {
					continue
				}
				select {
				case send <- ev:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	// Inbound loop: no further client messages are defined, so frames are
	// read and discarded until the socket closes or errors.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	close(closeSignals)
	<-forwardDone
	close(send)
	<-writerDone
}
