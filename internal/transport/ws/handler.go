package ws

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"triviarena/internal/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler streams live session snapshots to clients.
type Handler struct {
	manager *service.SessionManager
	log     zerolog.Logger
}

// NewHandler creates a new WebSocket handler.
func NewHandler(manager *service.SessionManager, log zerolog.Logger) *Handler {
	return &Handler{manager: manager, log: log}
}

// SessionWS handles GET /api/sessions/{id}/ws. It pushes a snapshot after
// every mutation and on each timer tick; the stream ends when the session
// is submitted or the client disconnects.
func (h *Handler) SessionWS(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	session, err := h.manager.Get(id)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	views, cancel := session.Subscribe()
	defer cancel()

	// Reader goroutine only detects client disconnects.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case view, ok := <-views:
			if !ok {
				return
			}
			if err := conn.WriteJSON(view); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
