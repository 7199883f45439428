package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"triviarena/internal/model"
	"triviarena/internal/service"
)

// SessionHandler exposes the quiz session engine over REST.
type SessionHandler struct {
	manager *service.SessionManager
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(manager *service.SessionManager) *SessionHandler {
	return &SessionHandler{manager: manager}
}

// Create handles POST /api/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var cfg model.QuizConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.manager.Start(r.Context(), cfg)
	if err != nil {
		var verr validator.ValidationErrors
		switch {
		case errors.As(err, &verr):
			writeError(w, http.StatusBadRequest, "invalid quiz config: "+verr.Error())
		case errors.Is(err, model.ErrQuestionsUnavailable):
			writeError(w, http.StatusBadRequest, "No quiz questions found. Please try different options.")
		case errors.Is(err, model.ErrRateLimited):
			writeError(w, http.StatusTooManyRequests, "Trivia provider is rate limiting requests. Please try again shortly.")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to start quiz session.")
		}
		return
	}

	writeJSON(w, http.StatusCreated, session.Snapshot())
}

// Get handles GET /api/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, session.Snapshot())
}

// AnswerRequest is the request body for selecting an answer.
type AnswerRequest struct {
	Answer string `json:"answer"`
}

// Answer handles POST /api/sessions/{id}/answer
func (h *SessionHandler) Answer(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := session.SelectAnswer(req.Answer); err != nil {
		writeError(w, http.StatusConflict, "session is not active")
		return
	}
	writeJSON(w, http.StatusOK, session.Snapshot())
}

// Next handles POST /api/sessions/{id}/next
func (h *SessionHandler) Next(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, (*service.Session).Next)
}

// Previous handles POST /api/sessions/{id}/previous
func (h *SessionHandler) Previous(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, (*service.Session).Previous)
}

func (h *SessionHandler) navigate(w http.ResponseWriter, r *http.Request, move func(*service.Session) error) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if err := move(session); err != nil {
		writeError(w, http.StatusConflict, "session is not active")
		return
	}
	writeJSON(w, http.StatusOK, session.Snapshot())
}

// Submit handles POST /api/sessions/{id}/submit
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	result, err := h.manager.Submit(id)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrSessionNotFound):
			writeError(w, http.StatusNotFound, "session not found")
		case errors.Is(err, model.ErrInvalidState):
			writeError(w, http.StatusConflict, "session already submitted")
		default:
			writeError(w, http.StatusInternalServerError, "failed to submit session")
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Delete handles DELETE /api/sessions/{id}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.manager.Teardown(id); err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) lookup(w http.ResponseWriter, r *http.Request) (*service.Session, bool) {
	id := mux.Vars(r)["id"]
	session, err := h.manager.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return session, true
}
