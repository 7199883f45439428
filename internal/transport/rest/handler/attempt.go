package handler

import (
	"encoding/json"
	"net/http"

	"triviarena/internal/model"
	"triviarena/internal/service"
)

// AttemptHandler handles direct attempt persistence and the leaderboard.
type AttemptHandler struct {
	leaderboard *service.LeaderboardService
}

// NewAttemptHandler creates a new attempt handler.
func NewAttemptHandler(leaderboard *service.LeaderboardService) *AttemptHandler {
	return &AttemptHandler{leaderboard: leaderboard}
}

// CreateAttemptRequest is the request body for saving an attempt. The
// percentage is recomputed server-side from score/total.
type CreateAttemptRequest struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	Total int    `json:"total"`
}

// Create handles POST /api/attempts
func (h *AttemptHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Total <= 0 || req.Score < 0 || req.Score > req.Total {
		writeError(w, http.StatusBadRequest, "invalid attempt payload")
		return
	}

	if _, err := h.leaderboard.RecordAttempt(r.Context(), req.Name, req.Score, req.Total); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save attempt")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Attempt saved successfully"})
}

// Top handles GET /api/attempts/top
func (h *AttemptHandler) Top(w http.ResponseWriter, r *http.Request) {
	entries, err := h.leaderboard.TopAttempts(r.Context(), service.DefaultTopLimit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch leaderboard")
		return
	}
	if entries == nil {
		entries = []model.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
