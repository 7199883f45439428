package handler

import (
	"errors"
	"net/http"
	"strconv"

	"triviarena/internal/model"
	"triviarena/internal/trivia"
)

// QuizHandler proxies question and category requests to the trivia provider.
type QuizHandler struct {
	trivia *trivia.Client
}

// NewQuizHandler creates a new quiz handler.
func NewQuizHandler(client *trivia.Client) *QuizHandler {
	return &QuizHandler{trivia: client}
}

// GetQuestions handles GET /api/quiz?amount&category&difficulty
func (h *QuizHandler) GetQuestions(w http.ResponseWriter, r *http.Request) {
	amount, err := strconv.Atoi(r.URL.Query().Get("amount"))
	if err != nil || amount < 5 || amount > 20 {
		writeError(w, http.StatusBadRequest, "amount must be between 5 and 20")
		return
	}
	category, err := strconv.Atoi(r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "category must be a number")
		return
	}
	difficulty := r.URL.Query().Get("difficulty")

	questions, err := h.trivia.FetchQuestions(r.Context(), amount, category, difficulty)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrQuestionsUnavailable):
			writeError(w, http.StatusBadRequest, "No quiz questions found. Please try different options.")
		case errors.Is(err, model.ErrRateLimited):
			writeError(w, http.StatusBadRequest, "Trivia provider is rate limiting requests. Please try again shortly.")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to fetch quiz data.")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"results": questions})
}

// GetCategories handles GET /api/categories
func (h *QuizHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.trivia.FetchCategories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch categories.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"trivia_categories": categories})
}
