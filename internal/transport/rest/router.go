package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"triviarena/internal/service"
	"triviarena/internal/transport/rest/handler"
	"triviarena/internal/transport/ws"
	"triviarena/internal/trivia"
)

// Container holds all dependencies for the router
type Container struct {
	TriviaClient   *trivia.Client
	SessionManager *service.SessionManager
	Leaderboard    *service.LeaderboardService
	Logger         zerolog.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	quizHandler := handler.NewQuizHandler(c.TriviaClient)
	attemptHandler := handler.NewAttemptHandler(c.Leaderboard)
	sessionHandler := handler.NewSessionHandler(c.SessionManager)
	wsHandler := ws.NewHandler(c.SessionManager, c.Logger)

	r.Use(corsMiddleware)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/quiz", quizHandler.GetQuestions).Methods("GET", "OPTIONS")
	api.HandleFunc("/categories", quizHandler.GetCategories).Methods("GET", "OPTIONS")

	api.HandleFunc("/attempts", attemptHandler.Create).Methods("POST", "OPTIONS")
	api.HandleFunc("/attempts/top", attemptHandler.Top).Methods("GET", "OPTIONS")

	api.HandleFunc("/sessions", sessionHandler.Create).Methods("POST", "OPTIONS")
	api.HandleFunc("/sessions/{id}", sessionHandler.Get).Methods("GET", "OPTIONS")
	api.HandleFunc("/sessions/{id}", sessionHandler.Delete).Methods("DELETE", "OPTIONS")
	api.HandleFunc("/sessions/{id}/answer", sessionHandler.Answer).Methods("POST", "OPTIONS")
	api.HandleFunc("/sessions/{id}/next", sessionHandler.Next).Methods("POST", "OPTIONS")
	api.HandleFunc("/sessions/{id}/previous", sessionHandler.Previous).Methods("POST", "OPTIONS")
	api.HandleFunc("/sessions/{id}/submit", sessionHandler.Submit).Methods("POST", "OPTIONS")
	api.HandleFunc("/sessions/{id}/ws", wsHandler.SessionWS).Methods("GET")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
