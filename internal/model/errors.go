package model

import "errors"

// Sentinel errors shared across the service. Callers match on them with
// errors.Is; the transport layer maps them to HTTP status codes.
var (
	// ErrQuestionsUnavailable means the trivia provider returned no usable
	// questions for the requested filters.
	ErrQuestionsUnavailable = errors.New("no questions available")

	// ErrRateLimited means the trivia provider kept responding with HTTP 429
	// until the retry budget was spent.
	ErrRateLimited = errors.New("trivia provider rate limited")

	// ErrInvalidState means a session operation was attempted outside the
	// state that allows it.
	ErrInvalidState = errors.New("invalid session state")

	// ErrSessionNotFound means no live session exists for the given id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrPersistence means an attempt could not be stored or the leaderboard
	// could not be loaded.
	ErrPersistence = errors.New("persistence failure")
)
