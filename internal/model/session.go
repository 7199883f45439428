package model

// SessionStatus is the lifecycle state of a quiz session.
type SessionStatus string

const (
	SessionLoading   SessionStatus = "loading"
	SessionActive    SessionStatus = "active"
	SessionSubmitted SessionStatus = "submitted"
	SessionErrored   SessionStatus = "errored"
)

// Result is emitted exactly once when a session is submitted, manually or
// by timer expiry.
type Result struct {
	Name          string  `json:"name"`
	Score         int     `json:"score"`
	Total         int     `json:"total"`
	Percentage    float64 `json:"percentage"`
	TimeTaken     int     `json:"timeTaken"`
	AutoSubmitted bool    `json:"autoSubmitted"`
}

// SessionView is a read-only snapshot of a session for transport layers.
type SessionView struct {
	ID             string        `json:"id"`
	Status         SessionStatus `json:"status"`
	CurrentIndex   int           `json:"currentIndex"`
	TotalQuestions int           `json:"totalQuestions"`
	Prompt         string        `json:"prompt,omitempty"`
	Options        []string      `json:"options,omitempty"`
	SelectedAnswer string        `json:"selectedAnswer,omitempty"`
	AnsweredCount  int           `json:"answeredCount"`
	Score          int           `json:"score"`
	TimeRemaining  int           `json:"timeRemaining"`
}
