package model

import (
	"github.com/go-playground/validator/v10"
)

// Difficulty levels accepted by the trivia provider.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

var validate = validator.New()

// QuizConfig is the player-supplied quiz setup. It is validated before a
// session starts and immutable once the session begins.
type QuizConfig struct {
	PlayerName    string `json:"name" validate:"required"`
	CategoryID    int    `json:"category" validate:"required"`
	Difficulty    string `json:"difficulty" validate:"required,oneof=easy medium hard"`
	QuestionCount int    `json:"amount" validate:"required,min=5,max=20"`
}

// Validate checks the config against the allowed ranges.
func (c QuizConfig) Validate() error {
	return validate.Struct(c)
}

// TimerBudgetSeconds is the countdown budget for a session: one minute per
// configured question.
func (c QuizConfig) TimerBudgetSeconds() int {
	return 60 * c.QuestionCount
}
