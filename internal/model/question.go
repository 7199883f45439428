package model

// Question is one multiple-choice question as fetched from the trivia
// provider. HTML entities are already decoded by the trivia client; the
// struct is immutable for the lifetime of the session that owns it.
type Question struct {
	Category         string   `json:"category,omitempty"`
	Difficulty       string   `json:"difficulty,omitempty"`
	Prompt           string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

// Category is a trivia category as listed by the provider.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
