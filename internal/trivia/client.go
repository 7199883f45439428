package trivia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"time"

	"triviarena/internal/model"
)

// Client talks to the Open Trivia Database API. It is a pure translation
// and resilience layer: no caching, every call is a fresh upstream request.
type Client struct {
	baseURL    string
	httpClient *http.Client
	policy     Policy
}

// NewClient creates a trivia client for the given base URL
// (e.g. https://opentdb.com).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		policy:     DefaultPolicy(),
	}
}

// NewClientWithPolicy overrides the retry policy, used in tests to avoid
// real delays.
func NewClientWithPolicy(baseURL string, p Policy) *Client {
	c := NewClient(baseURL)
	c.policy = p
	return c
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("opentdb: unexpected status %d", e.code)
}

// IsRateLimited reports whether err is an upstream HTTP 429 response.
func IsRateLimited(err error) bool {
	var se *statusError
	return errors.As(err, &se) && se.code == http.StatusTooManyRequests
}

type questionsResponse struct {
	ResponseCode int `json:"response_code"`
	Results      []struct {
		Category         string   `json:"category"`
		Difficulty       string   `json:"difficulty"`
		Question         string   `json:"question"`
		CorrectAnswer    string   `json:"correct_answer"`
		IncorrectAnswers []string `json:"incorrect_answers"`
	} `json:"results"`
}

type categoriesResponse struct {
	TriviaCategories []model.Category `json:"trivia_categories"`
}

// FetchQuestions requests a batch of multiple-choice questions. Rate-limit
// responses are retried under the client's policy; any other failure is
// returned immediately. A non-zero upstream response code or an empty
// result set yields model.ErrQuestionsUnavailable.
func (c *Client) FetchQuestions(ctx context.Context, amount, categoryID int, difficulty string) ([]model.Question, error) {
	endpoint := fmt.Sprintf("%s/api.php?amount=%d&category=%d&difficulty=%s&type=multiple",
		c.baseURL, amount, categoryID, url.QueryEscape(difficulty))

	var payload questionsResponse
	err := Do(ctx, c.policy, func() error {
		return c.getJSON(ctx, endpoint, &payload)
	})
	if err != nil {
		if IsRateLimited(err) {
			return nil, fmt.Errorf("fetch questions: %w", model.ErrRateLimited)
		}
		return nil, fmt.Errorf("fetch questions: %w", err)
	}

	if payload.ResponseCode != 0 || len(payload.Results) == 0 {
		return nil, fmt.Errorf("fetch questions (response code %d): %w",
			payload.ResponseCode, model.ErrQuestionsUnavailable)
	}

	questions := make([]model.Question, len(payload.Results))
	for i, raw := range payload.Results {
		q := model.Question{
			Category:         raw.Category,
			Difficulty:       raw.Difficulty,
			Prompt:           html.UnescapeString(raw.Question),
			CorrectAnswer:    html.UnescapeString(raw.CorrectAnswer),
			IncorrectAnswers: make([]string, len(raw.IncorrectAnswers)),
		}
		for j, a := range raw.IncorrectAnswers {
			q.IncorrectAnswers[j] = html.UnescapeString(a)
		}
		questions[i] = q
	}
	return questions, nil
}

// FetchCategories lists the provider's trivia categories.
func (c *Client) FetchCategories(ctx context.Context) ([]model.Category, error) {
	var payload categoriesResponse
	err := Do(ctx, c.policy, func() error {
		return c.getJSON(ctx, c.baseURL+"/api_category.php", &payload)
	})
	if err != nil {
		if IsRateLimited(err) {
			return nil, fmt.Errorf("fetch categories: %w", model.ErrRateLimited)
		}
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	return payload.TriviaCategories, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &statusError{code: resp.StatusCode}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
