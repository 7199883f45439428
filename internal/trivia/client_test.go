package trivia

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"triviarena/internal/model"
)

const questionsBody = `{
	"response_code": 0,
	"results": [
		{
			"category": "General Knowledge",
			"difficulty": "easy",
			"question": "What does &quot;HTTP&quot; stand for?",
			"correct_answer": "HyperText Transfer Protocol",
			"incorrect_answers": ["Hyper Transfer Text Protocol", "High Tension Testing Procedure", "Home Tool Transfer Protocol"]
		}
	]
}`

func testPolicy() Policy {
	p := DefaultPolicy()
	p.Delay = func(int) time.Duration { return 0 }
	return p
}

func TestFetchQuestionsDecodesEntities(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("type"); got != "multiple" {
			t.Errorf("expected type=multiple, got %q", got)
		}
		w.Write([]byte(questionsBody))
	}))
	defer upstream.Close()

	client := NewClientWithPolicy(upstream.URL, testPolicy())
	questions, err := client.FetchQuestions(context.Background(), 5, 9, "easy")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(questions))
	}
	if questions[0].Prompt != `What does "HTTP" stand for?` {
		t.Fatalf("entities not decoded: %q", questions[0].Prompt)
	}
	if questions[0].CorrectAnswer != "HyperText Transfer Protocol" {
		t.Fatalf("unexpected correct answer %q", questions[0].CorrectAnswer)
	}
	if len(questions[0].IncorrectAnswers) != 3 {
		t.Fatalf("expected 3 incorrect answers, got %d", len(questions[0].IncorrectAnswers))
	}
}

func TestFetchQuestionsRetriesRateLimit(t *testing.T) {
	var calls int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(questionsBody))
	}))
	defer upstream.Close()

	client := NewClientWithPolicy(upstream.URL, testPolicy())
	if _, err := client.FetchQuestions(context.Background(), 5, 9, "easy"); err != nil {
		t.Fatalf("expected recovery after rate limiting, got %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Fatalf("expected 3 upstream calls, got %d", n)
	}
}

func TestFetchQuestionsExhaustsRetryBudget(t *testing.T) {
	var calls int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer upstream.Close()

	client := NewClientWithPolicy(upstream.URL, testPolicy())
	_, err := client.FetchQuestions(context.Background(), 5, 9, "easy")
	if !errors.Is(err, model.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 5 {
		t.Fatalf("expected 5 attempts, got %d", n)
	}
}

func TestFetchQuestionsFailsFastOnServerError(t *testing.T) {
	var calls int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	client := NewClientWithPolicy(upstream.URL, testPolicy())
	_, err := client.FetchQuestions(context.Background(), 5, 9, "easy")
	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.Is(err, model.ErrRateLimited) || errors.Is(err, model.ErrQuestionsUnavailable) {
		t.Fatalf("server error misclassified: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected no retry on server error, got %d calls", n)
	}
}

func TestFetchQuestionsEmptyResults(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response_code": 1, "results": []}`))
	}))
	defer upstream.Close()

	client := NewClientWithPolicy(upstream.URL, testPolicy())
	_, err := client.FetchQuestions(context.Background(), 5, 9, "easy")
	if !errors.Is(err, model.ErrQuestionsUnavailable) {
		t.Fatalf("expected ErrQuestionsUnavailable, got %v", err)
	}
}

func TestFetchCategories(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"trivia_categories": [{"id": 9, "name": "General Knowledge"}, {"id": 18, "name": "Science: Computers"}]}`))
	}))
	defer upstream.Close()

	client := NewClientWithPolicy(upstream.URL, testPolicy())
	categories, err := client.FetchCategories(context.Background())
	if err != nil {
		t.Fatalf("fetch categories failed: %v", err)
	}
	if len(categories) != 2 || categories[0].ID != 9 {
		t.Fatalf("unexpected categories %+v", categories)
	}
}
