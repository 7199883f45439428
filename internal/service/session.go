package service

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"triviarena/internal/model"
)

// Session is the in-memory quiz session state machine:
//
//	Loading -> Active -> {Submitted, Errored}
//
// All mutations are serialized under one mutex because the timer goroutine
// and HTTP handlers touch the same session. The score is maintained
// incrementally but always equals the number of answered questions whose
// current selection is the correct answer.
type Session struct {
	mu sync.Mutex

	id     string
	cfg    model.QuizConfig
	status model.SessionStatus
	err    error

	questions []model.Question
	current   int
	score     int
	answers   map[int]string
	timeLeft  int

	// options holds the shuffled answer order per question index, computed
	// once on first display so positions stay stable across renders.
	options map[int][]string
	rng     *rand.Rand

	result      *model.Result
	onSubmit    func(model.Result)
	subscribers map[chan model.SessionView]struct{}
}

// NewSession creates a session in the Loading state. The config must
// already be validated.
func NewSession(id string, cfg model.QuizConfig) *Session {
	return &Session{
		id:          id,
		cfg:         cfg,
		status:      model.SessionLoading,
		answers:     make(map[int]string),
		timeLeft:    cfg.TimerBudgetSeconds(),
		options:     make(map[int][]string),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		subscribers: make(map[chan model.SessionView]struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// SetRandSource overrides the shuffle source for deterministic tests.
func (s *Session) SetRandSource(src rand.Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng = rand.New(src)
}

// SetOnSubmit registers the single callback invoked with the Result when
// the session transitions to Submitted. The callback runs on its own
// goroutine so slow persistence cannot stall the timer.
func (s *Session) SetOnSubmit(fn func(model.Result)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSubmit = fn
}

// Activate transitions Loading -> Active with the fetched questions. An
// empty batch moves the session to Errored with ErrQuestionsUnavailable.
func (s *Session) Activate(questions []model.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != model.SessionLoading {
		return model.ErrInvalidState
	}
	if len(questions) == 0 {
		s.status = model.SessionErrored
		s.err = model.ErrQuestionsUnavailable
		return model.ErrQuestionsUnavailable
	}
	s.questions = questions
	s.status = model.SessionActive
	s.broadcastLocked()
	return nil
}

// Fail transitions Loading -> Errored, recording the fetch error.
func (s *Session) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != model.SessionLoading {
		return
	}
	s.status = model.SessionErrored
	s.err = err
}

// Err returns the error that moved the session to Errored, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// SelectAnswer records the answer for the current question. Scoring:
// +1 when the selection becomes the correct answer, -1 when a previously
// correct selection is changed to an incorrect one, no change when moving
// between incorrect answers. Re-selecting the identical answer is a no-op.
func (s *Session) SelectAnswer(answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != model.SessionActive {
		return model.ErrInvalidState
	}

	prev, answered := s.answers[s.current]
	if answered && prev == answer {
		return nil
	}
	s.answers[s.current] = answer

	correct := s.questions[s.current].CorrectAnswer
	wasCorrect := answered && prev == correct
	if answer == correct && !wasCorrect {
		s.score++
	} else if wasCorrect && answer != correct {
		s.score--
	}
	s.broadcastLocked()
	return nil
}

// Next advances to the following question, a no-op on the last one.
func (s *Session) Next() error {
	return s.move(1)
}

// Previous moves back one question, a no-op on the first one.
func (s *Session) Previous() error {
	return s.move(-1)
}

func (s *Session) move(delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != model.SessionActive {
		return model.ErrInvalidState
	}
	next := s.current + delta
	if next < 0 || next >= len(s.questions) {
		return nil
	}
	s.current = next
	s.broadcastLocked()
	return nil
}

// Tick decrements the countdown by one second, floored at zero. Reaching
// zero triggers exactly one auto-submit.
func (s *Session) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != model.SessionActive {
		return
	}
	if s.timeLeft > 0 {
		s.timeLeft--
	}
	if s.timeLeft == 0 {
		s.submitLocked(true)
		return
	}
	s.broadcastLocked()
}

// Submit finishes the session manually. A second submission, including a
// manual one racing the timer's auto-submit, fails with ErrInvalidState so
// exactly one Result is ever emitted.
func (s *Session) Submit() (model.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != model.SessionActive {
		return model.Result{}, model.ErrInvalidState
	}
	s.submitLocked(false)
	return *s.result, nil
}

func (s *Session) submitLocked(auto bool) {
	s.status = model.SessionSubmitted
	total := len(s.questions)
	res := model.Result{
		Name:          s.cfg.PlayerName,
		Score:         s.score,
		Total:         total,
		Percentage:    roundPercentage(s.score, total),
		TimeTaken:     s.cfg.TimerBudgetSeconds() - s.timeLeft,
		AutoSubmitted: auto,
	}
	s.result = &res

	// Final snapshot, then end all live subscriptions.
	view := s.viewLocked()
	for ch := range s.subscribers {
		deliver(ch, view)
		close(ch)
		delete(s.subscribers, ch)
	}

	if s.onSubmit != nil {
		go s.onSubmit(res)
	}
}

// Result returns the emitted result once the session is Submitted.
func (s *Session) Result() (model.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return model.Result{}, false
	}
	return *s.result, true
}

// Options returns the shuffled answer options for the current question.
// The order is computed once per question and cached so answer positions
// do not jitter between reads.
func (s *Session) Options() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != model.SessionActive && s.status != model.SessionSubmitted {
		return nil, model.ErrInvalidState
	}
	return s.optionsLocked(s.current), nil
}

func (s *Session) optionsLocked(idx int) []string {
	if cached, ok := s.options[idx]; ok {
		return cached
	}
	q := s.questions[idx]
	opts := make([]string, 0, len(q.IncorrectAnswers)+1)
	opts = append(opts, q.IncorrectAnswers...)
	opts = append(opts, q.CorrectAnswer)
	s.rng.Shuffle(len(opts), func(a, b int) {
		opts[a], opts[b] = opts[b], opts[a]
	})
	s.options[idx] = opts
	return opts
}

// Snapshot returns a read-only view of the session.
func (s *Session) Snapshot() model.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() model.SessionView {
	view := model.SessionView{
		ID:             s.id,
		Status:         s.status,
		CurrentIndex:   s.current,
		TotalQuestions: len(s.questions),
		AnsweredCount:  len(s.answers),
		Score:          s.score,
		TimeRemaining:  s.timeLeft,
	}
	if s.status == model.SessionActive || s.status == model.SessionSubmitted {
		view.Prompt = s.questions[s.current].Prompt
		view.Options = s.optionsLocked(s.current)
		view.SelectedAnswer = s.answers[s.current]
	}
	return view
}

// Subscribe returns a channel receiving a view after every mutation,
// starting with the current state. The channel is closed on submission;
// the caller must invoke cancel to avoid leaks otherwise.
func (s *Session) Subscribe() (<-chan model.SessionView, func()) {
	ch := make(chan model.SessionView, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	deliver(ch, s.viewLocked())
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked() {
	if len(s.subscribers) == 0 {
		return
	}
	view := s.viewLocked()
	for ch := range s.subscribers {
		deliver(ch, view)
	}
}

// deliver drops the oldest buffered view when the subscriber is slow so a
// stalled reader never blocks the session.
func deliver(ch chan model.SessionView, view model.SessionView) {
	select {
	case ch <- view:
	default:
		select {
		case <-ch:
		default:
		}
		ch <- view
	}
}

func roundPercentage(score, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(score)/float64(total)*100*100) / 100
}
