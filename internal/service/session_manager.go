package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"triviarena/internal/model"
)

// QuestionFetcher loads a batch of questions for a session.
type QuestionFetcher interface {
	FetchQuestions(ctx context.Context, amount, categoryID int, difficulty string) ([]model.Question, error)
}

// AttemptRecorder persists a completed attempt.
type AttemptRecorder interface {
	RecordAttempt(ctx context.Context, name string, score, total int) (*model.Attempt, error)
}

type liveSession struct {
	session *Session
	stop    chan struct{}
	once    sync.Once
}

func (l *liveSession) stopTimer() {
	l.once.Do(func() { close(l.stop) })
}

// SessionManager owns all live sessions: it is the single place a session
// is constructed, which guarantees the upstream fetch happens at most once
// per session, and it runs the one-second ticker driving each countdown.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*liveSession

	fetcher  QuestionFetcher
	recorder AttemptRecorder
	interval time.Duration
	log      zerolog.Logger
}

// NewSessionManager creates a manager ticking sessions once per second.
func NewSessionManager(fetcher QuestionFetcher, recorder AttemptRecorder, log zerolog.Logger) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*liveSession),
		fetcher:  fetcher,
		recorder: recorder,
		interval: time.Second,
		log:      log,
	}
}

// SetTickInterval overrides the timer period, used in tests.
func (m *SessionManager) SetTickInterval(d time.Duration) {
	m.interval = d
}

// Start validates the config, fetches questions exactly once and activates
// a new session with a running countdown. Fetch failures never produce a
// registered session.
func (m *SessionManager) Start(ctx context.Context, cfg model.QuizConfig) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid quiz config: %w", err)
	}

	session := NewSession("s_"+uuid.New().String()[:8], cfg)

	questions, err := m.fetcher.FetchQuestions(ctx, cfg.QuestionCount, cfg.CategoryID, cfg.Difficulty)
	if err != nil {
		session.Fail(err)
		return nil, err
	}
	if err := session.Activate(questions); err != nil {
		return nil, err
	}

	live := &liveSession{session: session, stop: make(chan struct{})}
	session.SetOnSubmit(func(res model.Result) {
		live.stopTimer()
		m.record(res)
	})

	m.mu.Lock()
	m.sessions[session.ID()] = live
	m.mu.Unlock()

	go m.runTimer(live)

	m.log.Info().
		Str("session", session.ID()).
		Str("player", cfg.PlayerName).
		Int("questions", len(questions)).
		Msg("session started")
	return session, nil
}

func (m *SessionManager) runTimer(live *liveSession) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			live.session.Tick()
		case <-live.stop:
			return
		}
	}
}

// record persists the attempt on its own goroutine already (the submit
// callback is async); failures are logged and never block the result.
func (m *SessionManager) record(res model.Result) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := m.recorder.RecordAttempt(ctx, res.Name, res.Score, res.Total); err != nil {
		m.log.Error().Err(err).Str("player", res.Name).Msg("failed to record attempt")
		return
	}
	m.log.Info().
		Str("player", res.Name).
		Int("score", res.Score).
		Int("total", res.Total).
		Bool("auto", res.AutoSubmitted).
		Msg("attempt recorded")
}

// Get returns a live session by id.
func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	live, ok := m.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return live.session, nil
}

// Submit finishes a session manually and returns its result.
func (m *SessionManager) Submit(id string) (model.Result, error) {
	session, err := m.Get(id)
	if err != nil {
		return model.Result{}, err
	}
	return session.Submit()
}

// Teardown cancels the session's timer and removes it. Discarding a
// session without tearing it down would leak a ticking goroutine.
func (m *SessionManager) Teardown(id string) error {
	m.mu.Lock()
	live, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return model.ErrSessionNotFound
	}
	live.stopTimer()
	return nil
}

// Shutdown stops every live session timer.
func (m *SessionManager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, live := range m.sessions {
		live.stopTimer()
		delete(m.sessions, id)
	}
}
