package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/curioapp/curio/internal/assistant"
	"github.com/curioapp/curio/internal/dispatch"
	"github.com/curioapp/curio/internal/domain"
	"github.com/curioapp/curio/internal/logger"
	"github.com/curioapp/curio/internal/store"
)

var (
	// ErrNotFound is returned for unknown session IDs.
	ErrNotFound = errors.New("session not found")

	// ErrBusy is returned when a submit arrives while a previous one is
	// still in flight. One dispatch cycle at a time keeps the store's
	// read-modify-write safe without locks across it.
	ErrBusy = errors.New("session is busy")
)

const greetingMessage = "Hi! Ask me about tiles, or tell me to bookmark the ones you like."

// session is the per-session state: the append-only message log, the
// busy flag, and the last-activity timestamp used for expiry.
type session struct {
	mu         sync.Mutex
	id         string
	messages   []domain.SessionMessage
	busy       bool
	lastActive time.Time
}

// Manager owns all live sessions and runs the full submit cycle:
// log user turn, obtain the assistant reply, dispatch it against the
// store, log the assistant turn.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*session

	store      store.Store
	dispatcher *dispatch.Dispatcher
	client     assistant.Client
	logger     logger.Logger
	now        func() time.Time
}

// NewManager creates a session manager.
func NewManager(st store.Store, d *dispatch.Dispatcher, client assistant.Client, log logger.Logger) *Manager {
	return &Manager{
		sessions:   make(map[string]*session),
		store:      st,
		dispatcher: d,
		client:     client,
		logger:     log,
		now:        time.Now,
	}
}

// WithClock overrides the manager clock. Used in tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Start opens a new session with a fresh message log. Session-scoped
// store state for the generated ID cannot pre-exist, so nothing is
// cleared; bookmarks and collections persist across sessions untouched.
func (m *Manager) Start(_ context.Context) string {
	now := m.now()
	s := &session{
		id:         uuid.NewString(),
		lastActive: now,
		messages: []domain.SessionMessage{
			domain.NewSessionMessage(domain.RoleAssistant, greetingMessage, nil, now),
		},
	}

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	m.logger.Info("session started", logger.String("session_id", s.id))
	return s.id
}

// End closes a session and drops its session-scoped store state.
func (m *Manager) End(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	_, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}

	if err := m.store.ClearSession(ctx, sessionID); err != nil {
		m.logger.Warn("failed to clear session state",
			logger.String("session_id", sessionID),
			logger.Error(err))
	}

	m.logger.Info("session ended", logger.String("session_id", sessionID))
	return nil
}

// Messages returns a copy of the session's message log.
func (m *Manager) Messages(sessionID string) ([]domain.SessionMessage, error) {
	s, err := m.get(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.SessionMessage, len(s.messages))
	copy(out, s.messages)
	return out, nil
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// SubmitUserMessage runs the full normalize -> dispatch -> persist ->
// log cycle for one user turn and returns the assistant message that
// was appended to the log.
//
// While a submit is in flight the session is busy and further submits
// are rejected with ErrBusy, so no two dispatch cycles ever race the
// store.
func (m *Manager) SubmitUserMessage(ctx context.Context, sessionID, text string) (domain.SessionMessage, error) {
	s, err := m.get(sessionID)
	if err != nil {
		return domain.SessionMessage{}, err
	}

	if err := s.acquire(m.now()); err != nil {
		return domain.SessionMessage{}, err
	}
	defer s.release()

	s.append(domain.NewSessionMessage(domain.RoleUser, text, nil, m.now()))

	resp, err := m.client.Send(ctx, sessionID, text)
	if err != nil {
		// Transport failure: the store stays untouched and a generic
		// failure notice goes into the log.
		m.logger.Warn("assistant call failed",
			logger.String("session_id", sessionID),
			logger.Error(err))
		failure := domain.NewSessionMessage(domain.RoleAssistant,
			"Sorry, I could not reach the catalog assistant. Please try again.", nil, m.now())
		s.append(failure)
		return failure, nil
	}

	result, err := m.dispatcher.Dispatch(ctx, sessionID, resp)
	if err != nil {
		m.logger.Error("dispatch failed",
			logger.String("session_id", sessionID),
			logger.Error(err))
		failure := domain.NewSessionMessage(domain.RoleAssistant,
			"Sorry, something went wrong while updating your bookmarks.", nil, m.now())
		s.append(failure)
		return failure, nil
	}

	reply := domain.NewSessionMessage(domain.RoleAssistant, result.Content, result.Products, m.now())
	s.append(reply)
	return reply, nil
}

// ExpireIdle drops sessions that have been inactive longer than maxIdle
// and clears their session-scoped store state. Returns the number of
// sessions expired.
func (m *Manager) ExpireIdle(ctx context.Context, maxIdle time.Duration) int {
	now := m.now()

	m.mu.Lock()
	var expired []string
	for id, s := range m.sessions {
		s.mu.Lock()
		idle := now.Sub(s.lastActive) > maxIdle && !s.busy
		s.mu.Unlock()
		if idle {
			expired = append(expired, id)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, id := range expired {
		if err := m.store.ClearSession(ctx, id); err != nil {
			m.logger.Warn("failed to clear expired session state",
				logger.String("session_id", id),
				logger.Error(err))
		}
		m.logger.Info("session expired", logger.String("session_id", id))
	}

	return len(expired)
}

func (m *Manager) get(sessionID string) (*session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (s *session) acquire(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return ErrBusy
	}
	s.busy = true
	s.lastActive = now
	return nil
}

func (s *session) release() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

func (s *session) append(msg domain.SessionMessage) {
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.lastActive = msg.Timestamp
	s.mu.Unlock()
}
