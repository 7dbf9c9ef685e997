package session

import (
	"sync"
	"time"
)

// Manager is a TTL-bound in-memory session store keyed by Telegram user ID.
// All methods are safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	sessions map[int64]Session
	ttl      time.Duration
	now      func() time.Time
}

// Option customizes a Manager.
type Option func(*Manager)

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager constructs a Manager whose sessions expire ttl after their last
// transition. A non-positive ttl defaults to 30 minutes.
func NewManager(ttl time.Duration, opts ...Option) *Manager {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	m := &Manager{
		sessions: make(map[int64]Session),
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Begin starts a fresh session for the user, replacing any existing one.
func (m *Manager) Begin(userID, orderID int64, step Step) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = Session{
		Step:     step,
		OrderID:  orderID,
		Deadline: m.now().Add(m.ttl),
	}
}

// Get returns the user's live session. Expired sessions are removed lazily
// and reported as absent.
func (m *Manager) Get(userID int64) (Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[userID]
	m.mu.RUnlock()
	if !ok {
		return Session{}, false
	}
	if s.Expired(m.now()) {
		m.mu.Lock()
		// Re-check under the write lock: a concurrent Begin may have
		// replaced the session.
		if cur, still := m.sessions[userID]; still && cur.Expired(m.now()) {
			delete(m.sessions, userID)
		}
		m.mu.Unlock()
		return Session{}, false
	}
	return s, true
}

// Advance moves an existing session to the next step and refreshes its
// deadline. It is a no-op when the user has no live session.
func (m *Manager) Advance(userID int64, step Step) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok || s.Expired(m.now()) {
		delete(m.sessions, userID)
		return false
	}
	s.Step = step
	s.Deadline = m.now().Add(m.ttl)
	m.sessions[userID] = s
	return true
}

// Clear removes the user's session, if any.
func (m *Manager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// Sweep removes all expired sessions and returns how many were dropped.
// Intended to be called periodically; expiry also happens lazily on Get.
func (m *Manager) Sweep() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	dropped := 0
	for id, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, id)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of stored sessions, including not yet swept
// expired ones.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
