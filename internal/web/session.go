package web

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"docqa/internal/domain"
)

const sessionCookie = "docqa_session"

// Session owns the per-browser conversation state: the append-only history,
// the previous answer, and the context toggle. The pipeline itself stays
// stateless; everything mutable lives here.
type Session struct {
	ID string

	// mu also serializes queries: one in-flight question per session.
	mu                sync.Mutex
	history           []domain.HistoryEntry
	previousAnswer    string
	usePreviousAnswer bool
}

// Lock takes the session for the duration of one query.
func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// The accessors below assume the caller holds the session lock.

func (s *Session) History() []domain.HistoryEntry {
	return s.history
}

func (s *Session) PreviousAnswer() string {
	if !s.usePreviousAnswer {
		return ""
	}
	return s.previousAnswer
}

func (s *Session) UsePreviousAnswer() bool {
	return s.usePreviousAnswer
}

// SetUsePreviousAnswer flips the toggle. Turning it off clears the carried
// answer, matching the UI expectation that disabling context forgets it.
func (s *Session) SetUsePreviousAnswer(use bool) {
	s.usePreviousAnswer = use
	if !use {
		s.previousAnswer = ""
	}
}

// RecordAnswer appends a completed query to the history and, when the toggle
// is on, carries the answer forward as context for the next question.
func (s *Session) RecordAnswer(question string, result domain.AnswerResult) {
	s.history = append(s.history, domain.HistoryEntry{
		Question:   question,
		Answer:     result.Text,
		References: result.References,
		AskedAt:    time.Now(),
	})
	if s.usePreviousAnswer {
		s.previousAnswer = result.Text
	}
}

// defaultSessionIdleTTL is how long a session may sit untouched before a
// later request is allowed to prune it.
const defaultSessionIdleTTL = 24 * time.Hour

// SessionStore hands out sessions keyed by a browser cookie. Idle sessions
// are pruned when new ones are created, so cookie-less clients hammering the
// API cannot grow the store without bound.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	lastSeen map[string]time.Time
	idleTTL  time.Duration
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		lastSeen: make(map[string]time.Time),
		idleTTL:  defaultSessionIdleTTL,
		now:      time.Now,
	}
}

// Get returns the request's session, creating one (and setting the cookie)
// when none exists.
func (st *SessionStore) Get(c *gin.Context) *Session {
	if id, err := c.Cookie(sessionCookie); err == nil {
		st.mu.Lock()
		s, ok := st.sessions[id]
		if ok {
			st.lastSeen[id] = st.now()
		}
		st.mu.Unlock()
		if ok {
			return s
		}
	}

	s := &Session{ID: uuid.NewString()}
	st.mu.Lock()
	st.pruneIdleLocked()
	st.sessions[s.ID] = s
	st.lastSeen[s.ID] = st.now()
	st.mu.Unlock()

	c.SetCookie(sessionCookie, s.ID, int((30 * 24 * time.Hour).Seconds()), "/", "", false, true)
	return s
}

func (st *SessionStore) pruneIdleLocked() {
	cutoff := st.now().Add(-st.idleTTL)
	for id, seen := range st.lastSeen {
		if seen.Before(cutoff) {
			delete(st.sessions, id)
			delete(st.lastSeen, id)
		}
	}
}

// Count reports how many sessions exist, for the health endpoint.
func (st *SessionStore) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
