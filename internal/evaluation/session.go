package evaluation

import (
	"errors"
	"sync"
	"time"
)

// ErrSessionNotFound covers unknown, expired, and foreign sessions so
// callers cannot probe for other users' in-flight tests.
var ErrSessionNotFound = errors.New("evaluation session not found")

// Session holds the transient state between test generation and
// submission: the question set (with answer keys) and the start time.
type Session struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Kind      string            `json:"kind"` // "evaluation" or "practice"
	Questions []SessionQuestion `json:"questions"`
	StartedAt time.Time         `json:"started_at"`
	Deadline  time.Time         `json:"deadline"`
}

// Sanitized returns the session's questions with answer keys stripped,
// for serving to the student.
func (s Session) Sanitized() []SessionQuestion {
	out := make([]SessionQuestion, len(s.Questions))
	for i, q := range s.Questions {
		q.CorrectAnswer = ""
		out[i] = q
	}
	return out
}

// SessionStore keeps in-flight sessions in memory, keyed by session ID,
// with a TTL. Entries are purged lazily on access; there are no
// background workers.
type SessionStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]Session
	expires  map[string]time.Time
}

// NewSessionStore creates a store whose entries expire ttl after Put.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: map[string]Session{},
		expires:  map[string]time.Time{},
	}
}

func (st *SessionStore) Put(s Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.purgeLocked()
	st.sessions[s.ID] = s
	st.expires[s.ID] = st.now().Add(st.ttl)
}

// Get returns the session if it exists, has not expired, and belongs to
// userID.
func (st *SessionStore) Get(id, userID string) (Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	exp := st.expires[id]
	st.mu.RUnlock()
	if !ok || s.UserID != userID {
		return Session{}, ErrSessionNotFound
	}
	if st.now().After(exp) {
		st.Delete(id)
		return Session{}, ErrSessionNotFound
	}
	return s, nil
}

func (st *SessionStore) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
	delete(st.expires, id)
}

func (st *SessionStore) purgeLocked() {
	now := st.now()
	for id, exp := range st.expires {
		if now.After(exp) {
			delete(st.sessions, id)
			delete(st.expires, id)
		}
	}
}
