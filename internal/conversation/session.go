package conversation

import (
	"sync"
	"sync/atomic"
)

// Session is the per-user conversational context. Events for one
// session are serialized by mu; sessions for distinct users proceed
// independently. WorkDir is set once at creation and immutable
// afterwards, so cancellation can release it without taking mu.
type Session struct {
	ID        string
	UserID    string
	WorkDir   string
	State     State
	ClaimData map[string]string

	mu        sync.Mutex
	cancelled atomic.Bool
	release   sync.Once
}

// NewSession creates a session in the start state.
func NewSession(id, userID string) *Session {
	return &Session{
		ID:        id,
		UserID:    userID,
		State:     StateStart,
		ClaimData: make(map[string]string),
	}
}

// Cancel marks the session cancelled. In-flight handlers observe the
// flag after their blocking calls return and discard their results.
func (s *Session) Cancel() {
	s.cancelled.Store(true)
}

// Cancelled reports whether the session was cancelled.
func (s *Session) Cancelled() bool {
	return s.cancelled.Load()
}

// CurrentState returns the session state as observable between events.
// A cancelled session reports StateCancelled even while an in-flight
// handler is still unwinding.
func (s *Session) CurrentState() State {
	if s.Cancelled() {
		return StateCancelled
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.State
}

// Release reclaims the session's working storage. Safe to call more
// than once; cancellation and store eviction may both reach it.
func (s *Session) Release(w Workspace) {
	s.release.Do(func() {
		if s.WorkDir != "" {
			// Failures leave a stale directory; Sweep cleans those up
			// at the next startup.
			_ = w.Delete(s.WorkDir)
		}
	})
}
