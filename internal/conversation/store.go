package conversation

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Store keeps live sessions keyed by user identity. Sessions idle past
// the TTL are evicted and their working storage released through the
// eviction hook. There is no cross-session shared mutable state beyond
// this map.
type Store struct {
	cache *cache.Cache
}

// NewStore creates a Store whose sessions expire after ttl of
// inactivity. onEvict runs for every session leaving the store, whether
// by expiry or explicit delete.
func NewStore(ttl time.Duration, onEvict func(*Session)) *Store {
	c := cache.New(ttl, 10*time.Minute)
	if onEvict != nil {
		c.OnEvicted(func(_ string, value interface{}) {
			if s, ok := value.(*Session); ok {
				onEvict(s)
			}
		})
	}
	return &Store{cache: c}
}

// Get returns the session for a user, if one is live.
func (st *Store) Get(userID string) (*Session, bool) {
	if value, found := st.cache.Get(userID); found {
		return value.(*Session), true
	}
	return nil, false
}

// Put stores a session and refreshes its TTL.
func (st *Store) Put(s *Session) {
	st.cache.Set(s.UserID, s, cache.DefaultExpiration)
}

// Add stores a session only if the user has none live. Reports whether
// the session was stored; a false return means another session won the
// key first.
func (st *Store) Add(s *Session) bool {
	return st.cache.Add(s.UserID, s, cache.DefaultExpiration) == nil
}

// Delete removes a user's session, firing the eviction hook.
func (st *Store) Delete(userID string) {
	st.cache.Delete(userID)
}

// Len reports the number of live sessions.
func (st *Store) Len() int {
	return st.cache.ItemCount()
}
