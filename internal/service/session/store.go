package session

import (
	"context"
	"sync"
	"time"
)

// Store keeps the sessions of all connected browsers.
type Store struct {
	opts     Options
	ttl      time.Duration
	sessions map[string]*Session
	onCreate func(*Session)
	max      int // 0 means unbounded
	mu       sync.Mutex
}

// NewStore creates a store whose sessions expire after ttl without activity.
// A non-positive ttl disables expiry.
func NewStore(opts Options, ttl time.Duration) *Store {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		opts:     opts,
		ttl:      ttl,
		sessions: make(map[string]*Session),
	}
}

// OnCreate registers fn to be called for every new session before it is returned.
func (st *Store) OnCreate(fn func(*Session)) {
	st.mu.Lock()
	st.onCreate = fn
	st.mu.Unlock()
}

// SetMaxSessions bounds the number of live sessions. When the store is full,
// creating a session evicts the one idle the longest.
func (st *Store) SetMaxSessions(n int) {
	st.mu.Lock()
	st.max = n
	st.mu.Unlock()
}

// Get returns an existing session and marks it active.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	st.mu.Unlock()

	if ok {
		s.Touch()
	}
	return s, ok
}

// GetOrCreate returns the session for id, creating it when absent.
func (st *Store) GetOrCreate(id string) *Session {
	var evicted *Session

	st.mu.Lock()
	s, ok := st.sessions[id]
	if !ok {
		if st.max > 0 && len(st.sessions) >= st.max {
			evicted = st.evictLocked()
		}
		s = New(id, st.opts)
		st.sessions[id] = s
	}
	onCreate := st.onCreate
	st.mu.Unlock()

	if ok {
		s.Touch()
		return s
	}

	if evicted != nil {
		evicted.Close()
		if st.opts.Logger != nil {
			st.opts.Logger.Warning("Session limit of %d reached, evicted session %s", st.max, evicted.ID())
		}
	}

	if onCreate != nil {
		onCreate(s)
	}
	if st.opts.Logger != nil {
		st.opts.Logger.Info("Created session %s", id)
	}
	return s
}

// evictLocked removes the least recently seen session. Callers hold mu.
func (st *Store) evictLocked() *Session {
	var oldest *Session
	var oldestSeen time.Time
	for _, s := range st.sessions {
		if seen := s.LastSeen(); oldest == nil || seen.Before(oldestSeen) {
			oldest, oldestSeen = s, seen
		}
	}
	if oldest != nil {
		delete(st.sessions, oldest.ID())
	}
	return oldest
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Run periodically removes idle sessions until ctx is done, then closes all sessions.
func (st *Store) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			st.CloseAll()
			return nil
		case <-ticker.C:
			st.Sweep()
		}
	}
}

// Sweep removes sessions idle for longer than the TTL and returns how many were removed.
func (st *Store) Sweep() int {
	if st.ttl <= 0 {
		return 0
	}
	cutoff := st.opts.Now().Add(-st.ttl)

	var expired []*Session
	st.mu.Lock()
	for id, s := range st.sessions {
		if s.LastSeen().Before(cutoff) {
			expired = append(expired, s)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	if len(expired) > 0 && st.opts.Logger != nil {
		st.opts.Logger.Info("Expired %d idle session(s)", len(expired))
	}
	return len(expired)
}

// CloseAll closes and removes every session.
func (st *Store) CloseAll() {
	st.mu.Lock()
	sessions := st.sessions
	st.sessions = make(map[string]*Session)
	st.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
