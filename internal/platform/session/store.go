package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Observer is notified of the number of live sessions after every change.
type Observer func(active int)

// Store holds live sessions in memory. Sessions idle for longer than the
// TTL are discarded together with their patient registry.
type Store struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	ttl      time.Duration
	observe  Observer
}

func NewStore(ttl time.Duration, observe Observer) *Store {
	if observe == nil {
		observe = func(int) {}
	}
	return &Store{
		sessions: make(map[uuid.UUID]*Session),
		ttl:      ttl,
		observe:  observe,
	}
}

// Create starts a new empty session.
func (st *Store) Create(now time.Time) *Session {
	s := newSession(now)
	st.mu.Lock()
	st.sessions[s.ID] = s
	n := len(st.sessions)
	st.mu.Unlock()
	st.observe(n)
	return s
}

// Get returns the live session with id and marks it as seen. Expired
// sessions are removed and reported as missing.
func (st *Store) Get(id uuid.UUID, now time.Time) (*Session, bool) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.expired(now, st.ttl) {
		st.Delete(id)
		return nil, false
	}
	s.touch(now)
	return s, true
}

func (st *Store) Delete(id uuid.UUID) {
	st.mu.Lock()
	delete(st.sessions, id)
	n := len(st.sessions)
	st.mu.Unlock()
	st.observe(n)
}

// Sweep removes every expired session and returns how many were removed.
func (st *Store) Sweep(now time.Time) int {
	st.mu.Lock()
	removed := 0
	for id, s := range st.sessions {
		if s.expired(now, st.ttl) {
			delete(st.sessions, id)
			removed++
		}
	}
	n := len(st.sessions)
	st.mu.Unlock()
	if removed > 0 {
		st.observe(n)
	}
	return removed
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (st *Store) RunSweeper(ctx context.Context, interval time.Duration, logger zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := st.Sweep(now); n > 0 {
				logger.Info().Int("removed", n).Int("active", st.Len()).Msg("expired sessions swept")
			}
		}
	}
}
