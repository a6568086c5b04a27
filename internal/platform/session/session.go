// Package session scopes patient state to a single browser session. Each
// session owns its own registry; nothing is shared between sessions and
// nothing outlives the process.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/surgprep/surgprep/internal/domain/patient"
)

// Session is the state of one user session.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	registry *patient.Registry

	mu          sync.Mutex
	lastSeen    time.Time
	showAddForm bool
	flash       string
}

func newSession(now time.Time) *Session {
	return &Session{
		ID:        uuid.New(),
		CreatedAt: now,
		lastSeen:  now,
		registry:  patient.NewRegistry(),
	}
}

// Patients returns the session's registry.
func (s *Session) Patients() *patient.Registry {
	return s.registry
}

func (s *Session) ShowAddForm() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.showAddForm
}

func (s *Session) ToggleAddForm() {
	s.mu.Lock()
	s.showAddForm = !s.showAddForm
	s.mu.Unlock()
}

func (s *Session) HideAddForm() {
	s.mu.Lock()
	s.showAddForm = false
	s.mu.Unlock()
}

// SetFlash stores a message shown on the next page render only.
func (s *Session) SetFlash(msg string) {
	s.mu.Lock()
	s.flash = msg
	s.mu.Unlock()
}

// PopFlash returns and clears the pending flash message.
func (s *Session) PopFlash() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.flash
	s.flash = ""
	return msg
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.LastSeen()) > ttl
}
