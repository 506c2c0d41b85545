package server

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/goliatone/go-rentalform/pkg/wizard"
)

// Session is one browser's wizard plus its CSRF token.
type Session struct {
	ID     string
	CSRF   string
	Wizard *wizard.Wizard

	mu       sync.Mutex
	locale   string
	lastSeen atomic.Int64
}

// Locale returns the locale pages are rendered in.
func (s *Session) Locale() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locale
}

// SetLocale switches the session and its wizard to locale.
func (s *Session) SetLocale(locale string) {
	s.mu.Lock()
	s.locale = locale
	s.mu.Unlock()
	s.Wizard.SetLocale(locale)
}

// ValidToken compares token with the session CSRF token in constant time.
func (s *Session) ValidToken(token string) bool {
	if token == "" || s.CSRF == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.CSRF)) == 1
}

// SessionStats are the store counters exposed on the health endpoint.
type SessionStats struct {
	Active  int64 `json:"active"`
	Created int64 `json:"created"`
	Expired int64 `json:"expired"`
}

// SessionStore keeps sessions in memory and expires them after an idle TTL.
type SessionStore struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	ttl       time.Duration
	now       func() time.Time
	newWizard func(locale string) *wizard.Wizard

	active  atomic.Int64
	created atomic.Int64
	expired atomic.Int64
}

// NewSessionStore builds a store. newWizard creates the wizard of a new
// session for its initial locale.
func NewSessionStore(ttl time.Duration, newWizard func(locale string) *wizard.Wizard) *SessionStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if newWizard == nil {
		newWizard = func(string) *wizard.Wizard { return wizard.New() }
	}
	return &SessionStore{
		sessions:  make(map[string]*Session),
		ttl:       ttl,
		now:       time.Now,
		newWizard: newWizard,
	}
}

// Create registers a fresh session.
func (s *SessionStore) Create(locale string) (*Session, error) {
	id, err := randomToken(24)
	if err != nil {
		return nil, fmt.Errorf("server: session id: %w", err)
	}
	csrf, err := randomToken(32)
	if err != nil {
		return nil, fmt.Errorf("server: csrf token: %w", err)
	}

	w := s.newWizard(locale)
	sess := &Session{ID: id, CSRF: csrf, Wizard: w, locale: locale}
	sess.lastSeen.Store(s.now().UnixNano())

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	s.created.Inc()
	s.active.Inc()
	return sess, nil
}

// Get returns a live session and marks it as used. Expired sessions are
// removed on access.
func (s *SessionStore) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if s.isExpired(sess, now) {
		s.removeLocked(id)
		return nil, false
	}
	sess.lastSeen.Store(now.UnixNano())
	return sess, true
}

// Sweep drops every idle session and reports how many were removed.
func (s *SessionStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if s.isExpired(sess, now) {
			s.removeLocked(id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = s.ttl / 2
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Stats returns the current counters.
func (s *SessionStore) Stats() SessionStats {
	return SessionStats{
		Active:  s.active.Load(),
		Created: s.created.Load(),
		Expired: s.expired.Load(),
	}
}

func (s *SessionStore) isExpired(sess *Session, now time.Time) bool {
	last := time.Unix(0, sess.lastSeen.Load())
	return now.Sub(last) > s.ttl
}

func (s *SessionStore) removeLocked(id string) {
	delete(s.sessions, id)
	s.active.Dec()
	s.expired.Inc()
}

func randomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
