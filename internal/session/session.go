// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session tracks dashboard sessions and the password gate. Each
// session carries one authenticated flag, set at most once, and the last
// successful prediction shown on the prediction page.
package session

import (
	"context"
	"crypto/subtle"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/taurus/pkg/types"
)

// Messages shown by the gate.
const (
	MsgAuthenticated = "비밀번호 인증 성공!"
	MsgWrongPassword = "비밀번호가 올바르지 않습니다."
	MsgLocked        = "🔒 이 페이지에 접근하려면 먼저 비밀번호를 입력하세요."
)

// Predictor runs one prediction. *pipeline.Pipeline implements it.
type Predictor interface {
	Predict(ctx context.Context, category string, numeric []float64) (types.PredictionResult, error)
}

// Session is one browser session.
type Session struct {
	ID string

	authenticated atomic.Bool

	// run serializes predictions within the session.
	run sync.Mutex

	mu       sync.Mutex
	last     *types.PredictionResult
	lastSeen time.Time
}

// Authenticated reports whether the session passed the gate.
func (s *Session) Authenticated() bool {
	return s.authenticated.Load()
}

// Predict runs p for the session. Only a successful run replaces the stored
// last result; a failed run leaves it untouched.
func (s *Session) Predict(ctx context.Context, p Predictor, category string, numeric []float64) (types.PredictionResult, error) {
	s.run.Lock()
	defer s.run.Unlock()

	result, err := p.Predict(ctx, category, numeric)
	if err != nil {
		return types.PredictionResult{}, err
	}

	s.mu.Lock()
	s.last = &result
	s.mu.Unlock()
	return result, nil
}

// Last returns the last successful prediction, if any.
func (s *Session) Last() (types.PredictionResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return types.PredictionResult{}, false
	}
	return *s.last, true
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// Store holds live sessions. It is safe for concurrent use.
type Store struct {
	password []byte
	ttl      time.Duration
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewStore returns a store gating sessions with password. Sessions idle for
// longer than ttl are dropped; ttl <= 0 keeps them forever.
func NewStore(password string, ttl time.Duration) *Store {
	return &Store{
		password: []byte(password),
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new unauthenticated session. The session is not kept in
// the store until it authenticates, so rejected requests leave no state.
func (st *Store) Create() *Session {
	s := &Session{ID: uuid.NewString()}
	s.touch(st.now())
	return s
}

// Get returns the live session with id and refreshes its idle timer.
func (st *Store) Get(id string) (*Session, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}

	now := st.now()
	st.mu.Lock()
	s, ok := st.sessions[id]
	if ok && st.expired(s, now) {
		delete(st.sessions, id)
		ok = false
	}
	st.mu.Unlock()

	if !ok {
		return nil, false
	}
	s.touch(now)
	return s, true
}

// Authenticate compares password with the configured one and marks s
// authenticated on a match. The flag is set once and never cleared. A
// session is stored, and so reachable through Get, from its first
// successful Authenticate.
func (st *Store) Authenticate(s *Session, password string) bool {
	if s.Authenticated() {
		return true
	}
	if len(st.password) == 0 {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(password), st.password) != 1 {
		return false
	}
	s.authenticated.CompareAndSwap(false, true)

	s.touch(st.now())
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return true
}

// Sweep drops expired sessions and returns how many were removed.
func (st *Store) Sweep() int {
	now := st.now()
	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, s := range st.sessions {
		if st.expired(s, now) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *Store) expired(s *Session, now time.Time) bool {
	return st.ttl > 0 && s.idleSince(now) > st.ttl
}

// SweepEvery runs Sweep on interval until ctx is done.
func (st *Store) SweepEvery(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			st.Sweep()
		}
	}
}
