package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/helixml/segalloc/domain/link"
)

// SessionsOption configures Sessions.
type SessionsOption func(*Sessions)

// WithSessionLimit bounds the number of live sessions. Creating a session
// beyond the limit evicts the oldest.
func WithSessionLimit(n int) SessionsOption {
	return func(s *Sessions) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithDefaultScope sets the link tolerance used when a session does not ask
// for one.
func WithDefaultScope(scope float64) SessionsOption {
	return func(s *Sessions) {
		if scope >= 0 {
			s.scope = scope
		}
	}
}

// WithSessionLogger sets the logger handed to each session.
func WithSessionLogger(logger *slog.Logger) SessionsOption {
	return func(s *Sessions) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock replaces the time source used for idle tracking.
func WithClock(now func() time.Time) SessionsOption {
	return func(s *Sessions) {
		if now != nil {
			s.now = now
		}
	}
}

// Sessions keeps live allocation sessions in memory. Allocation state is
// never persisted.
type Sessions struct {
	documents *Documents
	limit     int
	scope     float64
	logger    *slog.Logger
	now       func() time.Time

	mu    sync.RWMutex
	byID  map[string]*Session
	order []string
}

// NewSessions creates a session registry. documents resolves
// SessionParams.DocumentID and may be nil when sessions are only opened
// from raw content.
func NewSessions(documents *Documents, opts ...SessionsOption) *Sessions {
	s := &Sessions{
		documents: documents,
		limit:     100,
		scope:     link.DefaultScope,
		logger:    slog.Default(),
		now:       time.Now,
		byID:      make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create opens a session. When params.Content is empty the stored document
// params.DocumentID is loaded.
func (s *Sessions) Create(ctx context.Context, params SessionParams) (*Session, error) {
	if params.Content == "" && params.DocumentID != 0 {
		if s.documents == nil {
			return nil, fmt.Errorf("%w: no document library configured", ErrEmptyContent)
		}
		doc, err := s.documents.Get(ctx, params.DocumentID)
		if err != nil {
			return nil, err
		}
		params.Content = doc.Content()
		if params.Name == "" {
			params.Name = doc.Name()
		}
	}

	session, err := NewSession(params, s.scope, s.logger)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.order) >= s.limit {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.byID, oldest)
		s.logger.Info("session evicted", slog.String("session_id", oldest))
	}
	session.touch(s.now())
	s.byID[session.ID()] = session
	s.order = append(s.order, session.ID())
	return session, nil
}

// Get returns the session with id and marks it used.
func (s *Sessions) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	session.touch(s.now())
	return session, nil
}

// Delete closes the session with id.
func (s *Sessions) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.remove(id)
	return nil
}

// Expire closes every session unused for longer than idle and returns their
// ids, oldest first.
func (s *Sessions) Expire(idle time.Duration) []string {
	cutoff := s.now().Add(-idle)

	s.mu.Lock()
	defer s.mu.Unlock()
	var expired []string
	for _, id := range s.order {
		if s.byID[id].LastUsed().Before(cutoff) {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		s.remove(id)
	}
	return expired
}

// remove drops id. The caller holds s.mu.
func (s *Sessions) remove(id string) {
	delete(s.byID, id)
	for i, other := range s.order {
		if other == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// List returns the live sessions, oldest first.
func (s *Sessions) List() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Session, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
