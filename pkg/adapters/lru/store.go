// Package lru provides a bounded in-memory StateStore that evicts the least
// recently used session once its capacity is reached.
package lru

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/aretw0/adflow/internal/logging"
	"github.com/aretw0/adflow/pkg/domain"
	golru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSize is the capacity used when none is given.
const DefaultSize = 1024

// Store implements ports.StateStore on top of a thread-safe LRU cache.
type Store struct {
	cache  *golru.Cache[string, *domain.State]
	logger *slog.Logger
}

// Option configures the Store.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger logs evictions at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New creates a store holding at most size sessions.
func New(size int, opts ...Option) (*Store, error) {
	if size <= 0 {
		size = DefaultSize
	}
	o := options{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Store{logger: o.logger}
	cache, err := golru.NewWithEvict[string, *domain.State](size, func(id string, _ *domain.State) {
		s.logger.Debug("session evicted", "session_id", id)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create lru cache: %w", err)
	}
	s.cache = cache
	return s, nil
}

// Save stores a deep copy of the state, marking the session as recently used.
func (s *Store) Save(ctx context.Context, sessionID string, state *domain.State) error {
	s.cache.Add(sessionID, state.Clone())
	return nil
}

// Load returns a copy of the state, marking the session as recently used.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	state, ok := s.cache.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return state.Clone(), nil
}

// Delete removes the session.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.cache.Remove(sessionID)
	return nil
}

// List returns the sessions currently cached.
func (s *Store) List(ctx context.Context) ([]string, error) {
	keys := s.cache.Keys()
	sort.Strings(keys)
	return keys, nil
}

// Len reports how many sessions are held.
func (s *Store) Len() int {
	return s.cache.Len()
}
