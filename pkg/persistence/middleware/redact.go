package middleware

import (
	"context"
	"errors"

	"github.com/aretw0/adflow/pkg/domain"
	"github.com/aretw0/adflow/pkg/ports"
)

// Mask replaces redacted values.
const Mask = domain.SecretMask

// ErrReadOnly is returned by Save on a redacted view.
var ErrReadOnly = errors.New("store view is read-only")

type redactionMiddleware struct {
	next ports.StateStore
}

// NewRedactionMiddleware returns a read-only view of a store whose loaded
// states carry no credentials. Save always fails with ErrReadOnly.
func NewRedactionMiddleware() Middleware {
	return func(next ports.StateStore) ports.StateStore {
		return &redactionMiddleware{next: next}
	}
}

func (m *redactionMiddleware) Save(ctx context.Context, sessionID string, state *domain.State) error {
	return ErrReadOnly
}

func (m *redactionMiddleware) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	state, err := m.next.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return state.Redacted(), nil
}

func (m *redactionMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *redactionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
