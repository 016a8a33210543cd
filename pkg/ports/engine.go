package ports

import (
	"context"

	"github.com/aretw0/adflow/pkg/domain"
)

// Orchestrator is the driving port used by transports (HTTP, MCP, CLI).
type Orchestrator interface {
	// Handle runs one request against its session and returns the updated state.
	// Domain failures are reported in Response.Error; the returned error is
	// reserved for infrastructure failures (store, lock).
	Handle(ctx context.Context, req domain.Request) (*domain.Response, error)

	// State returns the stored state of a session.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	State(ctx context.Context, sessionID string) (*domain.State, error)
}
