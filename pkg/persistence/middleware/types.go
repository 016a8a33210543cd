// Package middleware wraps a ports.StateStore with cross-cutting behavior:
// sealing credentials at rest and redacting them for display.
package middleware

import "github.com/aretw0/adflow/pkg/ports"

// Middleware allows wrapping a StateStore to add behavior.
type Middleware func(ports.StateStore) ports.StateStore

// Chain applies mws to store; the first one ends up outermost.
func Chain(store ports.StateStore, mws ...Middleware) ports.StateStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
