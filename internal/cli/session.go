package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/adflow/internal/presentation/graph"
	"github.com/aretw0/adflow/internal/runtime"
	"github.com/aretw0/adflow/internal/validator"
	"github.com/aretw0/adflow/pkg/adapters/stub"
	"github.com/aretw0/adflow/pkg/domain"
	"github.com/aretw0/adflow/pkg/ports"
)

// ListSessions prints one line per stored session with its current stage.
func ListSessions(ctx context.Context, store ports.StateStore, w io.Writer) error {
	ids, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("error listing sessions: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(w, "No active sessions found.")
		return nil
	}

	fmt.Fprintln(w, "Active Sessions:")
	for _, id := range ids {
		state, err := store.Load(ctx, id)
		if err != nil {
			// Listed but gone (expired or removed concurrently).
			fmt.Fprintf(w, "- %s\n", id)
			continue
		}
		fmt.Fprintf(w, "- %s (%s)\n", id, state.CurrentStep)
	}
	return nil
}

// InspectSession prints the state of a session as indented JSON.
func InspectSession(ctx context.Context, store ports.StateStore, id string, w io.Writer) error {
	state, err := store.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("error loading session '%s': %w", id, err)
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling state: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// RemoveSessions deletes every id, reporting each one; the error joins all failures.
func RemoveSessions(ctx context.Context, store ports.StateStore, ids []string, w io.Writer) error {
	var errs []error
	for _, id := range ids {
		if err := store.Delete(ctx, id); err != nil {
			fmt.Fprintf(w, "Error removing '%s': %v\n", id, err)
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(w, "Removed session '%s'\n", id)
	}
	return errors.Join(errs...)
}

// PrintGraph writes the Mermaid stage graph, highlighting where sessionID is
// when one is given.
func PrintGraph(ctx context.Context, store ports.StateStore, sessionID string, w io.Writer) error {
	var overlay *graph.Overlay
	if sessionID != "" {
		state, err := store.Load(ctx, sessionID)
		if err != nil {
			if errors.Is(err, domain.ErrSessionNotFound) {
				return fmt.Errorf("session '%s': %w", sessionID, err)
			}
			return err
		}
		overlay = graph.OverlayFrom(state)
	}
	fmt.Fprint(w, graph.GenerateMermaid(overlay))
	return nil
}

// CheckGraph validates the stage table and reports the result.
func CheckGraph(w io.Writer) error {
	x := runtime.NewExecutor(stub.New().Collaborators())
	if err := validator.ValidateTable(domain.FirstStage, runtime.Route, x.Has); err != nil {
		return err
	}
	fmt.Fprintf(w, "Stage table OK: %d stages reachable from '%s'.\n", len(runtime.Stages()), domain.FirstStage)
	return nil
}
