package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/adflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewState(sessionID)
		state.CurrentStep = domain.StageSelectScript
		state.Scripts = []string{"one", "two", "three"}
		state.SelectedScriptIndex = domain.Ptr(1)
		state.SelectedScript = domain.Ptr("two")
		state.SubjectData = &domain.Subject{SourceURL: "https://shop.example/widget", Title: "Widget"}
		state.AppendMessage(domain.RoleUser, "option 2")
		state.Bump(domain.StageIngest)

		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, domain.StageSelectScript, loaded.CurrentStep)
		assert.Equal(t, state.Scripts, loaded.Scripts)
		require.NotNil(t, loaded.SelectedScriptIndex)
		assert.Equal(t, 1, *loaded.SelectedScriptIndex)
		assert.Equal(t, "Widget", loaded.SubjectData.Title)
		assert.Equal(t, 1, loaded.Iterations(domain.StageIngest))
		assert.Len(t, loaded.Messages, 1)
	})

	t.Run("Isolation", func(t *testing.T) {
		state := domain.NewState(sessionID)
		state.Scripts = []string{"original"}
		require.NoError(t, store.Save(ctx, sessionID, state))

		state.Scripts[0] = "mutated after save"

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "original", loaded.Scripts[0])

		loaded.Scripts[0] = "mutated after load"
		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "original", again.Scripts[0])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewState(sessionID))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewState(id1))
		_ = store.Save(ctx, id2, domain.NewState(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
