package adflow_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/adflow"
	"github.com/aretw0/adflow/pkg/adapters/file"
	"github.com/aretw0/adflow/pkg/adapters/stub"
	"github.com/aretw0/adflow/pkg/domain"
)

func TestFacade_ContentWalk(t *testing.T) {
	ctx := context.Background()
	store := file.NewStore(t.TempDir())

	var observed, entered atomic.Int32
	eng := adflow.New(stub.New().Collaborators(),
		adflow.WithStore(store),
		adflow.WithStateObserver(func(ctx context.Context, old, new *domain.State) {
			observed.Add(1)
		}),
		adflow.WithLifecycleHooks(domain.LifecycleHooks{
			OnStageEnter: func(ctx context.Context, e *domain.StageEvent) { entered.Add(1) },
		}),
	)

	resp, err := eng.Handle(ctx, domain.Request{SessionID: "demo", Message: "https://shop.example/desk-lamp"})
	require.NoError(t, err)
	assert.Nil(t, resp.Error)
	assert.Equal(t, domain.StageIngest, resp.CurrentStep)
	require.NotNil(t, resp.State.SubjectData)

	resp, err = eng.Handle(ctx, domain.Request{SessionID: "demo", Message: "looks good"})
	require.NoError(t, err)
	assert.Equal(t, domain.StageAnalyze, resp.CurrentStep)
	assert.NotNil(t, resp.State.Analysis)

	resp, err = eng.Handle(ctx, domain.Request{SessionID: "demo", ExplicitIntent: "draft_scripts"})
	require.NoError(t, err)
	require.Len(t, resp.State.Scripts, 3)

	resp, err = eng.Handle(ctx, domain.Request{
		SessionID:      "demo",
		ExplicitIntent: "select_script",
		Fields:         domain.Fields{ScriptIndex: domain.Ptr(1)},
	})
	require.NoError(t, err)
	require.NotNil(t, resp.State.SelectedScript)
	assert.Equal(t, resp.State.Scripts[1], *resp.State.SelectedScript)

	// Persisted through the file store.
	stored, err := store.Load(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, domain.StageSelectScript, stored.CurrentStep)
	assert.Len(t, stored.Messages, 2)

	assert.EqualValues(t, 4, observed.Load())
	assert.EqualValues(t, 4, entered.Load())
}

func TestFacade_PreconditionFailureIsNotAnError(t *testing.T) {
	eng := adflow.New(stub.New().Collaborators())

	resp, err := eng.Handle(context.Background(), domain.Request{SessionID: "s1", ExplicitIntent: "render_video"})
	require.NoError(t, err)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "no audio available", *resp.Error)
	assert.Equal(t, domain.StageRenderVideo, resp.CurrentStep)
}

func TestFacade_SessionsAndIDs(t *testing.T) {
	ctx := context.Background()
	eng := adflow.New(stub.New().Collaborators(), adflow.WithIDGenerator(func() string { return "fixed" }))

	resp, err := eng.Handle(ctx, domain.Request{Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "fixed", resp.SessionID)

	ids, err := eng.Sessions().List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"fixed"}, ids)

	_, err = eng.State(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	require.NoError(t, eng.Sessions().Delete(ctx, "fixed"))
	_, err = eng.State(ctx, "fixed")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestFacade_CampaignTriggers(t *testing.T) {
	eng := adflow.New(stub.New().Collaborators(), adflow.WithCampaignTriggers("ship it"))

	resp, err := eng.Handle(context.Background(), domain.Request{SessionID: "s1", Message: "ok, ship it"})
	require.NoError(t, err)
	assert.Equal(t, domain.StageAuthenticateCampaign, resp.CurrentStep)
	// No access token yet.
	require.NotNil(t, resp.Error)
	assert.Equal(t, "no access token provided", *resp.Error)
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, adflow.Version)
}
