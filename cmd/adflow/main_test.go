package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/adflow/internal/config"
	"github.com/aretw0/adflow/pkg/adapters/file"
	"github.com/aretw0/adflow/pkg/domain"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Regexp(t, `^adflow version \S+\n$`, out)
}

func TestGraphCommand(t *testing.T) {
	out, err := run(t, "graph", "--config", filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "publish_campaign")
}

func TestGraphCheck(t *testing.T) {
	out, err := run(t, "graph", "--check")
	require.NoError(t, err)
	assert.Contains(t, out, "reachable from 'ingest'")
	require.NoError(t, graphCmd.Flags().Set("check", "false"))
}

func TestSessionCommands(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(config.EnvStorePath, dir)
	t.Setenv(config.EnvStore, "")
	t.Setenv(config.EnvEncryptionKey, "")
	cfgPath := filepath.Join(dir, "none.yaml")

	store := file.NewStore(dir)
	state := domain.NewState("demo")
	state.AccessToken = domain.Ptr("EAAB-secret")
	require.NoError(t, store.Save(context.Background(), "demo", state))

	out, err := run(t, "session", "ls", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "- demo (ingest)")

	out, err = run(t, "session", "inspect", "demo", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, `"session_id": "demo"`)
	assert.Contains(t, out, `"access_token": "***"`)
	assert.NotContains(t, out, "EAAB-secret")

	out, err = run(t, "session", "rm", "demo", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed session 'demo'")

	_, err = run(t, "session", "inspect", "demo", "--config", cfgPath)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestUnknownStoreFlag(t *testing.T) {
	_, err := run(t, "session", "ls", "--store", "etcd", "--config", filepath.Join(t.TempDir(), "none.yaml"))
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
	require.NoError(t, rootCmd.PersistentFlags().Set("store", ""))
	rootCmd.PersistentFlags().Lookup("store").Changed = false
}
