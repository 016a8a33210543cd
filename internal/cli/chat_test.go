package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/adflow/pkg/domain"
)

func TestRunChat(t *testing.T) {
	app := newTestApp(t, nil)
	var out bytes.Buffer

	err := RunChat(context.Background(), app, ChatOptions{
		SessionID: "chat-1",
		Input:     strings.NewReader("https://shop.example/lamp\nlooks good\nexit\n"),
		Output:    &out,
	})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "## ingest")
	assert.Contains(t, text, "## analyze")
	assert.Contains(t, text, ">>> Session 'chat-1' saved.")
	assert.NotContains(t, text, "adflow 0", "no banner when output is not a terminal")

	s, err := app.Engine.State(context.Background(), "chat-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StageAnalyze, s.CurrentStep)
}

func TestRunChat_CancelledContext(t *testing.T) {
	app := newTestApp(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, w := io.Pipe()
	defer w.Close()
	err := RunChat(ctx, app, ChatOptions{Input: r, Output: &bytes.Buffer{}})
	assert.NoError(t, err)
}
