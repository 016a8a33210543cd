package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/adflow"
	"github.com/aretw0/adflow/internal/presentation/tui"
	"github.com/aretw0/adflow/pkg/runner"
)

// ChatOptions configures a terminal chat session.
type ChatOptions struct {
	SessionID string
	Plain     bool // no banner, no markdown rendering
	Input     io.Reader
	Output    io.Writer
}

// RunChat runs an interactive session until exit, EOF or cancellation.
func RunChat(ctx context.Context, app *App, opts ChatOptions) error {
	in, out := opts.Input, opts.Output
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}

	runnerOpts := []runner.Option{
		runner.WithInput(in),
		runner.WithOutput(out),
		runner.WithLogger(app.Logger),
	}
	if opts.SessionID != "" {
		runnerOpts = append(runnerOpts, runner.WithSessionID(opts.SessionID))
	}

	if f, ok := out.(*os.File); ok && !opts.Plain && tui.IsTerminal(f) {
		tui.PrintBanner(out, "adflow "+adflow.Version)
		render, err := tui.NewRenderer(tui.Width(f))
		if err != nil {
			app.Logger.Warn("markdown rendering disabled", "err", err)
		} else {
			runnerOpts = append(runnerOpts, runner.WithRenderer(render))
		}
	}

	r := runner.New(app.Engine, runnerOpts...)
	err := r.Run(ctx)
	if id := r.SessionID(); id != "" {
		fmt.Fprintf(out, ">>> Session '%s' saved.\n", id)
	}
	if ctx.Err() != nil {
		return nil
	}
	return err
}
