package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/adflow/internal/logging"
	"github.com/aretw0/adflow/pkg/domain"
	"github.com/aretw0/adflow/pkg/ports"
)

// ContentRenderer transforms markdown before it is written, e.g. to ANSI.
type ContentRenderer func(string) (string, error)

// Runner is the chat loop.
type Runner struct {
	engine    ports.Orchestrator
	in        io.Reader
	out       io.Writer
	renderer  ContentRenderer
	logger    *slog.Logger
	sessionID string
	prompt    string
}

// Option configures the Runner.
type Option func(*Runner)

// WithInput sets the line source. Defaults to os.Stdin.
func WithInput(in io.Reader) Option {
	return func(r *Runner) { r.in = in }
}

// WithOutput sets the destination of rendered replies. Defaults to os.Stdout.
func WithOutput(out io.Writer) Option {
	return func(r *Runner) { r.out = out }
}

// WithRenderer sets the markdown renderer.
func WithRenderer(renderer ContentRenderer) Option {
	return func(r *Runner) { r.renderer = renderer }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithSessionID resumes an existing session instead of starting a new one.
func WithSessionID(id string) Option {
	return func(r *Runner) { r.sessionID = id }
}

// WithPrompt sets the input prompt; empty disables it.
func WithPrompt(prompt string) Option {
	return func(r *Runner) { r.prompt = prompt }
}

// New creates a Runner.
func New(engine ports.Orchestrator, opts ...Option) *Runner {
	r := &Runner{
		engine: engine,
		in:     os.Stdin,
		out:    os.Stdout,
		logger: logging.NewNop(),
		prompt: "> ",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SessionID returns the session the runner talks to, empty before the first reply.
func (r *Runner) SessionID() string { return r.sessionID }

// Run reads lines until EOF, "exit" or cancellation.
// Only infrastructure failures end the loop with an error.
func (r *Runner) Run(ctx context.Context) error {
	pumpCtx, stop := context.WithCancel(ctx)
	defer stop()
	lines := r.pump(pumpCtx)
	for {
		if r.prompt != "" {
			fmt.Fprint(r.out, r.prompt)
		}

		var line string
		select {
		case <-ctx.Done():
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(l)
		}

		switch {
		case line == "":
			continue
		case line == "exit" || line == "quit":
			return nil
		case line == "/state":
			if err := r.dumpState(ctx); err != nil {
				return err
			}
			continue
		}

		req, err := r.request(line)
		if err != nil {
			fmt.Fprintf(r.out, "! %v\n", err)
			continue
		}
		resp, err := r.engine.Handle(ctx, req)
		if err != nil {
			return fmt.Errorf("chat turn failed: %w", err)
		}
		r.sessionID = resp.SessionID
		r.print(Format(resp))
	}
}

// request turns a typed line into a core request.
func (r *Runner) request(line string) (domain.Request, error) {
	req := domain.Request{SessionID: r.sessionID}
	if rest, ok := strings.CutPrefix(line, "/goto "); ok {
		stage, err := domain.ParseStage(strings.TrimSpace(rest))
		if err != nil {
			return req, fmt.Errorf("%q: %w", strings.TrimSpace(rest), err)
		}
		req.ExplicitIntent = string(stage)
		return req, nil
	}

	clean, err := SanitizeInput(line)
	if err != nil {
		return req, err
	}
	req.Message = clean
	return req, nil
}

func (r *Runner) dumpState(ctx context.Context) error {
	if r.sessionID == "" {
		fmt.Fprintln(r.out, "! no session yet")
		return nil
	}
	s, err := r.engine.State(ctx, r.sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(s.Redacted())
}

func (r *Runner) print(markdown string) {
	out := markdown
	if r.renderer != nil {
		rendered, err := r.renderer(markdown)
		if err != nil {
			r.logger.Debug("render failed, printing raw markdown", "err", err)
		} else {
			out = rendered
		}
	}
	fmt.Fprintln(r.out, out)
}

// pump moves lines from the reader onto a channel so Run can watch ctx.
func (r *Runner) pump(ctx context.Context) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(r.in)
		sc.Buffer(make([]byte, 0, 64*1024), MaxInputSize()*2)
		for sc.Scan() {
			select {
			case ch <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := sc.Err(); err != nil {
			r.logger.Warn("input read failed", "err", err)
		}
	}()
	return ch
}
