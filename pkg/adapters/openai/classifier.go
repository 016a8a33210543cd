// Package openai classifies navigation intents with an OpenAI model.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/aretw0/adflow/internal/logging"
	"github.com/aretw0/adflow/pkg/domain"
	"github.com/aretw0/adflow/pkg/ports"
)

const (
	DefaultModel     = "gpt-4o-mini"
	DefaultMaxTokens = 200
)

// Completer sends one prompt and returns the model's text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Classifier implements ports.IntentClassifier on top of a Completer.
type Classifier struct {
	completer Completer
	logger    *slog.Logger
}

// Option configures the Classifier.
type Option func(*Classifier)

// WithLogger sets the logger used for repair and parse diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) {
		c.logger = logger
	}
}

// New creates a Classifier backed by the Responses API.
func New(apiKey, model string, opts ...Option) *Classifier {
	return NewWithCompleter(NewResponsesCompleter(apiKey, model, DefaultMaxTokens), opts...)
}

// NewWithCompleter creates a Classifier over any Completer.
func NewWithCompleter(completer Completer, opts ...Option) *Classifier {
	c := &Classifier{completer: completer, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify asks the model where the user wants to go. Transport and parse
// failures are returned as errors; the resolver treats both as "stay".
func (c *Classifier) Classify(ctx context.Context, current domain.Stage, message string) (ports.Classification, error) {
	text, err := c.completer.Complete(ctx, buildPrompt(current, message))
	if err != nil {
		return ports.Classification{}, fmt.Errorf("classification request failed: %w", err)
	}
	out, err := c.parse(text)
	if err != nil {
		c.logger.Debug("unusable classifier answer", "step", current, "raw", text, "err", err)
		return ports.Classification{}, err
	}
	return out, nil
}

type answer struct {
	Intent    string `json:"intent"`
	Reasoning string `json:"reasoning"`
}

// parse extracts the JSON answer, repairing it when the model produced
// almost-JSON (fences, trailing commas, missing quotes or braces).
func (c *Classifier) parse(text string) (ports.Classification, error) {
	raw := stripFences(text)
	if raw == "" {
		return ports.Classification{}, fmt.Errorf("empty answer: %w", domain.ErrMalformedIntent)
	}

	var a answer
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		fixed, repairErr := jsonrepair.JSONRepair(raw)
		if repairErr != nil {
			return ports.Classification{}, fmt.Errorf("%w: %w", domain.ErrMalformedIntent, errors.Join(err, repairErr))
		}
		c.logger.Debug("repaired classifier JSON", "raw", raw, "fixed", fixed)
		if err := json.Unmarshal([]byte(fixed), &a); err != nil {
			return ports.Classification{}, fmt.Errorf("%w: %w", domain.ErrMalformedIntent, err)
		}
	}
	if strings.TrimSpace(a.Intent) == "" {
		return ports.Classification{}, fmt.Errorf("missing intent: %w", domain.ErrMalformedIntent)
	}
	return ports.Classification{Intent: strings.TrimSpace(a.Intent), Reasoning: a.Reasoning}, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ResponsesCompleter calls the OpenAI Responses API.
type ResponsesCompleter struct {
	client    openai.Client
	model     string
	maxTokens int64
}

// NewResponsesCompleter creates a ResponsesCompleter. An empty model means DefaultModel.
func NewResponsesCompleter(apiKey, model string, maxTokens int64) *ResponsesCompleter {
	if model == "" {
		model = DefaultModel
	}
	return &ResponsesCompleter{
		client:    openai.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: maxTokens,
	}
}

func (r *ResponsesCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := r.client.Responses.New(ctx, responses.ResponseNewParams{
		Model:           r.model,
		MaxOutputTokens: openai.Int(r.maxTokens),
		Input:           responses.ResponseNewParamsInputUnion{OfString: openai.String(prompt)},
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI Responses API failed: %w", err)
	}
	if resp == nil {
		return "", errors.New("empty response from OpenAI Responses API")
	}
	return resp.OutputText(), nil
}
