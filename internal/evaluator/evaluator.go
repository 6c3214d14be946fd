// Package evaluator asks the model for improvement suggestions on an essay
// and records them in the essay's commentary.
package evaluator

import (
	"context"
	"log/slog"
	"time"

	"github.com/giantswarm/essay-feedback/internal/apperror"
	"github.com/giantswarm/essay-feedback/internal/essay"
	"github.com/giantswarm/essay-feedback/internal/llm"
	"github.com/giantswarm/essay-feedback/internal/prompt"
)

// Config holds evaluation settings.
type Config struct {
	Model       string
	Temperature *float64
}

// Evaluator renders the prompts for a record and sends them to the model.
type Evaluator struct {
	client  llm.Client
	builder *prompt.Builder
	config  Config
}

// New creates a new Evaluator.
func New(client llm.Client, builder *prompt.Builder, config Config) *Evaluator {
	if config.Model == "" {
		config.Model = llm.DefaultModel
	}
	return &Evaluator{client: client, builder: builder, config: config}
}

// Evaluate returns the model's reply for r, unmodified.
func (e *Evaluator) Evaluate(ctx context.Context, r *essay.Record) (string, error) {
	p, err := e.builder.Build(r)
	if err != nil {
		return "", err
	}

	slog.Info("evaluating essay",
		"model", e.config.Model,
		"competencies", len(r.Competencies),
	)
	slog.Debug("rendered prompts", "system", p.System, "user", p.User)

	start := time.Now()
	resp, err := e.client.ChatCompletion(ctx, llm.ChatRequest{
		Model:         e.config.Model,
		SystemMessage: p.System,
		UserMessage:   p.User,
		Temperature:   e.config.Temperature,
	})
	if err != nil {
		if apperror.KindOf(err) == apperror.KindUnexpected {
			err = apperror.Wrap(apperror.KindBackend, err, "")
		}
		return "", err
	}

	slog.Info("evaluation received",
		"model", e.config.Model,
		"duration", time.Since(start),
		"reply_bytes", len(resp.Content),
	)
	return resp.Content, nil
}

// Apply evaluates r and appends the reply to its commentary.
// r is left untouched when the evaluation fails.
func (e *Evaluator) Apply(ctx context.Context, r *essay.Record) error {
	reply, err := e.Evaluate(ctx, r)
	if err != nil {
		return err
	}
	r.AppendCommentary(reply)
	return nil
}
