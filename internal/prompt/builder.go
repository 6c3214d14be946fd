// Package prompt renders the evaluator instructions for an essay record.
package prompt

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/giantswarm/essay-feedback/internal/apperror"
	"github.com/giantswarm/essay-feedback/internal/essay"
)

// Prompt is the rendered system and user instruction pair.
type Prompt struct {
	System string
	User   string
}

// Data is what the templates are executed against.
type Data struct {
	Theme        string
	Text         string
	Competencies []CompetencyData
}

// CompetencyData is one competency with its 1-based position in the record.
type CompetencyData struct {
	Position int
	Name     string
	Score    string
}

// Builder renders prompts from parsed templates.
type Builder struct {
	system *template.Template
	user   *template.Template
}

// NewBuilder parses the templates in cfg.
func NewBuilder(cfg *Config) (*Builder, error) {
	system, err := template.New("system").Parse(cfg.SystemMessage)
	if err != nil {
		return nil, fmt.Errorf("invalid system message template: %w", err)
	}
	user, err := template.New("user").Parse(cfg.UserMessage)
	if err != nil {
		return nil, fmt.Errorf("invalid user message template: %w", err)
	}
	return &Builder{system: system, user: user}, nil
}

// NewData converts a record into template data, keeping competency order.
func NewData(r *essay.Record) Data {
	d := Data{
		Theme:        r.Theme,
		Text:         r.Text,
		Competencies: make([]CompetencyData, len(r.Competencies)),
	}
	for i, c := range r.Competencies {
		d.Competencies[i] = CompetencyData{
			Position: i + 1,
			Name:     c.Name,
			Score:    c.Score.String(),
		}
	}
	return d
}

// Build renders the system and user instructions for r.
func (b *Builder) Build(r *essay.Record) (Prompt, error) {
	if err := r.Validate(); err != nil {
		return Prompt{}, err
	}

	data := NewData(r)

	var system, user strings.Builder
	if err := b.system.Execute(&system, data); err != nil {
		return Prompt{}, apperror.Wrap(apperror.KindUnexpected, err, "failed to render system message")
	}
	if err := b.user.Execute(&user, data); err != nil {
		return Prompt{}, apperror.Wrap(apperror.KindUnexpected, err, "failed to render user message")
	}

	return Prompt{System: system.String(), User: user.String()}, nil
}
