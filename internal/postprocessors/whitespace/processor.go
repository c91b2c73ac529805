// Package whitespace normalises chunk text produced by upstream processors.
package whitespace

import (
	"context"
	"strings"

	"github.com/custodia-labs/storybank/internal/core/domain"
)

// Processor trims chunk text, collapses runs of spaces and tabs, and limits
// consecutive blank lines. Chunks left empty are removed.
type Processor struct {
	maxBlankLines int
}

// Option configures the whitespace processor.
type Option func(*Processor)

// WithMaxBlankLines sets how many consecutive blank lines are kept.
func WithMaxBlankLines(n int) Option {
	return func(p *Processor) {
		if n >= 0 {
			p.maxBlankLines = n
		}
	}
}

// New creates a new whitespace processor.
func New(opts ...Option) *Processor {
	p := &Processor{maxBlankLines: 1}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "whitespace"
}

// Process normalises the text of each chunk, keeping their order.
func (p *Processor) Process(_ context.Context, _ *domain.Note, chunks []domain.Chunk) ([]domain.Chunk, error) {
	out := make([]domain.Chunk, 0, len(chunks))
	for _, c := range chunks {
		c.Text = p.normalise(c.Text)
		if c.Text == "" {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (p *Processor) normalise(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	kept := make([]string, 0, len(lines))
	blank := 0
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			blank++
			if blank > p.maxBlankLines {
				continue
			}
		} else {
			blank = 0
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
