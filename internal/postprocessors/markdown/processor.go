// Package markdown strips markdown formatting from chunk text so that
// syntax characters do not take part in embedding.
package markdown

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/storybank/internal/core/domain"
)

var (
	codeFenceRe   = regexp.MustCompile("(?s)```[^\\n]*\\n(.*?)```")
	inlineCodeRe  = regexp.MustCompile("`([^`]+)`")
	imageRe       = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	linkRe        = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headingRe     = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	strongRe      = regexp.MustCompile(`(\*\*|__)(\S(?:.*?\S)?)(\*\*|__)`)
	emphasisRe    = regexp.MustCompile(`(^|[\s(])[*_](\S(?:[^*_]*?\S)?)[*_]`)
	strikeRe      = regexp.MustCompile(`~~(.+?)~~`)
	blockquoteRe  = regexp.MustCompile(`(?m)^\s*>\s?`)
	ruleRe        = regexp.MustCompile(`(?m)^\s*([-*_])(\s*([-*_])){2,}\s*$`)
	bulletRe      = regexp.MustCompile(`(?m)^(\s*)[-*+]\s+(\[[ xX]\]\s+)?`)
	numberedRe    = regexp.MustCompile(`(?m)^(\s*)\d+[.)]\s+`)
	manyNewlineRe = regexp.MustCompile(`\n{3,}`)
)

// Processor removes markdown syntax from each chunk. Chunks left empty
// are removed.
type Processor struct {
	keepCode bool
}

// Option configures the markdown processor.
type Option func(*Processor)

// WithKeepCode keeps the contents of code blocks and inline code.
// By default fenced blocks are dropped entirely.
func WithKeepCode(keep bool) Option {
	return func(p *Processor) {
		p.keepCode = keep
	}
}

// New creates a new markdown processor.
func New(opts ...Option) *Processor {
	p := &Processor{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "markdown"
}

// Process strips formatting from each chunk, keeping their order.
func (p *Processor) Process(_ context.Context, _ *domain.Note, chunks []domain.Chunk) ([]domain.Chunk, error) {
	out := make([]domain.Chunk, 0, len(chunks))
	for _, c := range chunks {
		c.Text = p.Strip(c.Text)
		if c.Text == "" {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// Strip returns text with common markdown formatting removed.
func (p *Processor) Strip(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	if p.keepCode {
		text = codeFenceRe.ReplaceAllString(text, "$1")
		text = inlineCodeRe.ReplaceAllString(text, "$1")
	} else {
		text = codeFenceRe.ReplaceAllString(text, "")
		text = inlineCodeRe.ReplaceAllString(text, "")
	}

	text = imageRe.ReplaceAllString(text, "$1")
	text = linkRe.ReplaceAllString(text, "$1")
	text = ruleRe.ReplaceAllString(text, "")
	text = headingRe.ReplaceAllString(text, "")
	text = blockquoteRe.ReplaceAllString(text, "")
	text = bulletRe.ReplaceAllString(text, "$1")
	text = numberedRe.ReplaceAllString(text, "$1")
	text = strongRe.ReplaceAllString(text, "$2")
	text = emphasisRe.ReplaceAllString(text, "$1$2")
	text = strikeRe.ReplaceAllString(text, "$1")
	text = manyNewlineRe.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}
