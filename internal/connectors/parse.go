package connectors

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/storybank/internal/core/domain"
)

// Metadata keys set by ParseNote.
const (
	MetaTitle   = "title"
	MetaProject = "project"
	MetaTopic   = "topic"
	MetaTags    = "tags"
)

// Section names used when a note has no headings of its own.
const (
	OverviewSection  = "Overview"
	FullStorySection = "Full story"
)

// MinFullStoryLength is the trimmed body length a heading-less note must
// exceed to become a single section. Shorter bodies are placeholders.
const MinFullStoryLength = 50

var (
	headingRe = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*#*\s*$`)
	tagsRe    = regexp.MustCompile(`(?i)^\s*tags?\s*:\s*(.*)$`)
)

// ParseNote turns a titled block of markdown-ish text into a note.
//
// A title of the form "Company: Story" sets the project and topic metadata.
// A "Tags: a, b" line sets the tags metadata and is removed from the body.
// Every heading starts a section named after the heading text; text before
// the first heading becomes an Overview section. A body with no headings
// becomes one Full story section when it is long enough, otherwise the
// note has no sections.
func ParseNote(id, title, content string) domain.Note {
	note := domain.Note{
		ID:       id,
		Title:    strings.TrimSpace(title),
		Metadata: TitleMetadata(title),
	}

	var (
		body     []string
		tags     []string
		sections []domain.Section
		current  *domain.Section
		preamble []string
		headings int
	)

	flush := func() {
		if current == nil {
			return
		}
		current.Text = strings.TrimSpace(strings.Join(body, "\n"))
		sections = append(sections, *current)
		body = nil
	}

	for _, line := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n") {
		if tags == nil {
			if m := tagsRe.FindStringSubmatch(line); m != nil {
				tags = splitTags(m[1])
				continue
			}
		}
		if m := headingRe.FindStringSubmatch(line); m != nil {
			flush()
			if headings == 0 {
				preamble = body
				body = nil
			}
			headings++
			current = &domain.Section{Name: strings.TrimSpace(m[2])}
			continue
		}
		body = append(body, line)
	}

	if headings == 0 {
		text := strings.TrimSpace(strings.Join(body, "\n"))
		if len(text) > MinFullStoryLength {
			note.Sections = []domain.Section{{Name: FullStorySection, Text: text}}
		}
	} else {
		flush()
		if text := strings.TrimSpace(strings.Join(preamble, "\n")); text != "" {
			sections = append([]domain.Section{{Name: OverviewSection, Text: text}}, sections...)
		}
		note.Sections = sections
	}

	if len(tags) > 0 {
		note.Metadata[MetaTags] = strings.Join(tags, ", ")
	}
	return note
}

// TitleMetadata derives title, project and topic metadata from a note title.
// Without a colon the whole title is the topic.
func TitleMetadata(title string) map[string]string {
	title = strings.TrimSpace(title)
	meta := map[string]string{MetaTitle: title}
	if project, topic, ok := strings.Cut(title, ":"); ok {
		if p := strings.TrimSpace(project); p != "" {
			meta[MetaProject] = p
		}
		meta[MetaTopic] = strings.TrimSpace(topic)
		return meta
	}
	meta[MetaTopic] = title
	return meta
}

func splitTags(s string) []string {
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}
