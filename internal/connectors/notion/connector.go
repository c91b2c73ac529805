package notion

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jomei/notionapi"

	"github.com/custodia-labs/storybank/internal/connectors"
	"github.com/custodia-labs/storybank/internal/core/domain"
	"github.com/custodia-labs/storybank/internal/core/ports/driven"
	"github.com/custodia-labs/storybank/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.NoteSource = (*Connector)(nil)

// Defaults for property names.
const (
	DefaultRelationProperty = "Add a note"
	DefaultTitleProperty    = "Name"
	TagsProperty            = "Tags"
	untitled                = "Untitled"
)

// ErrNoSelector is returned when neither a database nor a page is configured.
var ErrNoSelector = errors.New("notion: database_id or page_id is required")

// Connector reads story notes from Notion.
//
// With a database ID every row of the database is a note. Otherwise the
// notes are the pages linked from the relation property on a parent page.
type Connector struct {
	api      API
	settings domain.NotionSettings
}

// New creates a connector over api.
func New(api API, settings domain.NotionSettings) *Connector {
	if settings.RelationProperty == "" {
		settings.RelationProperty = DefaultRelationProperty
	}
	if settings.TitleProperty == "" {
		settings.TitleProperty = DefaultTitleProperty
	}
	return &Connector{api: api, settings: settings}
}

// NewFromSettings creates a connector with a rate-limited SDK client.
func NewFromSettings(settings domain.NotionSettings) (*Connector, error) {
	if settings.Token == "" {
		return nil, fmt.Errorf("%w: notion token is not set", domain.ErrInvalidInput)
	}
	client := NewClient(settings.Token, NewRateLimiter(settings.RequestsPerSecond))
	return New(client, settings), nil
}

// Name returns the source name.
func (c *Connector) Name() string {
	return string(domain.SourceTypeNotion)
}

// FetchNotes returns every story note with its parsed sections.
func (c *Connector) FetchNotes(ctx context.Context) ([]domain.Note, error) {
	pages, err := c.notePages(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("notion: %d note pages", len(pages))

	notes := make([]domain.Note, 0, len(pages))
	for i := range pages {
		note, err := c.readNote(ctx, &pages[i])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
		}
		logger.Debug("notion: %q -> %d sections", note.Title, len(note.Sections))
		notes = append(notes, note)
	}
	return notes, nil
}

func (c *Connector) notePages(ctx context.Context) ([]notionapi.Page, error) {
	switch {
	case c.settings.DatabaseID != "":
		pages, err := c.queryDatabase(ctx, c.settings.DatabaseID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
		}
		return pages, nil
	case c.settings.PageID != "":
		pages, err := c.relatedPages(ctx, c.settings.PageID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
		}
		return pages, nil
	default:
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, ErrNoSelector)
	}
}

func (c *Connector) queryDatabase(ctx context.Context, id string) ([]notionapi.Page, error) {
	var (
		pages  []notionapi.Page
		cursor string
	)
	for {
		resp, err := c.api.QueryDatabase(ctx, id, cursor)
		if err != nil {
			return nil, fmt.Errorf("query database %s: %w", id, err)
		}
		pages = append(pages, resp.Results...)
		if !resp.HasMore || resp.NextCursor == "" {
			return pages, nil
		}
		cursor = string(resp.NextCursor)
	}
}

// relatedPages follows the relation property on the parent page.
func (c *Connector) relatedPages(ctx context.Context, parentID string) ([]notionapi.Page, error) {
	parent, err := c.api.GetPage(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("get page %s: %w", parentID, err)
	}

	prop, ok := parent.Properties[c.settings.RelationProperty]
	if !ok {
		return nil, fmt.Errorf("page %s has no property %q (have: %s)",
			parentID, c.settings.RelationProperty, strings.Join(propertyNames(parent.Properties), ", "))
	}
	rel, ok := prop.(*notionapi.RelationProperty)
	if !ok {
		return nil, fmt.Errorf("property %q is %s, not a relation", c.settings.RelationProperty, prop.GetType())
	}

	ids, err := c.relationIDs(ctx, parentID, rel)
	if err != nil {
		return nil, err
	}
	logger.Debug("notion: relation %q links %d notes", c.settings.RelationProperty, len(ids))

	pages := make([]notionapi.Page, 0, len(ids))
	for _, id := range ids {
		page, err := c.api.GetPage(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get page %s: %w", id, err)
		}
		pages = append(pages, *page)
	}
	return pages, nil
}

// relationIDs collects every target of rel, in relation order. The page
// object only inlines the first 25, so the property item endpoint is paged
// to the end. A property without an ID has nothing to page and the inline
// list is used.
func (c *Connector) relationIDs(ctx context.Context, pageID string, rel *notionapi.RelationProperty) ([]string, error) {
	if rel.ID == "" {
		ids := make([]string, 0, len(rel.Relation))
		for _, r := range rel.Relation {
			ids = append(ids, string(r.ID))
		}
		return ids, nil
	}

	var (
		ids    []string
		seen   = map[string]bool{}
		cursor string
	)
	for {
		list, err := c.api.GetPropertyItem(ctx, pageID, string(rel.ID), cursor)
		if err != nil {
			return nil, err
		}
		for _, item := range list.Results {
			if item.Relation == nil || seen[string(item.Relation.ID)] {
				continue
			}
			seen[string(item.Relation.ID)] = true
			ids = append(ids, string(item.Relation.ID))
		}
		if !list.HasMore || list.NextCursor == "" {
			return ids, nil
		}
		cursor = string(list.NextCursor)
	}
}

func (c *Connector) readNote(ctx context.Context, page *notionapi.Page) (domain.Note, error) {
	id := string(page.ID)
	content, err := pageContent(ctx, c.api, id, 0)
	if err != nil {
		return domain.Note{}, err
	}

	note := connectors.ParseNote(id, c.title(page.Properties), content)
	if _, ok := note.Metadata[connectors.MetaTags]; !ok {
		if tags := multiSelect(page.Properties, TagsProperty); len(tags) > 0 {
			note.Metadata[connectors.MetaTags] = strings.Join(tags, ", ")
		}
	}
	return note, nil
}

// title reads the configured title property, falling back to whichever
// property has the title type.
func (c *Connector) title(props notionapi.Properties) string {
	if t, ok := props[c.settings.TitleProperty].(*notionapi.TitleProperty); ok {
		if s := strings.TrimSpace(plainText(t.Title)); s != "" {
			return s
		}
	}
	for _, p := range props {
		if t, ok := p.(*notionapi.TitleProperty); ok {
			if s := strings.TrimSpace(plainText(t.Title)); s != "" {
				return s
			}
		}
	}
	return untitled
}

func multiSelect(props notionapi.Properties, name string) []string {
	ms, ok := props[name].(*notionapi.MultiSelectProperty)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(ms.MultiSelect))
	for _, o := range ms.MultiSelect {
		if o.Name != "" {
			out = append(out, o.Name)
		}
	}
	return out
}

func propertyNames(props notionapi.Properties) []string {
	names := make([]string, 0, len(props))
	for k := range props {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
