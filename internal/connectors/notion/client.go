package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jomei/notionapi"
)

const (
	// DefaultTimeout bounds a single Notion API request.
	DefaultTimeout = 30 * time.Second

	// PageSize is the page size for paginated endpoints (Notion maximum).
	PageSize = 100

	defaultBaseURL = "https://api.notion.com"
	notionVersion  = "2022-06-28"
	maxRetries     = 3
)

// API is the slice of the Notion API the connector needs.
// Cursors are empty for the first page.
type API interface {
	GetPage(ctx context.Context, id string) (*notionapi.Page, error)
	QueryDatabase(ctx context.Context, id, cursor string) (*notionapi.DatabaseQueryResponse, error)
	GetChildren(ctx context.Context, blockID, cursor string) (*notionapi.GetChildrenResponse, error)

	// GetPropertyItem returns one page of a page property's values. A page
	// object inlines at most 25 relation targets; this endpoint has them all.
	GetPropertyItem(ctx context.Context, pageID, propertyID, cursor string) (*PropertyItemList, error)
}

// PropertyItemList is one page of GET /v1/pages/{page}/properties/{property}.
type PropertyItemList struct {
	Results    []PropertyItem   `json:"results"`
	HasMore    bool             `json:"has_more"`
	NextCursor notionapi.Cursor `json:"next_cursor"`
}

// PropertyItem is a single value of a paginated property. Only relation
// values are decoded.
type PropertyItem struct {
	Type     string              `json:"type"`
	Relation *notionapi.Relation `json:"relation,omitempty"`
}

// Client adapts notionapi.Client to API.
type Client struct {
	api     *notionapi.Client
	http    *http.Client
	token   string
	baseURL string
}

// NewClient creates a rate-limited Notion client.
// A nil limiter uses DefaultRequestsPerSecond.
func NewClient(token string, limiter *RateLimiter) *Client {
	if limiter == nil {
		limiter = NewRateLimiter(DefaultRequestsPerSecond)
	}
	hc := &http.Client{
		Timeout:   DefaultTimeout,
		Transport: NewTransport(nil, limiter),
	}
	return &Client{
		api:     notionapi.NewClient(notionapi.Token(token), notionapi.WithHTTPClient(hc)),
		http:    hc,
		token:   token,
		baseURL: defaultBaseURL,
	}
}

// GetPage retrieves a page with its properties.
func (c *Client) GetPage(ctx context.Context, id string) (*notionapi.Page, error) {
	return c.api.Page.Get(ctx, notionapi.PageID(id))
}

// QueryDatabase returns one page of database rows.
func (c *Client) QueryDatabase(ctx context.Context, id, cursor string) (*notionapi.DatabaseQueryResponse, error) {
	return c.api.Database.Query(ctx, notionapi.DatabaseID(id), &notionapi.DatabaseQueryRequest{
		StartCursor: notionapi.Cursor(cursor),
		PageSize:    PageSize,
	})
}

// GetChildren returns one page of child blocks.
func (c *Client) GetChildren(ctx context.Context, blockID, cursor string) (*notionapi.GetChildrenResponse, error) {
	return c.api.Block.GetChildren(ctx, notionapi.BlockID(blockID), &notionapi.Pagination{
		StartCursor: notionapi.Cursor(cursor),
		PageSize:    PageSize,
	})
}

// GetPropertyItem calls the property item endpoint, which notionapi does not
// wrap. It shares the rate-limited transport and retries 429s the way
// notionapi does.
func (c *Client) GetPropertyItem(ctx context.Context, pageID, propertyID, cursor string) (*PropertyItemList, error) {
	// Property IDs arrive already URL-encoded from the page object.
	endpoint := c.baseURL + "/v1/pages/" + url.PathEscape(pageID) + "/properties/" + propertyID
	q := url.Values{"page_size": {fmt.Sprint(PageSize)}}
	if cursor != "" {
		q.Set("start_cursor", cursor)
	}
	endpoint += "?" + q.Encode()

	for attempt := 1; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("build property request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Notion-Version", notionVersion)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("get property %s of %s: %w", propertyID, pageID, err)
		}
		if resp.StatusCode == http.StatusTooManyRequests && attempt < maxRetries {
			resp.Body.Close()
			continue
		}

		list, err := decodePropertyItems(resp)
		if err != nil {
			return nil, fmt.Errorf("get property %s of %s: %w", propertyID, pageID, err)
		}
		return list, nil
	}
}

func decodePropertyItems(resp *http.Response) (*PropertyItemList, error) {
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("notion returned %d: %s", resp.StatusCode, body)
	}
	var list PropertyItemList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode property items: %w", err)
	}
	return &list, nil
}
