package notion

import (
	"context"
	"fmt"
	"strings"

	"github.com/jomei/notionapi"
)

// maxDepth limits toggle recursion.
const maxDepth = 8

// pageContent renders the blocks under blockID as text, one line per block.
// Headings are prefixed with '#' per level so ParseNote can split on them.
// Toggle children are fetched and rendered after the toggle's own text.
func pageContent(ctx context.Context, api API, blockID string, depth int) (string, error) {
	blocks, err := listChildren(ctx, api, blockID)
	if err != nil {
		return "", err
	}

	var lines []string
	for _, block := range blocks {
		text, heading := blockText(block)
		if text != "" {
			if heading > 0 {
				text = strings.Repeat("#", heading) + " " + text
			}
			lines = append(lines, text)
		}

		if _, ok := block.(*notionapi.ToggleBlock); ok && block.GetHasChildren() && depth < maxDepth {
			child, err := pageContent(ctx, api, string(block.GetID()), depth+1)
			if err != nil {
				return "", err
			}
			if child != "" {
				lines = append(lines, child)
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}

// listChildren follows pagination until every child block is read.
func listChildren(ctx context.Context, api API, blockID string) ([]notionapi.Block, error) {
	var (
		blocks []notionapi.Block
		cursor string
	)
	for {
		resp, err := api.GetChildren(ctx, blockID, cursor)
		if err != nil {
			return nil, fmt.Errorf("list children of %s: %w", blockID, err)
		}
		blocks = append(blocks, resp.Results...)
		if !resp.HasMore || resp.NextCursor == "" {
			return blocks, nil
		}
		cursor = string(resp.NextCursor)
	}
}

// blockText returns the plain text of a block and its heading level
// (0 for non-headings). Unsupported block types yield "".
func blockText(block notionapi.Block) (string, int) {
	switch b := block.(type) {
	case *notionapi.ParagraphBlock:
		return plainText(b.Paragraph.RichText), 0
	case *notionapi.BulletedListItemBlock:
		return plainText(b.BulletedListItem.RichText), 0
	case *notionapi.NumberedListItemBlock:
		return plainText(b.NumberedListItem.RichText), 0
	case *notionapi.QuoteBlock:
		return plainText(b.Quote.RichText), 0
	case *notionapi.CalloutBlock:
		return plainText(b.Callout.RichText), 0
	case *notionapi.ToggleBlock:
		return plainText(b.Toggle.RichText), 0
	case *notionapi.Heading1Block:
		return plainText(b.Heading1.RichText), 1
	case *notionapi.Heading2Block:
		return plainText(b.Heading2.RichText), 2
	case *notionapi.Heading3Block:
		return plainText(b.Heading3.RichText), 3
	default:
		return "", 0
	}
}

func plainText(rich []notionapi.RichText) string {
	var sb strings.Builder
	for _, rt := range rich {
		sb.WriteString(rt.PlainText)
	}
	return sb.String()
}
