// Package notion reads story notes from Notion through jomei/notionapi.
//
// Notes are selected either by querying a database or by following a
// relation property on a parent page. Page blocks are rendered as text
// (headings keep a '#' prefix, toggles are expanded) and parsed with
// connectors.ParseNote. All requests share one token-bucket limiter that
// also backs off when Notion answers 429.
package notion
