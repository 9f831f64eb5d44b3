package bookmark

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
)

// Bookmark is the canonical record for a single saved link.
// Field aliasing from source files (url/link, description/excerpt) is
// resolved by the loader before a Bookmark reaches any other package.
type Bookmark struct {
	// ID is the stable identifier, assigned by AssignIDs from the
	// normalized URL (with a numeric suffix when several records share
	// a URL).
	ID string `json:"-"`

	URL         string   `json:"url"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Excerpt     string   `json:"excerpt,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Type        string   `json:"type,omitempty"`

	// SourceFile is the category file the bookmark currently lives in,
	// as a base filename (e.g. "3d-printing.json").
	SourceFile string `json:"-"`
}

// IDForURL derives a bookmark ID from a raw URL. Two URLs pointing at
// the same resource produce the same ID regardless of scheme case,
// default ports, or trailing slashes.
func IDForURL(raw string) string {
	sum := sha256.Sum256([]byte(NormalizeURL(raw)))
	return hex.EncodeToString(sum[:8])
}

// AssignIDs fills in the ID of every record, in order. IDs derive from
// the normalized URL; records sharing a URL (the duplicates this module
// exists to find) get a deterministic numeric suffix so each record stays
// individually addressable. Records with a preset ID are left alone.
func AssignIDs(records []Bookmark) {
	seen := make(map[string]int, len(records))
	for i := range records {
		if records[i].ID != "" {
			seen[records[i].ID]++
			continue
		}
		id := IDForURL(records[i].URL)
		seen[id]++
		if n := seen[id]; n > 1 {
			id = fmt.Sprintf("%s-%d", id, n)
		}
		records[i].ID = id
	}
}

// ContentText returns the main content text, preferring the description
// over the excerpt.
func (b Bookmark) ContentText() string {
	if b.Description != "" {
		return b.Description
	}
	return b.Excerpt
}

// Enriched reports whether the bookmark has both content and tags.
func (b Bookmark) Enriched() bool {
	return b.ContentText() != "" && len(b.Tags) > 0
}

// Domain returns the host portion of the URL, or "" if it cannot be parsed.
func (b Bookmark) Domain() string {
	u, err := url.Parse(strings.TrimSpace(b.URL))
	if err != nil {
		return ""
	}
	return u.Host
}

// SearchText builds the text used for embedding and search: title,
// content, and tags joined with spaces. Empty parts are skipped.
func (b Bookmark) SearchText() string {
	parts := make([]string, 0, 3)
	if b.Title != "" {
		parts = append(parts, b.Title)
	}
	if content := b.ContentText(); content != "" {
		parts = append(parts, content)
	}
	if len(b.Tags) > 0 {
		parts = append(parts, strings.Join(b.Tags, " "))
	}
	return strings.Join(parts, " ")
}

// NormalizeTitle lowercases a title, strips punctuation, and collapses
// runs of whitespace to single spaces. Titles that normalize to the same
// string are treated as strong duplicate signals.
func NormalizeTitle(title string) string {
	var sb strings.Builder
	sb.Grow(len(title))
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r > 127:
			// Keep non-ASCII letters; only ASCII punctuation is stripped.
			sb.WriteRune(r)
		default:
			sb.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
