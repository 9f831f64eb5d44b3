package category

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/laydros/bookmarks-local-ai/bookmark"
	"github.com/laydros/bookmarks-local-ai/embedding"
	"github.com/laydros/bookmarks-local-ai/index"
)

// Error values for proposal validation. Both are reported before any
// embedding call is made.
var (
	ErrInvalidLimit     = errors.New("category: limit must be at least 1")
	ErrInvalidThreshold = errors.New("category: threshold must be in [0, 1]")
)

// oversample is how many index hits to request per requested candidate,
// leaving room for threshold and same-file filtering.
const oversample = 3

// Candidate is one bookmark proposed for a category, with its
// confidence score.
type Candidate struct {
	ID    string
	Score float64
	URL   string
	Title string
}

// Proposal is the reviewed output of Propose: candidates for a target
// category, strongest first.
type Proposal struct {
	// Category is the cleaned, human-readable category name.
	Category string

	// TargetFile is the category's file name, with .json ensured.
	TargetFile string

	// Candidates are the proposed bookmarks, score descending.
	Candidates []Candidate
}

// Move records one approved relocation for the loader to perform.
type Move struct {
	ID          string
	TargetFile  string
	CategoryTag string
}

// Resolver proposes category assignments by embedding category names
// and searching the vector index.
type Resolver struct {
	idx      *index.Index
	embedder embedding.Embedder
}

// NewResolver creates a Resolver over the given index and embedder.
func NewResolver(idx *index.Index, embedder embedding.Embedder) *Resolver {
	return &Resolver{idx: idx, embedder: embedder}
}

// Propose finds up to limit bookmarks that belong in the named category
// but are not yet filed there. Candidates below the similarity
// threshold are dropped; an empty proposal is a valid answer, not an
// error.
func (r *Resolver) Propose(ctx context.Context, name string, corpus []bookmark.Bookmark, limit int, threshold float64) (*Proposal, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLimit, limit)
	}
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidThreshold, threshold)
	}

	clean := CleanName(name)
	target := TargetFile(name)

	vec, err := r.embedder.Embed(ctx, r.queryText(clean, target, corpus))
	if err != nil {
		return nil, fmt.Errorf("embed category %q: %w", clean, err)
	}

	hits, err := r.idx.Query(vec, limit*oversample, index.QueryOptions{
		Filter: func(m index.Metadata) bool {
			return filepath.Base(m.SourceFile) != target
		},
	})
	if err != nil {
		return nil, err
	}

	p := &Proposal{Category: clean, TargetFile: target}
	for _, h := range hits {
		if h.Score < threshold {
			continue
		}
		p.Candidates = append(p.Candidates, Candidate{
			ID:    h.ID,
			Score: h.Score,
			URL:   h.Metadata.URL,
			Title: h.Metadata.Title,
		})
		if len(p.Candidates) == limit {
			break
		}
	}
	return p, nil
}

// Apply turns the approved subset of a proposal into moves. IDs not
// present in the proposal are ignored.
func (r *Resolver) Apply(p *Proposal, approvedIDs []string) []Move {
	if p == nil || len(approvedIDs) == 0 {
		return nil
	}
	proposed := make(map[string]bool, len(p.Candidates))
	for _, c := range p.Candidates {
		proposed[c.ID] = true
	}
	tag := strings.TrimSuffix(p.TargetFile, ".json")

	var moves []Move
	for _, id := range approvedIDs {
		if !proposed[id] {
			continue
		}
		moves = append(moves, Move{ID: id, TargetFile: p.TargetFile, CategoryTag: tag})
	}
	return moves
}

// queryText builds the embedding query for a category. When the
// category already has members, their titles sharpen the query beyond
// the bare name.
func (r *Resolver) queryText(clean, target string, corpus []bookmark.Bookmark) string {
	var examples []string
	for _, b := range corpus {
		if filepath.Base(b.SourceFile) != target {
			continue
		}
		if t := strings.TrimSpace(b.Title); t != "" {
			examples = append(examples, t)
		}
		if len(examples) == 3 {
			break
		}
	}
	if len(examples) == 0 {
		return clean
	}
	return clean + ": " + strings.Join(examples, "; ")
}

// CleanName turns a category file name into a human-readable query
// phrase: "3d-printing.json" becomes "3d printing".
func CleanName(name string) string {
	name = strings.TrimSuffix(name, ".json")
	name = strings.ReplaceAll(name, "-", " ")
	name = strings.ReplaceAll(name, "_", " ")
	return strings.TrimSpace(name)
}

// TargetFile normalizes a category name into its file name, ensuring a
// .json extension.
func TargetFile(name string) string {
	if strings.HasSuffix(name, ".json") {
		return name
	}
	return name + ".json"
}
