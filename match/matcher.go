package match

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/laydros/bookmarks-local-ai/bookmark"
	"github.com/laydros/bookmarks-local-ai/embedding"
	"github.com/laydros/bookmarks-local-ai/index"
)

// Error values for matcher configuration.
var (
	// ErrInvalidThreshold is returned when a similarity threshold falls
	// outside [0,1]. Rejected before any remote call.
	ErrInvalidThreshold = errors.New("similarity threshold out of range [0,1]")
)

const (
	// DefaultThreshold is the semantic similarity floor for duplicates.
	DefaultThreshold = 0.85

	// DefaultK is the neighbor count fetched per semantic lookup.
	DefaultK = 10
)

// Config tunes a Matcher. Zero values select the defaults.
type Config struct {
	// Threshold is the minimum semantic score for a duplicate candidate.
	// A candidate scoring exactly Threshold is included.
	Threshold float64

	// K is the number of nearest neighbors fetched per semantic lookup.
	K int
}

// Matcher finds duplicate candidates for bookmark records. The vector
// index must already hold the corpus being matched against; the facade
// package takes care of that.
type Matcher struct {
	idx       *index.Index
	embedder  embedding.Embedder
	threshold float64
	k         int
}

// New creates a Matcher over the given index and embedder. Configuration
// is validated up front; an out-of-range threshold fails fast with
// ErrInvalidThreshold.
func New(idx *index.Index, embedder embedding.Embedder, cfg Config) (*Matcher, error) {
	if cfg.Threshold < 0 || cfg.Threshold > 1 {
		return nil, ErrInvalidThreshold
	}
	threshold := cfg.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	k := cfg.K
	if k <= 0 {
		k = DefaultK
	}
	return &Matcher{idx: idx, embedder: embedder, threshold: threshold, k: k}, nil
}

// Threshold returns the effective semantic threshold.
func (m *Matcher) Threshold() float64 { return m.threshold }

// K returns the effective neighbor count for semantic queries.
func (m *Matcher) K() int { return m.k }

// Match returns all duplicate candidates for record within corpus, merged
// across levels and de-duplicated by target ID — the cheapest level and
// highest score wins per target. Results are ordered by level cost, then
// score descending, then ID ascending.
//
// An embedding failure surfaces as an error wrapping
// embedding.ErrUnavailable; URL and title levels complete regardless and
// their candidates are returned alongside the error.
func (m *Matcher) Match(ctx context.Context, record bookmark.Bookmark, corpus []bookmark.Bookmark) ([]Candidate, error) {
	best := make(map[string]Candidate)

	merge := func(c Candidate) {
		prev, ok := best[c.ID]
		if !ok || c.Level.Cheaper(prev.Level) || (c.Level == prev.Level && c.Score > prev.Score) {
			best[c.ID] = c
		}
	}

	// Level 1: exact URL.
	recURL := bookmark.NormalizeURL(record.URL)
	if recURL != "" {
		for _, other := range corpus {
			if other.ID == record.ID {
				continue
			}
			if bookmark.NormalizeURL(other.URL) == recURL {
				merge(Candidate{ID: other.ID, Score: 1.0, Level: LevelExactURL})
			}
		}
	}

	// Level 2: normalized title.
	recTitle := bookmark.NormalizeTitle(record.Title)
	if recTitle != "" {
		for _, other := range corpus {
			if other.ID == record.ID {
				continue
			}
			if _, hit := best[other.ID]; hit {
				continue
			}
			if bookmark.NormalizeTitle(other.Title) == recTitle {
				merge(Candidate{ID: other.ID, Score: 1.0, Level: LevelNormalizedTitle})
			}
		}
	}

	// Level 3: semantic similarity over title+description.
	var embedErr error
	text := strings.TrimSpace(record.Title + " " + record.ContentText())
	if text != "" && m.embedder != nil {
		vec, err := m.embedder.Embed(ctx, text)
		if err != nil {
			embedErr = err
		} else {
			hits, qerr := m.idx.Query(vec, m.k, index.QueryOptions{ExcludeID: record.ID})
			if qerr != nil {
				embedErr = qerr
			}
			for _, h := range hits {
				if h.Score < m.threshold {
					continue
				}
				if _, hit := best[h.ID]; hit {
					continue
				}
				merge(Candidate{ID: h.ID, Score: h.Score, Level: LevelSemantic})
			}
		}
	}

	out := make([]Candidate, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Level != out[j].Level {
			return out[i].Level.Cheaper(out[j].Level)
		}
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	return out, embedErr
}

// IsDuplicate reports the best existing duplicate of record within
// corpus, or nil when none matches. URL and title hits win over semantic
// ones regardless of score.
func (m *Matcher) IsDuplicate(ctx context.Context, record bookmark.Bookmark, corpus []bookmark.Bookmark) (*Candidate, error) {
	candidates, err := m.Match(ctx, record, corpus)
	if len(candidates) == 0 {
		return nil, err
	}
	c := candidates[0]
	return &c, err
}
