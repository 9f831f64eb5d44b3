package lexical

import (
	"fmt"
	"sort"
	"sync"

	"github.com/blevesearch/bleve/v2"
)

// Defaults for Config fields left zero.
const (
	DefaultTitleBoost = 3
	DefaultTagsBoost  = 2
)

// Doc is one bookmark prepared for keyword indexing.
type Doc struct {
	ID      string
	Title   string
	Content string
	URL     string
	Tags    []string
}

// Hit is one keyword match. Score is normalized to [0,1] relative to
// the best hit of the same search.
type Hit struct {
	ID    string
	Score float64
}

// Config tunes the searcher. Zero values select the defaults.
type Config struct {
	// TitleBoost multiplies the weight of title matches.
	TitleBoost float64

	// TagsBoost multiplies the weight of tag matches.
	TagsBoost float64

	// MaxDocs caps how many documents are indexed (0 = unlimited).
	MaxDocs int

	// MaxDocTextLen truncates long content before indexing
	// (0 = unlimited).
	MaxDocTextLen int
}

func (c Config) withDefaults() Config {
	if c.TitleBoost <= 0 {
		c.TitleBoost = DefaultTitleBoost
	}
	if c.TagsBoost <= 0 {
		c.TagsBoost = DefaultTagsBoost
	}
	return c
}

// indexedDoc is the shape Bleve indexes. Field names double as query
// field names.
type indexedDoc struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// Searcher is a BM25 keyword searcher over bookmark documents.
type Searcher struct {
	cfg Config

	mu          sync.Mutex
	idx         bleve.Index
	fingerprint string
}

// NewSearcher creates a Searcher with the given configuration.
func NewSearcher(cfg Config) *Searcher {
	return &Searcher{cfg: cfg.withDefaults()}
}

// Search runs a keyword search over docs. The internal index is
// rebuilt only when the document set changed since the last call.
func (s *Searcher) Search(query string, limit int, docs []Doc) ([]Hit, error) {
	if limit <= 0 {
		return nil, nil
	}
	if s.cfg.MaxDocs > 0 && len(docs) > s.cfg.MaxDocs {
		docs = docs[:s.cfg.MaxDocs]
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if query == "" {
		return firstN(docs, limit), nil
	}
	if err := s.ensureIndex(docs); err != nil {
		return nil, err
	}

	title := bleve.NewMatchQuery(query)
	title.SetField("title")
	title.SetBoost(s.cfg.TitleBoost)
	tags := bleve.NewMatchQuery(query)
	tags.SetField("tags")
	tags.SetBoost(s.cfg.TagsBoost)
	content := bleve.NewMatchQuery(query)
	content.SetField("content")

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(title, tags, content), limit, 0, false)
	res, err := s.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	var top float64
	for _, h := range res.Hits {
		if h.Score > top {
			top = h.Score
		}
		hits = append(hits, Hit{ID: h.ID, Score: h.Score})
	}
	if top > 0 {
		for i := range hits {
			hits[i].Score /= top
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	return hits, nil
}

// Close releases the internal index.
func (s *Searcher) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idx == nil {
		return nil
	}
	err := s.idx.Close()
	s.idx = nil
	s.fingerprint = ""
	return err
}

// ensureIndex rebuilds the Bleve index when the document fingerprint
// changed. Caller holds s.mu.
func (s *Searcher) ensureIndex(docs []Doc) error {
	fp := computeFingerprint(docs)
	if s.idx != nil && fp == s.fingerprint {
		return nil
	}

	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return fmt.Errorf("create lexical index: %w", err)
	}

	batch := idx.NewBatch()
	for _, d := range docs {
		content := d.Content
		if s.cfg.MaxDocTextLen > 0 && len(content) > s.cfg.MaxDocTextLen {
			content = content[:s.cfg.MaxDocTextLen]
		}
		if err := batch.Index(d.ID, indexedDoc{Title: d.Title, Content: content, Tags: d.Tags}); err != nil {
			idx.Close()
			return fmt.Errorf("index document %s: %w", d.ID, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		idx.Close()
		return fmt.Errorf("apply index batch: %w", err)
	}

	if s.idx != nil {
		s.idx.Close()
	}
	s.idx = idx
	s.fingerprint = fp
	return nil
}

func firstN(docs []Doc, n int) []Hit {
	if len(docs) < n {
		n = len(docs)
	}
	hits := make([]Hit, n)
	for i := 0; i < n; i++ {
		hits[i] = Hit{ID: docs[i].ID}
	}
	return hits
}
