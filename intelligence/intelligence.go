package intelligence

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/laydros/bookmarks-local-ai/bookmark"
	"github.com/laydros/bookmarks-local-ai/category"
	"github.com/laydros/bookmarks-local-ai/cluster"
	"github.com/laydros/bookmarks-local-ai/embedding"
	"github.com/laydros/bookmarks-local-ai/index"
	"github.com/laydros/bookmarks-local-ai/lexical"
	"github.com/laydros/bookmarks-local-ai/match"
)

// Error values for facade operations.
var (
	ErrNoEmbedder  = errors.New("intelligence: an Embedder is required")
	ErrNoGenerator = errors.New("intelligence: a Generator is required for cluster naming")
	ErrNoLoader    = errors.New("intelligence: a Loader is required")

	// ErrInvalidURL marks records excluded from the index because their
	// URL failed validation. It appears only in skip reports.
	ErrInvalidURL = errors.New("intelligence: invalid bookmark url")
)

// DefaultHybridAlpha is the semantic weight in hybrid search scores;
// the lexical weight is the remainder.
const DefaultHybridAlpha = 0.7

// Loader is the persistence capability the facade consumes. The
// loader package provides the standard implementation.
type Loader interface {
	Load() ([]bookmark.Bookmark, error)
	MoveRecords(records []bookmark.Bookmark, moves []category.Move) ([]bookmark.Bookmark, error)
	CreateCategory(name string) (string, error)
}

// Options configures an Intelligence instance.
type Options struct {
	// Embedder generates embedding vectors. Required.
	Embedder embedding.Embedder

	// Generator produces text completions, used for cluster naming.
	// Optional; without it SuggestCategories fails with ErrNoGenerator.
	Generator embedding.Generator

	// Loader reads and writes bookmark files. Optional; without it the
	// corpus must be supplied via SetRecords.
	Loader Loader

	// Threshold is the similarity threshold for duplicate detection and
	// category proposals. Zero selects match.DefaultThreshold.
	Threshold float64

	// KNN is how many nearest neighbors semantic queries consider. Zero
	// selects match.DefaultK.
	KNN int

	// HybridAlpha is the semantic weight in hybrid search (0.0 to 1.0);
	// the lexical weight is 1-HybridAlpha. Zero selects
	// DefaultHybridAlpha.
	HybridAlpha float64

	// Lexical configures the keyword searcher.
	Lexical lexical.Config

	// Cluster configures the cluster analyzer.
	Cluster cluster.Options
}

// Intelligence is the unified facade over the bookmark analysis
// components.
type Intelligence struct {
	cache       *embedding.Cache
	generator   embedding.Generator
	loader      Loader
	idx         *index.Index
	lex         *lexical.Searcher
	matcher     *match.Matcher
	resolver    *category.Resolver
	clusterOpts cluster.Options
	alpha       float64
	knn         int
	threshold   float64

	mu      sync.Mutex
	records []bookmark.Bookmark
	indexed bool
	skipped map[string]error
}

// New creates an Intelligence instance with the given options.
func New(opts Options) (*Intelligence, error) {
	if opts.Embedder == nil {
		return nil, ErrNoEmbedder
	}
	alpha := opts.HybridAlpha
	if alpha == 0 {
		alpha = DefaultHybridAlpha
	}
	if alpha < 0 || alpha > 1 {
		return nil, fmt.Errorf("intelligence: hybrid alpha must be in [0, 1], got %g", alpha)
	}

	cache := embedding.NewCache(opts.Embedder)
	idx := index.New()
	matcher, err := match.New(idx, cache, match.Config{Threshold: opts.Threshold, K: opts.KNN})
	if err != nil {
		return nil, err
	}

	return &Intelligence{
		cache:       cache,
		generator:   opts.Generator,
		loader:      opts.Loader,
		idx:         idx,
		lex:         lexical.NewSearcher(opts.Lexical),
		matcher:     matcher,
		resolver:    category.NewResolver(idx, cache),
		clusterOpts: opts.Cluster,
		alpha:       alpha,
		knn:         matcher.K(),
		threshold:   matcher.Threshold(),
	}, nil
}

// LoadBookmarks reads the full collection through the loader and
// invalidates the index so the next operation re-embeds as needed.
func (in *Intelligence) LoadBookmarks(ctx context.Context) error {
	if in.loader == nil {
		return ErrNoLoader
	}
	records, err := in.loader.Load()
	if err != nil {
		return err
	}
	in.SetRecords(records)
	return ctx.Err()
}

// SetRecords replaces the working corpus directly, bypassing the
// loader. IDs are assigned to records that lack one.
func (in *Intelligence) SetRecords(records []bookmark.Bookmark) {
	bookmark.AssignIDs(records)
	in.mu.Lock()
	defer in.mu.Unlock()
	in.records = append([]bookmark.Bookmark(nil), records...)
	in.indexed = false
}

// Records returns a copy of the working corpus.
func (in *Intelligence) Records() []bookmark.Bookmark {
	in.mu.Lock()
	defer in.mu.Unlock()
	return append([]bookmark.Bookmark(nil), in.records...)
}

// Skipped reports the records the last index build could not embed,
// keyed by bookmark ID.
func (in *Intelligence) Skipped() map[string]error {
	in.mu.Lock()
	defer in.mu.Unlock()
	out := make(map[string]error, len(in.skipped))
	for id, err := range in.skipped {
		out[id] = err
	}
	return out
}

// ensureIndexed embeds every record with a valid URL and rebuilds the
// vector index in one snapshot swap. Records with invalid URLs or
// failed embeddings are skipped and recorded, not fatal.
func (in *Intelligence) ensureIndexed(ctx context.Context) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.indexed {
		return nil
	}

	skipped := make(map[string]error)
	var entries []index.Entry
	for _, b := range in.records {
		if !bookmark.IsValidURL(b.URL) {
			skipped[b.ID] = fmt.Errorf("%w: %q", ErrInvalidURL, b.URL)
			continue
		}
		vec, err := in.cache.GetOrCompute(ctx, b.SearchText())
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			skipped[b.ID] = err
			continue
		}
		if zeroVector(vec.Values) {
			skipped[b.ID] = fmt.Errorf("%w: zero-magnitude embedding", embedding.ErrUnavailable)
			continue
		}
		entries = append(entries, index.Entry{
			ID:     b.ID,
			Vector: vec.Values,
			Metadata: index.Metadata{
				URL:        b.URL,
				Title:      b.Title,
				SourceFile: b.SourceFile,
				Tags:       b.Tags,
			},
		})
	}
	if err := in.idx.Rebuild(entries); err != nil {
		return err
	}
	in.skipped = skipped
	in.indexed = true
	return nil
}

func zeroVector(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// SearchResult is one hybrid search hit with its component scores.
type SearchResult struct {
	ID       string
	Score    float64
	Semantic float64
	Lexical  float64
	Bookmark bookmark.Bookmark
}

// Search runs hybrid search over the collection: semantic similarity
// blended with BM25 keyword matching, weighted by HybridAlpha.
func (in *Intelligence) Search(ctx context.Context, query string, k int) ([]SearchResult, error) {
	if k <= 0 {
		return nil, nil
	}
	if err := in.ensureIndexed(ctx); err != nil {
		return nil, err
	}

	qv, err := in.cache.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	// Oversample both sides so the blended head is stable.
	semHits, err := in.idx.Query(qv, k*3, index.QueryOptions{})
	if err != nil {
		return nil, err
	}

	records := in.Records()
	docs := make([]lexical.Doc, 0, len(records))
	for _, b := range records {
		docs = append(docs, lexical.Doc{
			ID:      b.ID,
			Title:   b.Title,
			Content: b.ContentText(),
			URL:     b.URL,
			Tags:    b.Tags,
		})
	}
	lexHits, err := in.lex.Search(query, k*3, docs)
	if err != nil {
		return nil, err
	}

	combined := make(map[string]*SearchResult)
	for _, h := range semHits {
		combined[h.ID] = &SearchResult{ID: h.ID, Semantic: h.Score}
	}
	for _, h := range lexHits {
		r, ok := combined[h.ID]
		if !ok {
			r = &SearchResult{ID: h.ID}
			combined[h.ID] = r
		}
		r.Lexical = h.Score
	}

	byID := make(map[string]bookmark.Bookmark, len(records))
	for _, b := range records {
		byID[b.ID] = b
	}

	results := make([]SearchResult, 0, len(combined))
	for _, r := range combined {
		r.Score = in.alpha*r.Semantic + (1-in.alpha)*r.Lexical
		r.Bookmark = byID[r.ID]
		results = append(results, *r)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// FindDuplicates runs multi-level duplicate detection over the whole
// collection. Records that could not be embedded are reported in the
// result, not fatal.
func (in *Intelligence) FindDuplicates(ctx context.Context) (match.Report, error) {
	if err := in.ensureIndexed(ctx); err != nil {
		return match.Report{}, err
	}
	report, err := in.matcher.FindDuplicates(ctx, in.Records())
	if err != nil {
		return match.Report{}, err
	}
	// Fold in records skipped at index time.
	in.mu.Lock()
	for id, skipErr := range in.skipped {
		if _, ok := report.Skipped[id]; !ok {
			if report.Skipped == nil {
				report.Skipped = make(map[string]error)
			}
			report.Skipped[id] = skipErr
		}
	}
	in.mu.Unlock()
	return report, nil
}

// IsDuplicate checks a single record against the collection and
// returns its best duplicate candidate, or nil.
func (in *Intelligence) IsDuplicate(ctx context.Context, record bookmark.Bookmark) (*match.Candidate, error) {
	if err := in.ensureIndexed(ctx); err != nil {
		return nil, err
	}
	return in.matcher.IsDuplicate(ctx, record, in.Records())
}

// PopulateCategory proposes up to limit bookmarks for the named
// category. A zero threshold selects the configured default.
func (in *Intelligence) PopulateCategory(ctx context.Context, name string, limit int, threshold float64) (*category.Proposal, error) {
	if err := in.ensureIndexed(ctx); err != nil {
		return nil, err
	}
	if threshold == 0 {
		threshold = in.threshold
	}
	return in.resolver.Propose(ctx, name, in.Records(), limit, threshold)
}

// ApplyProposal moves the approved subset of a proposal through the
// loader and refreshes the working corpus.
func (in *Intelligence) ApplyProposal(p *category.Proposal, approvedIDs []string) ([]category.Move, error) {
	if in.loader == nil {
		return nil, ErrNoLoader
	}
	moves := in.resolver.Apply(p, approvedIDs)
	if len(moves) == 0 {
		return nil, nil
	}
	updated, err := in.loader.MoveRecords(in.Records(), moves)
	if err != nil {
		return nil, err
	}
	in.SetRecords(updated)
	return moves, nil
}

// CreateCategory creates a new empty category file through the loader
// and returns its path.
func (in *Intelligence) CreateCategory(name string) (string, error) {
	if in.loader == nil {
		return "", ErrNoLoader
	}
	return in.loader.CreateCategory(name)
}

// FileSuggestion is one candidate file for a new bookmark, with a
// confidence relative to the best candidate.
type FileSuggestion struct {
	File  string
	Score float64
}

// SuggestFiling suggests which category file a new bookmark belongs
// in: a similarity-weighted vote over the source files of its nearest
// neighbors, normalized so the best file scores 1.
func (in *Intelligence) SuggestFiling(ctx context.Context, record bookmark.Bookmark, n int) ([]FileSuggestion, error) {
	if n <= 0 {
		return nil, nil
	}
	if err := in.ensureIndexed(ctx); err != nil {
		return nil, err
	}

	query := strings.TrimSpace(record.Title + " " + record.ContentText())
	qv, err := in.cache.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	hits, err := in.idx.Query(qv, in.knn, index.QueryOptions{ExcludeID: record.ID})
	if err != nil {
		return nil, err
	}

	scores := make(map[string]float64)
	for _, h := range hits {
		if h.Metadata.SourceFile != "" {
			scores[h.Metadata.SourceFile] += h.Score
		}
	}
	if len(scores) == 0 {
		return nil, nil
	}

	var max float64
	for _, s := range scores {
		if s > max {
			max = s
		}
	}
	out := make([]FileSuggestion, 0, len(scores))
	for f, s := range scores {
		out = append(out, FileSuggestion{File: f, Score: s / max})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].File < out[j].File
	})
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}
