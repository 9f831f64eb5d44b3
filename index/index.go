package index

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
)

// Error values for index operations.
var (
	// ErrInconsistent signals that the index entry count disagrees with
	// the corpus the caller holds. It is a warning-level condition: the
	// caller should trigger a rebuild.
	ErrInconsistent = errors.New("index inconsistent with corpus")

	// ErrNotFound is returned when looking up an ID the index does not hold.
	ErrNotFound = errors.New("entry not found")
)

// Metadata is the per-entry payload stored alongside a vector.
type Metadata struct {
	URL        string
	Title      string
	SourceFile string
	Tags       []string
}

// Entry is one indexed bookmark: its ID, unit-normalized embedding, and
// metadata.
type Entry struct {
	ID       string
	Vector   []float32
	Metadata Metadata
}

// Hit is a single query result.
type Hit struct {
	ID       string
	Score    float64
	Metadata Metadata
}

// QueryOptions narrows a Query.
type QueryOptions struct {
	// ExcludeID drops the given ID from results (self-match exclusion).
	ExcludeID string

	// Filter, when non-nil, keeps only entries whose metadata it accepts.
	Filter func(Metadata) bool
}

// Index is an in-memory similarity-searchable store of bookmark vectors.
// The zero value is not usable; create one with New.
type Index struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// New creates an empty index.
func New() *Index {
	return &Index{entries: make(map[string]Entry)}
}

// Upsert inserts or replaces the entry for id. The vector is copied and
// unit-normalized before storage.
func (ix *Index) Upsert(id string, vector []float32, meta Metadata) error {
	if id == "" {
		return fmt.Errorf("upsert: empty id")
	}
	if len(vector) == 0 {
		return fmt.Errorf("upsert %s: empty vector", id)
	}
	if isZero(vector) {
		return fmt.Errorf("upsert %s: zero vector", id)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.entries[id] = Entry{ID: id, Vector: normalize(vector), Metadata: meta}
	return nil
}

// Delete removes the entry for id. Deleting an absent ID is a no-op.
func (ix *Index) Delete(id string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	delete(ix.entries, id)
}

// Get returns the entry for id, or ErrNotFound.
func (ix *Index) Get(id string) (Entry, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	e, ok := ix.entries[id]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, nil
}

// Rebuild replaces the full entry set atomically. Queries running during
// a rebuild read the previous snapshot. Rebuilding from identical input
// yields an identical entry set, so re-indexing unchanged content is
// idempotent.
func (ix *Index) Rebuild(entries []Entry) error {
	next := make(map[string]Entry, len(entries))
	for _, e := range entries {
		if e.ID == "" {
			return fmt.Errorf("rebuild: entry with empty id")
		}
		if len(e.Vector) == 0 {
			return fmt.Errorf("rebuild %s: empty vector", e.ID)
		}
		if isZero(e.Vector) {
			return fmt.Errorf("rebuild %s: zero vector", e.ID)
		}
		next[e.ID] = Entry{ID: e.ID, Vector: normalize(e.Vector), Metadata: e.Metadata}
	}

	ix.mu.Lock()
	ix.entries = next
	ix.mu.Unlock()
	return nil
}

// Query returns the k entries most similar to vector, ordered by
// descending score with ties broken by ascending ID. A non-positive k
// returns no results.
func (ix *Index) Query(vector []float32, k int, opts QueryOptions) ([]Hit, error) {
	if k <= 0 {
		return nil, nil
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("query: empty vector")
	}
	if isZero(vector) {
		return nil, fmt.Errorf("query: zero vector")
	}

	q := normalize(vector)

	ix.mu.RLock()
	hits := make([]Hit, 0, len(ix.entries))
	for _, e := range ix.entries {
		if e.ID == opts.ExcludeID {
			continue
		}
		if opts.Filter != nil && !opts.Filter(e.Metadata) {
			continue
		}
		if len(e.Vector) != len(q) {
			// Dimension drift (embedding model change); skip rather
			// than report a meaningless score.
			continue
		}
		hits = append(hits, Hit{ID: e.ID, Score: similarity(q, e.Vector), Metadata: e.Metadata})
	}
	ix.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Len returns the number of indexed entries.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// Entries returns all entries sorted by ascending ID.
func (ix *Index) Entries() []Entry {
	ix.mu.RLock()
	out := make([]Entry, 0, len(ix.entries))
	for _, e := range ix.entries {
		out = append(out, e)
	}
	ix.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CheckConsistency compares the entry count against the caller's corpus
// size, returning ErrInconsistent on mismatch so the caller can trigger
// a rebuild.
func (ix *Index) CheckConsistency(corpusSize int) error {
	if n := ix.Len(); n != corpusSize {
		return fmt.Errorf("%w: %d entries, corpus has %d records", ErrInconsistent, n, corpusSize)
	}
	return nil
}

// similarity maps the cosine of two unit vectors from [-1,1] into [0,1].
// Orthogonal vectors land on exactly 0.5.
func similarity(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	s := (dot + 1) / 2
	// Guard against float drift outside [0,1].
	return math.Min(1, math.Max(0, s))
}

// normalize returns a unit-length copy of v. Zero vectors are rejected
// before this point.
func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	inv := 1 / math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}

// isZero reports whether every component of v is zero. Zero vectors
// have no direction, so they cannot be stored or queried.
func isZero(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
