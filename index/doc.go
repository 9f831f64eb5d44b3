// Package index provides an in-memory vector index over bookmark
// embeddings with k-nearest-neighbor query support.
//
// The index maps bookmark IDs to unit-normalized embedding vectors plus a
// small metadata blob (URL, title, source file, tags). It is the only
// mutable shared state in the module.
//
// # Usage
//
// Build an index from a corpus and query it:
//
//	idx := index.New()
//	idx.Rebuild(entries)
//
//	hits, err := idx.Query(queryVec, 10, index.QueryOptions{})
//	for _, h := range hits {
//	    fmt.Printf("[%.3f] %s\n", h.Score, h.ID)
//	}
//
// # Scoring and ordering
//
// Similarity is cosine similarity over unit vectors, mapped from [-1,1]
// into [0,1]. Query results are ordered by descending score; equal scores
// are broken by ascending ID, so repeated queries over the same snapshot
// return identical orderings.
//
// # Consistency
//
// Rebuild replaces the whole entry set atomically: in-flight queries see
// either the old snapshot or the new one, never a mix. Rebuilding from
// unchanged input yields an identical entry set. [Index.CheckConsistency]
// compares the entry count against the caller's corpus size and returns
// [ErrInconsistent] when they disagree, signaling that a rebuild is due.
//
// # Thread safety
//
// All methods are safe for concurrent use.
package index
