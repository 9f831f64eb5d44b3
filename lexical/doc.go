// Package lexical provides BM25 keyword search over bookmark text.
//
// It complements the vector index: semantic similarity finds
// conceptually related bookmarks, while [Searcher] finds exact keyword
// hits that embeddings can miss (product names, acronyms, domain
// terms). The facade blends both scores for hybrid ranking.
//
// [Searcher] keeps an in-memory Bleve index and rebuilds it only when
// the document set's fingerprint changes, so repeated searches over an
// unchanged corpus reuse the same index. It is safe for concurrent
// use.
//
// Empty queries return the first N documents. Non-empty queries use
// BM25 ranking with scores normalized to [0,1] relative to the top hit
// and deterministic tie-breaking (score descending, then ID ascending).
package lexical
