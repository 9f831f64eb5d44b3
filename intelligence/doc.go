// Package intelligence provides a unified facade for bookmark
// collection analysis.
//
// It combines the embedding, index, lexical, match, cluster, and
// category packages into a single API. This package is the recommended
// entry point for most uses.
//
// # Basic Usage
//
// Create an Intelligence instance with an embedder and a loader:
//
//	ai, err := intelligence.New(intelligence.Options{
//	    Embedder: ollama.New(ollama.Config{}),
//	    Loader:   loader.New("data/bookmarks"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := ai.LoadBookmarks(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Hybrid search over the collection
//	results, err := ai.Search(ctx, "static site generators", 10)
//
//	// Multi-level duplicate detection
//	report, err := ai.FindDuplicates(ctx)
//
//	// Propose members for a category
//	proposal, err := ai.PopulateCategory(ctx, "3d-printing", 5, 0.85)
//
// # Components
//
// The facade integrates:
//   - embedding.Cache: memoized text embeddings
//   - index.Index: in-memory vector similarity search
//   - lexical.Searcher: BM25 keyword search for hybrid ranking
//   - match.Matcher: URL, title, and semantic duplicate detection
//   - cluster.Analyzer: category discovery over the embedded corpus
//   - category.Resolver: category population proposals
//
// Cluster naming uses the optional Generator; without one,
// SuggestCategories returns ErrNoGenerator.
//
// # Thread Safety
//
// All Intelligence methods are safe for concurrent use.
package intelligence
