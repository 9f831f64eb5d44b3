// Package bookmark defines the canonical bookmark record shared by all
// other packages in this module.
//
// Bookmark files in the wild use inconsistent field names (url vs link,
// description vs excerpt). That aliasing is resolved at the loading
// boundary: every other package sees only the one canonical [Bookmark]
// shape and never branches on source field names.
//
// # Identity
//
// A bookmark's ID is derived from its normalized URL, so it is stable
// across runs and across files:
//
//	bookmark.IDForURL("HTTPS://Example.com/path/")
//	// same as bookmark.IDForURL("https://example.com/path")
//
// [AssignIDs] fills IDs for a whole corpus, disambiguating records that
// share a URL so duplicate detection can still address them individually.
//
// # Normalization
//
// [NormalizeURL] lowercases the scheme and host, strips default ports and
// trailing slashes, and drops the fragment. It is idempotent: normalizing
// an already-normalized URL yields the same string.
//
// [NormalizeTitle] lowercases, collapses whitespace, and strips
// punctuation, producing the key used for title-level duplicate matching.
package bookmark
