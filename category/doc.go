// Package category proposes which bookmarks belong in a named category.
//
// The [Resolver] embeds a cleaned category name (sharpened with context
// from the category's existing members, when it has any), searches the
// vector index for similar bookmarks not already filed in the target
// category, and returns a [Proposal] of candidates above a confidence
// threshold. Proposals are inputs to human review: [Resolver.Apply]
// turns an approved subset into [Move] values for the loader to carry
// out. The resolver itself performs no file I/O.
package category
