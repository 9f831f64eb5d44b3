// Package match implements multi-level duplicate detection for bookmark
// collections.
//
// Detection proceeds in three ordered levels, cheapest first, and
// short-circuits per pair:
//
//  1. Exact URL: normalized URLs compared for equality (score 1.0).
//  2. Normalized title: lowercased, punctuation-stripped titles compared
//     for equality (score 1.0 by convention; title collisions are treated
//     as strong duplicates).
//  3. Semantic: the record's combined title+description text is embedded
//     and matched against its k nearest neighbors in the vector index,
//     keeping candidates at or above the similarity threshold.
//
// # Grouping
//
// [Matcher.FindDuplicates] folds pairwise candidates into [Group] values
// using a union over the exceeds-threshold relation: records are processed
// in corpus order, and each unprocessed record pulls everything it matches
// into one group. Two members of a semantic group may each match a third
// member without matching each other directly; they still land in the same
// group. This is intentional, documented behavior — not every pair within
// a reported group is guaranteed individually similar. Exact-URL and
// title groups do not have this caveat, since string equality is
// transitive.
package match
