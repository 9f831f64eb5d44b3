// Package cluster groups bookmark embeddings into candidate categories.
//
// Two strategies implement the [Strategy] interface:
//
//   - [Density]: density-based clustering over cosine distance. Points in
//     sparse regions receive the reserved [Noise] label, and clusters
//     smaller than the minimum size are dissolved into noise.
//   - [FixedK]: k-means partitioning with a fixed random seed. Every
//     point is assigned to its nearest centroid; there is no noise label
//     in this mode.
//
// [Analyzer] applies the policy from the product: density first, falling
// back to fixed-k when density finds too few clusters or when the caller
// forces an explicit cluster count. Corpora below the minimum-size floor
// are rejected with [ErrInsufficientData] rather than producing
// degenerate one-cluster output.
//
// All randomness is seeded, so repeated runs over identical input produce
// identical assignments.
package cluster
