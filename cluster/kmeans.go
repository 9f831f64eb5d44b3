package cluster

import (
	"fmt"
	"math/rand"
)

const kmeansMaxIterations = 100

// FixedK partitions points into exactly k clusters by iterative
// centroid refinement. Initialization is seeded, so runs over the same
// input produce the same assignment.
type FixedK struct {
	k    int
	seed int64
}

// NewFixedK creates a fixed-k strategy.
func NewFixedK(k int, seed int64) *FixedK {
	return &FixedK{k: k, seed: seed}
}

// Name reports the strategy identifier.
func (f *FixedK) Name() string { return "fixed-k" }

// Cluster partitions the points into k labels. Every point gets a
// label; fixed-k never produces noise.
func (f *FixedK) Cluster(points []Point) (Assignment, error) {
	if f.k <= 0 {
		return nil, fmt.Errorf("fixed-k: cluster count must be positive, got %d", f.k)
	}
	if len(points) == 0 {
		return Assignment{}, nil
	}
	k := f.k
	if k > len(points) {
		k = len(points)
	}

	rng := rand.New(rand.NewSource(f.seed))
	dim := len(points[0].Vector)

	// Seed centroids from distinct points.
	perm := rng.Perm(len(points))
	centroids := make([][]float32, k)
	for c := 0; c < k; c++ {
		centroids[c] = append([]float32(nil), points[perm[c]].Vector...)
	}

	labels := make([]int, len(points))
	for iter := 0; iter < kmeansMaxIterations; iter++ {
		changed := false
		for i, p := range points {
			best := 0
			bestDist := cosineDistance(p.Vector, centroids[0])
			for c := 1; c < k; c++ {
				if d := cosineDistance(p.Vector, centroids[c]); d < bestDist {
					best, bestDist = c, d
				}
			}
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		// Recompute centroids from members; an emptied centroid keeps
		// its previous position.
		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, dim)
		}
		for i, p := range points {
			c := labels[i]
			counts[c]++
			for d, x := range p.Vector {
				sums[c][d] += float64(x)
			}
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				continue
			}
			mean := make([]float32, dim)
			for d := range sums[c] {
				mean[d] = float32(sums[c][d] / float64(counts[c]))
			}
			centroids[c] = normalizeVec(mean)
		}
	}

	assignment := make(Assignment, len(points))
	for i, p := range points {
		assignment[p.ID] = labels[i]
	}
	return assignment, nil
}
