package cluster

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Error values for clustering operations.
var (
	// ErrInsufficientData is returned when the corpus is too small to
	// cluster meaningfully. It is reported, not fatal: callers skip the
	// clustering step.
	ErrInsufficientData = errors.New("insufficient data for clustering")
)

// Noise is the reserved label for points left unassigned by
// density-based clustering.
const Noise = -1

// Defaults for Analyzer options.
const (
	DefaultMinClusterSize  = 3
	DefaultMinClusters     = 2
	DefaultEpsilon         = 0.25
	DefaultSeed            = 42
	DefaultRepresentatives = 5
)

// Point is one embedded bookmark: its ID and embedding vector.
type Point struct {
	ID     string
	Vector []float32
}

// Assignment maps each point ID to a cluster label. Density-based runs
// may assign the Noise label; fixed-k runs never do.
type Assignment map[string]int

// Cluster summarizes one discovered cluster.
type Cluster struct {
	// Label is the cluster's numeric label within the assignment.
	Label int

	// Centroid is the mean of the member vectors, unit-normalized.
	Centroid []float32

	// Members lists member point IDs in input order.
	Members []string

	// Representatives are the members nearest the centroid, used to
	// seed a naming prompt for an external language model.
	Representatives []string

	// Name and Description are placeholders filled in by the caller
	// (cluster naming is delegated to the LLM capability).
	Name        string
	Description string
}

// Result is the output of a clustering run.
type Result struct {
	// Assignment holds the per-point labels, including Noise.
	Assignment Assignment

	// Clusters lists non-noise clusters, largest first.
	Clusters []Cluster

	// Strategy names the algorithm that produced the result
	// ("density" or "fixed-k").
	Strategy string
}

// Strategy clusters a set of points. Implementations must be
// deterministic for identical input.
type Strategy interface {
	Cluster(points []Point) (Assignment, error)
	Name() string
}

// Options configures an Analyzer. Zero values select the defaults.
type Options struct {
	// MinClusterSize is the smallest cluster density-based clustering
	// will keep; smaller groupings dissolve into noise.
	MinClusterSize int

	// MinClusters is the minimum acceptable number of density clusters
	// before falling back to fixed-k partitioning.
	MinClusters int

	// ForceK, when positive, skips density clustering entirely and runs
	// fixed-k with this many centroids.
	ForceK int

	// Epsilon is the cosine-distance neighborhood radius for density
	// clustering.
	Epsilon float64

	// Seed drives the fixed-k centroid initialization.
	Seed int64

	// Representatives is how many nearest-to-centroid members to expose
	// per cluster.
	Representatives int
}

func (o Options) withDefaults() Options {
	if o.MinClusterSize <= 0 {
		o.MinClusterSize = DefaultMinClusterSize
	}
	if o.MinClusters <= 0 {
		o.MinClusters = DefaultMinClusters
	}
	if o.Epsilon <= 0 {
		o.Epsilon = DefaultEpsilon
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Representatives <= 0 {
		o.Representatives = DefaultRepresentatives
	}
	return o
}

// Analyzer runs the clustering policy: density first, fixed-k as the
// fallback or when explicitly forced.
type Analyzer struct {
	opts Options
}

// NewAnalyzer creates an Analyzer with the given options.
func NewAnalyzer(opts Options) *Analyzer {
	return &Analyzer{opts: opts.withDefaults()}
}

// Suggest clusters the corpus and returns labeled clusters with
// centroids and representative members. Corpora smaller than twice the
// minimum cluster size fail with ErrInsufficientData.
func (a *Analyzer) Suggest(points []Point) (*Result, error) {
	floor := 2 * a.opts.MinClusterSize
	if len(points) < floor {
		return nil, fmt.Errorf("%w: %d points, need at least %d", ErrInsufficientData, len(points), floor)
	}

	pts := normalizePoints(points)

	var strategy Strategy
	if a.opts.ForceK > 0 {
		strategy = NewFixedK(a.opts.ForceK, a.opts.Seed)
	} else {
		strategy = NewDensity(a.opts.MinClusterSize, a.opts.Epsilon)
	}

	assignment, err := strategy.Cluster(pts)
	if err != nil {
		return nil, err
	}

	// Fall back to fixed-k when density found too few clusters.
	if strategy.Name() == "density" && countClusters(assignment) < a.opts.MinClusters {
		strategy = NewFixedK(a.autoK(len(pts)), a.opts.Seed)
		assignment, err = strategy.Cluster(pts)
		if err != nil {
			return nil, err
		}
	}

	return a.buildResult(pts, assignment, strategy.Name()), nil
}

// autoK picks a fallback cluster count from the corpus size: a handful
// of clusters for typical collections, fewer for small ones.
func (a *Analyzer) autoK(n int) int {
	if n < 20 {
		if k := n / 5; k > 2 {
			return k
		}
		return 2
	}
	k := n / 100
	if k < 3 {
		k = 3
	}
	if k > 8 {
		k = 8
	}
	return k
}

func (a *Analyzer) buildResult(points []Point, assignment Assignment, strategy string) *Result {
	byLabel := make(map[int][]int)
	for i, p := range points {
		label := assignment[p.ID]
		if label == Noise {
			continue
		}
		byLabel[label] = append(byLabel[label], i)
	}

	clusters := make([]Cluster, 0, len(byLabel))
	for label, indices := range byLabel {
		centroid := centroidOf(points, indices)
		members := make([]string, len(indices))
		for i, idx := range indices {
			members[i] = points[idx].ID
		}
		clusters = append(clusters, Cluster{
			Label:           label,
			Centroid:        centroid,
			Members:         members,
			Representatives: nearestToCentroid(points, indices, centroid, a.opts.Representatives),
		})
	}

	// Largest clusters first; ties broken by label for determinism.
	sort.Slice(clusters, func(i, j int) bool {
		if len(clusters[i].Members) != len(clusters[j].Members) {
			return len(clusters[i].Members) > len(clusters[j].Members)
		}
		return clusters[i].Label < clusters[j].Label
	})

	return &Result{Assignment: assignment, Clusters: clusters, Strategy: strategy}
}

// nearestToCentroid returns up to n member IDs ordered by proximity to
// the centroid, ties broken by ID.
func nearestToCentroid(points []Point, indices []int, centroid []float32, n int) []string {
	type ranked struct {
		id   string
		dist float64
	}
	rs := make([]ranked, len(indices))
	for i, idx := range indices {
		rs[i] = ranked{id: points[idx].ID, dist: cosineDistance(points[idx].Vector, centroid)}
	}
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].dist != rs[j].dist {
			return rs[i].dist < rs[j].dist
		}
		return rs[i].id < rs[j].id
	})
	if len(rs) > n {
		rs = rs[:n]
	}
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.id
	}
	return out
}

func countClusters(a Assignment) int {
	seen := make(map[int]bool)
	for _, label := range a {
		if label != Noise {
			seen[label] = true
		}
	}
	return len(seen)
}

func centroidOf(points []Point, indices []int) []float32 {
	if len(indices) == 0 {
		return nil
	}
	dim := len(points[indices[0]].Vector)
	sum := make([]float64, dim)
	for _, idx := range indices {
		for d, x := range points[idx].Vector {
			sum[d] += float64(x)
		}
	}
	out := make([]float32, dim)
	for d := range sum {
		out[d] = float32(sum[d] / float64(len(indices)))
	}
	return normalizeVec(out)
}

// cosineDistance is 1 - cos(a, b) over unit vectors: 0 for identical
// directions, up to 2 for opposite ones.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 2
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return 1 - dot
}

func normalizePoints(points []Point) []Point {
	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = Point{ID: p.ID, Vector: normalizeVec(p.Vector)}
	}
	return out
}

func normalizeVec(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		return out
	}
	inv := 1 / math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}
