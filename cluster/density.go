package cluster

// Density groups points whose cosine distance falls within an epsilon
// neighborhood, expanding clusters from core points. Points that never
// join a cluster, and clusters smaller than the minimum size, end up
// labeled Noise.
type Density struct {
	minClusterSize int
	epsilon        float64
}

// NewDensity creates a density strategy with the given minimum cluster
// size and neighborhood radius.
func NewDensity(minClusterSize int, epsilon float64) *Density {
	return &Density{minClusterSize: minClusterSize, epsilon: epsilon}
}

// Name reports the strategy identifier.
func (d *Density) Name() string { return "density" }

// Cluster assigns a label to every point. Iteration follows input
// order, so identical input yields identical labels.
func (d *Density) Cluster(points []Point) (Assignment, error) {
	minPts := d.minClusterSize / 2
	if minPts < 2 {
		minPts = 2
	}

	const unvisited = -2
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = unvisited
	}

	neighbors := func(i int) []int {
		var out []int
		for j := range points {
			if j == i {
				continue
			}
			if cosineDistance(points[i].Vector, points[j].Vector) <= d.epsilon {
				out = append(out, j)
			}
		}
		return out
	}

	next := 0
	for i := range points {
		if labels[i] != unvisited {
			continue
		}
		ns := neighbors(i)
		if len(ns)+1 < minPts {
			labels[i] = Noise
			continue
		}
		label := next
		next++
		labels[i] = label

		// Expand the cluster breadth-first from the seed's neighborhood.
		queue := append([]int(nil), ns...)
		for qi := 0; qi < len(queue); qi++ {
			j := queue[qi]
			if labels[j] == Noise {
				labels[j] = label // border point
			}
			if labels[j] != unvisited {
				continue
			}
			labels[j] = label
			jns := neighbors(j)
			if len(jns)+1 >= minPts {
				queue = append(queue, jns...)
			}
		}
	}

	// Dissolve undersized clusters into noise.
	sizes := make(map[int]int)
	for _, l := range labels {
		if l >= 0 {
			sizes[l]++
		}
	}
	assignment := make(Assignment, len(points))
	for i, p := range points {
		l := labels[i]
		if l >= 0 && sizes[l] < d.minClusterSize {
			l = Noise
		}
		assignment[p.ID] = l
	}
	return assignment, nil
}
