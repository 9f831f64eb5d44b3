package cluster

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// angled returns a 2D unit vector at the given angle in degrees.
func angled(deg float64) []float32 {
	rad := deg * math.Pi / 180
	return []float32{float32(math.Cos(rad)), float32(math.Sin(rad))}
}

// twoBlobs builds two tight groups of points around 0° and 90°, n per
// group, with IDs a0..aN and b0..bN.
func twoBlobs(n int) []Point {
	var pts []Point
	for i := 0; i < n; i++ {
		pts = append(pts, Point{ID: fmt.Sprintf("a%d", i), Vector: angled(float64(i))})
	}
	for i := 0; i < n; i++ {
		pts = append(pts, Point{ID: fmt.Sprintf("b%d", i), Vector: angled(90 + float64(i))})
	}
	return pts
}

func TestSuggestRejectsTinyCorpus(t *testing.T) {
	a := NewAnalyzer(Options{})

	pts := twoBlobs(2) // 4 points, floor is 6
	_, err := a.Suggest(pts[:3])
	require.ErrorIs(t, err, ErrInsufficientData)

	_, err = a.Suggest(pts)
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestStrategiesHandleEmptyInput(t *testing.T) {
	for _, s := range []Strategy{NewFixedK(3, 42), NewDensity(3, 0.25)} {
		assignment, err := s.Cluster(nil)
		require.NoError(t, err, s.Name())
		assert.Empty(t, assignment, s.Name())
	}
}

func TestSuggestDensityFindsTwoClusters(t *testing.T) {
	a := NewAnalyzer(Options{})
	pts := twoBlobs(4)

	res, err := a.Suggest(pts)
	require.NoError(t, err)
	assert.Equal(t, "density", res.Strategy)
	require.Len(t, res.Clusters, 2)

	// Each blob lands in one cluster, no mixing.
	labelA := res.Assignment["a0"]
	labelB := res.Assignment["b0"]
	assert.NotEqual(t, labelA, labelB)
	for i := 0; i < 4; i++ {
		assert.Equal(t, labelA, res.Assignment[fmt.Sprintf("a%d", i)])
		assert.Equal(t, labelB, res.Assignment[fmt.Sprintf("b%d", i)])
	}
}

func TestSuggestLabelsOutlierAsNoise(t *testing.T) {
	a := NewAnalyzer(Options{})
	pts := twoBlobs(4)
	pts = append(pts, Point{ID: "lone", Vector: angled(200)})

	res, err := a.Suggest(pts)
	require.NoError(t, err)
	require.Equal(t, "density", res.Strategy)
	assert.Equal(t, Noise, res.Assignment["lone"])

	for _, c := range res.Clusters {
		assert.NotContains(t, c.Members, "lone")
	}
}

func TestSuggestForcedKPartitionsEverything(t *testing.T) {
	a := NewAnalyzer(Options{ForceK: 3})

	var pts []Point
	for i := 0; i < 12; i++ {
		pts = append(pts, Point{ID: fmt.Sprintf("p%d", i), Vector: angled(float64(i * 30))})
	}

	res, err := a.Suggest(pts)
	require.NoError(t, err)
	assert.Equal(t, "fixed-k", res.Strategy)
	assert.Len(t, res.Clusters, 3)

	// Fixed-k leaves nothing unassigned.
	total := 0
	for _, c := range res.Clusters {
		total += len(c.Members)
	}
	assert.Equal(t, len(pts), total)
	for _, label := range res.Assignment {
		assert.NotEqual(t, Noise, label)
	}
}

func TestSuggestIsDeterministic(t *testing.T) {
	a := NewAnalyzer(Options{ForceK: 2})
	pts := twoBlobs(5)

	first, err := a.Suggest(pts)
	require.NoError(t, err)
	second, err := a.Suggest(pts)
	require.NoError(t, err)

	assert.Equal(t, first.Assignment, second.Assignment)
	require.Equal(t, len(first.Clusters), len(second.Clusters))
	for i := range first.Clusters {
		assert.Equal(t, first.Clusters[i].Members, second.Clusters[i].Members)
		assert.Equal(t, first.Clusters[i].Representatives, second.Clusters[i].Representatives)
	}
}

func TestSuggestFallsBackToFixedK(t *testing.T) {
	// Spread points too thinly for any epsilon neighborhood, so density
	// finds nothing and the analyzer falls back.
	var pts []Point
	for i := 0; i < 8; i++ {
		pts = append(pts, Point{ID: fmt.Sprintf("p%d", i), Vector: angled(float64(i * 45))})
	}

	a := NewAnalyzer(Options{})
	res, err := a.Suggest(pts)
	require.NoError(t, err)
	assert.Equal(t, "fixed-k", res.Strategy)
	assert.NotEmpty(t, res.Clusters)
}

func TestClustersOrderedBySize(t *testing.T) {
	var pts []Point
	for i := 0; i < 7; i++ {
		pts = append(pts, Point{ID: fmt.Sprintf("big%d", i), Vector: angled(float64(i))})
	}
	for i := 0; i < 3; i++ {
		pts = append(pts, Point{ID: fmt.Sprintf("small%d", i), Vector: angled(120 + float64(i))})
	}

	a := NewAnalyzer(Options{})
	res, err := a.Suggest(pts)
	require.NoError(t, err)
	require.Len(t, res.Clusters, 2)
	assert.Greater(t, len(res.Clusters[0].Members), len(res.Clusters[1].Members))
}

func TestRepresentativesCappedAndFromMembers(t *testing.T) {
	a := NewAnalyzer(Options{ForceK: 1, Representatives: 3})
	pts := twoBlobs(4)

	res, err := a.Suggest(pts)
	require.NoError(t, err)
	require.Len(t, res.Clusters, 1)

	c := res.Clusters[0]
	assert.Len(t, c.Representatives, 3)
	for _, id := range c.Representatives {
		assert.Contains(t, c.Members, id)
	}
}

func TestCentroidIsUnitLength(t *testing.T) {
	a := NewAnalyzer(Options{ForceK: 1})
	pts := twoBlobs(3)

	res, err := a.Suggest(pts)
	require.NoError(t, err)
	require.Len(t, res.Clusters, 1)

	var sum float64
	for _, x := range res.Clusters[0].Centroid {
		sum += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, sum, 1e-4)
}
