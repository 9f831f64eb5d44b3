package category

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laydros/bookmarks-local-ai/bookmark"
	"github.com/laydros/bookmarks-local-ai/index"
)

// angled returns a 2D unit vector at the given angle in degrees.
func angled(deg float64) []float32 {
	rad := deg * math.Pi / 180
	return []float32{float32(math.Cos(rad)), float32(math.Sin(rad))}
}

// fixedEmbedder returns the same vector for every text and counts calls.
type fixedEmbedder struct {
	vec   []float32
	calls int
	texts []string
}

func (e *fixedEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls++
	e.texts = append(e.texts, text)
	return e.vec, nil
}

func buildIndex(t *testing.T, entries []index.Entry) *index.Index {
	t.Helper()
	ix := index.New()
	for _, e := range entries {
		require.NoError(t, ix.Upsert(e.ID, e.Vector, e.Metadata))
	}
	return ix
}

func TestProposeValidatesBeforeEmbedding(t *testing.T) {
	emb := &fixedEmbedder{vec: angled(0)}
	r := NewResolver(index.New(), emb)

	_, err := r.Propose(context.Background(), "reading", nil, 0, 0.85)
	require.ErrorIs(t, err, ErrInvalidLimit)

	_, err = r.Propose(context.Background(), "reading", nil, 5, 1.5)
	require.ErrorIs(t, err, ErrInvalidThreshold)

	_, err = r.Propose(context.Background(), "reading", nil, 5, -0.1)
	require.ErrorIs(t, err, ErrInvalidThreshold)

	assert.Zero(t, emb.calls, "invalid arguments must fail before any embedding call")
}

func TestProposeExcludesCurrentMembers(t *testing.T) {
	ix := buildIndex(t, []index.Entry{
		{ID: "in", Vector: angled(0), Metadata: index.Metadata{SourceFile: "data/reading.json", Title: "Already filed"}},
		{ID: "out", Vector: angled(5), Metadata: index.Metadata{SourceFile: "data/misc.json", Title: "Elsewhere"}},
	})
	r := NewResolver(ix, &fixedEmbedder{vec: angled(0)})

	p, err := r.Propose(context.Background(), "reading", nil, 5, 0.5)
	require.NoError(t, err)
	require.Len(t, p.Candidates, 1)
	assert.Equal(t, "out", p.Candidates[0].ID)
	assert.Equal(t, "reading.json", p.TargetFile)
}

func TestProposeAppliesThreshold(t *testing.T) {
	ix := buildIndex(t, []index.Entry{
		{ID: "near", Vector: angled(10), Metadata: index.Metadata{SourceFile: "a.json"}},
		{ID: "far", Vector: angled(60), Metadata: index.Metadata{SourceFile: "a.json"}},
	})
	r := NewResolver(ix, &fixedEmbedder{vec: angled(0)})

	// (cos 10° + 1)/2 ≈ 0.99, (cos 60° + 1)/2 = 0.75.
	p, err := r.Propose(context.Background(), "tools", nil, 5, 0.9)
	require.NoError(t, err)
	require.Len(t, p.Candidates, 1)
	assert.Equal(t, "near", p.Candidates[0].ID)
	assert.GreaterOrEqual(t, p.Candidates[0].Score, 0.9)
}

func TestProposeRespectsLimit(t *testing.T) {
	var entries []index.Entry
	for i := 0; i < 12; i++ {
		entries = append(entries, index.Entry{
			ID:       fmt.Sprintf("b%02d", i),
			Vector:   angled(float64(i)),
			Metadata: index.Metadata{SourceFile: "misc.json"},
		})
	}
	ix := buildIndex(t, entries)
	r := NewResolver(ix, &fixedEmbedder{vec: angled(0)})

	p, err := r.Propose(context.Background(), "tools", nil, 5, 0.85)
	require.NoError(t, err)
	require.Len(t, p.Candidates, 5)

	// Strongest first.
	for i := 1; i < len(p.Candidates); i++ {
		assert.GreaterOrEqual(t, p.Candidates[i-1].Score, p.Candidates[i].Score)
	}
}

func TestProposeEmptyIsNotAnError(t *testing.T) {
	ix := buildIndex(t, []index.Entry{
		{ID: "far", Vector: angled(90), Metadata: index.Metadata{SourceFile: "a.json"}},
	})
	r := NewResolver(ix, &fixedEmbedder{vec: angled(0)})

	p, err := r.Propose(context.Background(), "tools", nil, 5, 0.9)
	require.NoError(t, err)
	assert.Empty(t, p.Candidates)
}

func TestProposeSharpensQueryWithMemberTitles(t *testing.T) {
	emb := &fixedEmbedder{vec: angled(0)}
	r := NewResolver(index.New(), emb)

	corpus := []bookmark.Bookmark{
		{ID: "1", Title: "Prusa MK4 review", SourceFile: "data/3d-printing.json"},
		{ID: "2", Title: "Unrelated", SourceFile: "data/misc.json"},
	}
	_, err := r.Propose(context.Background(), "3d-printing", corpus, 5, 0.85)
	require.NoError(t, err)
	require.Len(t, emb.texts, 1)
	assert.Equal(t, "3d printing: Prusa MK4 review", emb.texts[0])
}

func TestApplyFiltersToProposedIDs(t *testing.T) {
	p := &Proposal{
		Category:   "3d printing",
		TargetFile: "3d-printing.json",
		Candidates: []Candidate{{ID: "a"}, {ID: "b"}, {ID: "c"}},
	}
	r := NewResolver(index.New(), &fixedEmbedder{vec: angled(0)})

	moves := r.Apply(p, []string{"b", "zzz", "a"})
	require.Len(t, moves, 2)
	assert.Equal(t, Move{ID: "b", TargetFile: "3d-printing.json", CategoryTag: "3d-printing"}, moves[0])
	assert.Equal(t, Move{ID: "a", TargetFile: "3d-printing.json", CategoryTag: "3d-printing"}, moves[1])

	assert.Nil(t, r.Apply(p, nil))
	assert.Nil(t, r.Apply(nil, []string{"a"}))
}

func TestCleanName(t *testing.T) {
	assert.Equal(t, "3d printing", CleanName("3d-printing.json"))
	assert.Equal(t, "machine learning", CleanName("machine_learning"))
	assert.Equal(t, "reading", CleanName("reading"))
}

func TestTargetFile(t *testing.T) {
	assert.Equal(t, "reading.json", TargetFile("reading"))
	assert.Equal(t, "reading.json", TargetFile("reading.json"))
}
