package match

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/laydros/bookmarks-local-ai/bookmark"
	"github.com/laydros/bookmarks-local-ai/index"
)

func TestFindDuplicates_ExactURLEndToEnd(t *testing.T) {
	// Two records for the same resource, one with a trailing slash.
	corpus := []bookmark.Bookmark{
		record("1", "http://a.com", "First Copy", ""),
		record("2", "http://a.com/", "Second Copy", ""),
	}

	m := mustMatcher(t, index.New(), nil, Config{})
	report, err := m.FindDuplicates(context.Background(), corpus)
	if err != nil {
		t.Fatalf("FindDuplicates failed: %v", err)
	}

	if len(report.Groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(report.Groups))
	}
	g := report.Groups[0]
	if !reflect.DeepEqual(g.IDs, []string{"1", "2"}) {
		t.Errorf("IDs = %v, want [1 2]", g.IDs)
	}
	if g.Level != LevelExactURL {
		t.Errorf("Level = %v, want exact-url", g.Level)
	}
	if g.Scores["2"] != 1.0 {
		t.Errorf("Scores = %v, want member 2 at 1.0", g.Scores)
	}
}

func TestFindDuplicates_NoDuplicates(t *testing.T) {
	corpus := []bookmark.Bookmark{
		record("1", "https://a.example.com", "Alpha", ""),
		record("2", "https://b.example.com", "Beta", ""),
	}

	m := mustMatcher(t, index.New(), nil, Config{})
	report, err := m.FindDuplicates(context.Background(), corpus)
	if err != nil {
		t.Fatalf("FindDuplicates failed: %v", err)
	}
	if len(report.Groups) != 0 {
		t.Errorf("groups = %v, want none", report.Groups)
	}
}

func TestFindDuplicates_SeparateGroups(t *testing.T) {
	corpus := []bookmark.Bookmark{
		record("1", "http://a.com", "A", ""),
		record("2", "http://a.com/", "A2", ""),
		record("3", "http://b.com", "B", ""),
		record("4", "HTTP://b.com/", "B2", ""),
		record("5", "http://c.com", "C", ""),
	}

	m := mustMatcher(t, index.New(), nil, Config{})
	report, err := m.FindDuplicates(context.Background(), corpus)
	if err != nil {
		t.Fatalf("FindDuplicates failed: %v", err)
	}

	if len(report.Groups) != 2 {
		t.Fatalf("got %d groups, want 2: %v", len(report.Groups), report.Groups)
	}
	if !reflect.DeepEqual(report.Groups[0].IDs, []string{"1", "2"}) {
		t.Errorf("first group = %v", report.Groups[0].IDs)
	}
	if !reflect.DeepEqual(report.Groups[1].IDs, []string{"3", "4"}) {
		t.Errorf("second group = %v", report.Groups[1].IDs)
	}
}

func TestFindDuplicates_SemanticChainNotPairwiseTransitive(t *testing.T) {
	// b sits between a and c: a~b and b~c clear the threshold but a~c
	// does not. All three still belong to one group.
	a := record("a", "https://one.example.com", "alpha doc", "x")
	b := record("b", "https://two.example.com", "bridge doc", "x")
	c := record("c", "https://three.example.com", "gamma doc", "x")

	emb := &vecEmbedder{vectors: map[string][]float32{
		matchText(a): angled(0),
		matchText(b): angled(25),
		matchText(c): angled(50),
	}}
	corpus := []bookmark.Bookmark{a, b, c}
	ix := buildIndex(t, emb, corpus)

	// Threshold between cos(25°) and cos(50°) once mapped into [0,1]:
	// pairs 25° apart clear it, pairs 50° apart do not.
	m := mustMatcher(t, ix, emb, Config{Threshold: 0.93})
	report, err := m.FindDuplicates(context.Background(), corpus)
	if err != nil {
		t.Fatalf("FindDuplicates failed: %v", err)
	}

	if len(report.Groups) != 1 {
		t.Fatalf("got %d groups, want 1: %+v", len(report.Groups), report.Groups)
	}
	if !reflect.DeepEqual(report.Groups[0].IDs, []string{"a", "b", "c"}) {
		t.Errorf("IDs = %v, want [a b c]", report.Groups[0].IDs)
	}
	if report.Groups[0].Level != LevelSemantic {
		t.Errorf("Level = %v, want semantic", report.Groups[0].Level)
	}
}

func TestFindDuplicates_MixedLevelsReportCheapest(t *testing.T) {
	// 1 and 2 share a URL; 2 and 3 share a title. One group at the
	// cheapest level that formed it.
	corpus := []bookmark.Bookmark{
		record("1", "http://a.com", "Unique One", ""),
		record("2", "http://a.com/", "Shared Title", ""),
		record("3", "http://b.com", "shared   title", ""),
	}

	m := mustMatcher(t, index.New(), nil, Config{})
	report, err := m.FindDuplicates(context.Background(), corpus)
	if err != nil {
		t.Fatalf("FindDuplicates failed: %v", err)
	}

	if len(report.Groups) != 1 {
		t.Fatalf("got %d groups, want 1: %+v", len(report.Groups), report.Groups)
	}
	g := report.Groups[0]
	if !reflect.DeepEqual(g.IDs, []string{"1", "2", "3"}) {
		t.Errorf("IDs = %v, want [1 2 3]", g.IDs)
	}
	if g.Level != LevelExactURL {
		t.Errorf("Level = %v, want exact-url", g.Level)
	}
}

func TestFindDuplicates_EmbedFailureRecordedNotFatal(t *testing.T) {
	corpus := []bookmark.Bookmark{
		record("1", "http://a.com", "With Content", "text"),
		record("2", "http://a.com/", "Also Content", "text"),
	}

	emb := &vecEmbedder{err: errors.New("model not loaded")}
	m := mustMatcher(t, index.New(), emb, Config{})

	report, err := m.FindDuplicates(context.Background(), corpus)
	if err != nil {
		t.Fatalf("FindDuplicates failed: %v", err)
	}

	// URL group still found, embed failures recorded per record.
	if len(report.Groups) != 1 || report.Groups[0].Level != LevelExactURL {
		t.Fatalf("groups = %+v, want one exact-url group", report.Groups)
	}
	if len(report.Skipped) == 0 {
		t.Error("expected skipped records for failed embeddings")
	}
}
