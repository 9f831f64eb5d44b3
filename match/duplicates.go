package match

import (
	"context"

	"github.com/laydros/bookmarks-local-ai/bookmark"
)

// Report is the outcome of a full duplicate scan.
type Report struct {
	// Groups lists the duplicate groups found, ordered by the corpus
	// position of each group's first member.
	Groups []Group

	// Skipped maps record IDs whose semantic level could not run (the
	// embedding failed) to the error. URL and title levels still ran
	// for these records.
	Skipped map[string]error
}

// FindDuplicates scans the corpus for duplicate groups. Records are
// processed in corpus order; each not-yet-grouped record gathers its
// above-threshold candidates and unions them into one group. Candidates
// already claimed by an earlier group pull the two groups together.
//
// A record whose embedding fails is not fatal: it is recorded in
// Report.Skipped and the scan continues with the cheaper levels.
func (m *Matcher) FindDuplicates(ctx context.Context, corpus []bookmark.Bookmark) (Report, error) {
	report := Report{Skipped: make(map[string]error)}

	dsu := newUnionFind()
	type edge struct {
		from, to string
		level    Level
		score    float64
	}
	var edges []edge

	processed := make(map[string]bool, len(corpus))
	for _, record := range corpus {
		if processed[record.ID] {
			continue
		}
		processed[record.ID] = true

		candidates, err := m.Match(ctx, record, corpus)
		if err != nil {
			report.Skipped[record.ID] = err
		}
		for _, c := range candidates {
			dsu.union(record.ID, c.ID)
			edges = append(edges, edge{from: record.ID, to: c.ID, level: c.Level, score: c.Score})
			processed[c.ID] = true
		}
	}

	// Fold edges into per-component level and score bookkeeping.
	groupLevel := make(map[string]Level)
	memberScore := make(map[string]float64)
	for _, e := range edges {
		root := dsu.find(e.from)
		if lvl, ok := groupLevel[root]; !ok || e.level.Cheaper(lvl) {
			groupLevel[root] = e.level
		}
		if e.score > memberScore[e.to] {
			memberScore[e.to] = e.score
		}
	}

	// Collect members per component, in corpus order.
	members := make(map[string][]string)
	for _, b := range corpus {
		if root, ok := dsu.root(b.ID); ok {
			members[root] = append(members[root], b.ID)
		}
	}

	for _, b := range corpus {
		root, ok := dsu.root(b.ID)
		if !ok || len(members[root]) < 2 {
			continue
		}
		ids := members[root]
		if ids[0] != b.ID {
			continue // emit each group once, at its first member
		}

		scores := make(map[string]float64, len(ids)-1)
		for _, id := range ids {
			if s, ok := memberScore[id]; ok {
				scores[id] = s
			}
		}
		report.Groups = append(report.Groups, Group{
			IDs:    ids,
			Level:  groupLevel[root],
			Scores: scores,
		})
	}

	return report, nil
}

// unionFind is a plain disjoint-set over string IDs. Only IDs touched by
// at least one edge are tracked.
type unionFind struct {
	parent map[string]string
}

func newUnionFind() *unionFind {
	return &unionFind{parent: make(map[string]string)}
}

func (u *unionFind) find(id string) string {
	p, ok := u.parent[id]
	if !ok {
		u.parent[id] = id
		return id
	}
	if p == id {
		return id
	}
	root := u.find(p)
	u.parent[id] = root
	return root
}

// root is like find but does not create a set for unknown IDs.
func (u *unionFind) root(id string) (string, bool) {
	if _, ok := u.parent[id]; !ok {
		return "", false
	}
	return u.find(id), true
}

func (u *unionFind) union(a, b string) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[rb] = ra
	}
}
