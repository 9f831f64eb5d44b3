package match

// Level identifies which detection level produced a match.
type Level string

const (
	// LevelExactURL is a normalized-URL equality match.
	LevelExactURL Level = "exact-url"

	// LevelNormalizedTitle is a normalized-title equality match.
	LevelNormalizedTitle Level = "normalized-title"

	// LevelSemantic is an embedding-similarity match.
	LevelSemantic Level = "semantic"
)

// rank orders levels by cost: cheaper levels sort first and win merges.
func (l Level) rank() int {
	switch l {
	case LevelExactURL:
		return 0
	case LevelNormalizedTitle:
		return 1
	default:
		return 2
	}
}

// Cheaper reports whether l is a cheaper (earlier, stronger) level than other.
func (l Level) Cheaper(other Level) bool {
	return l.rank() < other.rank()
}

// Candidate is one potential duplicate of a query record. Candidates are
// transient query results; they are never persisted.
type Candidate struct {
	// ID is the matched bookmark's ID.
	ID string

	// Score is the similarity in [0,1]. URL and title matches score 1.0.
	Score float64

	// Level is the detection level that produced the match.
	Level Level
}

// Group is a set of two or more bookmarks considered duplicates of one
// another.
type Group struct {
	// IDs lists the member bookmark IDs in corpus order.
	IDs []string

	// Level is the cheapest detection level among the edges that formed
	// the group.
	Level Level

	// Scores maps each non-seed member to the score of the edge that
	// pulled it into the group.
	Scores map[string]float64
}
