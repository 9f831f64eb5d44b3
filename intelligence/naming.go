package intelligence

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/laydros/bookmarks-local-ai/bookmark"
	"github.com/laydros/bookmarks-local-ai/cluster"
	"github.com/laydros/bookmarks-local-ai/index"
)

// maxSuggestions caps how many category suggestions one call returns.
const maxSuggestions = 10

// genericNames are LLM outputs too vague to act on; clusters named
// this way are dropped.
var genericNames = map[string]bool{
	"Untitled": true,
	"Various":  true,
	"Mixed":    true,
	"General":  true,
	"Other":    true,
}

// Suggestion is one proposed category discovered by clustering the
// embedded corpus.
type Suggestion struct {
	// Name and Description come from the language model.
	Name        string
	Description string

	// Size is the full cluster size.
	Size int

	// Examples holds up to five member bookmarks for display.
	Examples []bookmark.Bookmark

	// SourceFiles lists the files the members currently live in.
	SourceFiles []string
}

// SuggestCategories clusters the embedded corpus and asks the language
// model to name each cluster. Pass forceK > 0 to skip density
// clustering and partition into exactly forceK groups. Clusters that
// come back with generic names are dropped; at most ten suggestions
// are returned, largest cluster first.
func (in *Intelligence) SuggestCategories(ctx context.Context, forceK int) ([]Suggestion, error) {
	if in.generator == nil {
		return nil, ErrNoGenerator
	}
	if err := in.ensureIndexed(ctx); err != nil {
		return nil, err
	}

	entries := in.idx.Entries()
	points := make([]cluster.Point, len(entries))
	for i, e := range entries {
		points[i] = cluster.Point{ID: e.ID, Vector: e.Vector}
	}

	opts := in.clusterOpts
	if forceK > 0 {
		opts.ForceK = forceK
	}
	result, err := cluster.NewAnalyzer(opts).Suggest(points)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]bookmark.Bookmark)
	for _, b := range in.Records() {
		byID[b.ID] = b
	}
	styleExamples := existingCategoryNames(entries)

	var suggestions []Suggestion
	for _, c := range result.Clusters {
		if len(c.Members) < 3 {
			continue
		}

		members := make([]bookmark.Bookmark, 0, len(c.Members))
		for _, id := range c.Members {
			if b, ok := byID[id]; ok {
				members = append(members, b)
			}
		}

		name, description := in.nameCluster(ctx, members, styleExamples)
		if genericNames[name] {
			continue
		}

		files := make(map[string]bool)
		for _, b := range members {
			if b.SourceFile != "" {
				files[b.SourceFile] = true
			}
		}
		sourceFiles := make([]string, 0, len(files))
		for f := range files {
			sourceFiles = append(sourceFiles, f)
		}
		sort.Strings(sourceFiles)

		examples := members
		if len(examples) > 5 {
			examples = examples[:5]
		}
		suggestions = append(suggestions, Suggestion{
			Name:        name,
			Description: description,
			Size:        len(c.Members),
			Examples:    examples,
			SourceFiles: sourceFiles,
		})
		if len(suggestions) == maxSuggestions {
			break
		}
	}
	return suggestions, nil
}

// nameCluster asks the language model for a short name and one-line
// description. Any failure degrades to "Untitled", which the caller
// filters out.
func (in *Intelligence) nameCluster(ctx context.Context, members []bookmark.Bookmark, styleExamples []string) (string, string) {
	sample := members
	if len(sample) > 5 {
		sample = sample[:5]
	}
	var b strings.Builder
	b.WriteString("Suggest a short category name and one sentence description for the following bookmarks. ")
	if len(styleExamples) > 0 {
		fmt.Fprintf(&b, "Follow the existing naming style from these categories: %s. Match their format, length, and style conventions. ",
			strings.Join(styleExamples, ", "))
	}
	b.WriteString(`You MUST respond with ONLY valid JSON in this exact format: {"name":"category-name","description":"description"}` + "\n\n")
	b.WriteString("Do not include any other text before or after the JSON.\n\n")
	for _, m := range sample {
		fmt.Fprintf(&b, "- %s: %s\n", m.Title, m.URL)
	}

	text, err := in.generator.Generate(ctx, b.String())
	if err != nil {
		return "Untitled", ""
	}

	var meta struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	raw, ok := extractJSON(text)
	if !ok {
		return "Untitled", ""
	}
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		// Retry once with embedded newlines flattened.
		raw = strings.NewReplacer("\n", " ", "\r", " ").Replace(raw)
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			return "Untitled", ""
		}
	}
	if meta.Name == "" {
		return "Untitled", meta.Description
	}
	return meta.Name, meta.Description
}

// extractJSON pulls the first balanced {...} object out of model
// output, which often wraps the JSON in prose despite instructions.
func extractJSON(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start == -1 {
		return "", false
	}
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// existingCategoryNames collects up to five category names from the
// corpus's source files, to show the model the collection's naming
// style.
func existingCategoryNames(entries []index.Entry) []string {
	seen := make(map[string]bool)
	for _, e := range entries {
		name := e.Metadata.SourceFile
		if strings.HasSuffix(name, ".json") {
			seen[strings.TrimSuffix(name, ".json")] = true
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	if len(names) > 5 {
		names = names[:5]
	}
	return names
}
