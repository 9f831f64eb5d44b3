package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/laydros/bookmarks-local-ai/bookmark"
	"github.com/laydros/bookmarks-local-ai/intelligence"
	"github.com/laydros/bookmarks-local-ai/loader"
	"github.com/laydros/bookmarks-local-ai/ollama"
)

var (
	dataDir    string
	ollamaURL  string
	embedModel string
	llmModel   string
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "bookmarks",
		Short: "Semantic search, duplicate detection, and category tools for bookmark collections",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", envOr("BOOKMARKS_DIR", "."), "directory of category JSON files")
	rootCmd.PersistentFlags().StringVar(&ollamaURL, "ollama-url", envOr("OLLAMA_URL", ollama.DefaultBaseURL), "Ollama server URL")
	rootCmd.PersistentFlags().StringVar(&embedModel, "embed-model", envOr("EMBED_MODEL", ollama.DefaultEmbedModel), "embedding model")
	rootCmd.PersistentFlags().StringVar(&llmModel, "llm-model", envOr("LLM_MODEL", ollama.DefaultGenerateModel), "language model for naming")

	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(duplicatesCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(suggestCmd())
	rootCmd.AddCommand(populateCmd())
	rootCmd.AddCommand(createCmd())
	rootCmd.AddCommand(suggestFileCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newIntelligence(cmd *cobra.Command) (*intelligence.Intelligence, error) {
	client := ollama.New(ollama.Config{
		BaseURL:       ollamaURL,
		EmbedModel:    embedModel,
		GenerateModel: llmModel,
	})
	ai, err := intelligence.New(intelligence.Options{
		Embedder:  client,
		Generator: client,
		Loader:    loader.New(dataDir),
	})
	if err != nil {
		return nil, err
	}
	if err := ai.LoadBookmarks(cmd.Context()); err != nil {
		return nil, fmt.Errorf("load bookmarks from %s: %w", dataDir, err)
	}
	return ai, nil
}

func searchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Hybrid semantic + keyword search over the collection",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ai, err := newIntelligence(cmd)
			if err != nil {
				return err
			}

			results, err := ai.Search(cmd.Context(), strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Println("No matches found.")
				return nil
			}
			for _, r := range results {
				fmt.Printf("%.3f  %s\n       %s  (%s)\n", r.Score, r.Bookmark.Title, r.Bookmark.URL, r.Bookmark.SourceFile)
			}
			reportSkipped(ai.Skipped())
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of results to show")
	return cmd
}

func duplicatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "duplicates",
		Short: "Find duplicate bookmarks across all files",
		RunE: func(cmd *cobra.Command, args []string) error {
			ai, err := newIntelligence(cmd)
			if err != nil {
				return err
			}

			report, err := ai.FindDuplicates(cmd.Context())
			if err != nil {
				return err
			}
			if len(report.Groups) == 0 {
				fmt.Println("No duplicates found.")
			}

			byID := make(map[string]bookmark.Bookmark)
			for _, b := range ai.Records() {
				byID[b.ID] = b
			}
			for i, g := range report.Groups {
				fmt.Printf("Group %d (%s):\n", i+1, g.Level)
				for _, id := range g.IDs {
					b := byID[id]
					if score, ok := g.Scores[id]; ok {
						fmt.Printf("  %.3f  %s  (%s)\n", score, b.URL, b.SourceFile)
					} else {
						fmt.Printf("         %s  (%s)\n", b.URL, b.SourceFile)
					}
				}
			}
			reportSkipped(report.Skipped)
			return nil
		},
	}
}

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Show collection statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ai, err := newIntelligence(cmd)
			if err != nil {
				return err
			}

			stats := ai.Analyze()
			if stats.TotalBookmarks == 0 {
				fmt.Println("No bookmarks found.")
				return nil
			}

			fmt.Printf("Bookmarks:   %d across %d files\n", stats.TotalBookmarks, stats.Files)
			fmt.Printf("Enriched:    %d (%.1f%%)\n", stats.EnrichedBookmarks, stats.EnrichmentPercent)
			fmt.Printf("Domains:     %d unique\n", stats.UniqueDomains)
			for _, d := range stats.TopDomains {
				fmt.Printf("  %4d  %s\n", d.Count, d.Domain)
			}
			fmt.Printf("Tags:        %d unique\n", stats.UniqueTags)
			for _, t := range stats.TopTags {
				fmt.Printf("  %4d  %s\n", t.Count, t.Tag)
			}
			return nil
		},
	}
}

func suggestCmd() *cobra.Command {
	var kmeans int

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest new categories by clustering the collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			ai, err := newIntelligence(cmd)
			if err != nil {
				return err
			}

			suggestions, err := ai.SuggestCategories(cmd.Context(), kmeans)
			if err != nil {
				return err
			}
			if len(suggestions) == 0 {
				fmt.Println("No category suggestions.")
				return nil
			}
			for _, s := range suggestions {
				fmt.Printf("%s (%d bookmarks)\n", s.Name, s.Size)
				if s.Description != "" {
					fmt.Printf("  %s\n", s.Description)
				}
				for _, b := range s.Examples {
					fmt.Printf("  - %s: %s\n", b.Title, b.URL)
				}
				fmt.Printf("  from: %s\n\n", strings.Join(s.SourceFiles, ", "))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&kmeans, "kmeans", 0, "force this many clusters instead of density clustering")
	return cmd
}

func populateCmd() *cobra.Command {
	var (
		limit     int
		threshold float64
		apply     bool
	)

	cmd := &cobra.Command{
		Use:   "populate [category]",
		Short: "Propose bookmarks for a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ai, err := newIntelligence(cmd)
			if err != nil {
				return err
			}

			proposal, err := ai.PopulateCategory(cmd.Context(), args[0], limit, threshold)
			if err != nil {
				return err
			}
			if len(proposal.Candidates) == 0 {
				fmt.Printf("No candidates for %q cleared the threshold.\n", proposal.Category)
				return nil
			}

			fmt.Printf("Candidates for %s:\n", proposal.TargetFile)
			ids := make([]string, 0, len(proposal.Candidates))
			for _, c := range proposal.Candidates {
				fmt.Printf("  %.3f  %s\n         %s\n", c.Score, c.Title, c.URL)
				ids = append(ids, c.ID)
			}

			if !apply {
				fmt.Println("\nRe-run with --apply to move these bookmarks.")
				return nil
			}
			moves, err := ai.ApplyProposal(proposal, ids)
			if err != nil {
				return err
			}
			fmt.Printf("Moved %d bookmarks to %s.\n", len(moves), proposal.TargetFile)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "maximum candidates to propose")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "minimum similarity score (default: matcher threshold)")
	cmd.Flags().BoolVar(&apply, "apply", false, "move all proposed bookmarks without review")
	return cmd
}

func createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create [name]",
		Short: "Create a new empty category file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := loader.New(dataDir).CreateCategory(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Created %s\n", path)
			return nil
		},
	}
}

func suggestFileCmd() *cobra.Command {
	var (
		title       string
		description string
		count       int
	)

	cmd := &cobra.Command{
		Use:   "suggest-file [url]",
		Short: "Suggest which file a new bookmark belongs in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ai, err := newIntelligence(cmd)
			if err != nil {
				return err
			}

			record := bookmark.Bookmark{URL: args[0], Title: title, Description: description}
			suggestions, err := ai.SuggestFiling(cmd.Context(), record, count)
			if err != nil {
				return err
			}
			if len(suggestions) == 0 {
				fmt.Println("No similar bookmarks to base a suggestion on.")
				return nil
			}
			for _, s := range suggestions {
				fmt.Printf("%.3f  %s\n", s.Score, s.File)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "bookmark title")
	cmd.Flags().StringVar(&description, "description", "", "bookmark description")
	cmd.Flags().IntVarP(&count, "limit", "n", 3, "number of suggestions")
	return cmd
}

func reportSkipped(skipped map[string]error) {
	if len(skipped) == 0 {
		return
	}
	fmt.Fprintf(os.Stderr, "warning: %d bookmarks could not be embedded and were skipped\n", len(skipped))
}
