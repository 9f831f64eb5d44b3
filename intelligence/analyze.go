package intelligence

import (
	"sort"
	"strings"
)

// DomainCount is one domain with its bookmark count.
type DomainCount struct {
	Domain string
	Count  int
}

// TagCount is one tag with its usage count.
type TagCount struct {
	Tag   string
	Count int
}

// Stats summarizes the collection.
type Stats struct {
	TotalBookmarks    int
	EnrichedBookmarks int
	EnrichmentPercent float64

	UniqueDomains int
	TopDomains    []DomainCount

	UniqueTags int
	TopTags    []TagCount

	Files            int
	FileDistribution map[string]int
}

// Analyze computes collection statistics: enrichment coverage, domain
// and tag frequencies, and per-file distribution. A zero Stats is
// returned for an empty corpus.
func (in *Intelligence) Analyze() Stats {
	records := in.Records()
	if len(records) == 0 {
		return Stats{}
	}

	var stats Stats
	stats.TotalBookmarks = len(records)

	domains := make(map[string]int)
	tags := make(map[string]int)
	files := make(map[string]int)
	for _, b := range records {
		if b.Enriched() {
			stats.EnrichedBookmarks++
		}
		if d := b.Domain(); d != "" {
			domains[d]++
		}
		for _, t := range b.Tags {
			tags[strings.ToLower(t)]++
		}
		if b.SourceFile != "" {
			files[b.SourceFile]++
		}
	}

	stats.EnrichmentPercent = float64(stats.EnrichedBookmarks) / float64(stats.TotalBookmarks) * 100
	stats.UniqueDomains = len(domains)
	stats.UniqueTags = len(tags)
	stats.Files = len(files)
	stats.FileDistribution = files

	stats.TopDomains = topDomains(domains, 10)
	stats.TopTags = topTags(tags, 20)
	return stats
}

func topDomains(counts map[string]int, n int) []DomainCount {
	out := make([]DomainCount, 0, len(counts))
	for d, c := range counts {
		out = append(out, DomainCount{Domain: d, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Domain < out[j].Domain
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func topTags(counts map[string]int, n int) []TagCount {
	out := make([]TagCount, 0, len(counts))
	for t, c := range counts {
		out = append(out, TagCount{Tag: t, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
