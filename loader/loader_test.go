package loader

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laydros/bookmarks-local-ai/bookmark"
	"github.com/laydros/bookmarks-local-ai/category"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadResolvesFieldAliases(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "reading.json", `[
		{"url": "https://go.dev/blog", "title": "The Go Blog", "description": "official posts"},
		{"link": "gopher://old.example", "title": "Gopherhole", "excerpt": "retro content"}
	]`)

	records, err := New(dir).Load()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "https://go.dev/blog", records[0].URL)
	assert.Equal(t, "official posts", records[0].ContentText())
	assert.Equal(t, "reading.json", records[0].SourceFile)
	assert.Equal(t, "link", records[0].Type)

	// "link" aliases to URL, "excerpt" stays an excerpt.
	assert.Equal(t, "gopher://old.example", records[1].URL)
	assert.Equal(t, "retro content", records[1].ContentText())
	assert.Empty(t, records[1].Description)
}

func TestLoadAssignsStableIDs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `[{"url": "https://example.com/one"}]`)
	writeFile(t, dir, "b.json", `[{"url": "https://example.com/two"}, {"url": "https://example.com/one"}]`)

	l := New(dir)
	first, err := l.Load()
	require.NoError(t, err)
	second, err := l.Load()
	require.NoError(t, err)

	require.Len(t, first, 3)
	for i := range first {
		assert.NotEmpty(t, first[i].ID)
		assert.Equal(t, first[i].ID, second[i].ID, "IDs must be stable across runs")
	}

	// The shared URL gets a distinct suffixed ID, not a collision.
	assert.NotEqual(t, first[0].ID, first[2].ID)
	assert.Equal(t, first[0].ID+"-2", first[2].ID)
}

func TestLoadReadsFilesInSortedOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "zz.json", `[{"url": "https://z.example.com"}]`)
	writeFile(t, dir, "aa.json", `[{"url": "https://a.example.com"}]`)
	writeFile(t, dir, "notes.txt", "not a category file")

	records, err := New(dir).Load()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "aa.json", records[0].SourceFile)
	assert.Equal(t, "zz.json", records[1].SourceFile)
}

func TestSaveRoundTripsFieldPreferences(t *testing.T) {
	dir := t.TempDir()
	records := []bookmark.Bookmark{
		{URL: "https://go.dev", Title: "Go", Description: "the language", Tags: []string{"go"}, Type: "link", SourceFile: "dev.json"},
		{URL: "gopher://old.example", Title: "Gopherhole", Excerpt: "retro", Type: "link", SourceFile: "dev.json"},
	}
	require.NoError(t, New(dir).Save(records))

	data, err := os.ReadFile(filepath.Join(dir, "dev.json"))
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 2)

	assert.Equal(t, "https://go.dev", raw[0]["url"])
	assert.NotContains(t, raw[0], "link")
	assert.Equal(t, "the language", raw[0]["description"])

	// Non-http locations keep the "link" field name.
	assert.Equal(t, "gopher://old.example", raw[1]["link"])
	assert.NotContains(t, raw[1], "url")
	assert.Equal(t, "retro", raw[1]["excerpt"])
}

func TestMoveRecordsRewritesAffectedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "misc.json", `[
		{"url": "https://prusa.example/mk4", "title": "Prusa MK4"},
		{"url": "https://example.com/other", "title": "Other"}
	]`)
	writeFile(t, dir, "3d-printing.json", `[{"url": "https://voron.example", "title": "Voron"}]`)

	l := New(dir)
	records, err := l.Load()
	require.NoError(t, err)
	require.Len(t, records, 3)

	var prusaID string
	for _, b := range records {
		if b.Title == "Prusa MK4" {
			prusaID = b.ID
		}
	}
	require.NotEmpty(t, prusaID)

	moves := []category.Move{{ID: prusaID, TargetFile: "3d-printing.json", CategoryTag: "3d-printing"}}
	updated, err := l.MoveRecords(records, moves)
	require.NoError(t, err)

	// In-memory corpus reflects the move.
	for _, b := range updated {
		if b.ID == prusaID {
			assert.Equal(t, "3d-printing.json", b.SourceFile)
			assert.Contains(t, b.Tags, "3d-printing")
		}
	}

	// Target file gained the record, source file lost it.
	target, err := LoadFile(filepath.Join(dir, "3d-printing.json"))
	require.NoError(t, err)
	assert.Len(t, target, 2)

	source, err := LoadFile(filepath.Join(dir, "misc.json"))
	require.NoError(t, err)
	require.Len(t, source, 1)
	assert.Equal(t, "Other", source[0].Title)
}

func TestMoveRecordsEmptiedFileBecomesEmptyArray(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "misc.json", `[{"url": "https://only.example"}]`)
	writeFile(t, dir, "target.json", `[]`)

	l := New(dir)
	records, err := l.Load()
	require.NoError(t, err)
	require.Len(t, records, 1)

	_, err = l.MoveRecords(records, []category.Move{
		{ID: records[0].ID, TargetFile: "target.json", CategoryTag: "target"},
	})
	require.NoError(t, err)

	remaining, err := LoadFile(filepath.Join(dir, "misc.json"))
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestMoveRecordsIgnoresUnknownIDs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "misc.json", `[{"url": "https://only.example"}]`)

	l := New(dir)
	records, err := l.Load()
	require.NoError(t, err)

	updated, err := l.MoveRecords(records, []category.Move{
		{ID: "no-such-id", TargetFile: "target.json"},
	})
	require.NoError(t, err)
	assert.Equal(t, records, updated)
}

func TestCreateCategory(t *testing.T) {
	dir := t.TempDir()
	l := New(dir)

	path, err := l.CreateCategory("3d-printing")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "3d-printing.json"), path)

	records, err := LoadFile(path)
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = l.CreateCategory("3d-printing.json")
	require.ErrorIs(t, err, ErrCategoryExists)
}
