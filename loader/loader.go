package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/laydros/bookmarks-local-ai/bookmark"
	"github.com/laydros/bookmarks-local-ai/category"
)

// ErrCategoryExists is returned by CreateCategory when the target file
// is already present.
var ErrCategoryExists = errors.New("category file already exists")

// record is the on-disk bookmark shape, tolerant of field aliases.
type record struct {
	URL         string   `json:"url,omitempty"`
	Link        string   `json:"link,omitempty"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Excerpt     string   `json:"excerpt,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Type        string   `json:"type,omitempty"`
}

func (r record) toBookmark(sourceFile string) bookmark.Bookmark {
	url := r.URL
	if url == "" {
		url = r.Link
	}
	typ := r.Type
	if typ == "" {
		typ = "link"
	}
	return bookmark.Bookmark{
		URL:         url,
		Title:       r.Title,
		Description: r.Description,
		Excerpt:     r.Excerpt,
		Tags:        r.Tags,
		Type:        typ,
		SourceFile:  sourceFile,
	}
}

// toRecord converts back to the on-disk shape, keeping the original
// field preferences: non-http locations save under "link", and only
// one of description/excerpt is written.
func toRecord(b bookmark.Bookmark) record {
	r := record{
		Title: b.Title,
		Tags:  b.Tags,
		Type:  b.Type,
	}
	if strings.HasPrefix(b.URL, "http") {
		r.URL = b.URL
	} else {
		r.Link = b.URL
	}
	if b.Description != "" {
		r.Description = b.Description
	} else {
		r.Excerpt = b.Excerpt
	}
	return r
}

// Loader reads and writes a directory of category files.
type Loader struct {
	dir string
}

// New creates a Loader over the given collection directory.
func New(dir string) *Loader {
	return &Loader{dir: dir}
}

// Dir returns the collection directory.
func (l *Loader) Dir() string { return l.dir }

// Load reads every .json file in the collection directory, in sorted
// filename order, and assigns stable IDs across the whole corpus.
func (l *Loader) Load() ([]bookmark.Bookmark, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("read collection dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	var all []bookmark.Bookmark
	for _, name := range files {
		records, err := LoadFile(filepath.Join(l.dir, name))
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
	}
	bookmark.AssignIDs(all)
	return all, nil
}

// LoadFile reads a single category file. The returned records carry the
// file's base name as their source file but have no IDs assigned.
func LoadFile(path string) ([]bookmark.Bookmark, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var raw []record
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	name := filepath.Base(path)
	out := make([]bookmark.Bookmark, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.toBookmark(name))
	}
	return out, nil
}

// Save writes records back to their source files, grouped by
// SourceFile. Records without a source file are skipped.
func (l *Loader) Save(records []bookmark.Bookmark) error {
	byFile := make(map[string][]bookmark.Bookmark)
	for _, b := range records {
		if b.SourceFile == "" {
			continue
		}
		byFile[b.SourceFile] = append(byFile[b.SourceFile], b)
	}
	for name, group := range byFile {
		if err := SaveFile(group, filepath.Join(l.dir, name)); err != nil {
			return err
		}
	}
	return nil
}

// SaveFile writes records to a single category file as a JSON array.
func SaveFile(records []bookmark.Bookmark, path string) error {
	raw := make([]record, len(records))
	for i, b := range records {
		raw[i] = toRecord(b)
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// MoveRecords applies approved category moves to the corpus and
// rewrites every affected file. Each moved record picks up the
// category tag and its new source file. The updated corpus is
// returned; moves naming unknown IDs are ignored.
func (l *Loader) MoveRecords(records []bookmark.Bookmark, moves []category.Move) ([]bookmark.Bookmark, error) {
	if len(moves) == 0 {
		return records, nil
	}

	byID := make(map[string]int, len(records))
	for i, b := range records {
		byID[b.ID] = i
	}

	updated := append([]bookmark.Bookmark(nil), records...)
	affected := make(map[string]bool)
	for _, m := range moves {
		i, ok := byID[m.ID]
		if !ok {
			continue
		}
		affected[updated[i].SourceFile] = true
		affected[m.TargetFile] = true
		updated[i].SourceFile = m.TargetFile
		if m.CategoryTag != "" && !hasTag(updated[i].Tags, m.CategoryTag) {
			updated[i].Tags = append(append([]string(nil), updated[i].Tags...), m.CategoryTag)
		}
	}

	byFile := make(map[string][]bookmark.Bookmark)
	for _, b := range updated {
		byFile[b.SourceFile] = append(byFile[b.SourceFile], b)
	}
	for name := range affected {
		if name == "" {
			continue
		}
		// An emptied source file is rewritten as an empty array, not
		// deleted.
		if err := SaveFile(byFile[name], filepath.Join(l.dir, name)); err != nil {
			return nil, err
		}
	}
	return updated, nil
}

// CreateCategory creates a new empty category file and returns its
// path. The name may be given with or without the .json extension.
func (l *Loader) CreateCategory(name string) (string, error) {
	path := filepath.Join(l.dir, category.TargetFile(name))
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%w: %s", ErrCategoryExists, path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte("[]\n"), 0o644); err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	return path, nil
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
