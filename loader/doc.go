// Package loader reads and writes bookmark category files.
//
// A collection is a directory of JSON files, one per category, each
// holding an array of bookmark objects. Source files are loose about
// field names ("url" vs "link", "description" vs "excerpt"); the
// loader resolves that aliasing at this boundary so the rest of the
// module only ever sees the canonical [bookmark.Bookmark] shape.
//
// The [Loader] also carries out the file moves that category proposals
// produce: it is the only package in the module that touches the
// filesystem on behalf of bookmark data.
package loader
