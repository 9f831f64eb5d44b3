package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// Error values for embedding operations.
var (
	// ErrUnavailable indicates the embedding or generation capability is
	// unreachable or returned an error. Callers may retry with backoff or
	// skip the record; this package never retries internally.
	ErrUnavailable = errors.New("embedding capability unavailable")
)

// Embedder generates a fixed-dimension vector for a piece of text.
// Implementations must be safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator produces text from a prompt. It is used by callers for
// cluster and category naming, never inside matching logic.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Vector is an embedding together with the content hash it was derived
// from. A vector is stale (must be recomputed) when the hash of its
// source text no longer matches ContentHash.
type Vector struct {
	// Values is the fixed-dimension embedding.
	Values []float32

	// ContentHash identifies the normalized text the vector was
	// computed from.
	ContentHash string
}

// ContentHash returns the cache key for a piece of text: a SHA-256 digest
// of the trimmed, whitespace-collapsed text.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(normalizeText(text)))
	return hex.EncodeToString(sum[:])
}

func normalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
