package embedding

import (
	"context"
	"fmt"
	"sync"
)

// Cache memoizes Embed calls by content hash. Identical normalized text
// is embedded at most once per cache lifetime; concurrent callers racing
// on the same text share a single in-flight remote call.
//
// Failed calls are not cached, so a later retry by the caller goes back
// to the provider.
type Cache struct {
	embedder Embedder

	mu       sync.Mutex
	vectors  map[string]Vector
	inflight map[string]*inflightCall
}

type inflightCall struct {
	done chan struct{}
	vec  Vector
	err  error
}

// NewCache creates a cache in front of the given embedder.
func NewCache(embedder Embedder) *Cache {
	return &Cache{
		embedder: embedder,
		vectors:  make(map[string]Vector),
		inflight: make(map[string]*inflightCall),
	}
}

// GetOrCompute returns the embedding for text, calling the underlying
// embedder only on a miss. Errors wrap [ErrUnavailable].
func (c *Cache) GetOrCompute(ctx context.Context, text string) (Vector, error) {
	key := ContentHash(text)

	c.mu.Lock()
	if vec, ok := c.vectors[key]; ok {
		c.mu.Unlock()
		return vec, nil
	}
	if call, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		select {
		case <-call.done:
			return call.vec, call.err
		case <-ctx.Done():
			return Vector{}, ctx.Err()
		}
	}
	call := &inflightCall{done: make(chan struct{})}
	c.inflight[key] = call
	c.mu.Unlock()

	values, err := c.embedder.Embed(ctx, text)

	c.mu.Lock()
	delete(c.inflight, key)
	if err != nil {
		call.err = fmt.Errorf("%w: %v", ErrUnavailable, err)
	} else {
		call.vec = Vector{Values: values, ContentHash: key}
		c.vectors[key] = call.vec
	}
	c.mu.Unlock()
	close(call.done)

	return call.vec, call.err
}

// Embed implements [Embedder] on top of GetOrCompute, so a Cache can be
// dropped in anywhere a plain Embedder is expected.
func (c *Cache) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := c.GetOrCompute(ctx, text)
	if err != nil {
		return nil, err
	}
	return vec.Values, nil
}

// Len returns the number of cached vectors.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.vectors)
}

// Invalidate drops the cached vector for text, forcing recomputation on
// the next GetOrCompute.
func (c *Cache) Invalidate(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.vectors, ContentHash(text))
}
