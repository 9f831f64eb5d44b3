// Package ollama talks to a local Ollama server.
//
// [Client] implements both capability interfaces the core consumes:
// [embedding.Embedder] via the /api/embed endpoint and
// [embedding.Generator] via /api/generate. Transient HTTP failures are
// retried; errors that survive the retries wrap
// [embedding.ErrUnavailable] so callers can distinguish "the model is
// down" from their own bugs.
package ollama
