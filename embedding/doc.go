// Package embedding defines the text-embedding capability consumed by the
// rest of the module, plus a memoizing cache in front of it.
//
// The package does not talk to any model provider itself. Users bring an
// [Embedder] implementation (Ollama, OpenAI, a local model); the ollama
// package in this module provides one.
//
// # Caching
//
// [Cache] wraps an Embedder and guarantees that identical text is embedded
// at most once, even when callers race on the same text from multiple
// goroutines:
//
//	cache := embedding.NewCache(embedder)
//	vec, err := cache.GetOrCompute(ctx, "some bookmark text")
//
// Cache keys are derived from the trimmed, whitespace-collapsed text, so
// cosmetic whitespace differences do not cause duplicate remote calls.
//
// # Errors
//
// Provider failures surface as errors wrapping [ErrUnavailable]. The cache
// never retries; retry policy belongs to the caller.
package embedding
