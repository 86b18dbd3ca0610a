package domain

import "sync"

// RuntimeConfig tracks which AI services are available at runtime.
// Static fields are set at startup; capability flags change when the
// embedding or summarizer backends are swapped. Thread-safe.
type RuntimeConfig struct {
	mu sync.RWMutex

	// Static (set at startup, read-only)
	StoreBackend string // "postgres" or "sqlite"

	// Dynamic capability flags
	embeddingAvailable  bool
	summarizerAvailable bool
}

// NewRuntimeConfig creates a new RuntimeConfig with initial values
func NewRuntimeConfig(storeBackend string) *RuntimeConfig {
	return &RuntimeConfig{
		StoreBackend: storeBackend,
	}
}

// EmbeddingAvailable returns whether an embedding service is available
func (c *RuntimeConfig) EmbeddingAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.embeddingAvailable
}

// SummarizerAvailable returns whether a summarizer service is available
func (c *RuntimeConfig) SummarizerAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.summarizerAvailable
}

// SetEmbeddingAvailable updates the embedding availability flag
func (c *RuntimeConfig) SetEmbeddingAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.embeddingAvailable = available
}

// SetSummarizerAvailable updates the summarizer availability flag
func (c *RuntimeConfig) SetSummarizerAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summarizerAvailable = available
}

// CanRetrieve returns true if vector retrieval is possible
func (c *RuntimeConfig) CanRetrieve() bool {
	return c.EmbeddingAvailable()
}
