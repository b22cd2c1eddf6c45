// rerank/cache.go
package rerank

import (
	"fmt"
	"os"
	"sync"

	json "github.com/goccy/go-json"
)

// Cache lazily loads and caches a Model by file path. A load failure is
// remembered so repeated requests don't retry a broken path every time, and
// callers treat it as pass-through rather than a request failure.
type Cache struct {
	mu       sync.RWMutex
	path     string
	model    *Model
	loadErr  error
	attempted bool
}

func NewCache() *Cache {
	return &Cache{}
}

// Get returns the model cached for path, loading it on first use for that
// path. Changing path evicts the previous entry.
func (c *Cache) Get(path string) (*Model, error) {
	if path == "" {
		return nil, fmt.Errorf("reranker: no model path configured")
	}

	c.mu.RLock()
	if c.attempted && c.path == path {
		model, err := c.model, c.loadErr
		c.mu.RUnlock()
		return model, err
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.attempted && c.path == path {
		return c.model, c.loadErr
	}

	model, err := loadModel(path)
	c.path = path
	c.model = model
	c.loadErr = err
	c.attempted = true
	return model, err
}

func loadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading reranker model: %w", err)
	}

	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing reranker model: %w", err)
	}

	if err := validateModel(&m); err != nil {
		return nil, fmt.Errorf("invalid reranker model: %w", err)
	}

	return &m, nil
}
