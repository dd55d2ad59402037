package postag

import (
	"context"
	"strings"
	"sync"
)

// Cached memoizes successful answers of another tagger. Errors are not
// cached, so a temporarily unavailable service is retried.
type Cached struct {
	next Tagger

	mu    sync.RWMutex
	cache map[string][]string
}

// NewCached wraps next with an in-memory cache.
func NewCached(next Tagger) *Cached {
	return &Cached{
		next:  next,
		cache: make(map[string][]string),
	}
}

// Tag implements Tagger.
func (c *Cached) Tag(ctx context.Context, words []string) ([]string, error) {
	key := strings.Join(words, "\x00")

	c.mu.RLock()
	tags, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return append([]string(nil), tags...), nil
	}

	tags, err := c.next.Tag(ctx, words)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[key] = append([]string(nil), tags...)
	c.mu.Unlock()
	return tags, nil
}

// Len returns the number of cached entries.
func (c *Cached) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}
