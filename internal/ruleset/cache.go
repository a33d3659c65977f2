package ruleset

import "sync"

// Cache is the process-lifetime URL→body cache the loader consults. It is a
// dedup optimization for repeated URLs within one request, never a
// correctness requirement: a no-op implementation is valid.
type Cache interface {
	Get(url string) (string, bool)
	Set(url, body string)
	Clear()
}

// MemoryCache is the default Cache. Scoped to one process instance; a cold
// start always refetches.
type MemoryCache struct {
	mu sync.Mutex
	m  map[string]string
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{m: make(map[string]string)}
}

func (c *MemoryCache) Get(url string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	body, ok := c.m[url]
	return body, ok
}

func (c *MemoryCache) Set(url, body string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[url] = body
}

func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m = make(map[string]string)
}

// NopCache ignores everything. Useful in tests and for callers that want
// every fetch to hit the network.
type NopCache struct{}

func (NopCache) Get(string) (string, bool) { return "", false }
func (NopCache) Set(string, string)        {}
func (NopCache) Clear()                    {}
