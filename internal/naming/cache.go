package naming

// Cache memoizes Tokenize results by raw string. It is not safe for
// concurrent use; each rendering context owns its own Cache.
type Cache struct {
	entries map[string]*Tokens
}

// NewCache returns an empty token cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*Tokens)}
}

// Get returns the cached tokens for raw, tokenizing on first request.
func (c *Cache) Get(raw string) *Tokens {
	if t, ok := c.entries[raw]; ok {
		return t
	}
	t := Tokenize(raw)
	c.entries[raw] = t
	return t
}

// Len reports how many distinct names have been tokenized.
func (c *Cache) Len() int { return len(c.entries) }
