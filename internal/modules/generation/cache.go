package generation

// hashCache is the request-scoped duplicate index. It is append-only: hashes
// are seeded from the stored corpus once and accepted candidates are added as
// the run proceeds, so later batches see everything earlier batches kept.
type hashCache struct {
	hashes map[string]struct{}
}

func newHashCache() *hashCache {
	return &hashCache{hashes: map[string]struct{}{}}
}

func (c *hashCache) Seed(texts []string) {
	for _, t := range texts {
		c.hashes[TextHash(t)] = struct{}{}
	}
}

// Contains reports whether the text's hash is already cached. It never
// inserts: only accepted content may enter the cache.
func (c *hashCache) Contains(text string) bool {
	_, ok := c.hashes[TextHash(text)]
	return ok
}

// Add inserts the text's hash and reports whether it was already present.
func (c *hashCache) Add(text string) (seen bool) {
	h := TextHash(text)
	if _, ok := c.hashes[h]; ok {
		return true
	}
	c.hashes[h] = struct{}{}
	return false
}

func (c *hashCache) Len() int { return len(c.hashes) }
