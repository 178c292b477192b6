package resolve

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"
)

var (
	cacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jumpbot_resolver_cache_hits_total",
		Help: "Resolver memo table hits",
	}, []string{"table"})

	cacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jumpbot_resolver_cache_misses_total",
		Help: "Resolver memo table misses",
	}, []string{"table"})
)

// canonicalEntry memoizes a lookup; ok=false records a negative result.
type canonicalEntry struct {
	name string
	ok   bool
}

// Cache holds the resolver's memo tables, keyed by the raw token text.
// Entries are never evicted: the set of distinct tokens users type is small.
// Concurrent fills for the same key are coalesced; since every fill is a pure
// function of the token, a racing duplicate insert would store the same value.
type Cache struct {
	mu        sync.RWMutex
	canonical map[string]canonicalEntry
	fuzzy     map[string][]string
	valid     map[string]bool
	group     singleflight.Group
}

// NewCache creates empty memo tables.
func NewCache() *Cache {
	return &Cache{
		canonical: make(map[string]canonicalEntry),
		fuzzy:     make(map[string][]string),
		valid:     make(map[string]bool),
	}
}

// Stats reports the size of each memo table.
type Stats struct {
	Canonical int `json:"canonical"`
	Fuzzy     int `json:"fuzzy"`
	Valid     int `json:"valid"`
}

// Stats returns the current table sizes.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{Canonical: len(c.canonical), Fuzzy: len(c.fuzzy), Valid: len(c.valid)}
}

func (c *Cache) canonicalFor(token string, fill func() canonicalEntry) canonicalEntry {
	c.mu.RLock()
	e, ok := c.canonical[token]
	c.mu.RUnlock()
	if ok {
		cacheHits.WithLabelValues("canonical").Inc()
		return e
	}
	cacheMisses.WithLabelValues("canonical").Inc()

	v, _, _ := c.group.Do("c:"+token, func() (interface{}, error) {
		e := fill()
		c.mu.Lock()
		c.canonical[token] = e
		c.mu.Unlock()
		return e, nil
	})
	return v.(canonicalEntry)
}

func (c *Cache) fuzzyFor(token string, fill func() []string) []string {
	c.mu.RLock()
	list, ok := c.fuzzy[token]
	c.mu.RUnlock()
	if ok {
		cacheHits.WithLabelValues("fuzzy").Inc()
		return list
	}
	cacheMisses.WithLabelValues("fuzzy").Inc()

	v, _, _ := c.group.Do("f:"+token, func() (interface{}, error) {
		list := fill()
		c.mu.Lock()
		c.fuzzy[token] = list
		c.mu.Unlock()
		return list, nil
	})
	return v.([]string)
}

func (c *Cache) validFor(token string, fill func() bool) bool {
	c.mu.RLock()
	ok, hit := c.valid[token]
	c.mu.RUnlock()
	if hit {
		cacheHits.WithLabelValues("valid").Inc()
		return ok
	}
	cacheMisses.WithLabelValues("valid").Inc()

	ok = fill()
	c.mu.Lock()
	c.valid[token] = ok
	c.mu.Unlock()
	return ok
}
