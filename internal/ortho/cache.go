package ortho

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cachedMatch struct {
	chords []Chord
	ok     bool
}

// Cached memoizes the results of another Segmenter. It is safe for
// concurrent use.
type Cached struct {
	inner Segmenter
	cache *lru.Cache[string, cachedMatch]
}

// NewCached wraps inner with an LRU cache holding up to size words.
func NewCached(inner Segmenter, size int) (*Cached, error) {
	if size <= 0 {
		return nil, fmt.Errorf("cache size must be > 0")
	}
	cache, err := lru.New[string, cachedMatch](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create match cache: %w", err)
	}
	return &Cached{inner: inner, cache: cache}, nil
}

// WithCache returns inner wrapped in a cache, or inner itself when size <= 0.
func WithCache(inner Segmenter, size int) (Segmenter, error) {
	if size <= 0 {
		return inner, nil
	}
	return NewCached(inner, size)
}

// Segment implements Segmenter.
func (c *Cached) Segment(word string) ([]Chord, bool) {
	if hit, ok := c.cache.Get(word); ok {
		return hit.chords, hit.ok
	}
	chords, ok := c.inner.Segment(word)
	c.cache.Add(word, cachedMatch{chords: chords, ok: ok})
	return chords, ok
}

// Len returns the number of cached words.
func (c *Cached) Len() int {
	return c.cache.Len()
}
