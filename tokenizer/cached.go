package tokenizer

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// Encoder is the tokenizer capability Cached wraps.
type Encoder interface {
	Encode(text string) ([]int64, error)
	TokenToID(symbol string) (int64, bool)
}

// Cached memoises Encode results per input text. Concurrent misses on the same
// text share one call to the wrapped tokenizer. It is safe for concurrent use
// when the wrapped tokenizer is.
type Cached struct {
	inner Encoder
	cache *lru.Cache
	sf    singleflight.Group
}

// NewCached wraps inner with an LRU of the given number of entries.
func NewCached(inner Encoder, size int) (*Cached, error) {
	if inner == nil {
		return nil, errors.New("tokenizer: nil tokenizer")
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "tokenizer: create encode cache")
	}
	return &Cached{inner: inner, cache: cache}, nil
}

// Encode returns a private copy of the cached ids.
func (c *Cached) Encode(text string) ([]int64, error) {
	if v, ok := c.cache.Get(text); ok {
		return append([]int64(nil), v.([]int64)...), nil
	}
	v, err, _ := c.sf.Do(text, func() (any, error) {
		ids, err := c.inner.Encode(text)
		if err != nil {
			return nil, err
		}
		ids = append([]int64(nil), ids...)
		c.cache.Add(text, ids)
		return ids, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]int64(nil), v.([]int64)...), nil
}

func (c *Cached) TokenToID(symbol string) (int64, bool) { return c.inner.TokenToID(symbol) }

// Len reports the number of cached texts.
func (c *Cached) Len() int { return c.cache.Len() }
