// Package lrustore is the in-process cache driver: a fixed-size LRU
// over serialized layers.
package lrustore

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mohammed-shakir/hexbin-choropleth/internal/cache"
	"github.com/mohammed-shakir/hexbin-choropleth/internal/core/observability"
)

type Store struct {
	c *lru.Cache[string, []byte]
}

var _ cache.Interface = (*Store)(nil)

func New(size int) (*Store, error) {
	c, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("lru size %d: %w", size, err)
	}
	return &Store{c: c}, nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.c.Get(key)
	if ok {
		observability.IncCacheHit("lru")
	} else {
		observability.IncCacheMiss("lru")
	}
	return v, ok, nil
}

func (s *Store) Set(_ context.Context, key string, val []byte) error {
	s.c.Add(key, val)
	return nil
}

// Len reports the number of cached layers, for tests and debugging.
func (s *Store) Len() int { return s.c.Len() }
