package kv

import (
	"context"
	"time"

	"centavo/internal/cache"
)

const memoryMaxKeys = 10000

// Memory is an in-process Store backed by the TTL LRU cache. It only works
// when issuing and redeeming happen in the same process.
type Memory struct {
	c *cache.LRUCache[string]
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-process store.
func NewMemory() *Memory {
	return &Memory{c: cache.NewLRUCache[string](memoryMaxKeys, time.Hour)}
}

// Cache exposes the backing cache so a cache.Manager can clean it.
func (m *Memory) Cache() *cache.LRUCache[string] {
	return m.c
}

func (m *Memory) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	return m.c.SetIfAbsent(key, value, ttl), nil
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.c.Delete(key)
	return nil
}

func (m *Memory) Close() error { return nil }
