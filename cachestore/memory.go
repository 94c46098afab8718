package cachestore

import (
	"context"
	"slices"
	"sync"
)

// MemoryStorage keeps every group in process memory.
type MemoryStorage struct {
	mu     sync.RWMutex
	order  []string
	groups map[string]*memoryCache
}

var _ Storage = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{groups: make(map[string]*memoryCache)}
}

func (s *MemoryStorage) Open(_ context.Context, name string) (Cache, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.groups[name]
	if !ok {
		c = &memoryCache{name: name, entries: make(map[string]*Entry)}
		s.groups[name] = c
		s.order = append(s.order, name)
	}
	return c, nil
}

func (s *MemoryStorage) Has(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.groups[name]
	return ok, nil
}

func (s *MemoryStorage) Delete(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[name]; !ok {
		return false, nil
	}
	delete(s.groups, name)
	s.order = slices.DeleteFunc(s.order, func(n string) bool { return n == name })
	return true, nil
}

func (s *MemoryStorage) Names(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.order), nil
}

type memoryCache struct {
	name    string
	mu      sync.RWMutex
	keys    []string
	entries map[string]*Entry
}

func (c *memoryCache) Name() string {
	return c.name
}

func (c *memoryCache) Match(_ context.Context, key string) (*Entry, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	cp := *e
	return &cp, true, nil
}

func (c *memoryCache) Put(_ context.Context, entry *Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := entry.Key()
	if _, ok := c.entries[key]; !ok {
		c.keys = append(c.keys, key)
	}
	cp := *entry
	c.entries[key] = &cp
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		return false, nil
	}
	delete(c.entries, key)
	c.keys = slices.DeleteFunc(c.keys, func(k string) bool { return k == key })
	return true, nil
}

// Entries returns the entries in insertion order.
func (c *memoryCache) Entries(_ context.Context) ([]*Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Entry, 0, len(c.keys))
	for _, k := range c.keys {
		cp := *c.entries[k]
		out = append(out, &cp)
	}
	return out, nil
}
