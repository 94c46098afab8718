package repofake

import (
	"sync"

	"github.com/jrsteele09/go-cms-client/storage"
)

var _ storage.Store = (*FakeStore)(nil)

type FakeStore struct {
	values map[string]string
	lock   sync.RWMutex
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		values: make(map[string]string),
	}
}

func (s *FakeStore) Get(key string) (string, bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *FakeStore) Set(key, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.values[key] = value
	return nil
}

func (s *FakeStore) Remove(key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.values, key)
	return nil
}

// Len is a test helper reporting how many keys are stored.
func (s *FakeStore) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.values)
}
