package kvstore

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore is an in-process Store used for tests and for running without
// external services. Values are kept as their JSON encoding so round-trips
// behave exactly like the durable backends.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key string, out interface{}) error {
	s.mu.Lock()
	data, ok := s.data[key]
	s.mu.Unlock()
	if !ok {
		return ErrKeyNotFound
	}
	return json.Unmarshal(data, out)
}

func (s *MemoryStore) Set(_ context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data[key] = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) SetMulti(_ context.Context, values map[string]interface{}) error {
	encoded := make(map[string][]byte, len(values))
	for key, value := range values {
		data, err := json.Marshal(value)
		if err != nil {
			return err
		}
		encoded[key] = data
	}
	s.mu.Lock()
	for key, data := range encoded {
		s.data[key] = data
	}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}
