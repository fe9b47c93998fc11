package store

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var (
	// ErrNotFound is returned when no object exists under a bucket/key.
	ErrNotFound = errors.New("object not found")
)

// Object is a stored blob with its content type.
type Object struct {
	Body        []byte
	ContentType string
}

// MemoryStore is a concurrency-safe in-memory object store.
type MemoryStore struct {
	mu sync.RWMutex

	// key: bucket, value: objects by key
	data map[string]map[string]Object

	puts int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]map[string]Object),
	}
}

// Put stores a copy of body, replacing any existing object.
func (s *MemoryStore) Put(_ context.Context, bucket, key string, body []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	objects, ok := s.data[bucket]
	if !ok {
		objects = make(map[string]Object)
		s.data[bucket] = objects
	}

	objects[key] = Object{
		Body:        append([]byte(nil), body...),
		ContentType: contentType,
	}
	s.puts++
	return nil
}

// Get returns a copy of the object body.
func (s *MemoryStore) Get(_ context.Context, bucket, key string) ([]byte, error) {
	obj, err := s.Object(bucket, key)
	if err != nil {
		return nil, err
	}
	return obj.Body, nil
}

// Object returns the stored object including its content type.
func (s *MemoryStore) Object(bucket, key string) (Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.data[bucket][key]
	if !ok {
		return Object{}, ErrNotFound
	}
	return Object{
		Body:        append([]byte(nil), obj.Body...),
		ContentType: obj.ContentType,
	}, nil
}

// Keys lists the keys of a bucket in lexical order.
func (s *MemoryStore) Keys(bucket string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data[bucket]))
	for k := range s.data[bucket] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Puts is the number of successful writes since creation.
func (s *MemoryStore) Puts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.puts
}
