package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"slices"
	"sync"
)

// Storage provides an in-memory implementation of run storage.
type Storage struct {
	mu      sync.Mutex
	objects map[string][]byte
	opened  int
}

func NewMemoryStorage() *Storage {
	return &Storage{
		objects: make(map[string][]byte),
	}
}

type object struct {
	bytes.Buffer
	name   string
	s      *Storage
	closed bool
}

func (o *object) Close() error {
	if o.closed {
		return nil
	}
	o.closed = true
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	o.s.objects[o.name] = o.Bytes()
	return nil
}

// Create returns a writer whose content becomes visible on Close.
func (s *Storage) Create(_ context.Context, name string) (io.WriteCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[name]; ok {
		return nil, fmt.Errorf("failed to create object %s: %w", name, fs.ErrExist)
	}
	s.objects[name] = nil
	return &object{name: name, s: s}, nil
}

func (s *Storage) Open(_ context.Context, name string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[name]
	if !ok {
		return nil, fmt.Errorf("failed to open object %s: %w", name, fs.ErrNotExist)
	}
	s.opened++
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *Storage) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, name)
	return nil
}

// List lists the stored object names, sorted.
func (s *Storage) List(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Sorted(maps.Keys(s.objects)), nil
}

// Opened reports how many times Open succeeded.
func (s *Storage) Opened() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened
}

func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.objects)
	return nil
}
