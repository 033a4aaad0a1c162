package response

import (
	"sort"
	"sync"
)

// Store keeps the most recent response per request name.
type Store struct {
	mu        sync.RWMutex
	responses map[string]*Response
}

func NewStore() *Store {
	return &Store{
		responses: make(map[string]*Response),
	}
}

// NewStoreFrom seeds a store with copies of the given responses.
func NewStoreFrom(responses map[string]*Response) *Store {
	s := NewStore()
	for name, r := range responses {
		s.responses[name] = r.Clone()
	}
	return s
}

func (s *Store) Get(name string) (*Response, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.responses[name]
	return r, ok
}

// Put stores resp under name, replacing any earlier response.
func (s *Store) Put(name string, resp *Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[name] = resp
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.responses)
}

// Names returns the stored names in sorted order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.responses))
	for name := range s.responses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns a shallow copy of the stored map.
func (s *Store) All() map[string]*Response {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*Response, len(s.responses))
	for k, v := range s.responses {
		out[k] = v
	}
	return out
}

func (s *Store) Clone() *Store {
	return NewStoreFrom(s.All())
}
