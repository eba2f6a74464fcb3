package docstore

import (
	"context"
	"maps"
	"sync"
)

// MemoryStore keeps records in process memory. Lists are newest first.
type MemoryStore struct {
	mu    sync.RWMutex
	data  map[string]map[string]Record
	order map[string][]string
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:  make(map[string]map[string]Record),
		order: make(map[string][]string),
	}
}

func (s *MemoryStore) BatchReadByIDs(ctx context.Context, collection string, ids []string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	byID := s.data[collection]
	var out []Record
	for _, id := range uniqueIDs(ids) {
		if rec, ok := byID[id]; ok {
			out = append(out, maps.Clone(rec))
		}
	}
	return out, nil
}

func (s *MemoryStore) List(ctx context.Context, collection string, opts ListOptions) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts = opts.normalize()

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.order[collection]
	out := []Record{}
	for i := len(ids) - 1 - opts.Offset; i >= 0 && len(out) < opts.Limit; i-- {
		out = append(out, maps.Clone(s.data[collection][ids[i]]))
	}
	return out, nil
}

func (s *MemoryStore) Put(ctx context.Context, collection string, rec Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, id, err := prepare(collection, rec)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byID, ok := s.data[collection]
	if !ok {
		byID = make(map[string]Record)
		s.data[collection] = byID
	}
	if _, exists := byID[id]; !exists {
		s.order[collection] = append(s.order[collection], id)
	}
	byID[id] = rec
	return maps.Clone(rec), nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}
