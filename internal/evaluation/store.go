package evaluation

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrResultNotFound is returned for unknown result IDs.
var ErrResultNotFound = errors.New("result not found")

// Store persists completed evaluation results and user points.
type Store interface {
	SaveResult(ctx context.Context, r Result) error
	GetResult(ctx context.Context, id string) (Result, error)
	ListResults(ctx context.Context, userID string, limit, offset int) ([]Result, error)
	AddPoints(ctx context.Context, userID string, delta int) error
}

type memoryStore struct {
	mu      sync.RWMutex
	results map[string]Result
	points  map[string]int
}

// NewInMemoryStore returns a Store backed by process memory. Used in
// tests and throwaway dev runs.
func NewInMemoryStore() Store {
	return &memoryStore{
		results: map[string]Result{},
		points:  map[string]int{},
	}
}

func (m *memoryStore) SaveResult(_ context.Context, r Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[r.ID] = r
	return nil
}

func (m *memoryStore) GetResult(_ context.Context, id string) (Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.results[id]
	if !ok {
		return Result{}, ErrResultNotFound
	}
	return r, nil
}

func (m *memoryStore) ListResults(_ context.Context, userID string, limit, offset int) ([]Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Result
	for _, r := range m.results {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	// newest first
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryStore) AddPoints(_ context.Context, userID string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.points[userID] += delta
	return nil
}
