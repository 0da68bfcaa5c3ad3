package issuancestore

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// memoryStore keeps run history in process. Used when no database is
// configured and in tests.
type memoryStore struct {
	mu     sync.RWMutex
	runs   map[string]*Run
	order  []string // insertion order
	events map[string][]*Event
	seq    int64
	now    func() time.Time
}

// NewMemoryStore creates an in-memory run-history store.
func NewMemoryStore() Store {
	return &memoryStore{
		runs:   make(map[string]*Run),
		events: make(map[string][]*Event),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *memoryStore) CreateRun(_ context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[run.ID]; ok {
		return fmt.Errorf("failed to create run: duplicate id %s", run.ID)
	}
	now := s.now()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now
	}
	run.UpdatedAt = now
	s.runs[run.ID] = run.Clone()
	s.order = append(s.order, run.ID)
	return nil
}

func (s *memoryStore) UpdateRun(_ context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.runs[run.ID]
	if !ok {
		return ErrRunNotFound
	}
	run.CreatedAt = existing.CreatedAt
	run.UpdatedAt = s.now()
	s.runs[run.ID] = run.Clone()
	return nil
}

func (s *memoryStore) GetRun(_ context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	return run.Clone(), nil
}

func (s *memoryStore) ListRuns(_ context.Context, opts ...QueryOption) ([]*Run, error) {
	options := buildOptions(opts)

	s.mu.RLock()
	defer s.mu.RUnlock()
	runs := make([]*Run, 0, len(s.runs))
	for i := len(s.order) - 1; i >= 0; i-- {
		r := s.runs[s.order[i]]
		if options.Symbol != nil && r.Symbol != *options.Symbol {
			continue
		}
		if options.Status != nil && r.Status != *options.Status {
			continue
		}
		runs = append(runs, r.Clone())
	}
	if len(runs) > options.Limit {
		runs = runs[:options.Limit]
	}
	return runs, nil
}

func (s *memoryStore) AppendEvent(_ context.Context, event *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	event.Seq = s.seq
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now()
	}
	e := *event
	s.events[event.RunID] = append(s.events[event.RunID], &e)
	return nil
}

func (s *memoryStore) ListEvents(_ context.Context, runID string) ([]*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.events[runID]
	out := make([]*Event, len(src))
	for i, e := range src {
		c := *e
		out[i] = &c
	}
	return out, nil
}
