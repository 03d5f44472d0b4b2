package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"networth/internal/core"
	"networth/internal/income"
	"networth/internal/jobs"
)

// Store keeps encoded jobs in process memory. Payloads are stored the same
// way the SQLite backend stores them, so callers never share state with the
// store.
type Store struct {
	mu    sync.Mutex
	order []uuid.UUID
	items map[uuid.UUID][]byte
	// deleted holds soft-deleted ids.
	deleted map[uuid.UUID]time.Time
}

var _ jobs.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		items:   map[uuid.UUID][]byte{},
		deleted: map[uuid.UUID]time.Time{},
	}
}

// Create validates and stores the job.
func (s *Store) Create(_ context.Context, job *income.Job) error {
	if job.ID == uuid.Nil {
		job.Record = core.NewRecord()
	}
	if err := job.Validate(); err != nil {
		return err
	}
	payload, err := jobs.Encode(job)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[job.ID]; ok {
		return jobs.ErrAlreadyExists
	}
	s.items[job.ID] = payload
	s.order = append(s.order, job.ID)
	return nil
}

func (s *Store) Get(_ context.Context, id uuid.UUID) (*income.Job, error) {
	s.mu.Lock()
	payload, ok := s.live(id)
	s.mu.Unlock()
	if !ok {
		return nil, jobs.ErrNotFound
	}
	return jobs.Decode(payload)
}

func (s *Store) List(_ context.Context) ([]*income.Job, error) {
	s.mu.Lock()
	payloads := make([][]byte, 0, len(s.order))
	for _, id := range s.order {
		if payload, ok := s.live(id); ok {
			payloads = append(payloads, payload)
		}
	}
	s.mu.Unlock()

	out := make([]*income.Job, 0, len(payloads))
	for _, p := range payloads {
		job, err := jobs.Decode(p)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, nil
}

func (s *Store) Update(_ context.Context, job *income.Job) error {
	if err := job.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.live(job.ID); !ok {
		return jobs.ErrNotFound
	}
	job.Touch()
	payload, err := jobs.Encode(job)
	if err != nil {
		return err
	}
	s.items[job.ID] = payload
	return nil
}

func (s *Store) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.live(id); !ok {
		return jobs.ErrNotFound
	}
	s.deleted[id] = time.Now().UTC()
	return nil
}

// live must be called with mu held.
func (s *Store) live(id uuid.UUID) ([]byte, bool) {
	payload, ok := s.items[id]
	if !ok {
		return nil, false
	}
	if _, gone := s.deleted[id]; gone {
		return nil, false
	}
	return payload, true
}
