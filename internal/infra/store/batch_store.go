package store

import (
	"context"
	"sync"
	"time"

	"imagegen-service/internal/domain"
	"imagegen-service/internal/domain/model"
	"imagegen-service/internal/domain/ports/repository"
)

var _ repository.BatchRepository = (*BatchStore)(nil)

// BatchStore maps batch ids to their ordered member job ids. Apart from the
// one-shot CompletedAt stamp a batch record never changes after creation.
type BatchStore struct {
	mu    sync.RWMutex
	byID  map[string]*model.Batch
	order []string
}

func NewBatchStore() *BatchStore {
	return &BatchStore{byID: map[string]*model.Batch{}}
}

func (s *BatchStore) Create(ctx context.Context, jobIDs []string) (*model.Batch, error) {
	ids := make([]string, len(jobIDs))
	copy(ids, jobIDs)
	batch := &model.Batch{
		ID:         NewID("batch"),
		JobIDs:     ids,
		TotalCount: len(ids),
		CreatedAt:  time.Now(),
	}

	s.mu.Lock()
	s.byID[batch.ID] = batch
	s.order = append(s.order, batch.ID)
	s.mu.Unlock()

	return copyBatch(batch), nil
}

func (s *BatchStore) Get(ctx context.Context, id string) (*model.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	batch, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyBatch(batch), nil
}

func (s *BatchStore) List(ctx context.Context) ([]*model.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Batch, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, copyBatch(s.byID[id]))
	}
	return out, nil
}

// StampCompleted sets CompletedAt once; later calls are no-ops, so racing
// aggregations cannot move the completion instant.
func (s *BatchStore) StampCompleted(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch, ok := s.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if batch.CompletedAt.IsZero() {
		batch.CompletedAt = at
	}
	return nil
}

func copyBatch(b *model.Batch) *model.Batch {
	cp := *b
	cp.JobIDs = make([]string, len(b.JobIDs))
	copy(cp.JobIDs, b.JobIDs)
	return &cp
}
