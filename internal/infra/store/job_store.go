package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"imagegen-service/internal/domain"
	"imagegen-service/internal/domain/model"
	"imagegen-service/internal/domain/ports/repository"
)

var _ repository.JobRepository = (*JobStore)(nil)

// JobStore is the in-memory, process-lifetime source of truth for job
// records. One mutex guards the map and the insertion-order index; readers
// get copies, so a terminal status is never visible without its payload or
// error message. Records are never deleted.
type JobStore struct {
	mu    sync.RWMutex
	byID  map[string]*model.Job
	order []string
}

func NewJobStore() *JobStore {
	return &JobStore{byID: map[string]*model.Job{}}
}

func (s *JobStore) Create(ctx context.Context, prompt, aspectRatio, modelName string) (*model.Job, error) {
	job := model.NewJob(NewID("job"), prompt, aspectRatio, modelName)

	s.mu.Lock()
	s.byID[job.ID] = job
	s.order = append(s.order, job.ID)
	s.mu.Unlock()

	cp := *job
	return &cp, nil
}

func (s *JobStore) Get(ctx context.Context, id string) (*model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (s *JobStore) Transition(ctx context.Context, id string, to model.JobStatus, imageB64, errMsg string) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if !model.CanTransition(job.Status, to) {
		// Only the dispatcher drives transitions, so an illegal edge is an
		// internal state-machine bug, not caller input.
		panic(fmt.Sprintf("job store: illegal transition %s -> %s for job %s", job.Status, to, id))
	}

	job.Status = to
	if to.Terminal() && job.CompletedAt.IsZero() {
		job.CompletedAt = time.Now()
	}
	switch to {
	case model.JobStatusCompleted:
		job.ImageB64 = imageB64
	case model.JobStatusFailed:
		job.LastError = errMsg
	}

	cp := *job
	return &cp, nil
}

func (s *JobStore) List(ctx context.Context) ([]*model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Job, 0, len(s.order))
	for _, id := range s.order {
		cp := *s.byID[id]
		out = append(out, &cp)
	}
	return out, nil
}
