// File: internal/usecase/batch_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"imagegen-service/internal/domain"
	"imagegen-service/internal/domain/model"
	"imagegen-service/internal/domain/ports/repository"
	"imagegen-service/internal/infra/logging"
	"imagegen-service/internal/infra/metrics"
)

// Compile-time check
var _ BatchUseCase = (*batchUC)(nil)

// BatchItem is one prompt entry inside a batch submission. AspectRatio and
// Model are optional per-item overrides of the batch-level defaults.
type BatchItem struct {
	Prompt      string
	AspectRatio string
	Model       string
}

// BatchDefaults are the batch-level fallbacks for items without overrides.
type BatchDefaults struct {
	AspectRatio string
	Model       string
}

// MemberSummary is the per-job slice of a batch status report.
type MemberSummary struct {
	JobID  string
	Status model.JobStatus
	Prompt string
	Error  string
}

// BatchView is the aggregate status of one batch at a point in time.
type BatchView struct {
	Batch   *model.Batch
	Status  model.BatchStatus
	Counts  model.StatusCounts
	Members []MemberSummary
}

type BatchUseCase interface {
	// Submit validates the whole request up front (a rejected batch creates
	// no jobs), then creates and dispatches one job per item in input order
	// and records the batch referencing them in that order.
	Submit(ctx context.Context, items []BatchItem, defaults BatchDefaults) (*model.Batch, error)
	// Status aggregates the current member statuses; the first call to see
	// every member terminal stamps the batch's CompletedAt.
	Status(ctx context.Context, id string) (*BatchView, error)
	List(ctx context.Context) ([]*BatchView, error)
}

type batchUC struct {
	batches repository.BatchRepository
	jobs    JobUseCase
	log     *zerolog.Logger
}

func NewBatchUseCase(batches repository.BatchRepository, jobs JobUseCase, log *zerolog.Logger) *batchUC {
	return &batchUC{batches: batches, jobs: jobs, log: log}
}

func (u *batchUC) Submit(ctx context.Context, items []BatchItem, defaults BatchDefaults) (*model.Batch, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: batch must contain at least one prompt", domain.ErrInvalidArgument)
	}
	if len(items) > model.MaxBatchSize {
		return nil, fmt.Errorf("%w: batch of %d prompts exceeds the limit of %d", domain.ErrInvalidArgument, len(items), model.MaxBatchSize)
	}

	// Resolve overrides and validate everything before creating any job.
	// Prompts are normalized here so the up-front pass rejects exactly what
	// per-job submission would.
	resolved := make([]BatchItem, len(items))
	for i, it := range items {
		it.Prompt = strings.TrimSpace(it.Prompt)
		if it.AspectRatio == "" {
			it.AspectRatio = defaults.AspectRatio
		}
		if it.Model == "" {
			it.Model = defaults.Model
		}
		if err := validateItem(i, it); err != nil {
			return nil, err
		}
		resolved[i] = it
	}

	jobIDs := make([]string, 0, len(resolved))
	for _, it := range resolved {
		job, err := u.jobs.Submit(ctx, it.Prompt, it.AspectRatio, it.Model)
		if err != nil {
			return nil, err
		}
		jobIDs = append(jobIDs, job.ID)
	}

	batch, err := u.batches.Create(ctx, jobIDs)
	if err != nil {
		return nil, err
	}
	metrics.ObserveBatchSize(batch.TotalCount)
	u.log.Info().Str("batch_id", batch.ID).Int("jobs", batch.TotalCount).Msg("batch submitted")
	return batch, nil
}

func validateItem(i int, it BatchItem) error {
	if it.Prompt == "" {
		return fmt.Errorf("%w: prompt %d must not be empty", domain.ErrInvalidArgument, i+1)
	}
	if it.AspectRatio != "" && !model.ValidAspectRatio(it.AspectRatio) {
		return fmt.Errorf("%w: prompt %d has unsupported aspect ratio %q", domain.ErrInvalidArgument, i+1, it.AspectRatio)
	}
	if it.Model != "" && !model.ValidModel(it.Model) {
		return fmt.Errorf("%w: prompt %d has unsupported model %q", domain.ErrInvalidArgument, i+1, it.Model)
	}
	return nil
}

func (u *batchUC) Status(ctx context.Context, id string) (*BatchView, error) {
	defer logging.TraceDuration(u.log, "BatchUC.Status")()

	batch, err := u.batches.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.aggregate(logging.WithBatchID(ctx, batch.ID), batch)
}

func (u *batchUC) List(ctx context.Context) ([]*BatchView, error) {
	batches, err := u.batches.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*BatchView, 0, len(batches))
	for _, b := range batches {
		view, err := u.aggregate(ctx, b)
		if err != nil {
			return nil, err
		}
		out = append(out, view)
	}
	return out, nil
}

// aggregate is a read-only pass over the member jobs' current statuses,
// plus the one-shot CompletedAt stamp on the first all-done observation.
func (u *batchUC) aggregate(ctx context.Context, batch *model.Batch) (*BatchView, error) {
	var counts model.StatusCounts
	members := make([]MemberSummary, 0, batch.TotalCount)
	for _, jobID := range batch.JobIDs {
		job, err := u.jobs.Get(ctx, jobID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Batches are created after their member jobs and jobs are
				// never deleted, so this cannot happen without a bug.
				panic(fmt.Sprintf("batch %s references unknown job %s", batch.ID, jobID))
			}
			return nil, err
		}
		counts = counts.Add(job.Status)
		members = append(members, MemberSummary{
			JobID:  job.ID,
			Status: job.Status,
			Prompt: job.Prompt,
			Error:  job.LastError,
		})
	}

	if counts.AllDone(batch.TotalCount) && batch.CompletedAt.IsZero() {
		if err := u.batches.StampCompleted(ctx, batch.ID, time.Now()); err != nil {
			return nil, err
		}
		if refreshed, err := u.batches.Get(ctx, batch.ID); err == nil {
			batch = refreshed
		}
	}

	return &BatchView{
		Batch:   batch,
		Status:  model.AggregateStatus(counts, batch.TotalCount),
		Counts:  counts,
		Members: members,
	}, nil
}
