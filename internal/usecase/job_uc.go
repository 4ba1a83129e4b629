// File: internal/usecase/job_uc.go
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
	"imagegen-service/internal/domain/ports/adapter"
	"imagegen-service/internal/domain/ports/repository"
	"imagegen-service/internal/infra/logging"
	"imagegen-service/internal/infra/metrics"
	"imagegen-service/internal/infra/worker"
)

// Compile-time check
var _ JobUseCase = (*jobUC)(nil)

type JobUseCase interface {
	// Submit validates the request, creates a pending job and hands it to
	// the dispatcher. It returns before the upstream generation call is
	// issued; the caller polls status with the returned job's id.
	Submit(ctx context.Context, prompt, aspectRatio, modelName string) (*model.Job, error)
	Get(ctx context.Context, id string) (*model.Job, error)
	List(ctx context.Context) ([]*model.Job, error)
}

type jobUC struct {
	jobs         repository.JobRepository
	gen          adapter.ImageGenAdapter
	pool         *worker.Pool
	defaultModel string
	log          *zerolog.Logger
}

func NewJobUseCase(jobs repository.JobRepository, gen adapter.ImageGenAdapter, pool *worker.Pool, defaultModel string, log *zerolog.Logger) *jobUC {
	if !model.ValidModel(defaultModel) {
		defaultModel = model.DefaultModel
	}
	return &jobUC{jobs: jobs, gen: gen, pool: pool, defaultModel: defaultModel, log: log}
}

func (u *jobUC) Submit(ctx context.Context, prompt, aspectRatio, modelName string) (*model.Job, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("%w: prompt must not be empty", domain.ErrInvalidArgument)
	}
	if aspectRatio == "" {
		aspectRatio = model.DefaultAspectRatio
	}
	if !model.ValidAspectRatio(aspectRatio) {
		return nil, fmt.Errorf("%w: unsupported aspect ratio %q", domain.ErrInvalidArgument, aspectRatio)
	}
	if modelName == "" {
		modelName = u.defaultModel
	}
	if !model.ValidModel(modelName) {
		return nil, fmt.Errorf("%w: unsupported model %q", domain.ErrInvalidArgument, modelName)
	}

	job, err := u.jobs.Create(ctx, prompt, aspectRatio, modelName)
	if err != nil {
		return nil, err
	}
	metrics.IncJobSubmitted()
	u.dispatch(job)
	return job, nil
}

func (u *jobUC) Get(ctx context.Context, id string) (*model.Job, error) {
	return u.jobs.Get(ctx, id)
}

func (u *jobUC) List(ctx context.Context) ([]*model.Job, error) {
	return u.jobs.List(ctx)
}

// dispatch enqueues exactly one generation task for the job. The pool queue
// absorbs bursts; when it is saturated the task runs on its own goroutine
// instead, so a dispatch is never dropped and Submit never blocks.
func (u *jobUC) dispatch(job *model.Job) {
	req := adapter.ImageRequest{
		Prompt:      job.Prompt,
		AspectRatio: job.AspectRatio,
		Model:       job.Model,
	}
	id := job.ID
	task := func(ctx context.Context) error {
		u.process(ctx, id, req)
		return nil
	}
	if err := u.pool.Submit(task); err != nil {
		go func() { _ = task(context.Background()) }()
	}
}

// process runs the full pending -> processing -> terminal sequence for one
// job: exactly one upstream call, then one atomic store update.
func (u *jobUC) process(ctx context.Context, jobID string, req adapter.ImageRequest) {
	ctx = logging.WithJobID(ctx, jobID)
	log := logging.With(ctx, u.log)

	if _, err := u.jobs.Transition(ctx, jobID, model.JobStatusProcessing, "", ""); err != nil {
		log.Error().Err(err).Msg("could not mark job processing")
		return
	}
	log.Info().Str("model", req.Model).Msg("processing generation job")

	start := time.Now()
	res, err := u.gen.Generate(ctx, req)
	latency := time.Since(start)
	if err == nil && res.B64Data == "" {
		// A response without image data is a failure, not a silent no-op.
		err = errors.New("upstream returned no image data")
	}
	metrics.ObserveGeneration(u.gen.Provider(), req.Model, int(latency/time.Millisecond), err == nil)

	// Final update uses a background context: the outcome must be recorded
	// even if the dispatching context is gone.
	finalStatus := model.JobStatusCompleted
	if err != nil {
		finalStatus = model.JobStatusFailed
		_, _ = u.jobs.Transition(context.Background(), jobID, model.JobStatusFailed, "", fmt.Sprintf("generation failed: %v", err))
		log.Error().Err(err).Msg("generation job failed")
	} else {
		_, _ = u.jobs.Transition(context.Background(), jobID, model.JobStatusCompleted, res.B64Data, "")
	}

	metrics.IncJobFinished(string(finalStatus))
	log.Info().Str("status", string(finalStatus)).Dur("duration_ms", latency).Msg("generation job finished")
}
