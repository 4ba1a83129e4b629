// File: internal/usecase/save_uc.go
package usecase

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"imagegen-service/internal/domain"
	"imagegen-service/internal/domain/model"
	"imagegen-service/internal/domain/ports/repository"
	"imagegen-service/internal/infra/metrics"
)

// ResultExt is the required extension for persisted results; the adapters
// request PNG output from every provider.
const ResultExt = ".png"

// DefaultFilenamePrefix is used for batch saves when the caller supplies none.
const DefaultFilenamePrefix = "image"

// Compile-time check
var _ SaveUseCase = (*saveUC)(nil)

type SavedItem struct {
	JobID string
	Path  string
}

type FailedItem struct {
	JobID  string
	Reason string
}

// BatchSaveResult separates per-item outcomes; Success is true when at
// least one member was written.
type BatchSaveResult struct {
	Success bool
	Saved   []SavedItem
	Failed  []FailedItem
}

type SaveUseCase interface {
	// SaveJob decodes a completed job's payload and writes it to destPath,
	// creating parent directories and overwriting an existing file.
	SaveJob(ctx context.Context, jobID, destPath string) (string, error)
	// SaveBatch saves every completed member of a batch under
	// dir/<prefix>_<1-based index>.png in submission order. A single
	// member's failure never aborts its siblings.
	SaveBatch(ctx context.Context, batchID, dir, prefix string) (*BatchSaveResult, error)
}

type saveUC struct {
	jobs    repository.JobRepository
	batches repository.BatchRepository
	log     *zerolog.Logger
}

func NewSaveUseCase(jobs repository.JobRepository, batches repository.BatchRepository, log *zerolog.Logger) *saveUC {
	return &saveUC{jobs: jobs, batches: batches, log: log}
}

func (u *saveUC) SaveJob(ctx context.Context, jobID, destPath string) (string, error) {
	path, err := u.saveJob(ctx, jobID, destPath)
	if err != nil {
		metrics.IncSave("failed")
		return "", err
	}
	metrics.IncSave("saved")
	return path, nil
}

func (u *saveUC) saveJob(ctx context.Context, jobID, destPath string) (string, error) {
	job, err := u.jobs.Get(ctx, jobID)
	if err != nil {
		return "", err
	}
	if job.Status != model.JobStatusCompleted {
		if job.Status == model.JobStatusFailed {
			return "", fmt.Errorf("%w: job %s failed: %s", domain.ErrInvalidState, jobID, job.LastError)
		}
		return "", fmt.Errorf("%w: job %s is still %s", domain.ErrInvalidState, jobID, job.Status)
	}
	if !strings.EqualFold(filepath.Ext(destPath), ResultExt) {
		return "", fmt.Errorf("%w: destination path must end in %s", domain.ErrInvalidArgument, ResultExt)
	}

	data, err := base64.StdEncoding.DecodeString(job.ImageB64)
	if err != nil {
		return "", fmt.Errorf("decode payload of job %s: %w", jobID, err)
	}
	if dir := filepath.Dir(destPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(destPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", destPath, err)
	}

	u.log.Info().Str("job_id", jobID).Str("path", destPath).Int("bytes", len(data)).Msg("result saved")
	return destPath, nil
}

func (u *saveUC) SaveBatch(ctx context.Context, batchID, dir, prefix string) (*BatchSaveResult, error) {
	batch, err := u.batches.Get(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if prefix == "" {
		prefix = DefaultFilenamePrefix
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", dir, err)
	}

	res := &BatchSaveResult{}
	for i, jobID := range batch.JobIDs {
		// Filename index follows submission order, not completion order.
		dest := filepath.Join(dir, fmt.Sprintf("%s_%d%s", prefix, i+1, ResultExt))
		path, err := u.SaveJob(ctx, jobID, dest)
		if err != nil {
			res.Failed = append(res.Failed, FailedItem{JobID: jobID, Reason: err.Error()})
			continue
		}
		res.Saved = append(res.Saved, SavedItem{JobID: jobID, Path: path})
	}
	res.Success = len(res.Saved) > 0

	u.log.Info().Str("batch_id", batchID).Int("saved", len(res.Saved)).Int("failed", len(res.Failed)).Msg("batch save finished")
	return res, nil
}
