package repository

import (
	"context"

	"imagegen-service/internal/domain/model"
)

type JobRepository interface {
	// Create allocates an id and inserts a pending job record.
	Create(ctx context.Context, prompt, aspectRatio, modelName string) (*model.Job, error)
	Get(ctx context.Context, id string) (*model.Job, error)
	// Transition moves a job along a legal state-machine edge, storing the
	// payload (completed) or error message (failed) and stamping CompletedAt
	// atomically with the status. An illegal edge is an internal consistency
	// bug and panics; it can never originate from caller input.
	Transition(ctx context.Context, id string, to model.JobStatus, imageB64, errMsg string) (*model.Job, error)
	// List returns a snapshot of all jobs in creation order.
	List(ctx context.Context) ([]*model.Job, error)
}
