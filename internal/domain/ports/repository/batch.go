package repository

import (
	"context"
	"time"

	"imagegen-service/internal/domain/model"
)

type BatchRepository interface {
	// Create records a batch referencing already-created member jobs,
	// preserving their order.
	Create(ctx context.Context, jobIDs []string) (*model.Batch, error)
	Get(ctx context.Context, id string) (*model.Batch, error)
	List(ctx context.Context) ([]*model.Batch, error)
	// StampCompleted sets the batch's CompletedAt if and only if it is still
	// unset (compare-and-swap). Concurrent callers racing on the first
	// all-done observation are idempotent.
	StampCompleted(ctx context.Context, id string, at time.Time) error
}
