package model

import "time"

type BatchStatus string

const (
	BatchStatusPending    BatchStatus = "pending"
	BatchStatusProcessing BatchStatus = "processing"
	BatchStatusCompleted  BatchStatus = "completed"
	BatchStatusPartial    BatchStatus = "partial"
	BatchStatusFailed     BatchStatus = "failed"
)

// MaxBatchSize is the hard input-validation cap on prompts per batch.
const MaxBatchSize = 20

// Batch is a named, ordered grouping of jobs submitted together.
// JobIDs is fixed at creation and defines save ordering. CompletedAt is
// stamped once, by the first aggregation that sees every member terminal.
type Batch struct {
	ID          string
	JobIDs      []string
	TotalCount  int
	CreatedAt   time.Time
	CompletedAt time.Time
}

// StatusCounts tallies member job statuses for one aggregation pass.
type StatusCounts struct {
	Pending    int
	Processing int
	Completed  int
	Failed     int
}

func (c StatusCounts) Add(s JobStatus) StatusCounts {
	switch s {
	case JobStatusPending:
		c.Pending++
	case JobStatusProcessing:
		c.Processing++
	case JobStatusCompleted:
		c.Completed++
	case JobStatusFailed:
		c.Failed++
	}
	return c
}

// AllDone reports whether every member has reached a terminal state.
func (c StatusCounts) AllDone(total int) bool {
	return c.Completed+c.Failed == total
}

// AggregateStatus derives the batch-level status from a snapshot of member
// statuses. Precedence, in order: every member failed -> failed; all done
// with any failure -> partial; all done -> completed; anything started or
// finished while others are outstanding -> processing; otherwise pending.
func AggregateStatus(c StatusCounts, total int) BatchStatus {
	switch {
	case c.AllDone(total) && c.Failed == total:
		return BatchStatusFailed
	case c.AllDone(total) && c.Failed > 0:
		return BatchStatusPartial
	case c.AllDone(total):
		return BatchStatusCompleted
	case c.Processing > 0 || c.Completed > 0:
		return BatchStatusProcessing
	default:
		return BatchStatusPending
	}
}
