package model

import "time"

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether a job in this status will never transition again.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// CanTransition is the legal-edge table of the job state machine.
// pending -> processing -> {completed | failed}; nothing else.
func CanTransition(from, to JobStatus) bool {
	switch from {
	case JobStatusPending:
		return to == JobStatusProcessing
	case JobStatusProcessing:
		return to == JobStatusCompleted || to == JobStatusFailed
	default:
		return false
	}
}

// Supported aspect ratios and model tiers for generation requests.
const (
	DefaultAspectRatio = "1:1"
	DefaultModel       = ModelPro

	ModelPro   = "pro"
	ModelUltra = "ultra"
	ModelFast  = "fast"
)

var aspectRatios = map[string]struct{}{
	"1:1": {}, "3:4": {}, "4:3": {}, "9:16": {}, "16:9": {},
}

var models = map[string]struct{}{
	ModelPro: {}, ModelUltra: {}, ModelFast: {},
}

func ValidAspectRatio(r string) bool { _, ok := aspectRatios[r]; return ok }
func ValidModel(m string) bool       { _, ok := models[m]; return ok }

// Job is one unit of asynchronous image generation work.
//
// Status advances monotonically along the legal edges and a terminal job
// never mutates again. ImageB64 is set iff completed, LastError iff failed,
// and either is only set together with CompletedAt.
type Job struct {
	ID          string
	Status      JobStatus
	Prompt      string
	AspectRatio string
	Model       string
	ImageB64    string
	LastError   string
	CreatedAt   time.Time
	CompletedAt time.Time
}

func NewJob(id, prompt, aspectRatio, model string) *Job {
	return &Job{
		ID:          id,
		Status:      JobStatusPending,
		Prompt:      prompt,
		AspectRatio: aspectRatio,
		Model:       model,
		CreatedAt:   time.Now(),
	}
}
