//go:build !integration

package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"imagegen-service/internal/domain"
	"imagegen-service/internal/domain/model"
	"imagegen-service/internal/infra/store"
)

func TestJobUseCase_SubmitIsNonBlocking(t *testing.T) {
	t.Parallel()

	gen := &stubGen{release: make(chan struct{}), b64: "aW1n"}
	uc := NewJobUseCase(store.NewJobStore(), gen, newTestPool(t), model.ModelPro, newLogger())

	start := time.Now()
	job, err := uc.Submit(context.Background(), "a city skyline at night", "", "")
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("Submit blocked for %v while the upstream call was still pending", elapsed)
	}

	// Immediately after submission the job is pending or processing,
	// never terminal: the upstream call has not resolved yet.
	got, err := uc.Get(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Status != model.JobStatusPending && got.Status != model.JobStatusProcessing {
		t.Fatalf("expected pending or processing right after submit, got %s", got.Status)
	}

	close(gen.release)
	done := waitForStatus(t, uc, job.ID, model.JobStatusCompleted)
	if done.ImageB64 != "aW1n" {
		t.Fatalf("expected payload to be stored, got %q", done.ImageB64)
	}
	if done.CompletedAt.IsZero() {
		t.Fatal("expected CompletedAt to be stamped")
	}
	if gen.callCount() != 1 {
		t.Fatalf("expected exactly one upstream call, got %d", gen.callCount())
	}
}

func TestJobUseCase_SubmitAppliesDefaults(t *testing.T) {
	t.Parallel()

	gen := &stubGen{b64: "aW1n"}
	uc := NewJobUseCase(store.NewJobStore(), gen, newTestPool(t), model.ModelPro, newLogger())

	job, err := uc.Submit(context.Background(), "a fern unfurling", "", "")
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if job.AspectRatio != model.DefaultAspectRatio {
		t.Fatalf("expected default aspect ratio, got %s", job.AspectRatio)
	}
	if job.Model != model.ModelPro {
		t.Fatalf("expected default model, got %s", job.Model)
	}
}

func TestJobUseCase_SubmitValidation(t *testing.T) {
	t.Parallel()

	gen := &stubGen{b64: "aW1n"}
	jobs := store.NewJobStore()
	uc := NewJobUseCase(jobs, gen, newTestPool(t), model.ModelPro, newLogger())
	ctx := context.Background()

	cases := []struct {
		name                  string
		prompt, aspect, model string
	}{
		{"empty prompt", "", "", ""},
		{"whitespace prompt", "   ", "", ""},
		{"bad aspect ratio", "p", "2:1", ""},
		{"bad model", "p", "", "dall-e-1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := uc.Submit(ctx, tc.prompt, tc.aspect, tc.model); !errors.Is(err, domain.ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}

	// A rejected submission must not leave a job behind.
	list, _ := jobs.List(ctx)
	if len(list) != 0 {
		t.Fatalf("expected no jobs after rejected submissions, found %d", len(list))
	}
	if gen.callCount() != 0 {
		t.Fatalf("expected no upstream calls, got %d", gen.callCount())
	}
}

func TestJobUseCase_UpstreamErrorFailsJob(t *testing.T) {
	t.Parallel()

	gen := &stubGen{err: errors.New("quota exhausted")}
	uc := NewJobUseCase(store.NewJobStore(), gen, newTestPool(t), model.ModelPro, newLogger())

	job, err := uc.Submit(context.Background(), "p", "", "")
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	failed := waitForStatus(t, uc, job.ID, model.JobStatusFailed)
	if !strings.Contains(failed.LastError, "quota exhausted") {
		t.Fatalf("expected upstream message in job error, got %q", failed.LastError)
	}
	if failed.ImageB64 != "" {
		t.Fatal("a failed job must not carry a payload")
	}
	if failed.CompletedAt.IsZero() {
		t.Fatal("expected CompletedAt on the failed job")
	}
}

func TestJobUseCase_EmptyResponseFailsJob(t *testing.T) {
	t.Parallel()

	// Upstream "succeeds" but returns no image data.
	gen := &stubGen{b64: ""}
	uc := NewJobUseCase(store.NewJobStore(), gen, newTestPool(t), model.ModelPro, newLogger())

	job, err := uc.Submit(context.Background(), "p", "", "")
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	failed := waitForStatus(t, uc, job.ID, model.JobStatusFailed)
	if !strings.Contains(failed.LastError, "no image data") {
		t.Fatalf("expected missing-payload message, got %q", failed.LastError)
	}
}

func TestJobUseCase_GetUnknown(t *testing.T) {
	t.Parallel()

	uc := NewJobUseCase(store.NewJobStore(), &stubGen{}, newTestPool(t), model.ModelPro, newLogger())
	if _, err := uc.Get(context.Background(), "job_missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestJobUseCase_ManyConcurrentSubmissions(t *testing.T) {
	t.Parallel()

	gen := &stubGen{b64: "aW1n"}
	uc := NewJobUseCase(store.NewJobStore(), gen, newTestPool(t), model.ModelPro, newLogger())
	ctx := context.Background()

	// More submissions than pool capacity; the overflow fallback must keep
	// every dispatch alive.
	const n = 64
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		job, err := uc.Submit(ctx, "p", "", "")
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		ids = append(ids, job.ID)
	}
	for _, id := range ids {
		waitForStatus(t, uc, id, model.JobStatusCompleted)
	}
	if gen.callCount() != n {
		t.Fatalf("expected %d upstream calls, got %d", n, gen.callCount())
	}
}
