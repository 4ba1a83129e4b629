//go:build !integration

package usecase

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"imagegen-service/internal/domain/model"
	"imagegen-service/internal/domain/ports/adapter"
	"imagegen-service/internal/infra/worker"
)

// ---------------- test doubles + helpers ----------------

// stubGen is a controllable ImageGenAdapter. When release is non-nil every
// Generate call blocks until the channel is closed, which lets tests observe
// jobs in flight.
type stubGen struct {
	release chan struct{}
	err     error
	b64     string
	calls   int32
}

func (s *stubGen) Provider() string { return "stub" }

func (s *stubGen) Generate(ctx context.Context, req adapter.ImageRequest) (adapter.ImageResult, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.release != nil {
		select {
		case <-s.release:
		case <-time.After(5 * time.Second):
		}
	}
	if s.err != nil {
		return adapter.ImageResult{}, s.err
	}
	return adapter.ImageResult{B64Data: s.b64, MIMEType: "image/png"}, nil
}

func (s *stubGen) callCount() int { return int(atomic.LoadInt32(&s.calls)) }

func newLogger() *zerolog.Logger { l := zerolog.Nop(); return &l }

func newTestPool(t *testing.T) *worker.Pool {
	t.Helper()
	pool := worker.NewPool(4)
	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)
	t.Cleanup(func() {
		cancel()
		pool.Stop()
	})
	return pool
}

// waitForStatus polls until the job reaches the wanted status or the
// deadline expires.
func waitForStatus(t *testing.T, uc JobUseCase, jobID string, want model.JobStatus) *model.Job {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, err := uc.Get(context.Background(), jobID)
		if err != nil {
			t.Fatalf("get %s: %v", jobID, err)
		}
		if job.Status == want {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	job, _ := uc.Get(context.Background(), jobID)
	t.Fatalf("job %s never reached %s (last status %s)", jobID, want, job.Status)
	return nil
}
