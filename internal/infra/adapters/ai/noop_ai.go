package ai

import (
	"context"
	"log"
	"time"

	"imagegen-service/internal/domain/ports/adapter"
)

var _ adapter.ImageGenAdapter = (*NoopAdapter)(nil)

// pixelPNG is a 1x1 transparent PNG, enough to exercise the save path.
const pixelPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

// NoopAdapter implements adapter.ImageGenAdapter for local/dev testing.
// It logs the request and returns a stub image instead of calling a
// real provider.
type NoopAdapter struct{}

func NewNoopAdapter() *NoopAdapter {
	return &NoopAdapter{}
}

func (a *NoopAdapter) Provider() string { return "noop" }

func (a *NoopAdapter) Generate(ctx context.Context, req adapter.ImageRequest) (adapter.ImageResult, error) {
	// Simulate slight processing time and respect ctx
	select {
	case <-time.After(100 * time.Millisecond):
		// proceed
	case <-ctx.Done():
		return adapter.ImageResult{}, ctx.Err()
	}
	log.Printf("[noop-ai] model=%s aspect=%s prompt=%q\n", req.Model, req.AspectRatio, req.Prompt)
	return adapter.ImageResult{B64Data: pixelPNG, MIMEType: "image/png"}, nil
}
