package adapter

import "context"

// ImageRequest describes one generation call.
type ImageRequest struct {
	Prompt      string
	AspectRatio string // "1:1", "3:4", "4:3", "9:16", "16:9"
	Model       string // quality tier: "pro", "ultra", "fast"
}

// ImageResult is the decoded provider response for one image.
type ImageResult struct {
	B64Data  string // base64-encoded image bytes
	MIMEType string
}

// ImageGenAdapter is the port for the external image generation service.
// Generate performs exactly one upstream call; a response without image
// data must be reported as an error, never as an empty success.
type ImageGenAdapter interface {
	Provider() string
	Generate(ctx context.Context, req ImageRequest) (ImageResult, error)
}
