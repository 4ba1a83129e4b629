package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"imagegen-service/internal/domain/model"
	"imagegen-service/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.ImageGenAdapter = (*OpenAIAdapter)(nil)

// OpenAIAdapter implements adapter.ImageGenAdapter on gpt-image-1.
// The quality tiers map to the model's quality levels; aspect ratios map to
// the nearest supported canvas size.
type OpenAIAdapter struct {
	client openai.Client
}

func NewOpenAIAdapter(apiKey string) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	return &OpenAIAdapter{client: openai.NewClient(option.WithAPIKey(apiKey))}, nil
}

func (o *OpenAIAdapter) Provider() string { return "openai" }

func (o *OpenAIAdapter) Generate(ctx context.Context, req adapter.ImageRequest) (adapter.ImageResult, error) {
	resp, err := o.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:  req.Prompt,
		Model:   openai.ImageModelGPTImage1,
		N:       openai.Int(1),
		Size:    sizeFor(req.AspectRatio),
		Quality: qualityFor(req.Model),
	})
	if err != nil {
		return adapter.ImageResult{}, fmt.Errorf("openai generate: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return adapter.ImageResult{}, errors.New("openai: response contained no image data")
	}
	return adapter.ImageResult{
		B64Data:  resp.Data[0].B64JSON,
		MIMEType: "image/png",
	}, nil
}

func sizeFor(aspectRatio string) openai.ImageGenerateParamsSize {
	switch aspectRatio {
	case "4:3", "16:9":
		return openai.ImageGenerateParamsSize1536x1024
	case "3:4", "9:16":
		return openai.ImageGenerateParamsSize1024x1536
	default:
		return openai.ImageGenerateParamsSize1024x1024
	}
}

func qualityFor(tier string) openai.ImageGenerateParamsQuality {
	switch tier {
	case model.ModelUltra:
		return openai.ImageGenerateParamsQualityHigh
	case model.ModelFast:
		return openai.ImageGenerateParamsQualityLow
	default:
		return openai.ImageGenerateParamsQualityMedium
	}
}
