// File: internal/infra/adapters/ai/gemini_adapter.go
package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"imagegen-service/internal/domain/model"
	"imagegen-service/internal/domain/ports/adapter"
)

var _ adapter.ImageGenAdapter = (*GeminiAdapter)(nil)

// imagenModels maps the public quality tiers onto Imagen model ids.
var imagenModels = map[string]string{
	model.ModelPro:   "imagen-4.0-generate-001",
	model.ModelUltra: "imagen-4.0-ultra-generate-001",
	model.ModelFast:  "imagen-4.0-fast-generate-001",
}

type GeminiAdapter struct {
	client *genai.Client
}

// NewGeminiAdapter creates an Imagen adapter using the official SDK.
func NewGeminiAdapter(ctx context.Context, apiKey, baseURL string) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiAdapter{client: c}, nil
}

func (g *GeminiAdapter) Provider() string { return "gemini" }

func (g *GeminiAdapter) Generate(ctx context.Context, req adapter.ImageRequest) (adapter.ImageResult, error) {
	modelID, ok := imagenModels[req.Model]
	if !ok {
		modelID = imagenModels[model.DefaultModel]
	}

	resp, err := g.client.Models.GenerateImages(ctx, modelID, req.Prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    req.AspectRatio,
		OutputMIMEType: "image/png",
	})
	if err != nil {
		return adapter.ImageResult{}, fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil || len(resp.GeneratedImages[0].Image.ImageBytes) == 0 {
		return adapter.ImageResult{}, errors.New("gemini: response contained no image data")
	}

	img := resp.GeneratedImages[0].Image
	mime := img.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return adapter.ImageResult{
		B64Data:  base64.StdEncoding.EncodeToString(img.ImageBytes),
		MIMEType: mime,
	}, nil
}
