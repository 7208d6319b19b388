package ocr

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/vision/v1"

	"github.com/zombor/fin-tracker/internal/scanning"
)

const textDetection = "TEXT_DETECTION"

// Vision implements the scanning.TextDetector interface using Google Cloud Vision
type Vision struct {
	service *vision.Service
}

// NewVision creates a new Vision TextDetector authenticated with an API key.
// Extra options are appended after the key, e.g. option.WithEndpoint.
func NewVision(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Vision, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google vision api key is required: %w", scanning.ErrNotConfigured)
	}

	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := vision.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating vision client: %w", err)
	}

	return &Vision{service: service}, nil
}

// DetectText runs TEXT_DETECTION on the image and returns the full text annotation
func (v *Vision) DetectText(ctx context.Context, imageBase64 string, languageHint string) (string, error) {
	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{
			{
				Image: &vision.Image{Content: imageBase64},
				Features: []*vision.Feature{
					{Type: textDetection, MaxResults: 1},
				},
				ImageContext: &vision.ImageContext{
					LanguageHints: []string{languageHint},
				},
			},
		},
	}

	resp, err := v.service.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("google vision api error: %w", err)
	}

	if len(resp.Responses) == 0 {
		return "", scanning.ErrNoText
	}
	annotated := resp.Responses[0]
	if annotated.Error != nil && annotated.Error.Message != "" {
		return "", fmt.Errorf("google vision api error: %s", annotated.Error.Message)
	}
	// The first annotation holds the whole text block, the rest are single words
	if len(annotated.TextAnnotations) == 0 {
		return "", scanning.ErrNoText
	}

	return annotated.TextAnnotations[0].Description, nil
}

// Close is a no-op, the vision service holds no resources
func (v *Vision) Close() error {
	return nil
}
