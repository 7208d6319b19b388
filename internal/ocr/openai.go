package ocr

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/zombor/fin-tracker/internal/scanning"
)

// OpenAI implements the scanning.TextDetector interface using an OpenAI vision model
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates a new OpenAI TextDetector instance.
// An empty baseURL uses the public OpenAI endpoint.
func NewOpenAI(apiKey string, modelName string, baseURL string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is required: %w", scanning.ErrNotConfigured)
	}
	if modelName == "" {
		modelName = openai.GPT4o
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(config),
		model:  modelName,
	}, nil
}

// DetectText transcribes the receipt image
func (o *OpenAI) DetectText(ctx context.Context, imageBase64 string, languageHint string) (string, error) {
	data, err := decodeImage(imageBase64)
	if err != nil {
		return "", err
	}
	imageURL := fmt.Sprintf("data:%s;base64,%s", detectMimeType(data), imageBase64)

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: transcriptionPrompt(languageHint),
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    imageURL,
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}

	return cleanTranscript(resp.Choices[0].Message.Content), nil
}

// Close is a no-op for the HTTP based client
func (o *OpenAI) Close() error {
	return nil
}
