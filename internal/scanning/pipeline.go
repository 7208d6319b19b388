package scanning

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var dataURLPrefix = regexp.MustCompile(`^data:image/\w+;base64,`)

// Pipeline turns receipt images into ScanResults through an OCR provider
type Pipeline struct {
	detector TextDetector
}

// NewPipeline creates a Pipeline. A nil detector makes every Scan fail with KindConfig.
func NewPipeline(detector TextDetector) *Pipeline {
	return &Pipeline{detector: detector}
}

// Configured reports whether an OCR provider is available
func (p *Pipeline) Configured() bool {
	return p.detector != nil
}

// Scan reads the text on a base64 image (optionally a data URL) and interprets it
func (p *Pipeline) Scan(ctx context.Context, image string) (*ScanResult, error) {
	if p.detector == nil {
		return nil, &Error{Kind: KindConfig, Err: ErrNotConfigured}
	}

	image = StripDataURL(strings.TrimSpace(image))
	if image == "" {
		return nil, &Error{Kind: KindInvalidInput, Err: ErrNoImage}
	}

	text, err := p.detector.DetectText(ctx, image, LanguageItalian)
	if err != nil {
		return nil, &Error{Kind: KindProcessing, Err: fmt.Errorf("detecting text: %w", err)}
	}
	if strings.TrimSpace(text) == "" {
		return nil, &Error{Kind: KindProcessing, Err: ErrNoText}
	}

	result := Interpret(text)
	return &result, nil
}

// StripDataURL removes a "data:image/...;base64," prefix
func StripDataURL(image string) string {
	return dataURLPrefix.ReplaceAllString(image, "")
}

// Interpret extracts amount, date and merchant from OCR text and scores the outcome.
// It is a pure function of text.
func Interpret(text string) ScanResult {
	result := ScanResult{RawText: text}

	if amount, ok := ExtractAmount(text); ok {
		result.Amount = &amount
	}
	if date, ok := ExtractDate(text); ok {
		result.Date = &date
	}
	if merchant, ok := ExtractMerchant(text); ok {
		result.Merchant = &merchant
	}

	result.Confidence = Confidence(result.Amount != nil, result.Date != nil, result.Merchant != nil)
	return result
}
