package scanning

import "context"

// LanguageItalian is the language hint passed to every TextDetector
const LanguageItalian = "it"

// ScanResult contains the fields interpreted from one block of receipt text
type ScanResult struct {
	Amount     *float64 `json:"amount"`
	Date       *string  `json:"date"` // YYYY-MM-DD
	Merchant   *string  `json:"merchant"`
	Confidence int      `json:"confidence"`
	RawText    string   `json:"rawText"`
}

// TextDetector defines the interface for OCR providers
type TextDetector interface {
	// DetectText returns the text printed on a base64-encoded image
	DetectText(ctx context.Context, imageBase64 string, languageHint string) (string, error)
	// Close closes the detector and releases resources
	Close() error
}
