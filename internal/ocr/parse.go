package ocr

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

// transcriptionPrompt is the shared prompt used by all LLM providers to read a receipt.
// The model only transcribes; fields are extracted by the scanning rules.
func transcriptionPrompt(languageHint string) string {
	return fmt.Sprintf(`You are reading a photographed paper receipt written in language %q.
Transcribe every line of printed text exactly as it appears, from top to bottom, one receipt line per output line.

Important:
- Do not translate, summarize, correct or reorder anything
- Keep numbers, decimal commas, currency symbols, dates and codes verbatim
- Do not add any text before or after the transcription
- Do not use markdown code blocks`, languageHint)
}

// cleanTranscript removes the markdown fences models add despite being told not to
func cleanTranscript(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		// Drop the opening fence together with any language tag
		if idx := strings.Index(text, "\n"); idx != -1 {
			text = text[idx+1:]
		} else {
			text = strings.TrimPrefix(text, "```")
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}

	return strings.TrimSpace(text)
}

// decodeImage decodes standard base64, with or without padding
func decodeImage(imageBase64 string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(imageBase64)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(imageBase64, "="))
		if err != nil {
			return nil, fmt.Errorf("decoding base64 image: %w", err)
		}
	}
	return data, nil
}

// detectMimeType sniffs the image type, defaulting to JPEG for unknown content
func detectMimeType(data []byte) string {
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return "image/jpeg"
	}
	return mimeType
}
