package scanning

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	merchantWindow    = 5
	merchantMinLength = 3
	merchantMaxLength = 50
)

// ExtractMerchant guesses the merchant name from the first lines of the receipt
func ExtractMerchant(text string) (string, bool) {
	// Compose decomposed accents so "e" + U+0301 survives cleaning as "é"
	text = foldSpaces(norm.NFC.String(text))

	lines := make([]string, 0, merchantWindow)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == merchantWindow {
			break
		}
	}

	for _, line := range lines {
		if isBoilerplate(line) {
			continue
		}
		cleaned := strings.TrimSpace(merchantNoise.ReplaceAllString(line, ""))
		length := utf8.RuneCountInString(cleaned)
		if length >= merchantMinLength && length <= merchantMaxLength {
			return cleaned, true
		}
	}
	return "", false
}

func isBoilerplate(line string) bool {
	for _, p := range skipLinePatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}
