package scanning

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const isoDate = "2006-01-02"

// ExtractDate returns the transaction date in YYYY-MM-DD form
func ExtractDate(text string) (string, bool) {
	return firstMatch(dateRules, text)
}

func normalizeNumericDate(match []string) (string, bool) {
	year := match[3]
	if len(year) == 2 {
		year = "20" + year
	}
	return validDate(year, match[2], match[1])
}

func normalizeMonthNameDate(match []string) (string, bool) {
	// Casers keep state, so each call gets its own
	token := []rune(cases.Upper(language.Italian).String(match[2]))
	if len(token) < 3 {
		return "", false
	}
	month, ok := monthLookup[string(token[:3])]
	if !ok {
		return "", false
	}
	return validDate(match[3], month, match[1])
}

// validDate zero-pads its parts and rejects dates that do not exist on the calendar
func validDate(year, month, day string) (string, bool) {
	candidate := fmt.Sprintf("%s-%s-%s", year, pad2(month), pad2(day))
	if _, err := time.Parse(isoDate, candidate); err != nil {
		return "", false
	}
	return candidate, true
}

func pad2(s string) string {
	if len(s) < 2 {
		return strings.Repeat("0", 2-len(s)) + s
	}
	return s
}
