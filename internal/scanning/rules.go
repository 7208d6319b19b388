package scanning

import (
	"regexp"
	"strings"
	"unicode"
)

// rule pairs a pattern with the function that turns its submatches into a value.
// Rules are evaluated in slice order and the first accepted match decides the field.
type rule[T any] struct {
	name      string
	pattern   *regexp.Regexp
	normalize func(match []string) (T, bool)
}

// firstMatch returns the value of the first rule whose match its normalizer accepts.
// Only the first match of each rule is considered; a rejected match moves on to the next rule.
func firstMatch[T any](rules []rule[T], text string) (T, bool) {
	var zero T
	text = foldSpaces(text)
	for _, r := range rules {
		match := r.pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		if v, ok := r.normalize(match); ok {
			return v, true
		}
	}
	return zero, false
}

// foldSpaces turns Unicode spaces such as U+00A0 into ASCII spaces so the
// patterns' \s sees them. Line breaks are kept for the line anchored rules.
func foldSpaces(text string) string {
	return strings.Map(func(r rune) rune {
		if r <= unicode.MaxASCII || !unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, text)
}

const (
	currency   = `(?:EUR|€)`
	amountExpr = `(\d+[,.]\d{2})`
)

var amountRules = []rule[float64]{
	{
		name:      "currency-prefix",
		pattern:   regexp.MustCompile(`(?i)` + currency + `\s*` + amountExpr),
		normalize: normalizeAmount,
	},
	{
		name:      "total-label",
		pattern:   regexp.MustCompile(`(?i)(?:TOTALE|TOT\.?|TOTAL)\s*[:=]?\s*` + currency + `?\s*` + amountExpr),
		normalize: normalizeAmount,
	},
	{
		name:      "currency-suffix",
		pattern:   regexp.MustCompile(`(?i)` + amountExpr + `\s*` + currency),
		normalize: normalizeAmount,
	},
	{
		name:      "payment-label",
		pattern:   regexp.MustCompile(`(?i)(?:DA PAGARE|IMPORTO|PAGATO)\s*[:=]?\s*` + currency + `?\s*` + amountExpr),
		normalize: normalizeAmount,
	},
	{
		name:      "bare-line",
		pattern:   regexp.MustCompile(`(?m)^\s*` + amountExpr + `\s*$`),
		normalize: normalizeAmount,
	},
}

var dateRules = []rule[string]{
	{
		name:      "numeric-long-year",
		pattern:   regexp.MustCompile(`(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{4})`),
		normalize: normalizeNumericDate,
	},
	{
		name:      "numeric-short-year",
		pattern:   regexp.MustCompile(`(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{2})`),
		normalize: normalizeNumericDate,
	},
	{
		name:      "italian-month",
		pattern:   regexp.MustCompile(`(?i)(\d{1,2})\s+((?:GEN|FEB|MAR|APR|MAG|GIU|LUG|AGO|SET|OTT|NOV|DIC)\p{L}*)\s+(\d{4})`),
		normalize: normalizeMonthNameDate,
	},
}

// monthLookup maps Italian month names and abbreviations to their number
var monthLookup = map[string]string{
	"GEN": "01", "GENNAIO": "01",
	"FEB": "02", "FEBBRAIO": "02",
	"MAR": "03", "MARZO": "03",
	"APR": "04", "APRILE": "04",
	"MAG": "05", "MAGGIO": "05",
	"GIU": "06", "GIUGNO": "06",
	"LUG": "07", "LUGLIO": "07",
	"AGO": "08", "AGOSTO": "08",
	"SET": "09", "SETTEMBRE": "09",
	"OTT": "10", "OTTOBRE": "10",
	"NOV": "11", "NOVEMBRE": "11",
	"DIC": "12", "DICEMBRE": "12",
}

// skipLinePatterns match receipt lines that can never hold the merchant name
var skipLinePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(SCONTRINO|RICEVUTA|DOCUMENTO|FISCALE)`),
	regexp.MustCompile(`(?i)^(P\.IVA|P\.I\.|C\.F\.|REG\.)`),
	regexp.MustCompile(`(?i)^(DATA|ORA|CASSA)`),
	regexp.MustCompile(`(?i)^(TOTALE|TOT|SUBTOT|RESTO)`),
	regexp.MustCompile(`^\d+[,.]\d{2}$`),
	regexp.MustCompile(`^[\d/\-.]+$`),
}

// merchantNoise matches everything a merchant name may not contain
var merchantNoise = regexp.MustCompile(`[^\p{L}\p{N}\s\-']`)
