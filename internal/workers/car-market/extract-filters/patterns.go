// internal/workers/car-market/extract-filters/patterns.go
package extractfilters

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const priceNumber = `(\d{1,3}(?:,\d{3})+|\d{4,6})`

var (
	pricePattern = regexp.MustCompile(
		`(?i)(?:(?:under|below|less than)\s*)?\$?\s*\b` + priceNumber +
			`\b(?:\s*(?:to|-|and)\s*\$?\s*\b` + priceNumber + `\b)?`,
	)
	kmSuffix  = regexp.MustCompile(`(?i)^\s*(?:km|kilometers)\b`)
	// An odometer number is a 2-3 digit leading group plus optional 3-digit groups, and must
	// not continue a longer digit or comma run.
	kmPattern = regexp.MustCompile(`(?i)(?:^|[^\d,])(\d{2,3}(?:,?\d{3})*)\s*(?:km|kilometers)\b`)

	brandToken = regexp.MustCompile(`(?i)\bbrand-(?:"([\p{L}\p{N}_\s-]+)"|([\p{L}\p{N}_-]+))`)
	modelToken = regexp.MustCompile(`(?i)\bmodel-(?:"([\p{L}\p{N}_\s-]+)"|([\p{L}\p{N}_-]+))`)
	yearToken  = regexp.MustCompile(`(?i)\byear-(?:"([\d,\s]+)"|([\d,]+))`)
)

// priceRange returns the first price mention that is not an odometer reading. A lone number
// is a lower bound.
func priceRange(question string) (lower, upper *float64) {
	for _, m := range pricePattern.FindAllStringSubmatchIndex(question, -1) {
		n1Start, n1End := m[2], m[3]
		if kmSuffix.MatchString(question[n1End:]) {
			continue
		}
		lo := parseGrouped(question[n1Start:n1End])

		n2Start, n2End := m[4], m[5]
		if n2Start >= 0 && !kmSuffix.MatchString(question[n2End:]) {
			hi := parseGrouped(question[n2Start:n2End])
			return &lo, &hi
		}
		return &lo, nil
	}
	return nil, nil
}

// kmLimit returns the first "N km" mention.
func kmLimit(question string) *float64 {
	m := kmPattern.FindStringSubmatch(question)
	if m == nil {
		return nil
	}
	v := parseGrouped(m[1])
	return &v
}

func parseGrouped(s string) float64 {
	v, _ := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	return v
}

// tokenValue returns the value of a key-"value" token, quoted or bare.
func tokenValue(pattern *regexp.Regexp, question string) string {
	m := pattern.FindStringSubmatch(question)
	if m == nil {
		return ""
	}
	if m[1] != "" {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(m[2])
}

func yearSet(question string) []int {
	raw := tokenValue(yearToken, question)
	if raw == "" {
		return nil
	}
	var years []int
	for _, part := range strings.Split(raw, ",") {
		if y, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
			years = append(years, y)
		}
	}
	return years
}

// MatchWords returns the vocabulary entries found in text as whole words, case-insensitively,
// in vocabulary order. A match needs a non-word rune or the text edge on both sides, so "BM"
// does not match inside "BMW".
func MatchWords(text string, vocabulary []string) []string {
	lowered := strings.ToLower(text)
	seen := make(map[string]bool)
	matches := []string{}
	for _, word := range vocabulary {
		key := strings.ToLower(strings.TrimSpace(word))
		if key == "" || seen[key] {
			continue
		}
		if containsWord(lowered, key) {
			seen[key] = true
			matches = append(matches, strings.TrimSpace(word))
		}
	}
	return matches
}

func containsWord(text, word string) bool {
	from := 0
	for from <= len(text) {
		i := strings.Index(text[from:], word)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(word)

		before, _ := utf8.DecodeLastRuneInString(text[:start])
		after, _ := utf8.DecodeRuneInString(text[end:])
		if (start == 0 || !isWordRune(before)) && (end == len(text) || !isWordRune(after)) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		from = start + size
	}
	return false
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
