package utils

import (
	"math"
	"regexp"
	"strings"
)

// noiseWords are removed from titles before duplicate comparison. Removal is
// plain substring replacement, not word-boundary aware.
var noiseWords = []string{
	"remastered", "remaster", "live", "version", "edit", "remix", "mono", "stereo",
}

var (
	parenSpanRe   = regexp.MustCompile(`\(.*?\)`)
	bracketSpanRe = regexp.MustCompile(`\[.*?\]`)
	featClauseRe  = regexp.MustCompile(`\b(feat\.?|ft\.?|featuring)\b.*`)
	nonAlnumRe    = regexp.MustCompile(`[^a-z0-9\s]`)
	multiSpaceRe  = regexp.MustCompile(`\s+`)
)

// CleanTitle strips quotes, parentheses and slashes from a song title.
func CleanTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return ""
	}

	cleaned := title
	cleaned = strings.ReplaceAll(cleaned, `"`, "")
	cleaned = strings.ReplaceAll(cleaned, "'", "")
	cleaned = strings.ReplaceAll(cleaned, "(", "")
	cleaned = strings.ReplaceAll(cleaned, ")", "")
	cleaned = strings.ReplaceAll(cleaned, "/", " ")
	cleaned = strings.ReplaceAll(cleaned, "  ", " ")

	return strings.TrimSpace(cleaned)
}

// NormalizeTitle lower-cases a cleaned title and removes noise words for
// duplicate detection.
func NormalizeTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return ""
	}

	normalized := strings.ToLower(CleanTitle(title))

	for _, word := range noiseWords {
		normalized = strings.ReplaceAll(normalized, word, "")
	}

	for strings.Contains(normalized, "  ") {
		normalized = strings.ReplaceAll(normalized, "  ", " ")
	}

	return strings.TrimSpace(normalized)
}

// IsDuplicateTitle reports whether two titles likely name the same recording:
// equal after normalization, one containing the other, or sharing at least
// 70% of the shorter title's words.
func IsDuplicateTitle(title1, title2 string) bool {
	n1 := NormalizeTitle(title1)
	n2 := NormalizeTitle(title2)

	if n1 == n2 {
		return true
	}

	if strings.Contains(n1, n2) || strings.Contains(n2, n1) {
		return true
	}

	words1 := strings.Fields(n1)
	words2 := strings.Fields(n2)
	common := countCommonWords(words1, words2)
	minWords := min(len(words1), len(words2))

	return minWords >= 2 && float64(common) >= math.Ceil(float64(minWords)*0.7)
}

// FuzzyTitleMatch is a looser matcher used to line a raw catalog track title
// up against the same catalog's music-video listing. It ignores
// parenthesized and bracketed spans, featuring clauses and punctuation.
func FuzzyTitleMatch(title1, title2 string) bool {
	n1 := normalizeFuzzy(title1)
	n2 := normalizeFuzzy(title2)

	if n1 == "" || n2 == "" {
		return false
	}

	if n1 == n2 {
		return true
	}

	if strings.Contains(n1, n2) || strings.Contains(n2, n1) {
		return true
	}

	words1 := strings.Fields(n1)
	words2 := strings.Fields(n2)
	common := countCommonWords(words1, words2)

	return common >= 2 || (common >= 1 && (len(words1) == 1 || len(words2) == 1))
}

func normalizeFuzzy(title string) string {
	if title == "" {
		return ""
	}

	normalized := strings.ToLower(strings.TrimSpace(title))
	normalized = parenSpanRe.ReplaceAllString(normalized, "")
	normalized = bracketSpanRe.ReplaceAllString(normalized, "")
	normalized = featClauseRe.ReplaceAllString(normalized, "")
	normalized = nonAlnumRe.ReplaceAllString(normalized, "")
	normalized = multiSpaceRe.ReplaceAllString(normalized, " ")

	return strings.TrimSpace(normalized)
}

func countCommonWords(words1, words2 []string) int {
	set1 := make(map[string]struct{}, len(words1))
	for _, word := range words1 {
		set1[word] = struct{}{}
	}

	seen := make(map[string]struct{}, len(words2))
	common := 0
	for _, word := range words2 {
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		if _, ok := set1[word]; ok {
			common++
		}
	}

	return common
}
