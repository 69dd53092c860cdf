package ocr

import (
	"strings"

	"github.com/jtn0123/MegaBonk-sub002/internal/catalog"
)

// FuzzyResult is the best catalog entity for an extracted text fragment.
type FuzzyResult struct {
	Entity catalog.Entity
	Score  float64 // 0-1, 1.0 for an exact normalized match
}

// FuzzyMatch finds the catalog entity whose name best matches the
// extracted text, keeping the single best score across all lines and
// entities. Returns ok=false when nothing clears the cutoff.
func FuzzyMatch(text string, entities []catalog.Entity, cutoff float64) (FuzzyResult, bool) {
	var best FuzzyResult

	for _, line := range strings.Split(text, "\n") {
		needle := normalize(line)
		if needle == "" {
			continue
		}
		for _, e := range entities {
			score := similarity(needle, normalize(e.Name()))
			if score > best.Score {
				best = FuzzyResult{Entity: e, Score: score}
			}
		}
	}

	return best, best.Entity != nil && best.Score >= cutoff
}

// normalize lowercases and strips everything but letters, digits, and
// single spaces, since OCR output is noisy around punctuation.
func normalize(s string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		case r == ' ' && !lastSpace:
			b.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// similarity is 1 - normalized Levenshtein distance.
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	dist := levenshtein(a, b)
	longer := len(a)
	if len(b) > longer {
		longer = len(b)
	}
	return 1.0 - float64(dist)/float64(longer)
}

// levenshtein computes edit distance with a two-row table.
func levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
