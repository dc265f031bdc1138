package generation

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// Duplicate detection thresholds. Jaccard catches rewordings against the
// stored corpus, Levenshtein catches near-identical phrasing inside one
// generation run.
const (
	jaccardThreshold     = 0.7
	levenshteinThreshold = 0.8
	jaccardMinWordLen    = 3
)

// NormalizeText lowercases, strips punctuation and collapses whitespace so
// trivially restyled duplicates hash to the same value.
func NormalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// TextHash returns the hex SHA-256 of the normalized text.
func TextHash(s string) string {
	sum := sha256.Sum256([]byte(NormalizeText(s)))
	return hex.EncodeToString(sum[:])
}

func significantWords(s string) map[string]struct{} {
	words := map[string]struct{}{}
	for _, w := range strings.Fields(NormalizeText(s)) {
		if len(w) > jaccardMinWordLen {
			words[w] = struct{}{}
		}
	}
	return words
}

// JaccardSimilarity measures word-set overlap between two texts, counting
// only words longer than three characters. Returns 0 when either side has no
// significant words.
func JaccardSimilarity(a, b string) float64 {
	wa, wb := significantWords(a), significantWords(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}
	inter := 0
	for w := range wa {
		if _, ok := wb[w]; ok {
			inter++
		}
	}
	union := len(wa) + len(wb) - inter
	return float64(inter) / float64(union)
}

// LevenshteinRatio returns 1 - distance/maxLen over the normalized texts,
// so 1 means identical.
func LevenshteinRatio(a, b string) float64 {
	na, nb := NormalizeText(a), NormalizeText(b)
	if na == nb {
		return 1
	}
	ra, rb := []rune(na), []rune(nb)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(levenshtein(ra, rb))/float64(maxLen)
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
