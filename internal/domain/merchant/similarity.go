package merchant

import (
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// DefaultNearTokenSimilarity is the minimum similarity for two tokens to be
// considered the same merchant word ("MCDONALDS" vs "MCDONALD").
const DefaultNearTokenSimilarity = 0.85

// minNearTokenLength keeps short tokens from matching on edit distance alone.
const minNearTokenLength = 4

var editOptions = levenshtein.Options{
	InsCost: 1,
	DelCost: 1,
	SubCost: 1,
	Matches: levenshtein.IdenticalRunes,
}

// TokenSimilarity returns 1 - editDistance/maxLength, in [0,1].
func TokenSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.DistanceForStrings(ra, rb, editOptions)
	return 1 - float64(dist)/float64(longest)
}

// TokensMatch reports whether two tokens are equal or near-equal.
func TokensMatch(a, b string, minSimilarity float64) bool {
	if a == b {
		return true
	}
	if len([]rune(a)) < minNearTokenLength || len([]rune(b)) < minNearTokenLength {
		return false
	}
	return TokenSimilarity(a, b) >= minSimilarity
}

// Overlap returns the symmetric share of tokens with a counterpart on the
// other side: (matchedA + matchedB) / (len(a) + len(b)).
func Overlap(a, b []string, minSimilarity float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	matched := countMatched(a, b, minSimilarity) + countMatched(b, a, minSimilarity)
	return float64(matched) / float64(len(a)+len(b))
}

// Exact reports whether two normalized merchant strings are identical once
// whitespace is ignored. Empty strings never match.
func Exact(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.ReplaceAll(a, " ", "") == strings.ReplaceAll(b, " ", "")
}

func countMatched(from, to []string, minSimilarity float64) int {
	n := 0
	for _, x := range from {
		for _, y := range to {
			if TokensMatch(x, y, minSimilarity) {
				n++
				break
			}
		}
	}
	return n
}
