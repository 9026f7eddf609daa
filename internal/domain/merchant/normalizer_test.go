package merchant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizer_Normalize(t *testing.T) {
	n := DefaultNormalizer()

	tests := []struct {
		name       string
		raw        string
		normalized string
		tokens     []string
	}{
		{"plain", "SUBWAY MOMENTUM", "SUBWAY MOMENTUM", []string{"SUBWAY", "MOMENTUM"}},
		{"lowercase and punctuation", "subway-momentum.", "SUBWAY MOMENTUM", []string{"SUBWAY", "MOMENTUM"}},
		{"mall and branch number", "Subway Mall Plaza Vespucio #123", "SUBWAY VESPUCIO", []string{"SUBWAY", "VESPUCIO"}},
		{"accents", "Peñalolén Café", "PENALOLEN CAFE", []string{"PENALOLEN", "CAFE"}},
		{"payment prefix", "MERPAGO*UBER", "UBER", []string{"UBER"}},
		{"branch code", "JUMBO SUC12 N45", "JUMBO", []string{"JUMBO"}},
		{"duplicate tokens", "UBER UBER TRIP", "UBER TRIP", []string{"UBER", "TRIP"}},
		{"only noise", "Mall Plaza Santiago 001", "", []string{}},
		{"empty", "", "", []string{}},
		{"keeps leading digits", "7ELEVEN", "7ELEVEN", []string{"7ELEVEN"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			normalized, tokens := n.Normalize(tt.raw)
			assert.Equal(t, tt.normalized, normalized)
			assert.Equal(t, tt.tokens, tokens)
		})
	}
}

func TestNormalizer_ExtraNoise(t *testing.T) {
	n := NewNormalizer("momentum", " ")

	normalized, tokens := n.Normalize("SUBWAY MOMENTUM")

	assert.Equal(t, "SUBWAY", normalized)
	assert.Equal(t, []string{"SUBWAY"}, tokens)
}

func TestTokensMatch(t *testing.T) {
	assert.True(t, TokensMatch("UBER", "UBER", DefaultNearTokenSimilarity))
	assert.True(t, TokensMatch("MCDONALDS", "MCDONALD", DefaultNearTokenSimilarity))
	assert.False(t, TokensMatch("UBER", "LIDER", DefaultNearTokenSimilarity))
	// short tokens need exact equality
	assert.False(t, TokensMatch("ABC", "ABD", 0.1))
}

func TestOverlap(t *testing.T) {
	t.Run("identical sets", func(t *testing.T) {
		assert.Equal(t, 1.0, Overlap([]string{"SUBWAY", "MOMENTUM"}, []string{"SUBWAY", "MOMENTUM"}, DefaultNearTokenSimilarity))
	})

	t.Run("partial is symmetric", func(t *testing.T) {
		a := []string{"SUBWAY", "MOMENTUM"}
		b := []string{"SUBWAY"}
		assert.InDelta(t, 2.0/3.0, Overlap(a, b, DefaultNearTokenSimilarity), 1e-9)
		assert.Equal(t, Overlap(a, b, DefaultNearTokenSimilarity), Overlap(b, a, DefaultNearTokenSimilarity))
	})

	t.Run("no overlap", func(t *testing.T) {
		assert.Equal(t, 0.0, Overlap([]string{"UBER"}, []string{"JUMBO"}, DefaultNearTokenSimilarity))
	})

	t.Run("empty side", func(t *testing.T) {
		assert.Equal(t, 0.0, Overlap(nil, []string{"JUMBO"}, DefaultNearTokenSimilarity))
	})
}

func TestExact(t *testing.T) {
	assert.True(t, Exact("MC DONALDS", "MCDONALDS"))
	assert.True(t, Exact("UBER", "UBER"))
	assert.False(t, Exact("UBER", "UBER EATS"))
	assert.False(t, Exact("", ""))
}
