// Package merchant normalizes merchant text into comparable tokens.
//
// Normalization is deterministic, not fuzzy:
//   - accents are folded (Ñ -> N, É -> E) and text is uppercased
//   - punctuation becomes whitespace
//   - noise tokens (mall and city names, payment prefixes, legal suffixes) are dropped
//   - branch numbers ("123", "N45", "SUC12") are dropped
//
// Example usage:
//
//	n := merchant.DefaultNormalizer()
//	normalized, tokens := n.Normalize("Subway - Mall Plaza Vespucio #123")
//	// normalized == "SUBWAY VESPUCIO", tokens == ["SUBWAY", "VESPUCIO"]
package merchant

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// defaultNoiseTokens are dropped from every merchant string.
var defaultNoiseTokens = []string{
	// malls and shopping centers
	"MALL", "PLAZA", "OUTLET", "CENTRO", "COMERCIAL", "CC", "PARQUE", "ARAUCO", "COSTANERA", "PORTAL",
	// cities and communes
	"SANTIAGO", "PROVIDENCIA", "CONDES", "VITACURA", "NUNOA", "MAIPU", "FLORIDA", "VINA", "MAR",
	"CONCEPCION", "VALPARAISO", "CHILE", "CL", "CHL", "RM",
	// branch markers
	"SUC", "SUCURSAL", "LOCAL", "TIENDA", "STORE", "BRANCH", "NRO", "NO",
	// payment processors
	"MERPAGO", "MERCADOPAGO", "PAYU", "SUMUP", "TUU", "GETNET", "TRANSBANK", "WEBPAY", "PAYPAL", "DLO",
	// legal suffixes
	"SPA", "LTDA", "SA", "EIRL", "INC", "LLC", "LTD", "CIA",
	// stop words
	"DE", "DEL", "LA", "EL", "LOS", "LAS", "Y", "THE", "AND",
}

// branchNumber matches pure numbers and short prefixes followed by digits.
var branchNumber = regexp.MustCompile(`^[A-Z]{0,3}[0-9]+$`)

// Normalizer turns raw merchant text into a normalized string and token list.
// It is safe for concurrent use once constructed.
type Normalizer struct {
	noise map[string]struct{}
}

// NewNormalizer creates a normalizer with the default noise tokens plus extra.
func NewNormalizer(extra ...string) *Normalizer {
	n := &Normalizer{noise: make(map[string]struct{}, len(defaultNoiseTokens)+len(extra))}
	for _, tok := range defaultNoiseTokens {
		n.noise[tok] = struct{}{}
	}
	for _, tok := range extra {
		tok = strings.ToUpper(strings.TrimSpace(fold(tok)))
		if tok != "" {
			n.noise[tok] = struct{}{}
		}
	}
	return n
}

// DefaultNormalizer returns a normalizer with only the built-in noise tokens.
func DefaultNormalizer() *Normalizer {
	return NewNormalizer()
}

// Normalize returns the normalized merchant string and its distinct tokens in
// order of first appearance. Both are empty when nothing survives.
func (n *Normalizer) Normalize(raw string) (string, []string) {
	upper := strings.ToUpper(fold(raw))

	fields := strings.FieldsFunc(upper, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for _, tok := range fields {
		if len([]rune(tok)) < 2 {
			continue
		}
		if _, isNoise := n.noise[tok]; isNoise {
			continue
		}
		if branchNumber.MatchString(tok) {
			continue
		}
		if seen[tok] {
			continue
		}
		seen[tok] = true
		tokens = append(tokens, tok)
	}

	return strings.Join(tokens, " "), tokens
}

// fold strips diacritics so "PEÑALOLÉN" and "PENALOLEN" compare equal.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
