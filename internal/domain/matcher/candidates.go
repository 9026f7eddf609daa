package matcher

import (
	"sort"

	"github.com/eshaffer321/statement-reconciler/internal/domain/merchant"
	"github.com/eshaffer321/statement-reconciler/internal/domain/transaction"
)

const secondsPerDay = 24 * 60 * 60

type tokenDayKey struct {
	token string
	day   int64
}

type amountDayKey struct {
	amount string
	day    int64
}

// Finder pre-filters pool records so only plausible pairs get scored.
//
// A pool record is a candidate for a probe when it has the same direction,
// falls within WindowDays calendar days, and either shares an equal or
// near-equal merchant token with the probe or, when either side has no
// merchant tokens, carries the identical amount.
type Finder struct {
	windowDays    int
	minSimilarity float64
}

// NewFinder creates a finder with the given window and token similarity.
func NewFinder(windowDays int, minSimilarity float64) *Finder {
	if windowDays < 0 {
		windowDays = 0
	}
	return &Finder{windowDays: windowDays, minSimilarity: minSimilarity}
}

// Find returns, for each probe, the ascending indexes of its candidate pool
// records. It never scans the full cross product: pool records are bucketed
// by (token, day) and (amount, day) first.
func (f *Finder) Find(probes, pool []transaction.Record) [][]int {
	byToken := make(map[tokenDayKey][]int)
	byAmount := make(map[amountDayKey][]int)
	vocab := make(map[string]struct{})

	for j, rec := range pool {
		day := dayNumber(rec)
		for _, tok := range rec.Tokens() {
			key := tokenDayKey{token: tok, day: day}
			byToken[key] = append(byToken[key], j)
			vocab[tok] = struct{}{}
		}
		akey := amountDayKey{amount: rec.Amount().String(), day: day}
		byAmount[akey] = append(byAmount[akey], j)
	}

	vocabulary := make([]string, 0, len(vocab))
	for tok := range vocab {
		vocabulary = append(vocabulary, tok)
	}
	sort.Strings(vocabulary)

	// near-equal expansions are shared across probes within one call
	expansions := make(map[string][]string)
	expand := func(tok string) []string {
		if out, ok := expansions[tok]; ok {
			return out
		}
		out := []string{tok}
		for _, v := range vocabulary {
			if v != tok && merchant.TokensMatch(tok, v, f.minSimilarity) {
				out = append(out, v)
			}
		}
		expansions[tok] = out
		return out
	}

	result := make([][]int, len(probes))
	for i, probe := range probes {
		seen := make(map[int]bool)
		center := dayNumber(probe)
		probeTokens := probe.Tokens()
		amount := probe.Amount().String()

		for day := center - int64(f.windowDays); day <= center+int64(f.windowDays); day++ {
			for _, tok := range probeTokens {
				for _, variant := range expand(tok) {
					for _, j := range byToken[tokenDayKey{token: variant, day: day}] {
						seen[j] = true
					}
				}
			}
			// amount-only fallback when merchant normalization failed on either side
			for _, j := range byAmount[amountDayKey{amount: amount, day: day}] {
				if len(probeTokens) == 0 || !pool[j].HasMerchantTokens() {
					seen[j] = true
				}
			}
		}

		candidates := make([]int, 0, len(seen))
		for j := range seen {
			if pool[j].Direction() != probe.Direction() {
				continue
			}
			candidates = append(candidates, j)
		}
		sort.Ints(candidates)
		result[i] = candidates
	}

	return result
}

func dayNumber(r transaction.Record) int64 {
	return r.Day().Unix() / secondsPerDay
}
