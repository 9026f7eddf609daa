package matcher

import (
	"fmt"
	"sort"

	"github.com/eshaffer321/statement-reconciler/internal/domain/merchant"
	"github.com/eshaffer321/statement-reconciler/internal/domain/transaction"
)

// Resolve turns scored pairs into a deterministic 1:1 assignment.
//
// Pairs are sorted by score descending, then probe order, then smaller
// absolute amount difference, then pool order, and walked once. A pair is
// assigned only when both sides are still free and its score reaches
// MatchThreshold. This is a greedy heuristic; it is not guaranteed to find
// the globally optimal assignment.
//
// The result holds one entry per external record in input order, followed by
// the unassigned internal records in input order.
func Resolve(externals, internals []transaction.Record, pairs []ScoredPair, cfg Config) []MatchResult {
	sorted := make([]ScoredPair, len(pairs))
	copy(sorted, pairs)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Probe != b.Probe {
			return a.Probe < b.Probe
		}
		if cmp := a.AmountDiff.Cmp(b.AmountDiff); cmp != 0 {
			return cmp < 0
		}
		return a.Candidate < b.Candidate
	})

	assignedProbe := make(map[int]ScoredPair, len(externals))
	usedCandidate := make(map[int]bool, len(internals))

	for _, pair := range sorted {
		if pair.Score < cfg.MatchThreshold {
			break // sorted descending; nothing below can qualify
		}
		if _, done := assignedProbe[pair.Probe]; done {
			continue
		}
		if usedCandidate[pair.Candidate] {
			continue
		}
		assignedProbe[pair.Probe] = pair
		usedCandidate[pair.Candidate] = true
	}

	// per-probe view for ambiguity and missing reasons
	byProbe := make(map[int][]ScoredPair, len(externals))
	for _, pair := range sorted {
		byProbe[pair.Probe] = append(byProbe[pair.Probe], pair)
	}

	results := make([]MatchResult, 0, len(externals)+len(internals))

	for i := range externals {
		ext := externals[i]
		pair, ok := assignedProbe[i]
		if !ok {
			results = append(results, MatchResult{
				External:   &ext,
				Score:      0,
				Confidence: ConfidenceNone,
				Status:     StatusMissingInInternal,
				Reasons:    []string{missingReason(byProbe[i], internals, cfg)},
			})
			continue
		}

		in := internals[pair.Candidate]
		status, disc := classify(ext, in)

		reasons := make([]string, 0, len(pair.Reasons)+1)
		reasons = append(reasons, pair.Reasons...)
		if tied := countTied(byProbe[i], pair.Score); tied > 1 {
			reasons = append(reasons, fmt.Sprintf("ambiguous: %d candidates tied at %.2f, resolved by tie-break", tied, pair.Score))
		}

		results = append(results, MatchResult{
			External:    &ext,
			Internal:    &in,
			Score:       pair.Score,
			Confidence:  cfg.Tier(pair.Score),
			Status:      status,
			Reasons:     reasons,
			Discrepancy: disc,
		})
	}

	for j := range internals {
		if usedCandidate[j] {
			continue
		}
		in := internals[j]
		results = append(results, MatchResult{
			Internal:   &in,
			Score:      0,
			Confidence: ConfidenceNone,
			Status:     StatusMissingInExternal,
			Reasons:    []string{"no statement line assigned"},
		})
	}

	return results
}

// classify compares an assigned pair field by field. The first differing
// field in amount, date, merchant order becomes the discrepancy.
func classify(ext, in transaction.Record) (Status, *Discrepancy) {
	if !ext.Amount().Equal(in.Amount()) {
		return StatusDiscrepancy, &Discrepancy{
			Type: DiscrepancyAmount,
			Description: fmt.Sprintf("amount differs: statement %s vs recorded %s (difference %s)",
				ext.Amount().String(), in.Amount().String(), ext.Amount().Sub(in.Amount()).String()),
		}
	}
	if days := transaction.DaysApart(ext, in); days > 0 {
		return StatusDiscrepancy, &Discrepancy{
			Type: DiscrepancyDate,
			Description: fmt.Sprintf("date differs: statement %s vs recorded %s (%d day(s))",
				ext.Day().Format("2006-01-02"), in.Day().Format("2006-01-02"), days),
		}
	}
	if !merchant.Exact(ext.MerchantNormalized(), in.MerchantNormalized()) {
		return StatusDiscrepancy, &Discrepancy{
			Type: DiscrepancyMerchant,
			Description: fmt.Sprintf("merchant differs: statement %q vs recorded %q",
				ext.MerchantRaw(), in.MerchantRaw()),
		}
	}
	return StatusMatched, nil
}

func countTied(pairs []ScoredPair, score float64) int {
	n := 0
	for _, p := range pairs {
		if p.Score == score {
			n++
		}
	}
	return n
}

func missingReason(pairs []ScoredPair, internals []transaction.Record, cfg Config) string {
	if len(pairs) == 0 {
		return "no candidate within window"
	}
	best := pairs[0]
	if best.Score < cfg.MatchThreshold {
		return fmt.Sprintf("best candidate %s scored %.2f, below match threshold %.2f",
			internals[best.Candidate].ID(), best.Score, cfg.MatchThreshold)
	}
	return "qualifying candidates were assigned to other statement lines"
}
