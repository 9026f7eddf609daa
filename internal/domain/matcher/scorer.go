package matcher

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/statement-reconciler/internal/domain/merchant"
	"github.com/eshaffer321/statement-reconciler/internal/domain/transaction"
)

var hundred = decimal.NewFromInt(100)

// Score compares two records and returns a score in [0,100] with the reasons
// that produced it. Score is pure and symmetric: Score(a,b) == Score(b,a).
//
// Hard rejections:
//   - both records have merchant tokens but none overlap: (0, nil)
//   - relative amount difference beyond AmountMaxPct: 0 with the reason
//
// A date beyond the window contributes nothing but does not reject the pair.
func Score(a, b transaction.Record, p Profile) (float64, []string) {
	maxWeight := p.MaxWeight()
	if maxWeight <= 0 {
		return 0, nil
	}

	var earned float64
	reasons := make([]string, 0, 5)

	// Merchant
	switch {
	case !a.HasMerchantTokens() || !b.HasMerchantTokens():
		reasons = append(reasons, "merchant unavailable")
	case merchant.Exact(a.MerchantNormalized(), b.MerchantNormalized()):
		earned += p.MerchantWeight
		reasons = append(reasons, "merchant exact match")
	default:
		overlap := merchant.Overlap(a.Tokens(), b.Tokens(), p.NearTokenSimilarity)
		if overlap == 0 {
			return 0, nil
		}
		earned += p.MerchantWeight * p.PartialMerchantFactor * overlap
		reasons = append(reasons, fmt.Sprintf("merchant partial match (%.0f%%)", overlap*100))
	}

	// Amount
	diff := a.Amount().Sub(b.Amount()).Abs()
	switch {
	case diff.IsZero():
		earned += p.AmountWeight
		reasons = append(reasons, "amount exact match")
	default:
		rel := relativeDifference(a.Amount(), b.Amount())
		pct := rel.Mul(hundred).StringFixed(2)
		switch {
		case rel.LessThanOrEqual(p.AmountNearPct):
			earned += p.AmountWeight * p.AmountNearFactor
			reasons = append(reasons, fmt.Sprintf("amount within %s%% (diff %s)", pct, diff.String()))
		case rel.LessThanOrEqual(p.AmountMaxPct):
			earned += p.AmountWeight * p.AmountPartialFactor
			reasons = append(reasons, fmt.Sprintf("amount within %s%% (diff %s)", pct, diff.String()))
		default:
			limit := p.AmountMaxPct.Mul(hundred).StringFixed(2)
			return 0, append(reasons, fmt.Sprintf("amount difference %s%% exceeds %s%%", pct, limit))
		}
	}

	// Date
	days := transaction.DaysApart(a, b)
	switch {
	case days == 0:
		earned += p.DateWeight
		reasons = append(reasons, "same day")
	case days == 1:
		earned += p.DateWeight * p.DateNearFactor
		reasons = append(reasons, "1 day apart")
	case days <= p.WindowDays:
		earned += p.DateWeight * p.DateWindowFactor
		reasons = append(reasons, fmt.Sprintf("%d days apart", days))
	default:
		reasons = append(reasons, fmt.Sprintf("%d days apart, outside %d day window", days, p.WindowDays))
	}

	score := earned / maxWeight * 100

	// Bonuses sit on top of the normalized score
	if a.AccountRef() != "" && a.AccountRef() == b.AccountRef() {
		score += p.AccountBonus
		reasons = append(reasons, "same account")
	}
	if a.Reference() != "" && a.Reference() == b.Reference() {
		score += p.ReferenceBonus
		reasons = append(reasons, "same bank reference")
	}

	return clampScore(score), reasons
}

// relativeDifference returns |a-b| / max(|a|,|b|).
func relativeDifference(a, b decimal.Decimal) decimal.Decimal {
	largest := decimal.Max(a.Abs(), b.Abs())
	if largest.IsZero() {
		return decimal.Zero
	}
	return a.Sub(b).Abs().Div(largest)
}

func clampScore(s float64) float64 {
	s = math.Round(s*100) / 100
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
