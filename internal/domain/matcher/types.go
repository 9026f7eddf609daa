package matcher

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/statement-reconciler/internal/domain/merchant"
	"github.com/eshaffer321/statement-reconciler/internal/domain/transaction"
)

// Profile holds the feature weights and tolerances used by Score.
type Profile struct {
	MerchantWeight float64 // exact merchant match
	AmountWeight   float64 // exact amount match
	DateWeight     float64 // same calendar day

	AccountBonus   float64 // points added when account/card refs are equal
	ReferenceBonus float64 // points added when bank references are equal

	PartialMerchantFactor float64 // share of MerchantWeight for partial token overlap

	AmountNearPct       decimal.Decimal // default 0.01 (1%)
	AmountNearFactor    float64         // share of AmountWeight within AmountNearPct
	AmountMaxPct        decimal.Decimal // default 0.05 (5%); beyond this the pair is rejected
	AmountPartialFactor float64         // share of AmountWeight within AmountMaxPct

	DateNearFactor   float64 // share of DateWeight at one day apart
	DateWindowFactor float64 // share of DateWeight within WindowDays
	WindowDays       int     // candidate and scoring window, in days

	NearTokenSimilarity float64 // minimum similarity for near-equal merchant tokens
}

// DefaultProfile returns the reconciliation weighting: merchant and amount
// dominate, date proximity breaks ties.
func DefaultProfile() Profile {
	return Profile{
		MerchantWeight:        40,
		AmountWeight:          40,
		DateWeight:            20,
		AccountBonus:          5,
		ReferenceBonus:        5,
		PartialMerchantFactor: 0.7,
		AmountNearPct:         decimal.NewFromFloat(0.01),
		AmountNearFactor:      0.8,
		AmountMaxPct:          decimal.NewFromFloat(0.05),
		AmountPartialFactor:   0.5,
		DateNearFactor:        0.6,
		DateWindowFactor:      0.3,
		WindowDays:            3,
		NearTokenSimilarity:   merchant.DefaultNearTokenSimilarity,
	}
}

// DuplicateProfile weights merchant and amount equality far above date
// proximity and uses a tighter window.
func DuplicateProfile() Profile {
	p := DefaultProfile()
	p.MerchantWeight = 45
	p.AmountWeight = 45
	p.DateWeight = 10
	p.ReferenceBonus = 10
	p.WindowDays = 2
	return p
}

// MaxWeight is the sum of the feature weights, excluding bonuses.
func (p Profile) MaxWeight() float64 {
	return p.MerchantWeight + p.AmountWeight + p.DateWeight
}

// Validate reports configuration that would make scores meaningless.
func (p Profile) Validate() error {
	if p.MerchantWeight < 0 || p.AmountWeight < 0 || p.DateWeight < 0 || p.AccountBonus < 0 || p.ReferenceBonus < 0 {
		return errors.New("weights must not be negative")
	}
	if p.MaxWeight() <= 0 {
		return errors.New("at least one feature weight must be positive")
	}
	if p.WindowDays < 0 {
		return fmt.Errorf("window days must not be negative, got %d", p.WindowDays)
	}
	if p.AmountNearPct.GreaterThan(p.AmountMaxPct) {
		return fmt.Errorf("amount near tolerance %s exceeds max tolerance %s", p.AmountNearPct, p.AmountMaxPct)
	}
	return nil
}

// Config holds matcher configuration for one reconciliation run.
type Config struct {
	Profile Profile

	MatchThreshold            float64 // Default: 70
	HighConfidenceThreshold   float64 // Default: 90
	MediumConfidenceThreshold float64 // Default: 80

	Workers     int      // scoring goroutines (default: NumCPU)
	Currency    string   // run currency; empty accepts any
	NoiseTokens []string // extra merchant noise tokens
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Profile:                   DefaultProfile(),
		MatchThreshold:            70,
		HighConfidenceThreshold:   90,
		MediumConfidenceThreshold: 80,
		Workers:                   runtime.NumCPU(),
	}
}

// Validate checks thresholds and the profile.
func (c Config) Validate() error {
	if err := c.Profile.Validate(); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}
	if c.MatchThreshold <= 0 || c.MatchThreshold > 100 {
		return fmt.Errorf("match threshold must be in (0,100], got %.2f", c.MatchThreshold)
	}
	if c.MediumConfidenceThreshold < c.MatchThreshold || c.HighConfidenceThreshold < c.MediumConfidenceThreshold || c.HighConfidenceThreshold > 100 {
		return fmt.Errorf("thresholds must satisfy match (%.2f) <= medium (%.2f) <= high (%.2f) <= 100",
			c.MatchThreshold, c.MediumConfidenceThreshold, c.HighConfidenceThreshold)
	}
	return nil
}

// Tier maps a score onto a confidence tier.
func (c Config) Tier(score float64) Confidence {
	switch {
	case score >= c.HighConfidenceThreshold:
		return ConfidenceHigh
	case score >= c.MediumConfidenceThreshold:
		return ConfidenceMedium
	case score >= c.MatchThreshold:
		return ConfidenceLow
	default:
		return ConfidenceNone
	}
}

// Status is the outcome of resolving one record.
type Status string

const (
	StatusMatched           Status = "matched"
	StatusDiscrepancy       Status = "discrepancy"
	StatusMissingInInternal Status = "missing_in_internal"
	StatusMissingInExternal Status = "missing_in_external"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusMatched, StatusDiscrepancy, StatusMissingInInternal, StatusMissingInExternal:
		return true
	}
	return false
}

// IsMatch reports whether the status counts toward matched totals.
func (s Status) IsMatch() bool {
	return s == StatusMatched || s == StatusDiscrepancy
}

// Confidence is a coarse bucket derived from a score.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
	ConfidenceNone   Confidence = "none"
)

// Valid reports whether c is a known tier.
func (c Confidence) Valid() bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow, ConfidenceNone:
		return true
	}
	return false
}

// DiscrepancyType names the field that differs in a matched pair.
type DiscrepancyType string

const (
	DiscrepancyAmount   DiscrepancyType = "amount"
	DiscrepancyDate     DiscrepancyType = "date"
	DiscrepancyMerchant DiscrepancyType = "merchant"
)

// Valid reports whether t is a known discrepancy type.
func (t DiscrepancyType) Valid() bool {
	switch t {
	case DiscrepancyAmount, DiscrepancyDate, DiscrepancyMerchant:
		return true
	}
	return false
}

// Discrepancy describes the differing field of a matched pair.
type Discrepancy struct {
	Type        DiscrepancyType `json:"type"`
	Description string          `json:"description"`
}

// MatchResult contains match information for one external and/or internal
// record. Exactly one side is nil for missing_* outcomes.
type MatchResult struct {
	External    *transaction.Record `json:"external,omitempty"`
	Internal    *transaction.Record `json:"internal,omitempty"`
	Score       float64             `json:"score"`
	Confidence  Confidence          `json:"confidence"`
	Status      Status              `json:"status"`
	Reasons     []string            `json:"reasons"`
	Discrepancy *Discrepancy        `json:"discrepancy,omitempty"`
}

// ScoredPair is a scored candidate pair, addressed by index into the probe
// and pool slices it was built from.
type ScoredPair struct {
	Probe      int
	Candidate  int
	Score      float64
	Reasons    []string
	AmountDiff decimal.Decimal
}
