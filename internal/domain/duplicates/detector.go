// Package duplicates finds likely duplicate transactions within one set of
// internal records.
//
// It reuses the matcher's candidate search and scoring with a profile that
// weights merchant and amount equality far above date proximity. Pairs a
// user has confirmed as distinct are passed in as a SuppressionSet; the
// detector itself keeps no state between runs.
//
// Example usage:
//
//	d := duplicates.NewDetector(duplicates.DefaultConfig())
//	matches, _, err := d.Detect(ctx, records, suppressed)
//	for _, m := range matches {
//		fmt.Printf("%s ~ %s (%.0f)\n", m.First.ID(), m.Second.ID(), m.SimilarityScore)
//	}
package duplicates

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/eshaffer321/statement-reconciler/internal/domain/matcher"
	"github.com/eshaffer321/statement-reconciler/internal/domain/transaction"
	"github.com/eshaffer321/statement-reconciler/internal/domain/validator"
)

// Lookback bounds, in days.
const (
	MinLookbackDays     = 30
	MaxLookbackDays     = 90
	DefaultLookbackDays = 60
)

// Config holds duplicate detection settings.
type Config struct {
	Threshold    float64 // Default: 80
	LookbackDays int     // Default: 60
	// AsOf anchors the lookback window. Zero uses the latest record timestamp.
	AsOf    time.Time
	Profile matcher.Profile
	Workers int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Threshold:    80,
		LookbackDays: DefaultLookbackDays,
		Profile:      matcher.DuplicateProfile(),
		Workers:      runtime.NumCPU(),
	}
}

// Validate checks the threshold, lookback and profile.
func (c Config) Validate() error {
	if c.Threshold <= 0 || c.Threshold > 100 {
		return fmt.Errorf("duplicate threshold must be in (0,100], got %.2f", c.Threshold)
	}
	if c.LookbackDays < MinLookbackDays || c.LookbackDays > MaxLookbackDays {
		return fmt.Errorf("lookback days must be between %d and %d, got %d", MinLookbackDays, MaxLookbackDays, c.LookbackDays)
	}
	if err := c.Profile.Validate(); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}
	return nil
}

// PairKey identifies an unordered pair of records: the two IDs sorted and
// joined with "|".
type PairKey string

// NewPairKey builds the key for a and b in either order.
func NewPairKey(a, b string) PairKey {
	if b < a {
		a, b = b, a
	}
	return PairKey(a + transaction.IDSeparator + b)
}

// IDs splits the key back into its two record IDs.
func (k PairKey) IDs() (string, string, error) {
	first, second, ok := strings.Cut(string(k), transaction.IDSeparator)
	if !ok || first == "" || second == "" || strings.Contains(second, transaction.IDSeparator) {
		return "", "", errors.New("malformed pair key: " + string(k))
	}
	return first, second, nil
}

// ConfirmNotDuplicate returns the suppression marker for a pair the user has
// confirmed as distinct. The caller persists it and passes it back in later
// runs.
func ConfirmNotDuplicate(a, b string) PairKey {
	return NewPairKey(a, b)
}

// SuppressionSet is the read-only set of suppressed pairs.
type SuppressionSet map[PairKey]struct{}

// NewSuppressionSet builds a set from keys.
func NewSuppressionSet(keys ...PairKey) SuppressionSet {
	s := make(SuppressionSet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Contains reports whether k is suppressed. A nil set contains nothing.
func (s SuppressionSet) Contains(k PairKey) bool {
	_, ok := s[k]
	return ok
}

// Match is a pair of records likely to be the same transaction.
type Match struct {
	First           transaction.Record `json:"first"`
	Second          transaction.Record `json:"second"`
	SimilarityScore float64            `json:"similarity_score"`
	Reasons         []string           `json:"reasons"`
	Key             PairKey            `json:"pair_key"`
}

// Result is the outcome of one detection run.
type Result struct {
	Matches    []Match                          `json:"matches"`
	Skipped    []validator.InputValidationError `json:"skipped"`
	Suppressed int                              `json:"suppressed"`
}

// Detector finds duplicate pairs.
type Detector struct {
	config Config
	finder *matcher.Finder
}

// NewDetector creates a detector with the given config
func NewDetector(config Config) *Detector {
	return &Detector{
		config: config,
		finder: matcher.NewFinder(config.Profile.WindowDays, config.Profile.NearTokenSimilarity),
	}
}

// Detect returns every pair scoring at or above the threshold, ranked by
// similarity descending and then by IDs. The second return value counts
// candidate pairs skipped because they were suppressed.
func (d *Detector) Detect(ctx context.Context, records []transaction.Record, suppressed SuppressionSet) ([]Match, int, error) {
	if err := d.config.Validate(); err != nil {
		return nil, 0, fmt.Errorf("invalid duplicate config: %w", err)
	}

	window := d.inLookback(records)

	// each unordered pair once, no self pairs
	all := d.finder.Find(window, window)
	candidates := make([][]int, len(all))
	skipped := 0
	for i, list := range all {
		for _, j := range list {
			if j <= i {
				continue
			}
			if suppressed.Contains(NewPairKey(window[i].ID(), window[j].ID())) {
				skipped++
				continue
			}
			candidates[i] = append(candidates[i], j)
		}
	}

	pairs, err := matcher.ScorePairs(ctx, window, window, candidates, d.config.Profile, d.config.Workers)
	if err != nil {
		return nil, 0, fmt.Errorf("scoring duplicate candidates: %w", err)
	}

	matches := make([]Match, 0)
	for _, p := range pairs {
		if p.Score < d.config.Threshold {
			continue
		}
		first, second := window[p.Probe], window[p.Candidate]
		matches = append(matches, Match{
			First:           first,
			Second:          second,
			SimilarityScore: p.Score,
			Reasons:         p.Reasons,
			Key:             NewPairKey(first.ID(), second.ID()),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.SimilarityScore != b.SimilarityScore {
			return a.SimilarityScore > b.SimilarityScore
		}
		if a.First.ID() != b.First.ID() {
			return a.First.ID() < b.First.ID()
		}
		return a.Second.ID() < b.Second.ID()
	})

	return matches, skipped, nil
}

// inLookback keeps records whose day falls in [asOf-LookbackDays, asOf].
func (d *Detector) inLookback(records []transaction.Record) []transaction.Record {
	if len(records) == 0 {
		return nil
	}

	asOf := d.config.AsOf
	if asOf.IsZero() {
		for _, r := range records {
			if r.Timestamp().After(asOf) {
				asOf = r.Timestamp()
			}
		}
	}
	end := transaction.Day(asOf)
	start := end.AddDate(0, 0, -d.config.LookbackDays)

	out := make([]transaction.Record, 0, len(records))
	for _, r := range records {
		day := r.Day()
		if day.Before(start) || day.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out
}
