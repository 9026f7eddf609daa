// Package matcher reconciles external (bank statement) records against
// internal (email notification) records.
//
// A run has three stages:
//   - Finder narrows the pool to plausible candidates per probe
//   - ScorePairs scores candidates in parallel with Score
//   - Resolve assigns pairs 1:1 in a single deterministic pass
//
// Example usage:
//
//	config := matcher.DefaultConfig()
//	m := matcher.NewMatcher(config)
//	results, err := m.Match(ctx, externals, internals)
//	for _, r := range results {
//		if r.Status == matcher.StatusDiscrepancy {
//			fmt.Println(r.Discrepancy.Description)
//		}
//	}
package matcher

import (
	"context"
	"fmt"

	"github.com/eshaffer321/statement-reconciler/internal/domain/transaction"
)

// Matcher matches statement lines with recorded transactions
type Matcher struct {
	config Config
	finder *Finder
}

// NewMatcher creates a new matcher with the given config
func NewMatcher(config Config) *Matcher {
	return &Matcher{
		config: config,
		finder: NewFinder(config.Profile.WindowDays, config.Profile.NearTokenSimilarity),
	}
}

// Config returns the configuration the matcher was built with.
func (m *Matcher) Config() Config {
	return m.config
}

// Candidates returns the candidate pool indexes for each external record.
func (m *Matcher) Candidates(externals, internals []transaction.Record) [][]int {
	return m.finder.Find(externals, internals)
}

// Match runs candidate search, scoring and resolution.
// It returns an error only when the config is invalid or ctx is done.
func (m *Matcher) Match(ctx context.Context, externals, internals []transaction.Record) ([]MatchResult, error) {
	if err := m.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid matcher config: %w", err)
	}

	candidates := m.Candidates(externals, internals)

	pairs, err := ScorePairs(ctx, externals, internals, candidates, m.config.Profile, m.config.Workers)
	if err != nil {
		return nil, fmt.Errorf("scoring candidates: %w", err)
	}

	return Resolve(externals, internals, pairs, m.config), nil
}
