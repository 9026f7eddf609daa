package matcher

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/statement-reconciler/internal/domain/transaction"
)

func buildBatch(n int) ([]transaction.Record, []transaction.Record) {
	merchants := []string{"UBER", "UBER EATS", "STARBUCKS", "JUMBO", "LIDER EXPRESS", "COPEC"}
	externals := make([]transaction.Record, 0, n)
	internals := make([]transaction.Record, 0, n)
	for i := 0; i < n; i++ {
		m := merchants[i%len(merchants)]
		amount := int64(1000 + (i%7)*250)
		externals = append(externals, ext(fmt.Sprintf("EXT-%d", i+1), m, amount, i%5))
		internals = append(internals, internal(fmt.Sprintf("int-%d", i+1), m, amount+int64(i%3)*10, (i+1)%5))
	}
	return externals, internals
}

func TestScorePairs_DeterministicAcrossWorkerCounts(t *testing.T) {
	// Arrange
	externals, internals := buildBatch(300)
	candidates := newTestFinder().Find(externals, internals)

	// Act
	single, err := ScorePairs(context.Background(), externals, internals, candidates, DefaultProfile(), 1)
	require.NoError(t, err)
	parallel, err := ScorePairs(context.Background(), externals, internals, candidates, DefaultProfile(), 8)
	require.NoError(t, err)

	// Assert
	require.NotEmpty(t, single)
	require.Equal(t, len(single), len(parallel))
	for i := range single {
		assert.Equal(t, single[i].Probe, parallel[i].Probe)
		assert.Equal(t, single[i].Candidate, parallel[i].Candidate)
		assert.Equal(t, single[i].Score, parallel[i].Score)
		assert.Equal(t, single[i].Reasons, parallel[i].Reasons)
		assert.True(t, single[i].AmountDiff.Equal(parallel[i].AmountDiff))
	}
}

func TestScorePairs_KeepsCandidateOrder(t *testing.T) {
	externals := []transaction.Record{ext("EXT-1", "UBER", 5000, 0)}
	internals := []transaction.Record{
		internal("int-1", "UBER", 5000, 0),
		internal("int-2", "UBER", 5100, 1),
	}

	pairs, err := ScorePairs(context.Background(), externals, internals, [][]int{{0, 1}}, DefaultProfile(), 4)

	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, 0, pairs[0].Candidate)
	assert.Equal(t, 100.0, pairs[0].Score)
	assert.Equal(t, 1, pairs[1].Candidate)
	assert.Equal(t, "100", pairs[1].AmountDiff.String())
}

func TestScorePairs_Cancelled(t *testing.T) {
	externals, internals := buildBatch(50)
	candidates := newTestFinder().Find(externals, internals)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pairs, err := ScorePairs(ctx, externals, internals, candidates, DefaultProfile(), 2)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, pairs)

	_, err = NewMatcher(DefaultConfig()).Match(ctx, externals, internals)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMatcher_Deterministic(t *testing.T) {
	externals, internals := buildBatch(120)
	m := NewMatcher(DefaultConfig())

	first, err := m.Match(context.Background(), externals, internals)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		again, err := m.Match(context.Background(), externals, internals)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
