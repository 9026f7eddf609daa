package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/statement-reconciler/internal/domain/merchant"
	"github.com/eshaffer321/statement-reconciler/internal/domain/transaction"
)

func newTestFinder() *Finder {
	return NewFinder(3, merchant.DefaultNearTokenSimilarity)
}

func TestFinder_Window(t *testing.T) {
	// Arrange
	probes := []transaction.Record{ext("EXT-1", "UBER", 5000, 0)}
	pool := []transaction.Record{
		internal("int-0", "UBER", 5000, -4),
		internal("int-1", "UBER", 5000, -3),
		internal("int-2", "UBER", 5000, 0),
		internal("int-3", "UBER", 5000, 3),
		internal("int-4", "UBER", 5000, 4),
	}

	// Act
	got := newTestFinder().Find(probes, pool)

	// Assert
	require.Len(t, got, 1)
	assert.Equal(t, []int{1, 2, 3}, got[0])
}

func TestFinder_Direction(t *testing.T) {
	probes := []transaction.Record{ext("EXT-1", "UBER", 5000, 0)}
	pool := []transaction.Record{
		credit(internal("int-0", "UBER", 5000, 0)),
		internal("int-1", "UBER", 5000, 0),
	}

	got := newTestFinder().Find(probes, pool)

	assert.Equal(t, []int{1}, got[0])
}

func TestFinder_NearEqualToken(t *testing.T) {
	probes := []transaction.Record{ext("EXT-1", "MCDONALDS", 7000, 0)}
	pool := []transaction.Record{
		internal("int-0", "MCDONALD", 7000, 1),
		internal("int-1", "MCDONNELL", 7000, 1),
	}

	got := newTestFinder().Find(probes, pool)

	assert.Equal(t, []int{0}, got[0])
}

func TestFinder_AmountFallback(t *testing.T) {
	t.Run("probe without merchant tokens", func(t *testing.T) {
		probes := []transaction.Record{ext("EXT-1", "#4411", 12990, 0)}
		pool := []transaction.Record{
			internal("int-0", "FALABELLA", 12990, 1),
			internal("int-1", "FALABELLA", 12991, 1),
		}

		got := newTestFinder().Find(probes, pool)

		assert.Equal(t, []int{0}, got[0])
	})

	t.Run("pool record without merchant tokens", func(t *testing.T) {
		probes := []transaction.Record{ext("EXT-1", "FALABELLA", 12990, 0)}
		pool := []transaction.Record{
			internal("int-0", "", 12990, 0),
			internal("int-1", "", 5000, 0),
		}

		got := newTestFinder().Find(probes, pool)

		assert.Equal(t, []int{0}, got[0])
	})

	t.Run("fallback still respects the window", func(t *testing.T) {
		probes := []transaction.Record{ext("EXT-1", "#4411", 12990, 0)}
		pool := []transaction.Record{internal("int-0", "FALABELLA", 12990, 5)}

		got := newTestFinder().Find(probes, pool)

		assert.Empty(t, got[0])
	})
}

// Zero token overlap is excluded before scoring, whatever the amount and date.
func TestFinder_NoTokenOverlapIsNeverACandidate(t *testing.T) {
	probes := []transaction.Record{ext("EXT-1", "UBER", 5000, 0)}
	pool := []transaction.Record{internal("int-0", "STARBUCKS", 5000, 0)}

	got := newTestFinder().Find(probes, pool)

	assert.Empty(t, got[0])
}

func TestFinder_ResultsAreSortedAndUnique(t *testing.T) {
	probes := []transaction.Record{ext("EXT-1", "UBER EATS", 5000, 0)}
	pool := []transaction.Record{
		internal("int-0", "UBER EATS", 5000, 2),
		internal("int-1", "STARBUCKS", 5000, 0),
		internal("int-2", "UBER", 4000, 0),
		internal("int-3", "EATS UBER", 5000, -1),
	}

	got := newTestFinder().Find(probes, pool)

	assert.Equal(t, []int{0, 2, 3}, got[0])
}

func TestFinder_EmptyInputs(t *testing.T) {
	f := newTestFinder()

	assert.Empty(t, f.Find(nil, []transaction.Record{internal("int-0", "UBER", 1, 0)}))
	got := f.Find([]transaction.Record{ext("EXT-1", "UBER", 1, 0)}, nil)
	require.Len(t, got, 1)
	assert.Empty(t, got[0])
}
