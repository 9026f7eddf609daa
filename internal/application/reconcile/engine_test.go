package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/statement-reconciler/internal/domain/duplicates"
	"github.com/eshaffer321/statement-reconciler/internal/domain/matcher"
	"github.com/eshaffer321/statement-reconciler/internal/domain/report"
	"github.com/eshaffer321/statement-reconciler/internal/domain/transaction"
	"github.com/eshaffer321/statement-reconciler/internal/domain/validator"
)

var (
	day0      = time.Date(2025, 11, 6, 0, 0, 0, 0, time.UTC)
	processed = time.Date(2025, 12, 1, 8, 0, 0, 0, time.UTC)
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func line(concept, amount, date string) transaction.ParsedExternal {
	return transaction.ParsedExternal{Concept: concept, Amount: amount, Date: date, IsDebit: true}
}

func stored(id, merchant string, amount int64, dayOffset int) transaction.Internal {
	return transaction.Internal{
		ID:        id,
		Merchant:  merchant,
		Amount:    decimal.NewNullDecimal(decimal.NewFromInt(amount)),
		Timestamp: day0.AddDate(0, 0, dayOffset).Add(13 * time.Hour),
	}
}

// scenarioInput holds an exact match, an amount discrepancy, a statement line
// with no counterpart, an unmatched transaction and one invalid record per side.
func scenarioInput() Input {
	return Input{
		Meta: report.Metadata{StatementID: "stmt-2025-11", Bank: "Banco de Chile", Currency: "clp", ProcessedAt: processed},
		External: []transaction.ParsedExternal{
			line("SUBWAY MOMENTUM", "4.500", "06/11/2025"),
			line("CAFE ALTO", "4.500", "2025-11-07"),
			line("NETFLIX", "8.990", "2025-11-10"),
			line("JUMBO", "n/a", "2025-11-11"),
		},
		Internal: []transaction.Internal{
			stored("int-1", "Subway Momentum", 4500, 0),
			stored("int-2", "Cafe Alto", 4650, 1),
			stored("int-3", "Starbucks", 3200, 3),
			{ID: "int-4", Merchant: "Uber", Timestamp: day0},
		},
	}
}

func TestEngine_Reconcile(t *testing.T) {
	// Arrange
	engine := NewEngine(matcher.DefaultConfig(), testLogger())

	// Act
	rep, err := engine.Reconcile(context.Background(), scenarioInput())

	// Assert
	require.NoError(t, err)
	s := rep.Summary()
	assert.Equal(t, 3, s.TotalExternal)
	assert.Equal(t, 3, s.TotalInternal)
	assert.Equal(t, 2, s.Matched)
	assert.Equal(t, 1, s.Discrepancies)
	assert.Equal(t, 1, s.MissingInInternal)
	assert.Equal(t, 1, s.MissingInExternal)
	assert.Equal(t, 2, s.Skipped)
	assert.Equal(t, 66.67, s.MatchPercentage)
	assert.Equal(t, report.StatusNeedsReview, s.Status)

	matched := rep.Matched()
	require.Len(t, matched, 1)
	assert.Equal(t, "EXT-1", matched[0].External.ID())
	assert.Equal(t, "int-1", matched[0].Internal.ID())
	assert.Equal(t, matcher.ConfidenceHigh, matched[0].Confidence)

	discrepancies := rep.Discrepancies()
	require.Len(t, discrepancies, 1)
	assert.Equal(t, "EXT-2", discrepancies[0].External.ID())
	assert.Equal(t, matcher.DiscrepancyAmount, discrepancies[0].Discrepancy.Type)

	missing := rep.MissingInInternal()
	require.Len(t, missing, 1)
	assert.Equal(t, "EXT-3", missing[0].External.ID())

	orphans := rep.MissingInExternal()
	require.Len(t, orphans, 1)
	assert.Equal(t, "int-3", orphans[0].Internal.ID())

	meta := rep.Metadata()
	assert.Equal(t, "CLP", meta.Currency)
	assert.Equal(t, 70.0, meta.Config.MatchThreshold)
	require.Len(t, meta.Skipped, 2)
	assert.Equal(t, validator.InputValidationError{
		RecordID: "EXT-4", Source: transaction.SourceExternal, Field: validator.FieldAmount,
		Reason: meta.Skipped[0].Reason,
	}, meta.Skipped[0])
	assert.Equal(t, "int-4", meta.Skipped[1].RecordID)
	assert.Equal(t, validator.FieldAmount, meta.Skipped[1].Field)
}

func TestEngine_Reconcile_Idempotent(t *testing.T) {
	engine := NewEngine(matcher.DefaultConfig(), testLogger())

	first, err := engine.Reconcile(context.Background(), scenarioInput())
	require.NoError(t, err)
	second, err := NewEngine(matcher.DefaultConfig(), testLogger()).Reconcile(context.Background(), scenarioInput())
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestEngine_Reconcile_EmptyStatement(t *testing.T) {
	engine := NewEngine(matcher.DefaultConfig(), testLogger())

	rep, err := engine.Reconcile(context.Background(), Input{
		Internal: []transaction.Internal{stored("int-1", "Uber", 5000, 0)},
	})

	require.NoError(t, err)
	assert.Equal(t, 0, rep.Summary().TotalExternal)
	assert.Equal(t, 100.0, rep.Summary().MatchPercentage)
	assert.Equal(t, 1, rep.Summary().MissingInExternal)
}

func TestEngine_Reconcile_CurrencyFromConfig(t *testing.T) {
	cfg := matcher.DefaultConfig()
	cfg.Currency = "CLP"
	engine := NewEngine(cfg, testLogger())

	in := Input{
		External: []transaction.ParsedExternal{
			{Concept: "UBER", Amount: "5.000", Date: "2025-11-06", IsDebit: true, Currency: "USD"},
		},
	}
	rep, err := engine.Reconcile(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, "CLP", rep.Metadata().Currency)
	require.Len(t, rep.Metadata().Skipped, 1)
	assert.Equal(t, validator.FieldCurrency, rep.Metadata().Skipped[0].Field)
}

func TestEngine_Reconcile_Errors(t *testing.T) {
	t.Run("invalid config", func(t *testing.T) {
		cfg := matcher.DefaultConfig()
		cfg.MatchThreshold = 0

		_, err := NewEngine(cfg, testLogger()).Reconcile(context.Background(), scenarioInput())

		assert.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewEngine(matcher.DefaultConfig(), testLogger()).Reconcile(ctx, scenarioInput())

		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestEngine_DetectDuplicates(t *testing.T) {
	txs := []transaction.Internal{
		stored("tx-1", "UBER", 5000, 0),
		stored("tx-2", "UBER", 5000, 1),
		stored("tx-3", "JUMBO", 23990, 1),
		{ID: "tx-4", Merchant: "Uber"},
	}
	engine := NewEngine(matcher.DefaultConfig(), testLogger())

	t.Run("finds the pair", func(t *testing.T) {
		result, err := engine.DetectDuplicates(context.Background(), "", txs, nil, duplicates.DefaultConfig())

		require.NoError(t, err)
		require.Len(t, result.Matches, 1)
		m := result.Matches[0]
		assert.GreaterOrEqual(t, m.SimilarityScore, 90.0)
		assert.Equal(t, duplicates.PairKey("tx-1|tx-2"), m.Key)
		require.Len(t, result.Skipped, 1)
		assert.Equal(t, "tx-4", result.Skipped[0].RecordID)
		assert.Equal(t, 0, result.Suppressed)
	})

	t.Run("suppressed pair is skipped", func(t *testing.T) {
		suppressed := duplicates.NewSuppressionSet(duplicates.ConfirmNotDuplicate("tx-2", "tx-1"))

		result, err := engine.DetectDuplicates(context.Background(), "", txs, suppressed, duplicates.DefaultConfig())

		require.NoError(t, err)
		assert.Empty(t, result.Matches)
		assert.Equal(t, 1, result.Suppressed)
	})

	t.Run("request currency filters records", func(t *testing.T) {
		usd := stored("tx-5", "UBER", 5000, 2)
		usd.Currency = "USD"
		withUSD := append([]transaction.Internal{usd}, txs...)

		result, err := engine.DetectDuplicates(context.Background(), "clp", withUSD, nil, duplicates.DefaultConfig())

		require.NoError(t, err)
		require.Len(t, result.Matches, 1)
		assert.Equal(t, duplicates.PairKey("tx-1|tx-2"), result.Matches[0].Key)
		require.Len(t, result.Skipped, 2)
		assert.Equal(t, "tx-5", result.Skipped[0].RecordID)
		assert.Equal(t, validator.FieldCurrency, result.Skipped[0].Field)
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := duplicates.DefaultConfig()
		cfg.LookbackDays = 7

		_, err := engine.DetectDuplicates(context.Background(), "", txs, nil, cfg)

		assert.Error(t, err)
	})
}
