package matcher

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/statement-reconciler/internal/domain/transaction"
)

var baseDay = time.Date(2025, 11, 6, 0, 0, 0, 0, time.UTC)

// Helper to create an external test record
func ext(id, merchant string, amount int64, dayOffset int) transaction.Record {
	return transaction.New(transaction.Fields{
		ID:          id,
		Source:      transaction.SourceExternal,
		MerchantRaw: merchant,
		Amount:      decimal.NewFromInt(amount),
		Currency:    "CLP",
		Timestamp:   baseDay.AddDate(0, 0, dayOffset),
	}, nil)
}

// Helper to create an internal test record
func internal(id, merchant string, amount int64, dayOffset int) transaction.Record {
	return transaction.New(transaction.Fields{
		ID:          id,
		Source:      transaction.SourceInternal,
		MerchantRaw: merchant,
		Amount:      decimal.NewFromInt(amount),
		Currency:    "CLP",
		Timestamp:   baseDay.AddDate(0, 0, dayOffset).Add(13 * time.Hour),
		HasTime:     true,
	}, nil)
}

func withRefs(r transaction.Record, account, reference string) transaction.Record {
	return transaction.New(transaction.Fields{
		ID:          r.ID(),
		Source:      r.Source(),
		MerchantRaw: r.MerchantRaw(),
		Amount:      r.Amount(),
		Direction:   r.Direction(),
		Currency:    r.Currency(),
		Timestamp:   r.Timestamp(),
		HasTime:     r.HasTime(),
		Reference:   reference,
		AccountRef:  account,
	}, nil)
}

func credit(r transaction.Record) transaction.Record {
	return transaction.New(transaction.Fields{
		ID:          r.ID(),
		Source:      r.Source(),
		MerchantRaw: r.MerchantRaw(),
		Amount:      r.Amount(),
		Direction:   transaction.Credit,
		Currency:    r.Currency(),
		Timestamp:   r.Timestamp(),
		HasTime:     r.HasTime(),
	}, nil)
}
