// Package transaction defines the normalized transaction record shared by the
// reconciliation and duplicate-detection engines.
//
// A Record is an immutable snapshot: it is built once through New from either
// an external (bank statement) or internal (email notification) source and
// exposes read-only accessors.
package transaction

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/statement-reconciler/internal/domain/merchant"
)

// Source identifies where a record came from.
type Source string

const (
	SourceExternal Source = "external"
	SourceInternal Source = "internal"
)

// Direction is the money flow of a transaction relative to the account holder.
type Direction string

const (
	Debit  Direction = "debit"
	Credit Direction = "credit"
)

// IDSeparator joins record IDs in pair and result keys. Record IDs must not
// contain it.
const IDSeparator = "|"

// Fields are the raw inputs used to build a Record.
type Fields struct {
	ID          string
	Source      Source
	MerchantRaw string
	Amount      decimal.Decimal // absolute value; Direction carries the sign
	Direction   Direction
	Currency    string
	Timestamp   time.Time
	HasTime     bool
	Reference   string
	AccountRef  string
}

// Record is the normalized, immutable transaction shape.
type Record struct {
	f          Fields
	normalized string
	tokens     []string
}

// New builds a Record, deriving the normalized merchant with n.
// A nil normalizer uses merchant.DefaultNormalizer.
func New(f Fields, n *merchant.Normalizer) Record {
	if n == nil {
		n = merchant.DefaultNormalizer()
	}
	if f.Direction == "" {
		f.Direction = Debit
	}
	f.Amount = f.Amount.Abs()
	normalized, tokens := n.Normalize(f.MerchantRaw)
	return Record{f: f, normalized: normalized, tokens: tokens}
}

func (r Record) ID() string                 { return r.f.ID }
func (r Record) Source() Source             { return r.f.Source }
func (r Record) MerchantRaw() string        { return r.f.MerchantRaw }
func (r Record) MerchantNormalized() string { return r.normalized }
func (r Record) Amount() decimal.Decimal    { return r.f.Amount }
func (r Record) Direction() Direction       { return r.f.Direction }
func (r Record) Currency() string           { return r.f.Currency }
func (r Record) Timestamp() time.Time       { return r.f.Timestamp }
func (r Record) HasTime() bool              { return r.f.HasTime }
func (r Record) Reference() string          { return r.f.Reference }
func (r Record) AccountRef() string         { return r.f.AccountRef }

// Tokens returns a copy of the merchant tokens.
func (r Record) Tokens() []string {
	out := make([]string, len(r.tokens))
	copy(out, r.tokens)
	return out
}

// HasMerchantTokens reports whether normalization left anything to compare.
func (r Record) HasMerchantTokens() bool {
	return len(r.tokens) > 0
}

// SignedAmount returns the amount negated for credits.
func (r Record) SignedAmount() decimal.Decimal {
	if r.f.Direction == Credit {
		return r.f.Amount.Neg()
	}
	return r.f.Amount
}

// Day returns the calendar day of the timestamp as midnight UTC.
func (r Record) Day() time.Time {
	return Day(r.f.Timestamp)
}

// Day truncates t to its calendar day (in t's own location) as midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysApart returns the absolute number of calendar days between a and b.
func DaysApart(a, b Record) int {
	diff := a.Day().Sub(b.Day())
	if diff < 0 {
		diff = -diff
	}
	return int(diff / (24 * time.Hour))
}

// recordJSON is the wire form of a Record.
type recordJSON struct {
	ID                 string          `json:"id"`
	Source             Source          `json:"source"`
	MerchantRaw        string          `json:"merchant_raw"`
	MerchantNormalized string          `json:"merchant_normalized"`
	Tokens             []string        `json:"tokens,omitempty"`
	Amount             decimal.Decimal `json:"amount"`
	Direction          Direction       `json:"direction"`
	Currency           string          `json:"currency"`
	Timestamp          time.Time       `json:"timestamp"`
	HasTime            bool            `json:"has_time"`
	Reference          string          `json:"reference,omitempty"`
	AccountRef         string          `json:"account_ref,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		ID:                 r.f.ID,
		Source:             r.f.Source,
		MerchantRaw:        r.f.MerchantRaw,
		MerchantNormalized: r.normalized,
		Tokens:             r.tokens,
		Amount:             r.f.Amount,
		Direction:          r.f.Direction,
		Currency:           r.f.Currency,
		Timestamp:          r.f.Timestamp,
		HasTime:            r.f.HasTime,
		Reference:          r.f.Reference,
		AccountRef:         r.f.AccountRef,
	})
}

// UnmarshalJSON implements json.Unmarshaler. Stored normalization is kept
// as-is so a persisted report reads back exactly as it was built.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Record{
		f: Fields{
			ID:          raw.ID,
			Source:      raw.Source,
			MerchantRaw: raw.MerchantRaw,
			Amount:      raw.Amount,
			Direction:   raw.Direction,
			Currency:    raw.Currency,
			Timestamp:   raw.Timestamp,
			HasTime:     raw.HasTime,
			Reference:   raw.Reference,
			AccountRef:  raw.AccountRef,
		},
		normalized: raw.MerchantNormalized,
		tokens:     raw.Tokens,
	}
	return nil
}
