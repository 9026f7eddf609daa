// Package validator validates upstream transaction inputs and projects them
// into transaction.Record values.
//
// Validation never aborts a run. A record that is missing a required field,
// carries an unparseable amount or date, or disagrees with the run currency is
// excluded and returned as an InputValidationError in the skipped list:
//
//	records, skipped := validator.ProjectExternal(lines, validator.Options{Currency: "CLP"})
//	// records go to the matcher, skipped goes to the report metadata
package validator

import (
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/eshaffer321/statement-reconciler/internal/domain/merchant"
	"github.com/eshaffer321/statement-reconciler/internal/domain/transaction"
)

// Field names used in InputValidationError.
const (
	FieldAmount   = "amount"
	FieldDate     = "timestamp"
	FieldMerchant = "merchant"
	FieldCurrency = "currency"
	FieldID       = "id"
)

// InputValidationError describes one record excluded from matching.
type InputValidationError struct {
	RecordID string             `json:"record_id"`
	Source   transaction.Source `json:"source"`
	Field    string             `json:"field"`
	Reason   string             `json:"reason"`
}

func (e InputValidationError) Error() string {
	return fmt.Sprintf("%s record %s: invalid %s: %s", e.Source, e.RecordID, e.Field, e.Reason)
}

// Options controls projection.
type Options struct {
	// Currency is the run currency. Records in another currency are skipped;
	// records without one inherit it. Empty accepts any currency.
	Currency string

	// Normalizer derives merchant tokens. Nil uses the default normalizer.
	Normalizer *merchant.Normalizer
}

var strictPolicy = bluemonday.StrictPolicy()

// SanitizeMerchant strips markup that leaks into merchant text from
// notification emails and collapses whitespace.
func SanitizeMerchant(s string) string {
	clean := html.UnescapeString(strictPolicy.Sanitize(s))
	return strings.Join(strings.Fields(clean), " ")
}

// ExternalID returns the record ID assigned to the statement line at index i.
func ExternalID(i int) string {
	return fmt.Sprintf("EXT-%d", i+1)
}

// ProjectExternal validates statement lines and builds external records.
// Record IDs are positional (EXT-1, EXT-2, ...) since statement references
// are not guaranteed unique.
func ProjectExternal(lines []transaction.ParsedExternal, opts Options) ([]transaction.Record, []InputValidationError) {
	records := make([]transaction.Record, 0, len(lines))
	var skipped []InputValidationError

	for i, line := range lines {
		id := ExternalID(i)
		fail := func(field, reason string) {
			skipped = append(skipped, InputValidationError{
				RecordID: id,
				Source:   transaction.SourceExternal,
				Field:    field,
				Reason:   reason,
			})
		}

		concept := SanitizeMerchant(line.Concept)
		if concept == "" {
			fail(FieldMerchant, "missing merchant/concept")
			continue
		}

		currency, currencyOK := resolveCurrency(line.Currency, opts.Currency)

		amount, err := transaction.ParseAmount(line.Amount, currency)
		if err != nil {
			fail(FieldAmount, err.Error())
			continue
		}
		if amount.IsZero() {
			fail(FieldAmount, "amount is zero")
			continue
		}

		ts, hasTime, err := transaction.ParseDate(line.Date)
		if err != nil {
			fail(FieldDate, err.Error())
			continue
		}

		if !currencyOK {
			fail(FieldCurrency, fmt.Sprintf("currency %s differs from run currency %s", line.Currency, opts.Currency))
			continue
		}

		direction := transaction.Credit
		if line.IsDebit {
			direction = transaction.Debit
		}

		records = append(records, transaction.New(transaction.Fields{
			ID:          id,
			Source:      transaction.SourceExternal,
			MerchantRaw: concept,
			Amount:      amount,
			Direction:   direction,
			Currency:    currency,
			Timestamp:   ts,
			HasTime:     hasTime,
			Reference:   strings.TrimSpace(line.Reference),
			AccountRef:  strings.TrimSpace(line.AccountRef),
		}, opts.Normalizer))
	}

	return records, skipped
}

// ProjectInternal validates stored transactions and builds internal records.
// A repeated ID keeps the first occurrence.
func ProjectInternal(txs []transaction.Internal, opts Options) ([]transaction.Record, []InputValidationError) {
	records := make([]transaction.Record, 0, len(txs))
	var skipped []InputValidationError
	seen := make(map[string]bool, len(txs))

	for i, tx := range txs {
		id := strings.TrimSpace(tx.ID)
		if id == "" {
			id = fmt.Sprintf("INT-%d", i+1)
		}
		fail := func(field, reason string) {
			skipped = append(skipped, InputValidationError{
				RecordID: id,
				Source:   transaction.SourceInternal,
				Field:    field,
				Reason:   reason,
			})
		}

		if strings.TrimSpace(tx.ID) == "" {
			fail(FieldID, "missing id")
			continue
		}
		if strings.Contains(id, transaction.IDSeparator) {
			fail(FieldID, "id contains reserved character "+transaction.IDSeparator)
			continue
		}
		if seen[id] {
			fail(FieldID, "duplicate id")
			continue
		}
		seen[id] = true

		name := SanitizeMerchant(tx.Merchant)
		if name == "" {
			fail(FieldMerchant, "missing merchant")
			continue
		}
		if !tx.Amount.Valid {
			fail(FieldAmount, "missing amount")
			continue
		}
		if tx.Amount.Decimal.IsZero() {
			fail(FieldAmount, "amount is zero")
			continue
		}
		if tx.Timestamp.IsZero() {
			fail(FieldDate, "missing timestamp")
			continue
		}

		currency, ok := resolveCurrency(tx.Currency, opts.Currency)
		if !ok {
			fail(FieldCurrency, fmt.Sprintf("currency %s differs from run currency %s", tx.Currency, opts.Currency))
			continue
		}

		direction := transaction.Debit
		if tx.IsCredit {
			direction = transaction.Credit
		}

		records = append(records, transaction.New(transaction.Fields{
			ID:          id,
			Source:      transaction.SourceInternal,
			MerchantRaw: name,
			Amount:      tx.Amount.Decimal,
			Direction:   direction,
			Currency:    currency,
			Timestamp:   tx.Timestamp,
			HasTime:     true,
			Reference:   strings.TrimSpace(tx.Reference),
			AccountRef:  strings.TrimSpace(tx.AccountRef),
		}, opts.Normalizer))
	}

	return records, skipped
}

// resolveCurrency applies the run currency. ok is false on a mismatch.
func resolveCurrency(recordCurrency, runCurrency string) (string, bool) {
	rc := strings.ToUpper(strings.TrimSpace(recordCurrency))
	run := strings.ToUpper(strings.TrimSpace(runCurrency))
	switch {
	case rc == "":
		return run, true
	case run == "" || rc == run:
		return rc, true
	default:
		return rc, false
	}
}
