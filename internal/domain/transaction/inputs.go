package transaction

import (
	"time"

	"github.com/shopspring/decimal"
)

// ParsedExternal is a statement line as emitted by the PDF parsing
// collaborator. Date and amount are still text.
type ParsedExternal struct {
	Reference  string `json:"reference"`
	Date       string `json:"date"`
	Concept    string `json:"concept"`
	Amount     string `json:"amount"`
	IsDebit    bool   `json:"is_debit"`
	Currency   string `json:"currency"`
	AccountRef string `json:"account_ref,omitempty"`
}

// Internal is a stored transaction, typically parsed from a bank notification
// email. Amount is null when the notification carried none.
type Internal struct {
	ID         string              `json:"id"`
	Merchant   string              `json:"merchant"`
	Amount     decimal.NullDecimal `json:"amount"`
	Currency   string              `json:"currency"`
	Timestamp  time.Time           `json:"timestamp"`
	AccountRef string              `json:"account_ref,omitempty"`
	Reference  string              `json:"reference,omitempty"`
	IsCredit   bool                `json:"is_credit,omitempty"`
}
