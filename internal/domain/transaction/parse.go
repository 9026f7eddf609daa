package transaction

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyAmount = errors.New("amount is empty")
	ErrEmptyDate   = errors.New("date is empty")
)

// zeroDecimalCurrencies have no minor unit.
var zeroDecimalCurrencies = map[string]bool{
	"CLP": true,
	"JPY": true,
	"KRW": true,
	"PYG": true,
	"ISK": true,
	"VND": true,
}

// MinorUnit returns the smallest representable amount for a currency
// (1 for CLP, 0.01 for USD). Unknown currencies default to 0.01.
func MinorUnit(currency string) decimal.Decimal {
	if zeroDecimalCurrencies[strings.ToUpper(currency)] {
		return decimal.NewFromInt(1)
	}
	return decimal.New(1, -2)
}

// ParseAmount parses statement amount text such as "4.500", "-1,234.56",
// "(45.00)" or "$ 12.990" in the given currency.
//
// For zero-decimal currencies (CLP, JPY, ...) every '.' and ',' is a
// thousands separator. Otherwise the last '.' or ',' is the decimal separator
// only when followed by one or two digits. Parentheses or a leading/trailing
// '-' make the result negative.
func ParseAmount(text, currency string) (decimal.Decimal, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return decimal.Zero, ErrEmptyAmount
	}

	negative := strings.HasPrefix(s, "-") || strings.HasSuffix(s, "-") ||
		(strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")"))

	var kept strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) || r == '.' || r == ',' {
			kept.WriteRune(r)
		}
	}
	digits := kept.String()
	if strings.IndexFunc(digits, unicode.IsDigit) < 0 {
		return decimal.Zero, fmt.Errorf("no digits in amount %q", text)
	}

	decimalAt := -1
	if !zeroDecimalCurrencies[strings.ToUpper(strings.TrimSpace(currency))] {
		decimalAt = decimalSeparatorAt(digits)
	}

	var cleaned strings.Builder
	for i, r := range digits {
		switch {
		case i == decimalAt:
			cleaned.WriteRune('.')
		case r == '.' || r == ',':
			// thousands separator
		default:
			cleaned.WriteRune(r)
		}
	}

	d, err := decimal.NewFromString(cleaned.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", text, err)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// decimalSeparatorAt returns the index of the last '.' or ',' when it is
// followed by one or two digits, or -1.
func decimalSeparatorAt(digits string) int {
	last := strings.LastIndexAny(digits, ".,")
	if last < 0 {
		return -1
	}
	if tail := len(digits) - last - 1; tail >= 1 && tail <= 2 {
		return last
	}
	return -1
}

// dateLayouts are tried in order; the bool reports whether the layout carries
// a time of day.
var dateLayouts = []struct {
	layout  string
	hasTime bool
}{
	{time.RFC3339, true},
	{"2006-01-02 15:04:05", true},
	{"2006-01-02 15:04", true},
	{time.DateOnly, false},
	{"02/01/2006", false},
	{"02-01-2006", false},
	{"02/01/06", false},
	{"02-01-06", false},
}

// ParseDate parses a statement date. Day-first layouts are assumed for
// slash/dash dates, matching the statements this service reads.
func ParseDate(text string) (time.Time, bool, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return time.Time{}, false, ErrEmptyDate
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l.layout, s); err == nil {
			return t, l.hasTime, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("unrecognized date %q", text)
}
