package transaction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input    string
		currency string
		want     string
	}{
		{"4500", "CLP", "4500"},
		{"4.500", "CLP", "4500"},
		{"$ 12.990", "CLP", "12990"},
		{"1.234.567", "CLP", "1234567"},
		{"-4.500", "CLP", "-4500"},
		{"4.500-", "CLP", "-4500"},
		{"CLP 9.990", "CLP", "9990"},
		{"4.50", "CLP", "450"},
		{"12,5", "jpy", "125"},
		{"(45.00)", "USD", "-45"},
		{"1,234.56", "USD", "1234.56"},
		{"1.234,56", "EUR", "1234.56"},
		{"12,5", "EUR", "12.5"},
		{"4500.00", "USD", "4500"},
		{"4.50", "USD", "4.5"},
		{"4.500", "USD", "4500"},
		{"12,99", "", "12.99"},
	}

	for _, tt := range tests {
		t.Run(tt.currency+" "+tt.input, func(t *testing.T) {
			got, err := ParseAmount(tt.input, tt.currency)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseAmount_Errors(t *testing.T) {
	_, err := ParseAmount("", "CLP")
	assert.ErrorIs(t, err, ErrEmptyAmount)

	_, err = ParseAmount("N/A", "USD")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Time
		hasTime bool
	}{
		{"2025-11-06", time.Date(2025, 11, 6, 0, 0, 0, 0, time.UTC), false},
		{"06/11/2025", time.Date(2025, 11, 6, 0, 0, 0, 0, time.UTC), false},
		{"06-11-2025", time.Date(2025, 11, 6, 0, 0, 0, 0, time.UTC), false},
		{"06/11/25", time.Date(2025, 11, 6, 0, 0, 0, 0, time.UTC), false},
		{"2025-11-06 14:30", time.Date(2025, 11, 6, 14, 30, 0, 0, time.UTC), true},
		{"2025-11-06T14:30:00Z", time.Date(2025, 11, 6, 14, 30, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, hasTime, err := ParseDate(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
			assert.Equal(t, tt.hasTime, hasTime)
		})
	}
}

func TestParseDate_Errors(t *testing.T) {
	_, _, err := ParseDate("  ")
	assert.ErrorIs(t, err, ErrEmptyDate)

	_, _, err = ParseDate("yesterday")
	assert.Error(t, err)
}

func TestMinorUnit(t *testing.T) {
	assert.Equal(t, "1", MinorUnit("CLP").String())
	assert.Equal(t, "1", MinorUnit("clp").String())
	assert.Equal(t, "0.01", MinorUnit("USD").String())
	assert.Equal(t, "0.01", MinorUnit("").String())
}
