package invoices

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "2026-001", FormatNumber(2026, 1))
	assert.Equal(t, "2026-042", FormatNumber(2026, 42))
	assert.Equal(t, "2026-999", FormatNumber(2026, 999))
	// Beyond three digits the sequence widens instead of wrapping.
	assert.Equal(t, "2026-1000", FormatNumber(2026, 1000))
}

func TestParseNumber(t *testing.T) {
	year, seq, err := ParseNumber("2026-007")
	require.NoError(t, err)
	assert.Equal(t, 2026, year)
	assert.Equal(t, int64(7), seq)

	year, seq, err = ParseNumber("2025-1234")
	require.NoError(t, err)
	assert.Equal(t, 2025, year)
	assert.Equal(t, int64(1234), seq)
}

func TestParseNumberRejectsMalformed(t *testing.T) {
	for _, input := range []string{"", "2026", "2026-", "-007", "abcd-007", "2026-xyz"} {
		_, _, err := ParseNumber(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	for _, seq := range []int64{1, 99, 100, 999, 1000} {
		year, got, err := ParseNumber(FormatNumber(2026, seq))
		require.NoError(t, err)
		assert.Equal(t, 2026, year)
		assert.Equal(t, seq, got)
	}
}
