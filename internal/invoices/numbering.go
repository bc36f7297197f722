package invoices

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Invoice numbers follow the "YYYY-NNN" shape with a zero padded
// sequence restarting at 001 every year. Sequences above 999 widen to
// four digits; such numbers no longer sort lexicographically against
// the three digit ones, which historical reports assume. The counter
// below keeps assignment correct either way.
const numberSeparator = "-"

// FormatNumber renders an invoice number for the given year and sequence.
func FormatNumber(year int, seq int64) string {
	return fmt.Sprintf("%d%s%03d", year, numberSeparator, seq)
}

// ParseNumber splits an invoice number into year and sequence.
func ParseNumber(number string) (year int, seq int64, err error) {
	parts := strings.SplitN(number, numberSeparator, 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invoices: malformed number %q", number)
	}
	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invoices: malformed number %q", number)
	}
	seq, err = strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invoices: malformed number %q", number)
	}
	return year, seq, nil
}

// nextSequence atomically increments and returns the per-year counter.
// The upsert serialises concurrent creators on the counter row, so two
// simultaneous creations can never observe the same sequence. The
// unique constraint on invoices.number remains as a second line of
// defence; a violation there is retried by the caller.
func nextSequence(ctx context.Context, tx pgx.Tx, year int) (int64, error) {
	var seq int64
	err := tx.QueryRow(ctx, `
		INSERT INTO invoice_counters (year, last_seq)
		VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET last_seq = invoice_counters.last_seq + 1
		RETURNING last_seq`, year).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("invoices: next sequence for %d: %w", year, err)
	}
	return seq, nil
}
