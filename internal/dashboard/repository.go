package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository aggregates dashboard figures straight from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ClientStats counts clients by status.
func (r *Repository) ClientStats(ctx context.Context) (ClientStats, error) {
	var s ClientStats
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'active'),
			COUNT(*) FILTER (WHERE status = 'prospect')
		FROM clients`).Scan(&s.Total, &s.Active, &s.Prospect)
	return s, err
}

// ProjectStats counts projects by status.
func (r *Repository) ProjectStats(ctx context.Context) (ProjectStats, error) {
	var s ProjectStats
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'in_progress'),
			COUNT(*) FILTER (WHERE status = 'completed')
		FROM projects`).Scan(&s.Total, &s.InProgress, &s.Completed)
	return s, err
}

// InvoiceStats counts invoices by status and sums the billed and
// collected amounts. Cancelled invoices are excluded from both sums.
func (r *Repository) InvoiceStats(ctx context.Context) (InvoiceStats, error) {
	var s InvoiceStats
	var billed, paid string
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'draft'),
			COUNT(*) FILTER (WHERE status = 'sent'),
			COUNT(*) FILTER (WHERE status = 'paid'),
			COUNT(*) FILTER (WHERE status = 'overdue'),
			COUNT(*) FILTER (WHERE status = 'cancelled'),
			COALESCE(SUM(amount) FILTER (WHERE status <> 'cancelled'), 0)::text,
			COALESCE(SUM(amount) FILTER (WHERE status = 'paid'), 0)::text
		FROM invoices`).Scan(&s.Total, &s.Draft, &s.Sent, &s.Paid, &s.Overdue, &s.Cancelled, &billed, &paid)
	if err != nil {
		return s, err
	}
	if s.TotalBilled, err = decimal.NewFromString(billed); err != nil {
		return s, fmt.Errorf("dashboard: parse billed total: %w", err)
	}
	if s.TotalPaid, err = decimal.NewFromString(paid); err != nil {
		return s, fmt.Errorf("dashboard: parse paid total: %w", err)
	}
	return s, nil
}

// MonthlyRevenue sums paid invoice amounts per issue month since the
// given instant.
func (r *Repository) MonthlyRevenue(ctx context.Context, since time.Time) ([]MonthlyAmount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT to_char(date_trunc('month', issued_at), 'YYYY-MM'), COALESCE(SUM(amount), 0)::text
		FROM invoices
		WHERE status = 'paid' AND issued_at >= $1
		GROUP BY 1
		ORDER BY 1`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MonthlyAmount
	for rows.Next() {
		var m MonthlyAmount
		var amount string
		if err := rows.Scan(&m.Month, &amount); err != nil {
			return nil, err
		}
		if m.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("dashboard: parse monthly revenue: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
