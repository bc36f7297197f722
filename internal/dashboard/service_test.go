package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-crm/atelier-crm/internal/shared"
)

type mockRepository struct {
	clients  ClientStats
	projects ProjectStats
	invoices InvoiceStats
	revenue  []MonthlyAmount

	invoiceErr error

	since time.Time
}

func (m *mockRepository) ClientStats(ctx context.Context) (ClientStats, error) {
	return m.clients, nil
}

func (m *mockRepository) ProjectStats(ctx context.Context) (ProjectStats, error) {
	return m.projects, nil
}

func (m *mockRepository) InvoiceStats(ctx context.Context) (InvoiceStats, error) {
	return m.invoices, m.invoiceErr
}

func (m *mockRepository) MonthlyRevenue(ctx context.Context, since time.Time) ([]MonthlyAmount, error) {
	m.since = since
	return m.revenue, nil
}

func TestStatsComputesPaymentRate(t *testing.T) {
	repo := &mockRepository{
		invoices: InvoiceStats{
			Total:       3,
			Sent:        1,
			Paid:        2,
			TotalBilled: decimal.RequireFromString("12000.00"),
			TotalPaid:   decimal.RequireFromString("4500.00"),
		},
	}
	svc := NewService(repo, shared.FixedClock{Instant: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)})

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 37.5, stats.Invoices.PaymentRate, 0.001)
}

func TestStatsPaymentRateZeroWhenNothingBilled(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo, shared.FixedClock{Instant: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)})

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Invoices.PaymentRate)
}

func TestStatsRevenueWindowStartsTwelveMonthsBack(t *testing.T) {
	repo := &mockRepository{}
	now := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	svc := NewService(repo, shared.FixedClock{Instant: now})

	_, err := svc.Stats(context.Background())
	require.NoError(t, err)

	// First day of the month, eleven months before the current one.
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), repo.since)
}

func TestStatsPropagatesQueryFailure(t *testing.T) {
	repo := &mockRepository{invoiceErr: errors.New("relation does not exist")}
	svc := NewService(repo, shared.FixedClock{Instant: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)})

	_, err := svc.Stats(context.Background())
	require.ErrorContains(t, err, "relation does not exist")
}

func TestStatsRevenueNeverNil(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo, shared.FixedClock{Instant: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)})

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.NotNil(t, stats.MonthlyRevenue)
	assert.Empty(t, stats.MonthlyRevenue)
}
