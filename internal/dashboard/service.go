package dashboard

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/atelier-crm/atelier-crm/internal/shared"
)

// revenueMonths is how far back the revenue chart reaches.
const revenueMonths = 12

var hundred = decimal.NewFromInt(100)

// RepositoryPort defines the aggregate queries behind the dashboard.
type RepositoryPort interface {
	ClientStats(ctx context.Context) (ClientStats, error)
	ProjectStats(ctx context.Context) (ProjectStats, error)
	InvoiceStats(ctx context.Context) (InvoiceStats, error)
	MonthlyRevenue(ctx context.Context, since time.Time) ([]MonthlyAmount, error)
}

// Service assembles the dashboard.
type Service struct {
	repo  RepositoryPort
	clock shared.Clock
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, clock shared.Clock) *Service {
	return &Service{repo: repo, clock: clock}
}

// Stats gathers every dashboard figure in one call. The four aggregate
// queries are independent, so they run concurrently; the first failure
// cancels the rest.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	now := s.clock.Now()
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(revenueMonths - 1), 0)

	var (
		clients  ClientStats
		projects ProjectStats
		invoices InvoiceStats
		revenue  []MonthlyAmount
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		clients, err = s.repo.ClientStats(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		projects, err = s.repo.ProjectStats(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		invoices, err = s.repo.InvoiceStats(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		revenue, err = s.repo.MonthlyRevenue(ctx, since)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if invoices.TotalBilled.IsPositive() {
		rate, _ := invoices.TotalPaid.Div(invoices.TotalBilled).Mul(hundred).Round(1).Float64()
		invoices.PaymentRate = rate
	}
	if revenue == nil {
		revenue = []MonthlyAmount{}
	}

	return &Stats{
		Clients:        clients,
		Projects:       projects,
		Invoices:       invoices,
		MonthlyRevenue: revenue,
	}, nil
}
