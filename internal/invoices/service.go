package invoices

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atelier-crm/atelier-crm/internal/shared"
)

// RepositoryPort defines data access methods for invoices.
type RepositoryPort interface {
	Create(ctx context.Context, input CreateInvoiceInput, issuedAt time.Time) (*Invoice, error)
	Get(ctx context.Context, id int64) (*Invoice, error)
	GetWithRelations(ctx context.Context, id int64) (*WithRelations, error)
	List(ctx context.Context, req ListInvoicesRequest) ([]WithRelations, int, error)
	Update(ctx context.Context, id int64, input UpdateInvoiceInput) (*Invoice, error)
	UpdateStatus(ctx context.Context, id int64, status Status) (*Invoice, error)
	Delete(ctx context.Context, id int64) error
}

// ProjectSource exposes the project ownership check.
type ProjectSource interface {
	ProjectClientID(ctx context.Context, projectID int64) (int64, error)
}

// Notifier records invoice lifecycle events. Failures here never fail
// the invoice operation itself.
type Notifier interface {
	InvoiceCreated(ctx context.Context, inv *Invoice)
	InvoiceUpdated(ctx context.Context, inv *Invoice)
	InvoiceStatusChanged(ctx context.Context, inv *Invoice, from Status)
}

// Service handles invoice business logic.
type Service struct {
	logger   *slog.Logger
	repo     RepositoryPort
	projects ProjectSource
	notifier Notifier
	clock    shared.Clock
}

// NewService builds Service instance.
func NewService(logger *slog.Logger, repo RepositoryPort, projects ProjectSource, notifier Notifier, clock shared.Clock) *Service {
	return &Service{logger: logger, repo: repo, projects: projects, notifier: notifier, clock: clock}
}

// Create validates the input, assigns a number for the current year and
// persists the invoice. New invoices start as sent unless draft is
// explicitly requested.
func (s *Service) Create(ctx context.Context, input CreateInvoiceInput) (*Invoice, error) {
	if !input.Amount.GreaterThan(decimal.Zero) {
		return nil, ErrAmountNotPositive
	}
	if input.Status == "" {
		input.Status = StatusSent
	}
	if input.Status != StatusSent && input.Status != StatusDraft {
		return nil, fmt.Errorf("%w: new invoices start as sent or draft", ErrInvalidTransition)
	}

	owner, err := s.projects.ProjectClientID(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}
	if owner != input.ClientID {
		return nil, ErrProjectMismatch
	}

	inv, err := s.repo.Create(ctx, input, s.clock.Now())
	if err != nil {
		return nil, err
	}
	s.notifier.InvoiceCreated(ctx, inv)
	return inv, nil
}

// Get returns a single invoice with its client and project names.
func (s *Service) Get(ctx context.Context, id int64) (*WithRelations, error) {
	return s.repo.GetWithRelations(ctx, id)
}

// List returns invoices matching the filters.
func (s *Service) List(ctx context.Context, req ListInvoicesRequest) ([]WithRelations, int, error) {
	if req.Status != "" && !req.Status.Valid() {
		return nil, 0, ErrUnknownStatus
	}
	return s.repo.List(ctx, req)
}

// Update applies a partial update to amount, due date or notes. The
// number and issue timestamp never change after creation.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInvoiceInput) (*Invoice, error) {
	if input.Amount != nil && !input.Amount.GreaterThan(decimal.Zero) {
		return nil, ErrAmountNotPositive
	}
	inv, err := s.repo.Update(ctx, id, input)
	if err != nil {
		return nil, err
	}
	s.notifier.InvoiceUpdated(ctx, inv)
	return inv, nil
}

// ChangeStatus moves an invoice through the transition table. Illegal
// moves, including any move out of paid or cancelled, are rejected.
func (s *Service) ChangeStatus(ctx context.Context, id int64, to Status) (*Invoice, error) {
	if !to.Valid() {
		return nil, ErrUnknownStatus
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == to {
		return current, nil
	}
	if !CanTransition(current.Status, to) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status, to)
	}
	inv, err := s.repo.UpdateStatus(ctx, id, to)
	if err != nil {
		return nil, err
	}
	s.notifier.InvoiceStatusChanged(ctx, inv, current.Status)
	return inv, nil
}

// Delete removes an invoice.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
