package notifications

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/atelier-crm/atelier-crm/internal/invoices"
)

// RepositoryPort defines data access methods for notifications.
type RepositoryPort interface {
	Create(ctx context.Context, input CreateNotificationInput) (*Notification, error)
	List(ctx context.Context, req ListNotificationsRequest) ([]Notification, int, error)
	CountUnread(ctx context.Context, userID int64) (int, error)
	MarkRead(ctx context.Context, userID, id int64) error
	MarkAllRead(ctx context.Context, userID int64) (int, error)
}

// RecipientResolver decides who receives broadcast notifications.
// Swapping the implementation changes the audience without touching
// the notification flow.
type RecipientResolver interface {
	Recipients(ctx context.Context) ([]int64, error)
}

// Service handles notification business logic and records invoice
// lifecycle events.
type Service struct {
	logger   *slog.Logger
	repo     RepositoryPort
	resolver RecipientResolver
}

// NewService builds Service instance.
func NewService(logger *slog.Logger, repo RepositoryPort, resolver RecipientResolver) *Service {
	return &Service{logger: logger, repo: repo, resolver: resolver}
}

// List returns a user's notifications.
func (s *Service) List(ctx context.Context, req ListNotificationsRequest) ([]Notification, int, error) {
	return s.repo.List(ctx, req)
}

// CountUnread returns the unread badge count for a user.
func (s *Service) CountUnread(ctx context.Context, userID int64) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkRead acknowledges one notification.
func (s *Service) MarkRead(ctx context.Context, userID, id int64) error {
	return s.repo.MarkRead(ctx, userID, id)
}

// MarkAllRead acknowledges all of a user's notifications.
func (s *Service) MarkAllRead(ctx context.Context, userID int64) (int, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

// Broadcast records one notification per resolved recipient and
// returns how many rows were created. Failures are logged per
// recipient; one bad row never blocks the rest.
func (s *Service) Broadcast(ctx context.Context, typ Type, title, message string, invoiceID *int64) int {
	recipients, err := s.resolver.Recipients(ctx)
	if err != nil {
		s.logger.Error("resolve notification recipients", slog.Any("error", err))
		return 0
	}
	created := 0
	for _, userID := range recipients {
		_, err := s.repo.Create(ctx, CreateNotificationInput{
			UserID:    userID,
			Type:      typ,
			Title:     title,
			Message:   message,
			InvoiceID: invoiceID,
		})
		if err != nil {
			s.logger.Error("record notification",
				slog.Any("error", err),
				slog.Int64("user_id", userID),
				slog.String("type", string(typ)))
			continue
		}
		created++
	}
	return created
}

// InvoiceCreated records a creation event.
func (s *Service) InvoiceCreated(ctx context.Context, inv *invoices.Invoice) {
	s.Broadcast(ctx, TypeInvoiceCreated,
		"Facture créée",
		fmt.Sprintf("La facture %s a été créée.", inv.Number),
		&inv.ID)
}

// InvoiceUpdated records a modification event.
func (s *Service) InvoiceUpdated(ctx context.Context, inv *invoices.Invoice) {
	s.Broadcast(ctx, TypeInvoiceUpdated,
		"Facture modifiée",
		fmt.Sprintf("La facture %s a été modifiée.", inv.Number),
		&inv.ID)
}

// InvoiceStatusChanged records a status transition.
func (s *Service) InvoiceStatusChanged(ctx context.Context, inv *invoices.Invoice, from invoices.Status) {
	s.Broadcast(ctx, TypeStatusChanged,
		"Statut de facture modifié",
		fmt.Sprintf("La facture %s est passée de %s à %s.", inv.Number, from, inv.Status),
		&inv.ID)
}
