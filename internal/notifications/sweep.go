package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/atelier-crm/atelier-crm/internal/invoices"
	"github.com/atelier-crm/atelier-crm/internal/observability"
	"github.com/atelier-crm/atelier-crm/internal/platform/cache"
	"github.com/atelier-crm/atelier-crm/internal/shared"
)

// dueSoonWindow is how far ahead the due-soon check looks.
const dueSoonWindow = 7 * 24 * time.Hour

// InvoiceSweepSource exposes the invoice queries and the guarded
// overdue transition used by the batch jobs.
type InvoiceSweepSource interface {
	ListDueBefore(ctx context.Context, now time.Time) ([]invoices.WithRelations, error)
	ListDueBetween(ctx context.Context, from, to time.Time) ([]invoices.WithRelations, error)
	MarkOverdue(ctx context.Context, id int64) (bool, error)
}

// DunningEnqueuer schedules a payment reminder email for an invoice.
type DunningEnqueuer interface {
	EnqueueDunning(ctx context.Context, inv invoices.WithRelations) error
}

// SweepResult summarises one batch run. Processed counts invoices
// flagged on the overdue sweep and notifications emitted on the
// due-soon check.
type SweepResult struct {
	Scanned   int `json:"scanned"`
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// Sweeper runs the overdue sweep and the due-soon check. Runs are
// serialised through a Redis lock so overlapping schedules (or a manual
// trigger racing the cron) process each invoice once.
type Sweeper struct {
	logger   *slog.Logger
	invoices InvoiceSweepSource
	service  *Service
	deduper  *Deduper
	mutex    *cache.Mutex
	mailer   DunningEnqueuer
	metrics  *observability.Metrics
	clock    shared.Clock
}

// NewSweeper builds Sweeper instance.
func NewSweeper(
	logger *slog.Logger,
	source InvoiceSweepSource,
	service *Service,
	deduper *Deduper,
	mutex *cache.Mutex,
	mailer DunningEnqueuer,
	metrics *observability.Metrics,
	clock shared.Clock,
) *Sweeper {
	return &Sweeper{
		logger:   logger,
		invoices: source,
		service:  service,
		deduper:  deduper,
		mutex:    mutex,
		mailer:   mailer,
		metrics:  metrics,
		clock:    clock,
	}
}

// SweepOverdue flags every sent invoice past its due date as overdue,
// records a notification and schedules a reminder email for each. One
// failing invoice is logged and skipped; the run continues.
func (s *Sweeper) SweepOverdue(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	locked, err := s.mutex.TryLock(ctx)
	if err != nil {
		return result, fmt.Errorf("acquire sweep lock: %w", err)
	}
	if !locked {
		s.logger.Info("overdue sweep already running, skipping")
		return result, nil
	}
	defer func() {
		if err := s.mutex.Unlock(ctx); err != nil {
			s.logger.Warn("release sweep lock", slog.Any("error", err))
		}
	}()

	now := s.clock.Now()
	due, err := s.invoices.ListDueBefore(ctx, now)
	if err != nil {
		s.metrics.ObserveSweep("overdue", 0, 0, err)
		return result, fmt.Errorf("list due invoices: %w", err)
	}
	result.Scanned = len(due)

	for _, inv := range due {
		if err := s.flagOverdue(ctx, inv, now); err != nil {
			result.Failed++
			s.logger.Error("flag overdue invoice",
				slog.Any("error", err),
				slog.String("number", inv.Number))
			continue
		}
		result.Processed++
	}

	s.metrics.ObserveSweep("overdue", result.Processed, result.Failed, nil)
	s.logger.Info("overdue sweep finished",
		slog.Int("scanned", result.Scanned),
		slog.Int("processed", result.Processed),
		slog.Int("failed", result.Failed))
	return result, nil
}

func (s *Sweeper) flagOverdue(ctx context.Context, inv invoices.WithRelations, now time.Time) error {
	moved, err := s.invoices.MarkOverdue(ctx, inv.ID)
	if err != nil {
		return err
	}
	if !moved {
		// Another actor changed the status since the listing, most
		// likely a payment landing mid-run. Leave it alone.
		return nil
	}

	if s.deduper.FirstToday(ctx, TypeInvoiceOverdue, inv.ID) {
		days := inv.DaysOverdue(now)
		created := s.service.Broadcast(ctx, TypeInvoiceOverdue,
			"Facture en retard",
			fmt.Sprintf("La facture %s de %s est en retard de %d jour(s).", inv.Number, inv.ClientName, days),
			&inv.ID)
		if created == 0 {
			// Nothing was recorded; hand the slot back so a rerun
			// today can still notify.
			s.deduper.Release(ctx, TypeInvoiceOverdue, inv.ID)
		}
	}

	if err := s.mailer.EnqueueDunning(ctx, inv); err != nil {
		// The invoice is already flagged; a lost reminder is
		// recoverable on the next run.
		s.logger.Error("enqueue dunning email",
			slog.Any("error", err),
			slog.String("number", inv.Number))
	}
	return nil
}

// CheckDueSoon notifies about sent invoices falling due within the next
// seven days. The due date must be strictly in the future; invoices due
// today or earlier belong to the overdue sweep.
func (s *Sweeper) CheckDueSoon(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	now := s.clock.Now()
	upcoming, err := s.invoices.ListDueBetween(ctx, now, now.Add(dueSoonWindow))
	if err != nil {
		s.metrics.ObserveSweep("due_soon", 0, 0, err)
		return result, fmt.Errorf("list upcoming invoices: %w", err)
	}
	result.Scanned = len(upcoming)

	for _, inv := range upcoming {
		if !s.deduper.FirstToday(ctx, TypeInvoiceDueSoon, inv.ID) {
			continue
		}
		days := int(inv.DueDate.Sub(now).Hours() / 24)
		created := s.service.Broadcast(ctx, TypeInvoiceDueSoon,
			"Échéance proche",
			fmt.Sprintf("La facture %s de %s arrive à échéance dans %d jour(s).", inv.Number, inv.ClientName, days),
			&inv.ID)
		if created == 0 {
			s.deduper.Release(ctx, TypeInvoiceDueSoon, inv.ID)
			continue
		}
		result.Processed += created
	}

	s.metrics.ObserveSweep("due_soon", result.Processed, result.Failed, nil)
	s.logger.Info("due-soon check finished",
		slog.Int("scanned", result.Scanned),
		slog.Int("processed", result.Processed))
	return result, nil
}
