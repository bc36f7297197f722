package notifications

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-crm/atelier-crm/internal/invoices"
	"github.com/atelier-crm/atelier-crm/internal/platform/cache"
	"github.com/atelier-crm/atelier-crm/internal/shared"
)

type mockSweepSource struct {
	invoices map[int64]*invoices.WithRelations

	markErr map[int64]error
	listErr error
}

func newMockSweepSource() *mockSweepSource {
	return &mockSweepSource{
		invoices: make(map[int64]*invoices.WithRelations),
		markErr:  make(map[int64]error),
	}
}

func (m *mockSweepSource) add(id int64, status invoices.Status, due time.Time, client, email string) {
	d := due
	m.invoices[id] = &invoices.WithRelations{
		Invoice: invoices.Invoice{
			ID:      id,
			Number:  invoices.FormatNumber(due.Year(), id),
			Amount:  decimal.NewFromInt(100 * id),
			DueDate: &d,
			Status:  status,
		},
		ClientName:  client,
		ClientEmail: email,
	}
}

func (m *mockSweepSource) ListDueBefore(ctx context.Context, now time.Time) ([]invoices.WithRelations, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []invoices.WithRelations
	for _, inv := range m.invoices {
		if inv.Status == invoices.StatusSent && inv.DueDate != nil && inv.DueDate.Before(now) {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (m *mockSweepSource) ListDueBetween(ctx context.Context, from, to time.Time) ([]invoices.WithRelations, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []invoices.WithRelations
	for _, inv := range m.invoices {
		if inv.Status == invoices.StatusSent && inv.DueDate != nil &&
			inv.DueDate.After(from) && !inv.DueDate.After(to) {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (m *mockSweepSource) MarkOverdue(ctx context.Context, id int64) (bool, error) {
	if err := m.markErr[id]; err != nil {
		return false, err
	}
	inv, ok := m.invoices[id]
	if !ok || inv.Status != invoices.StatusSent {
		return false, nil
	}
	inv.Status = invoices.StatusOverdue
	return true, nil
}

type mockNotificationStore struct {
	notifications []Notification
	createErr     error
}

func (m *mockNotificationStore) Create(ctx context.Context, input CreateNotificationInput) (*Notification, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	n := Notification{
		ID:        int64(len(m.notifications) + 1),
		UserID:    input.UserID,
		Type:      input.Type,
		Title:     input.Title,
		Message:   input.Message,
		InvoiceID: input.InvoiceID,
	}
	m.notifications = append(m.notifications, n)
	return &n, nil
}

func (m *mockNotificationStore) List(ctx context.Context, req ListNotificationsRequest) ([]Notification, int, error) {
	return m.notifications, len(m.notifications), nil
}

func (m *mockNotificationStore) CountUnread(ctx context.Context, userID int64) (int, error) {
	return len(m.notifications), nil
}

func (m *mockNotificationStore) MarkRead(ctx context.Context, userID, id int64) error {
	return nil
}

func (m *mockNotificationStore) MarkAllRead(ctx context.Context, userID int64) (int, error) {
	return 0, nil
}

func (m *mockNotificationStore) byType(typ Type) []Notification {
	var out []Notification
	for _, n := range m.notifications {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

type fixedRecipients struct {
	ids []int64
	err error
}

func (r fixedRecipients) Recipients(ctx context.Context) ([]int64, error) {
	return r.ids, r.err
}

type recordingMailer struct {
	sent []string
	err  error
}

func (m *recordingMailer) EnqueueDunning(ctx context.Context, inv invoices.WithRelations) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, inv.Number)
	return nil
}

type sweepFixture struct {
	sweeper *Sweeper
	source  *mockSweepSource
	store   *mockNotificationStore
	mailer  *recordingMailer
	now     time.Time
}

func newSweepFixture(t *testing.T) *sweepFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	now := time.Date(2026, 3, 15, 6, 0, 0, 0, time.UTC)
	clock := shared.FixedClock{Instant: now}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	source := newMockSweepSource()
	store := &mockNotificationStore{}
	service := NewService(logger, store, fixedRecipients{ids: []int64{1, 2}})
	mailer := &recordingMailer{}
	sweeper := NewSweeper(
		logger,
		source,
		service,
		NewDeduper(client, clock),
		cache.NewMutex(client, "invoices:sweep:lock", time.Minute),
		mailer,
		nil,
		clock,
	)
	return &sweepFixture{sweeper: sweeper, source: source, store: store, mailer: mailer, now: now}
}

func TestSweepOverdueFlagsOnlyPastDueSent(t *testing.T) {
	f := newSweepFixture(t)
	f.source.add(1, invoices.StatusSent, f.now.AddDate(0, 0, -5), "Lumen Design", "marie@lumen.fr")
	f.source.add(2, invoices.StatusSent, f.now.AddDate(0, 0, -1), "Girard BTP", "paul@girard.fr")
	f.source.add(3, invoices.StatusPaid, f.now.AddDate(0, 0, -10), "Vert Café", "sophie@vert.fr")
	f.source.add(4, invoices.StatusSent, f.now.AddDate(0, 0, 3), "Lumen Design", "marie@lumen.fr")

	result, err := f.sweeper.SweepOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Scanned)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 0, result.Failed)

	assert.Equal(t, invoices.StatusOverdue, f.source.invoices[1].Status)
	assert.Equal(t, invoices.StatusOverdue, f.source.invoices[2].Status)
	assert.Equal(t, invoices.StatusPaid, f.source.invoices[3].Status)
	assert.Equal(t, invoices.StatusSent, f.source.invoices[4].Status)

	// Two flagged invoices, two recipients each.
	assert.Len(t, f.store.byType(TypeInvoiceOverdue), 4)
	assert.Len(t, f.mailer.sent, 2)
}

func TestSweepOverdueIsIdempotentWithinADay(t *testing.T) {
	f := newSweepFixture(t)
	f.source.add(1, invoices.StatusSent, f.now.AddDate(0, 0, -5), "Lumen Design", "marie@lumen.fr")

	_, err := f.sweeper.SweepOverdue(context.Background())
	require.NoError(t, err)

	// Rerun: the invoice is already overdue so nothing qualifies.
	result, err := f.sweeper.SweepOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Scanned)
	assert.Len(t, f.store.byType(TypeInvoiceOverdue), 2)
	assert.Len(t, f.mailer.sent, 1)
}

func TestSweepOverdueContinuesPastFailures(t *testing.T) {
	f := newSweepFixture(t)
	f.source.add(1, invoices.StatusSent, f.now.AddDate(0, 0, -5), "Lumen Design", "marie@lumen.fr")
	f.source.add(2, invoices.StatusSent, f.now.AddDate(0, 0, -3), "Girard BTP", "paul@girard.fr")
	f.source.markErr[1] = errors.New("connection reset")

	result, err := f.sweeper.SweepOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Scanned)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, invoices.StatusOverdue, f.source.invoices[2].Status)
}

func TestSweepOverdueSurvivesMailFailure(t *testing.T) {
	f := newSweepFixture(t)
	f.source.add(1, invoices.StatusSent, f.now.AddDate(0, 0, -5), "Lumen Design", "marie@lumen.fr")
	f.mailer.err = errors.New("queue unavailable")

	result, err := f.sweeper.SweepOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, invoices.StatusOverdue, f.source.invoices[1].Status)
}

func TestSweepOverdueSkipsWhenLockHeld(t *testing.T) {
	f := newSweepFixture(t)
	f.source.add(1, invoices.StatusSent, f.now.AddDate(0, 0, -5), "Lumen Design", "marie@lumen.fr")

	// Simulate a concurrent holder by claiming the lock up front.
	ctx := context.Background()
	mutex := f.sweeper.mutex
	locked, err := mutex.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, locked)

	result, err := f.sweeper.SweepOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Scanned)
	assert.Equal(t, invoices.StatusSent, f.source.invoices[1].Status)

	require.NoError(t, mutex.Unlock(ctx))
	result, err = f.sweeper.SweepOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
}

func TestCheckDueSoonWindowBoundary(t *testing.T) {
	f := newSweepFixture(t)
	f.source.add(1, invoices.StatusSent, f.now.AddDate(0, 0, 7), "Lumen Design", "marie@lumen.fr")
	f.source.add(2, invoices.StatusSent, f.now.Add(8*24*time.Hour), "Girard BTP", "paul@girard.fr")
	f.source.add(3, invoices.StatusSent, f.now.AddDate(0, 0, 2), "Vert Café", "sophie@vert.fr")
	f.source.add(4, invoices.StatusPaid, f.now.AddDate(0, 0, 3), "Lumen Design", "marie@lumen.fr")

	result, err := f.sweeper.CheckDueSoon(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Scanned)

	// Invoices 1 and 3 are inside the window, for two recipients each;
	// Processed counts the emitted notifications.
	assert.Equal(t, 4, result.Processed)
	assert.Len(t, f.store.byType(TypeInvoiceDueSoon), 4)
	assert.Empty(t, f.mailer.sent)
}

func TestCheckDueSoonDedupesWithinADay(t *testing.T) {
	f := newSweepFixture(t)
	f.source.add(1, invoices.StatusSent, f.now.AddDate(0, 0, 3), "Lumen Design", "marie@lumen.fr")

	_, err := f.sweeper.CheckDueSoon(context.Background())
	require.NoError(t, err)
	result, err := f.sweeper.CheckDueSoon(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Scanned)
	assert.Equal(t, 0, result.Processed)
	assert.Len(t, f.store.byType(TypeInvoiceDueSoon), 2)
}

func TestCheckDueSoonRetriesSameDayAfterStoreOutage(t *testing.T) {
	f := newSweepFixture(t)
	f.source.add(1, invoices.StatusSent, f.now.AddDate(0, 0, 3), "Lumen Design", "marie@lumen.fr")

	// Every insert fails: nothing lands, the day slot must not stay
	// claimed.
	f.store.createErr = errors.New("connection refused")
	result, err := f.sweeper.CheckDueSoon(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Processed)
	assert.Empty(t, f.store.notifications)

	f.store.createErr = nil
	result, err = f.sweeper.CheckDueSoon(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Len(t, f.store.byType(TypeInvoiceDueSoon), 2)
}

func TestSweepOverdueReleasesSlotWhenNothingRecorded(t *testing.T) {
	f := newSweepFixture(t)
	f.source.add(1, invoices.StatusSent, f.now.AddDate(0, 0, -5), "Lumen Design", "marie@lumen.fr")

	f.store.createErr = errors.New("connection refused")
	_, err := f.sweeper.SweepOverdue(context.Background())
	require.NoError(t, err)
	assert.Empty(t, f.store.notifications)

	// The day slot was handed back, so the invoice can still be
	// notified about today.
	assert.True(t, f.sweeper.deduper.FirstToday(context.Background(), TypeInvoiceOverdue, 1))
}
