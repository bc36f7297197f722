package notifications

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-crm/atelier-crm/internal/invoices"
	"github.com/atelier-crm/atelier-crm/internal/users"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBroadcastReachesEveryRecipient(t *testing.T) {
	store := &mockNotificationStore{}
	svc := NewService(discardLogger(), store, fixedRecipients{ids: []int64{1, 2, 3}})

	invoiceID := int64(42)
	created := svc.Broadcast(context.Background(), TypeInvoiceCreated, "Facture créée", "La facture 2026-001 a été créée.", &invoiceID)

	assert.Equal(t, 3, created)
	require.Len(t, store.notifications, 3)
	seen := map[int64]bool{}
	for _, n := range store.notifications {
		seen[n.UserID] = true
		assert.Equal(t, TypeInvoiceCreated, n.Type)
		require.NotNil(t, n.InvoiceID)
		assert.Equal(t, invoiceID, *n.InvoiceID)
	}
	assert.Len(t, seen, 3)
}

func TestBroadcastSilentWhenResolverFails(t *testing.T) {
	store := &mockNotificationStore{}
	svc := NewService(discardLogger(), store, fixedRecipients{err: errors.New("directory down")})

	created := svc.Broadcast(context.Background(), TypeInvoiceCreated, "t", "m", nil)
	assert.Zero(t, created)
	assert.Empty(t, store.notifications)
}

func TestInvoiceLifecycleEvents(t *testing.T) {
	store := &mockNotificationStore{}
	svc := NewService(discardLogger(), store, fixedRecipients{ids: []int64{1}})
	ctx := context.Background()

	inv := &invoices.Invoice{ID: 7, Number: "2026-004", Status: invoices.StatusSent}

	svc.InvoiceCreated(ctx, inv)
	svc.InvoiceUpdated(ctx, inv)
	svc.InvoiceStatusChanged(ctx, inv, invoices.StatusDraft)

	require.Len(t, store.notifications, 3)
	assert.Equal(t, TypeInvoiceCreated, store.notifications[0].Type)
	assert.Equal(t, TypeInvoiceUpdated, store.notifications[1].Type)
	assert.Equal(t, TypeStatusChanged, store.notifications[2].Type)
	assert.Contains(t, store.notifications[2].Message, "2026-004")
	assert.Contains(t, store.notifications[2].Message, "draft")
	assert.Contains(t, store.notifications[2].Message, "sent")
}

func TestStaffResolver(t *testing.T) {
	resolver := NewStaffResolver(staffStub{})
	ids, err := resolver.Recipients(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 5}, ids)
}

type staffStub struct{}

func (staffStub) ListStaff(ctx context.Context) ([]users.User, error) {
	return []users.User{{ID: 1}, {ID: 5}}, nil
}
