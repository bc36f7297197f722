package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/atelier-crm/atelier-crm/internal/shared"
)

func TestDeduperOncePerDay(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	today := time.Date(2026, 3, 15, 6, 0, 0, 0, time.UTC)
	ctx := context.Background()

	d := NewDeduper(client, shared.FixedClock{Instant: today})
	assert.True(t, d.FirstToday(ctx, TypeInvoiceOverdue, 1))
	assert.False(t, d.FirstToday(ctx, TypeInvoiceOverdue, 1))

	// Different type or invoice claims its own slot.
	assert.True(t, d.FirstToday(ctx, TypeInvoiceDueSoon, 1))
	assert.True(t, d.FirstToday(ctx, TypeInvoiceOverdue, 2))

	// The next calendar day fires again.
	tomorrow := NewDeduper(client, shared.FixedClock{Instant: today.AddDate(0, 0, 1)})
	assert.True(t, tomorrow.FirstToday(ctx, TypeInvoiceOverdue, 1))
}

func TestDeduperReleaseReopensSlot(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	today := time.Date(2026, 3, 15, 6, 0, 0, 0, time.UTC)
	ctx := context.Background()

	d := NewDeduper(client, shared.FixedClock{Instant: today})
	assert.True(t, d.FirstToday(ctx, TypeInvoiceDueSoon, 1))
	assert.False(t, d.FirstToday(ctx, TypeInvoiceDueSoon, 1))

	d.Release(ctx, TypeInvoiceDueSoon, 1)
	assert.True(t, d.FirstToday(ctx, TypeInvoiceDueSoon, 1))

	// Releasing one slot leaves the others claimed.
	assert.True(t, d.FirstToday(ctx, TypeInvoiceOverdue, 1))
	d.Release(ctx, TypeInvoiceDueSoon, 1)
	assert.False(t, d.FirstToday(ctx, TypeInvoiceOverdue, 1))
}
