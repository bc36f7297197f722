package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/atelier-crm/atelier-crm/internal/shared"
)

// Deduper suppresses repeat notifications. The policy is one
// notification per invoice per type per calendar day, so a sweep rerun
// on the same day stays silent while the next day's run fires again.
type Deduper struct {
	redis *redis.Client
	clock shared.Clock
}

// NewDeduper builds Deduper instance.
func NewDeduper(client *redis.Client, clock shared.Clock) *Deduper {
	return &Deduper{redis: client, clock: clock}
}

func (d *Deduper) slotKey(typ Type, invoiceID int64, now time.Time) string {
	return fmt.Sprintf("notify:dedupe:%s:%d:%s", typ, invoiceID, now.Format("2006-01-02"))
}

// FirstToday claims the per-day slot for the invoice and type. It
// returns true exactly once per calendar day; later calls see the
// claimed key and return false. On Redis failure it errs on the side
// of notifying.
func (d *Deduper) FirstToday(ctx context.Context, typ Type, invoiceID int64) bool {
	now := d.clock.Now()
	endOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).Add(24 * time.Hour)
	ok, err := d.redis.SetNX(ctx, d.slotKey(typ, invoiceID, now), 1, endOfDay.Sub(now)).Result()
	if err != nil {
		return true
	}
	return ok
}

// Release frees a slot claimed earlier today. Callers use it when the
// claim succeeded but no notification was actually recorded, so the
// next run on the same day gets another chance.
func (d *Deduper) Release(ctx context.Context, typ Type, invoiceID int64) {
	_ = d.redis.Del(ctx, d.slotKey(typ, invoiceID, d.clock.Now())).Err()
}
