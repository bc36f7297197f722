package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atelier-crm/atelier-crm/internal/shared"
)

// Repository provides PostgreSQL backed persistence for notifications.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const notificationColumns = `id, user_id, type, title, message, invoice_id, read_at, created_at`

func scanNotification(row pgx.Row) (*Notification, error) {
	var n Notification
	var invoiceID pgtype.Int8
	var readAt pgtype.Timestamptz

	err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &invoiceID, &readAt, &n.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if invoiceID.Valid {
		v := invoiceID.Int64
		n.InvoiceID = &v
	}
	if readAt.Valid {
		t := readAt.Time
		n.ReadAt = &t
	}
	return &n, nil
}

// Create records a notification.
func (r *Repository) Create(ctx context.Context, input CreateNotificationInput) (*Notification, error) {
	var invoiceID any
	if input.InvoiceID != nil {
		invoiceID = *input.InvoiceID
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO notifications (user_id, type, title, message, invoice_id, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING `+notificationColumns,
		input.UserID, input.Type, input.Title, input.Message, invoiceID)
	return scanNotification(row)
}

// listWhere builds the filter shared by the count and page queries.
func listWhere(unreadOnly bool) string {
	where := " WHERE user_id = $1"
	if unreadOnly {
		where += " AND read_at IS NULL"
	}
	return where
}

// listQuery builds the page query. Unread notifications sort ahead of
// read ones, newest first within each group.
func listQuery(unreadOnly bool) string {
	return fmt.Sprintf(`SELECT %s FROM notifications%s ORDER BY (read_at IS NULL) DESC, created_at DESC LIMIT $2 OFFSET $3`,
		notificationColumns, listWhere(unreadOnly))
}

// List returns a user's notifications, unread first and newest first
// within each group.
func (r *Repository) List(ctx context.Context, req ListNotificationsRequest) ([]Notification, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications`+listWhere(req.UnreadOnly), req.UserID).Scan(&total); err != nil {
		return nil, 0, err
	}

	p := shared.NewPagination(req.Page, req.PerPage, total)
	rows, err := r.pool.Query(ctx, listQuery(req.UnreadOnly), req.UserID, p.PerPage, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *n)
	}
	return out, total, rows.Err()
}

// CountUnread returns the number of unread notifications for a user.
func (r *Repository) CountUnread(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read_at IS NULL`, userID).Scan(&count)
	return count, err
}

// MarkRead acknowledges one notification owned by the user. Marking an
// already read notification keeps its original read timestamp.
func (r *Repository) MarkRead(ctx context.Context, userID, id int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications SET read_at = COALESCE(read_at, NOW())
		WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// MarkAllRead acknowledges every unread notification for the user and
// returns how many were affected.
func (r *Repository) MarkAllRead(ctx context.Context, userID int64) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications SET read_at = NOW()
		WHERE user_id = $1 AND read_at IS NULL`, userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
