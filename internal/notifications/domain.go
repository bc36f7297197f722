package notifications

import "time"

// Type classifies a notification for filtering and deduplication.
type Type string

const (
	TypeInvoiceCreated Type = "invoice_created"
	TypeInvoiceUpdated Type = "invoice_updated"
	TypeStatusChanged  Type = "status_changed"
	TypeInvoiceOverdue Type = "invoice_overdue"
	TypeInvoiceDueSoon Type = "invoice_due_soon"
)

// Notification is an in-app message addressed to one user.
type Notification struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Type      Type       `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	InvoiceID *int64     `json:"invoice_id,omitempty"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Read reports whether the notification has been acknowledged.
func (n Notification) Read() bool {
	return n.ReadAt != nil
}

// CreateNotificationInput for recording a notification.
type CreateNotificationInput struct {
	UserID    int64
	Type      Type
	Title     string
	Message   string
	InvoiceID *int64
}

// ListNotificationsRequest describes list filters.
type ListNotificationsRequest struct {
	UserID     int64
	UnreadOnly bool
	Page       int
	PerPage    int
}
