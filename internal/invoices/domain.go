package invoices

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates the invoice payment states.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether the status is a known value.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusOverdue, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// legalTransitions is the closed transition table. Overdue is reachable
// only from sent and is reversible through payment.
var legalTransitions = map[Status][]Status{
	StatusDraft:   {StatusSent, StatusCancelled},
	StatusSent:    {StatusPaid, StatusOverdue, StatusCancelled},
	StatusOverdue: {StatusPaid, StatusCancelled},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to Status) bool {
	for _, allowed := range legalTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Domain errors surfaced by the invoice service.
var (
	ErrAmountNotPositive = errors.New("amount must be positive")
	ErrProjectMismatch   = errors.New("project does not belong to client")
	ErrInvalidTransition = errors.New("illegal status transition")
	ErrUnknownStatus     = errors.New("unknown invoice status")
)

// Invoice is a billing record for an amount owed by a client for a project.
// The number is assigned once at creation and never regenerated.
type Invoice struct {
	ID        int64           `json:"id"`
	Number    string          `json:"number"`
	ClientID  int64           `json:"client_id"`
	ProjectID int64           `json:"project_id"`
	Amount    decimal.Decimal `json:"amount"`
	IssuedAt  time.Time       `json:"issued_at"`
	DueDate   *time.Time      `json:"due_date,omitempty"`
	Status    Status          `json:"status"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// DaysOverdue returns how many whole days the invoice is past due at
// the given instant, or zero when it has no due date or is not past it.
func (i Invoice) DaysOverdue(now time.Time) int {
	if i.DueDate == nil {
		return 0
	}
	days := int(now.Sub(*i.DueDate).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// WithRelations joins the owning client and project display fields used
// by listings and exports.
type WithRelations struct {
	Invoice
	ClientName   string `json:"client_name"`
	ClientEmail  string `json:"client_email"`
	ProjectTitle string `json:"project_title"`
}

// CreateInvoiceInput for creating invoices.
type CreateInvoiceInput struct {
	ClientID  int64
	ProjectID int64
	Amount    decimal.Decimal
	DueDate   *time.Time
	Status    Status
	Notes     string
}

// UpdateInvoiceInput carries partial updates. The number, issue
// timestamp and status are immutable through this path.
type UpdateInvoiceInput struct {
	Amount  *decimal.Decimal
	DueDate *time.Time
	Notes   *string
}

// ListInvoicesRequest describes list filters.
type ListInvoicesRequest struct {
	Search   string
	ClientID int64
	Status   Status
	FromDate time.Time
	ToDate   time.Time
	Page     int
	PerPage  int
}
