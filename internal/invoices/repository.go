package invoices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/atelier-crm/atelier-crm/internal/platform/db"
	"github.com/atelier-crm/atelier-crm/internal/shared"
)

// Repository provides PostgreSQL backed persistence for invoices.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const invoiceColumns = `id, number, client_id, project_id, amount::text, issued_at, due_date, status, notes, created_at, updated_at`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	var amount string
	var dueDate pgtype.Date

	err := row.Scan(&inv.ID, &inv.Number, &inv.ClientID, &inv.ProjectID, &amount,
		&inv.IssuedAt, &dueDate, &inv.Status, &inv.Notes, &inv.CreatedAt, &inv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	inv.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invoices: parse amount: %w", err)
	}
	if dueDate.Valid {
		t := dueDate.Time
		inv.DueDate = &t
	}
	return &inv, nil
}

const createAttempts = 3

// Create assigns the next number for the year and inserts the invoice,
// both inside one transaction. A unique-violation on invoices.number
// (a lost race) is retried with a freshly computed number.
func (r *Repository) Create(ctx context.Context, input CreateInvoiceInput, issuedAt time.Time) (*Invoice, error) {
	var lastErr error
	for attempt := 0; attempt < createAttempts; attempt++ {
		inv, err := r.tryCreate(ctx, input, issuedAt)
		if err == nil {
			return inv, nil
		}
		if !db.IsUniqueViolation(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("invoices: number assignment kept colliding: %w", lastErr)
}

func (r *Repository) tryCreate(ctx context.Context, input CreateInvoiceInput, issuedAt time.Time) (*Invoice, error) {
	var inv *Invoice
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		seq, err := nextSequence(ctx, tx, issuedAt.Year())
		if err != nil {
			return err
		}
		number := FormatNumber(issuedAt.Year(), seq)

		var dueDate any
		if input.DueDate != nil {
			dueDate = *input.DueDate
		}
		row := tx.QueryRow(ctx, `
			INSERT INTO invoices (number, client_id, project_id, amount, issued_at, due_date, status, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
			RETURNING `+invoiceColumns,
			number, input.ClientID, input.ProjectID, input.Amount.String(), issuedAt, dueDate, input.Status, input.Notes)
		inv, err = scanInvoice(row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// Get returns an invoice by ID.
func (r *Repository) Get(ctx context.Context, id int64) (*Invoice, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
	return scanInvoice(row)
}

// GetWithRelations returns an invoice joined with client and project names.
func (r *Repository) GetWithRelations(ctx context.Context, id int64) (*WithRelations, error) {
	rows, err := r.queryWithRelations(ctx, " WHERE i.id = $1", []any{id}, "")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, shared.ErrNotFound
	}
	return &rows[0], nil
}

// List returns invoices matching the request, with the total match count.
func (r *Repository) List(ctx context.Context, req ListInvoicesRequest) ([]WithRelations, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	argNum := 1

	if req.Search != "" {
		where += fmt.Sprintf(" AND (i.number ILIKE $%d OR c.name ILIKE $%d OR p.title ILIKE $%d)", argNum, argNum, argNum)
		args = append(args, "%"+req.Search+"%")
		argNum++
	}
	if req.ClientID > 0 {
		where += fmt.Sprintf(" AND i.client_id = $%d", argNum)
		args = append(args, req.ClientID)
		argNum++
	}
	if req.Status != "" {
		where += fmt.Sprintf(" AND i.status = $%d", argNum)
		args = append(args, string(req.Status))
		argNum++
	}
	if !req.FromDate.IsZero() {
		where += fmt.Sprintf(" AND i.issued_at >= $%d", argNum)
		args = append(args, req.FromDate)
		argNum++
	}
	if !req.ToDate.IsZero() {
		where += fmt.Sprintf(" AND i.issued_at <= $%d", argNum)
		args = append(args, req.ToDate)
		argNum++
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM invoices i JOIN clients c ON c.id = i.client_id JOIN projects p ON p.id = i.project_id` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	p := shared.NewPagination(req.Page, req.PerPage, total)
	suffix := fmt.Sprintf(" ORDER BY i.issued_at DESC LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, p.PerPage, p.Offset())

	out, err := r.queryWithRelations(ctx, where, args, suffix)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *Repository) queryWithRelations(ctx context.Context, where string, args []any, suffix string) ([]WithRelations, error) {
	query := `
		SELECT i.id, i.number, i.client_id, i.project_id, i.amount::text, i.issued_at,
			i.due_date, i.status, i.notes, i.created_at, i.updated_at,
			c.name, c.email, p.title
		FROM invoices i
		JOIN clients c ON c.id = i.client_id
		JOIN projects p ON p.id = i.project_id` + where + suffix

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []WithRelations
	for rows.Next() {
		var item WithRelations
		var amount string
		var dueDate pgtype.Date
		if err := rows.Scan(&item.ID, &item.Number, &item.ClientID, &item.ProjectID, &amount,
			&item.IssuedAt, &dueDate, &item.Status, &item.Notes, &item.CreatedAt, &item.UpdatedAt,
			&item.ClientName, &item.ClientEmail, &item.ProjectTitle); err != nil {
			return nil, err
		}
		item.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("invoices: parse amount: %w", err)
		}
		if dueDate.Valid {
			t := dueDate.Time
			item.DueDate = &t
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// Update applies a partial update to the mutable fields.
func (r *Repository) Update(ctx context.Context, id int64, input UpdateInvoiceInput) (*Invoice, error) {
	set := "updated_at = NOW()"
	args := []any{}
	argNum := 1

	appendSet := func(column string, value any) {
		set += fmt.Sprintf(", %s = $%d", column, argNum)
		args = append(args, value)
		argNum++
	}

	if input.Amount != nil {
		appendSet("amount", input.Amount.String())
	}
	if input.DueDate != nil {
		appendSet("due_date", *input.DueDate)
	}
	if input.Notes != nil {
		appendSet("notes", *input.Notes)
	}

	query := fmt.Sprintf("UPDATE invoices SET %s WHERE id = $%d RETURNING %s", set, argNum, invoiceColumns)
	args = append(args, id)
	return scanInvoice(r.pool.QueryRow(ctx, query, args...))
}

// UpdateStatus persists a status change without touching other fields.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status Status) (*Invoice, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE invoices SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+invoiceColumns, id, status)
	return scanInvoice(row)
}

// MarkOverdue transitions a sent invoice to overdue. The status guard
// makes the call idempotent: an invoice already moved (or paid in the
// meantime) is left alone and false is returned.
func (r *Repository) MarkOverdue(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE invoices SET status = 'overdue', updated_at = NOW()
		WHERE id = $1 AND status = 'sent'`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes an invoice. Administrative action; the sweep never deletes.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ListDueBefore returns sent invoices whose due date is strictly before
// the given instant. Invoices without a due date never qualify.
func (r *Repository) ListDueBefore(ctx context.Context, now time.Time) ([]WithRelations, error) {
	return r.queryWithRelations(ctx,
		" WHERE i.status = 'sent' AND i.due_date IS NOT NULL AND i.due_date < $1",
		[]any{now}, " ORDER BY i.due_date")
}

// ListDueBetween returns sent invoices due strictly after `from` and no
// later than `to`, the window used by the due-soon check.
func (r *Repository) ListDueBetween(ctx context.Context, from, to time.Time) ([]WithRelations, error) {
	return r.queryWithRelations(ctx,
		" WHERE i.status = 'sent' AND i.due_date IS NOT NULL AND i.due_date > $1 AND i.due_date <= $2",
		[]any{from, to}, " ORDER BY i.due_date")
}
