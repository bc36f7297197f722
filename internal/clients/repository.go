package clients

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atelier-crm/atelier-crm/internal/platform/db"
	"github.com/atelier-crm/atelier-crm/internal/shared"
)

// Repository provides PostgreSQL backed persistence for clients.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const clientColumns = `id, name, first_name, email, phone, address, city, postal_code, country, status, notes, created_at, updated_at`

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.Name, &c.FirstName, &c.Email, &c.Phone, &c.Address, &c.City,
		&c.PostalCode, &c.Country, &c.Status, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new client.
func (r *Repository) Create(ctx context.Context, input CreateClientInput) (*Client, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO clients (name, first_name, email, phone, address, city, postal_code, country, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING `+clientColumns,
		input.Name, input.FirstName, input.Email, input.Phone, input.Address,
		input.City, input.PostalCode, input.Country, input.Status, input.Notes)
	client, err := scanClient(row)
	if err != nil && db.IsUniqueViolation(err) {
		return nil, shared.ErrConflict
	}
	return client, err
}

// Get returns a client by ID.
func (r *Repository) Get(ctx context.Context, id int64) (*Client, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
	return scanClient(row)
}

// List returns clients matching the request, with the total match count.
func (r *Repository) List(ctx context.Context, req ListClientsRequest) ([]Client, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	argNum := 1

	if req.Search != "" {
		where += fmt.Sprintf(" AND (name ILIKE $%d OR first_name ILIKE $%d OR email ILIKE $%d)", argNum, argNum, argNum)
		args = append(args, "%"+req.Search+"%")
		argNum++
	}
	if req.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, string(req.Status))
		argNum++
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM clients"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	p := shared.NewPagination(req.Page, req.PerPage, total)
	query := fmt.Sprintf("SELECT %s FROM clients%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		clientColumns, where, argNum, argNum+1)
	args = append(args, p.PerPage, p.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.Name, &c.FirstName, &c.Email, &c.Phone, &c.Address, &c.City,
			&c.PostalCode, &c.Country, &c.Status, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// Update applies a partial update and returns the stored row.
func (r *Repository) Update(ctx context.Context, id int64, input UpdateClientInput) (*Client, error) {
	set := "updated_at = NOW()"
	args := []any{}
	argNum := 1

	appendSet := func(column string, value any) {
		set += fmt.Sprintf(", %s = $%d", column, argNum)
		args = append(args, value)
		argNum++
	}

	if input.Name != nil {
		appendSet("name", *input.Name)
	}
	if input.FirstName != nil {
		appendSet("first_name", *input.FirstName)
	}
	if input.Email != nil {
		appendSet("email", *input.Email)
	}
	if input.Phone != nil {
		appendSet("phone", *input.Phone)
	}
	if input.Address != nil {
		appendSet("address", *input.Address)
	}
	if input.City != nil {
		appendSet("city", *input.City)
	}
	if input.PostalCode != nil {
		appendSet("postal_code", *input.PostalCode)
	}
	if input.Country != nil {
		appendSet("country", *input.Country)
	}
	if input.Status != nil {
		appendSet("status", string(*input.Status))
	}
	if input.Notes != nil {
		appendSet("notes", *input.Notes)
	}

	query := fmt.Sprintf("UPDATE clients SET %s WHERE id = $%d RETURNING %s", set, argNum, clientColumns)
	args = append(args, id)

	client, err := scanClient(r.pool.QueryRow(ctx, query, args...))
	if err != nil && db.IsUniqueViolation(err) {
		return nil, shared.ErrConflict
	}
	return client, err
}

// Delete removes a client. Projects and invoices cascade at the schema level.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Exists reports whether a client row exists.
func (r *Repository) Exists(ctx context.Context, id int64) (bool, error) {
	var found bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM clients WHERE id = $1)`, id).Scan(&found)
	return found, err
}
