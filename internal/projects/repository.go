package projects

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/atelier-crm/atelier-crm/internal/shared"
)

// Repository provides PostgreSQL backed persistence for projects.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const projectColumns = `id, title, description, client_id, start_date, end_date, status, budget::text, created_at, updated_at`

func scanProject(row pgx.Row) (*Project, error) {
	var p Project
	var endDate pgtype.Date
	var budget pgtype.Text

	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.ClientID, &p.StartDate,
		&endDate, &p.Status, &budget, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if endDate.Valid {
		t := endDate.Time
		p.EndDate = &t
	}
	if budget.Valid {
		d, err := decimal.NewFromString(budget.String)
		if err != nil {
			return nil, fmt.Errorf("projects: parse budget: %w", err)
		}
		p.Budget = &d
	}
	return &p, nil
}

// Create inserts a new project.
func (r *Repository) Create(ctx context.Context, input CreateProjectInput) (*Project, error) {
	var budget any
	if input.Budget != nil {
		budget = input.Budget.String()
	}
	var endDate any
	if input.EndDate != nil {
		endDate = *input.EndDate
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO projects (title, description, client_id, start_date, end_date, status, budget, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING `+projectColumns,
		input.Title, input.Description, input.ClientID, input.StartDate, endDate, input.Status, budget)
	return scanProject(row)
}

// Get returns a project by ID.
func (r *Repository) Get(ctx context.Context, id int64) (*Project, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	return scanProject(row)
}

// List returns projects matching the request, with the total match count.
func (r *Repository) List(ctx context.Context, req ListProjectsRequest) ([]Project, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	argNum := 1

	if req.ClientID > 0 {
		where += fmt.Sprintf(" AND client_id = $%d", argNum)
		args = append(args, req.ClientID)
		argNum++
	}
	if req.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, string(req.Status))
		argNum++
	}
	if req.Search != "" {
		where += fmt.Sprintf(" AND title ILIKE $%d", argNum)
		args = append(args, "%"+req.Search+"%")
		argNum++
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM projects"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	p := shared.NewPagination(req.Page, req.PerPage, total)
	query := fmt.Sprintf("SELECT %s FROM projects%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		projectColumns, where, argNum, argNum+1)
	args = append(args, p.PerPage, p.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		proj, err := scanProjectFromRows(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *proj)
	}
	return out, total, rows.Err()
}

func scanProjectFromRows(rows pgx.Rows) (*Project, error) {
	var p Project
	var endDate pgtype.Date
	var budget pgtype.Text

	if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.ClientID, &p.StartDate,
		&endDate, &p.Status, &budget, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if endDate.Valid {
		t := endDate.Time
		p.EndDate = &t
	}
	if budget.Valid {
		d, err := decimal.NewFromString(budget.String)
		if err != nil {
			return nil, fmt.Errorf("projects: parse budget: %w", err)
		}
		p.Budget = &d
	}
	return &p, nil
}

// Update applies a partial update and returns the stored row.
func (r *Repository) Update(ctx context.Context, id int64, input UpdateProjectInput) (*Project, error) {
	set := "updated_at = NOW()"
	args := []any{}
	argNum := 1

	appendSet := func(column string, value any) {
		set += fmt.Sprintf(", %s = $%d", column, argNum)
		args = append(args, value)
		argNum++
	}

	if input.Title != nil {
		appendSet("title", *input.Title)
	}
	if input.Description != nil {
		appendSet("description", *input.Description)
	}
	if input.StartDate != nil {
		appendSet("start_date", *input.StartDate)
	}
	if input.EndDate != nil {
		appendSet("end_date", *input.EndDate)
	}
	if input.Status != nil {
		appendSet("status", string(*input.Status))
	}
	if input.Budget != nil {
		appendSet("budget", input.Budget.String())
	}

	query := fmt.Sprintf("UPDATE projects SET %s WHERE id = $%d RETURNING %s", set, argNum, projectColumns)
	args = append(args, id)

	return scanProject(r.pool.QueryRow(ctx, query, args...))
}

// Delete removes a project.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ClientIDOf returns the owning client of a project.
func (r *Repository) ClientIDOf(ctx context.Context, id int64) (int64, error) {
	var clientID int64
	err := r.pool.QueryRow(ctx, `SELECT client_id FROM projects WHERE id = $1`, id).Scan(&clientID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, shared.ErrNotFound
	}
	return clientID, err
}
