package company

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atelier-crm/atelier-crm/internal/shared"
)

// Repository persists the single company profile row.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const profileColumns = `id, name, address, postal_code, city, email, phone, siret, vat_number, iban, bic, updated_at`

func scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.Name, &p.Address, &p.PostalCode, &p.City, &p.Email,
		&p.Phone, &p.SIRET, &p.VATNumber, &p.IBAN, &p.BIC, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Get returns the profile.
func (r *Repository) Get(ctx context.Context) (*Profile, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM company_profile ORDER BY id LIMIT 1`)
	return scanProfile(row)
}

// Update applies a partial update to the profile.
func (r *Repository) Update(ctx context.Context, input UpdateProfileInput) (*Profile, error) {
	set := "updated_at = NOW()"
	args := []any{}
	argNum := 1

	appendSet := func(column string, value *string) {
		if value == nil {
			return
		}
		set += fmt.Sprintf(", %s = $%d", column, argNum)
		args = append(args, *value)
		argNum++
	}

	appendSet("name", input.Name)
	appendSet("address", input.Address)
	appendSet("postal_code", input.PostalCode)
	appendSet("city", input.City)
	appendSet("email", input.Email)
	appendSet("phone", input.Phone)
	appendSet("siret", input.SIRET)
	appendSet("vat_number", input.VATNumber)
	appendSet("iban", input.IBAN)
	appendSet("bic", input.BIC)

	query := fmt.Sprintf(`
		UPDATE company_profile SET %s
		WHERE id = (SELECT id FROM company_profile ORDER BY id LIMIT 1)
		RETURNING %s`, set, profileColumns)
	return scanProfile(r.pool.QueryRow(ctx, query, args...))
}
