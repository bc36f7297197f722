package company

import "time"

// Profile is the issuing company's identity printed on invoices and
// exports. Exactly one profile row exists.
type Profile struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	PostalCode string    `json:"postal_code"`
	City       string    `json:"city"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	SIRET      string    `json:"siret"`
	VATNumber  string    `json:"vat_number"`
	IBAN       string    `json:"iban"`
	BIC        string    `json:"bic"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// UpdateProfileInput carries a partial profile update.
type UpdateProfileInput struct {
	Name       *string
	Address    *string
	PostalCode *string
	City       *string
	Email      *string
	Phone      *string
	SIRET      *string
	VATNumber  *string
	IBAN       *string
	BIC        *string
}
