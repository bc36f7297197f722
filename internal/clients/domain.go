package clients

import "time"

// ClientStatus enumerates the client lifecycle states.
type ClientStatus string

const (
	StatusProspect ClientStatus = "prospect"
	StatusActive   ClientStatus = "active"
	StatusInactive ClientStatus = "inactive"
)

// Valid reports whether the status is a known value.
func (s ClientStatus) Valid() bool {
	switch s {
	case StatusProspect, StatusActive, StatusInactive:
		return true
	}
	return false
}

// Client is a billable customer.
type Client struct {
	ID         int64        `json:"id"`
	Name       string       `json:"name"`
	FirstName  string       `json:"first_name,omitempty"`
	Email      string       `json:"email"`
	Phone      string       `json:"phone,omitempty"`
	Address    string       `json:"address,omitempty"`
	City       string       `json:"city,omitempty"`
	PostalCode string       `json:"postal_code,omitempty"`
	Country    string       `json:"country,omitempty"`
	Status     ClientStatus `json:"status"`
	Notes      string       `json:"notes,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// CreateClientInput for creating clients.
type CreateClientInput struct {
	Name       string
	FirstName  string
	Email      string
	Phone      string
	Address    string
	City       string
	PostalCode string
	Country    string
	Status     ClientStatus
	Notes      string
}

// UpdateClientInput carries partial updates; nil fields are untouched.
type UpdateClientInput struct {
	Name       *string
	FirstName  *string
	Email      *string
	Phone      *string
	Address    *string
	City       *string
	PostalCode *string
	Country    *string
	Status     *ClientStatus
	Notes      *string
}

// ListClientsRequest describes list filters.
type ListClientsRequest struct {
	Search  string
	Status  ClientStatus
	Page    int
	PerPage int
}
