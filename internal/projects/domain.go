package projects

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProjectStatus enumerates project lifecycle states.
type ProjectStatus string

const (
	StatusPending    ProjectStatus = "pending"
	StatusInProgress ProjectStatus = "in_progress"
	StatusCompleted  ProjectStatus = "completed"
	StatusCancelled  ProjectStatus = "cancelled"
)

// Valid reports whether the status is a known value.
func (s ProjectStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Project is a unit of billable work owned by a client.
type Project struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	ClientID    int64            `json:"client_id"`
	StartDate   time.Time        `json:"start_date"`
	EndDate     *time.Time       `json:"end_date,omitempty"`
	Status      ProjectStatus    `json:"status"`
	Budget      *decimal.Decimal `json:"budget,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// CreateProjectInput for creating projects.
type CreateProjectInput struct {
	Title       string
	Description string
	ClientID    int64
	StartDate   time.Time
	EndDate     *time.Time
	Status      ProjectStatus
	Budget      *decimal.Decimal
}

// UpdateProjectInput carries partial updates; nil fields are untouched.
type UpdateProjectInput struct {
	Title       *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
	Status      *ProjectStatus
	Budget      *decimal.Decimal
}

// ListProjectsRequest describes list filters.
type ListProjectsRequest struct {
	ClientID int64
	Status   ProjectStatus
	Search   string
	Page     int
	PerPage  int
}
