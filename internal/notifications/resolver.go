package notifications

import (
	"context"

	"github.com/atelier-crm/atelier-crm/internal/users"
)

// StaffSource lists the active staff users.
type StaffSource interface {
	ListStaff(ctx context.Context) ([]users.User, error)
}

// StaffResolver addresses broadcasts to every active staff user, the
// default audience for invoice events.
type StaffResolver struct {
	users StaffSource
}

// NewStaffResolver builds StaffResolver instance.
func NewStaffResolver(source StaffSource) *StaffResolver {
	return &StaffResolver{users: source}
}

// Recipients returns the IDs of all active staff users.
func (r *StaffResolver) Recipients(ctx context.Context) ([]int64, error) {
	staff, err := r.users.ListStaff(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(staff))
	for _, u := range staff {
		ids = append(ids, u.ID)
	}
	return ids, nil
}
