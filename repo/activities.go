package repo

import (
	"context"

	"crm-api/domain"
)

// ActivityRepo is the activity-feed repository.
type ActivityRepo struct {
	*Collection[domain.Activity]
}

// ListByContact returns the activities referencing the given contact,
// preserving stored order.
func (r *ActivityRepo) ListByContact(ctx context.Context, userID, contactID string) ([]domain.Activity, error) {
	all, err := r.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := []domain.Activity{}
	for _, a := range all {
		if a.ContactID == contactID {
			out = append(out, a)
		}
	}
	return out, nil
}
