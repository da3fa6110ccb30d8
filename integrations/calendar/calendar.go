// Package calendar is a functional stub of the external calendar integration.
// Events live in the same collection store as the CRM data, behind the
// narrow list/create/update/delete interface the real integration exposes.
package calendar

import (
	"context"

	log "github.com/sirupsen/logrus"

	"crm-api/domain"
	"crm-api/repo"
	"crm-api/storage"
)

// Service manages calendar events for a user.
type Service struct {
	events *repo.Collection[domain.CalendarEvent]
}

// New creates a calendar service over the given store.
func New(store storage.CollectionStore, logger *log.Logger) *Service {
	return &Service{events: repo.CalendarEvents(store, logger)}
}

// ListEvents returns the user's events. No stored events means an empty list.
func (s *Service) ListEvents(ctx context.Context, userID string) ([]domain.CalendarEvent, error) {
	return s.events.List(ctx, userID)
}

// CreateEvent stores a new event and returns it with its assigned identifier.
func (s *Service) CreateEvent(ctx context.Context, userID string, draft domain.CalendarEvent) (domain.CalendarEvent, error) {
	return s.events.Create(ctx, userID, draft)
}

// UpdateEvent replaces the stored event with the same identifier.
func (s *Service) UpdateEvent(ctx context.Context, userID string, event domain.CalendarEvent) (domain.CalendarEvent, error) {
	return s.events.Update(ctx, userID, event)
}

// DeleteEvent removes the event with the given identifier.
func (s *Service) DeleteEvent(ctx context.Context, userID, id string) error {
	return s.events.Remove(ctx, userID, id)
}
