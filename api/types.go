package api

import (
	"context"

	"crm-api/domain"
	"crm-api/integrations/contactsync"
)

// Authenticator is implemented by types able to extract user IDs from headers.
type Authenticator interface {
	UserIDFromAuthHeader(string) (string, error)
}

// CalendarService is the narrow surface of the external calendar integration.
type CalendarService interface {
	ListEvents(ctx context.Context, userID string) ([]domain.CalendarEvent, error)
	CreateEvent(ctx context.Context, userID string, draft domain.CalendarEvent) (domain.CalendarEvent, error)
	UpdateEvent(ctx context.Context, userID string, event domain.CalendarEvent) (domain.CalendarEvent, error)
	DeleteEvent(ctx context.Context, userID, id string) error
}

// ContactSource lists people from an external contact-sync provider.
type ContactSource interface {
	FetchPeople(ctx context.Context) ([]contactsync.Person, error)
}
