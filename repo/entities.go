package repo

import (
	"time"

	log "github.com/sirupsen/logrus"

	"crm-api/domain"
	"crm-api/storage"
)

// Contacts builds the contact repository. LastContact is stamped at creation
// and is not refreshed by related-entity writes.
func Contacts(store storage.CollectionStore, logger *log.Logger) *Collection[domain.Contact] {
	return newCollection(store, storage.CollectionContacts, logger, hooks[domain.Contact]{
		getID: func(c domain.Contact) string { return c.ID },
		setID: func(c *domain.Contact, id string) { c.ID = id },
		onCreate: func(c *domain.Contact, now time.Time) {
			if c.LastContact.IsZero() {
				c.LastContact = now
			}
		},
	})
}

// Tasks builds the task repository.
func Tasks(store storage.CollectionStore, logger *log.Logger) *Collection[domain.Task] {
	return newCollection(store, storage.CollectionTasks, logger, hooks[domain.Task]{
		getID: func(t domain.Task) string { return t.ID },
		setID: func(t *domain.Task, id string) { t.ID = id },
		onCreate: func(t *domain.Task, now time.Time) {
			t.CreatedAt = now
			t.UpdatedAt = now
		},
		onUpdate: func(t *domain.Task, now time.Time) {
			t.UpdatedAt = now
		},
	})
}

// TaskTemplates builds the task-template repository. Templates are plain
// blueprints; instantiation stamps nothing on the template itself.
func TaskTemplates(store storage.CollectionStore, logger *log.Logger) *Collection[domain.TaskTemplate] {
	return newCollection(store, storage.CollectionTaskTemplates, logger, hooks[domain.TaskTemplate]{
		getID: func(t domain.TaskTemplate) string { return t.ID },
		setID: func(t *domain.TaskTemplate, id string) { t.ID = id },
	})
}

// Transactions builds the transaction repository. Closing parties get their
// own identifiers at creation time.
func Transactions(store storage.CollectionStore, logger *log.Logger) *Collection[domain.Transaction] {
	c := newCollection(store, storage.CollectionTransactions, logger, hooks[domain.Transaction]{
		getID: func(t domain.Transaction) string { return t.ID },
		setID: func(t *domain.Transaction, id string) { t.ID = id },
	})
	c.hooks.onCreate = func(t *domain.Transaction, _ time.Time) {
		for i := range t.ClosingParties {
			if t.ClosingParties[i].ID == "" {
				t.ClosingParties[i].ID = c.newID()
			}
		}
	}
	c.hooks.onUpdate = c.hooks.onCreate
	return c
}

// Notes builds the note repository.
func Notes(store storage.CollectionStore, logger *log.Logger) *Collection[domain.Note] {
	return newCollection(store, storage.CollectionNotes, logger, hooks[domain.Note]{
		getID: func(n domain.Note) string { return n.ID },
		setID: func(n *domain.Note, id string) { n.ID = id },
		onCreate: func(n *domain.Note, now time.Time) {
			n.CreatedAt = now
			n.UpdatedAt = now
		},
		onUpdate: func(n *domain.Note, now time.Time) {
			n.UpdatedAt = now
		},
	})
}

// Activities builds the activity-feed repository.
func Activities(store storage.CollectionStore, logger *log.Logger) *ActivityRepo {
	return &ActivityRepo{Collection: newCollection(store, storage.CollectionActivities, logger, hooks[domain.Activity]{
		getID: func(a domain.Activity) string { return a.ID },
		setID: func(a *domain.Activity, id string) { a.ID = id },
		onCreate: func(a *domain.Activity, now time.Time) {
			if a.Date.IsZero() {
				a.Date = now
			}
		},
	})}
}

// CalendarEvents builds the repository behind the calendar integration stub.
func CalendarEvents(store storage.CollectionStore, logger *log.Logger) *Collection[domain.CalendarEvent] {
	return newCollection(store, storage.CollectionCalendarEvents, logger, hooks[domain.CalendarEvent]{
		getID: func(e domain.CalendarEvent) string { return e.ID },
		setID: func(e *domain.CalendarEvent, id string) { e.ID = id },
	})
}
