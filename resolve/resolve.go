// Package resolve joins foreign-key fields to display values. Resolution is
// defensive: a dangling reference yields a fixed sentinel, never an error.
// Deletes do not cascade, so dangling references are a normal condition.
package resolve

import (
	"crm-api/domain"
)

// Unresolved is the sentinel rendered for a reference that names no existing
// record in its target collection.
const Unresolved = "N/A"

// ContactName returns the referenced contact's name, or the sentinel.
func ContactName(contacts []domain.Contact, id string) string {
	if id == "" {
		return Unresolved
	}
	for _, c := range contacts {
		if c.ID == id {
			return c.Name
		}
	}
	return Unresolved
}

// TaskTitle returns the referenced task's title, or the sentinel.
func TaskTitle(tasks []domain.Task, id string) string {
	if id == "" {
		return Unresolved
	}
	for _, t := range tasks {
		if t.ID == id {
			return t.Title
		}
	}
	return Unresolved
}

// TransactionAddress returns the referenced transaction's property address,
// or the sentinel.
func TransactionAddress(transactions []domain.Transaction, id string) string {
	if id == "" {
		return Unresolved
	}
	for _, t := range transactions {
		if t.ID == id {
			if t.PropertyAddress == "" {
				return Unresolved
			}
			return t.PropertyAddress
		}
	}
	return Unresolved
}

// ResolvedNote is a note with its related display names filled in. Only the
// relations the note actually carries are populated.
type ResolvedNote struct {
	domain.Note
	ContactName        string `json:"contactName,omitempty"`
	TaskTitle          string `json:"taskTitle,omitempty"`
	TransactionAddress string `json:"transactionAddress,omitempty"`
}

// Note denormalizes a single note for display.
func Note(n domain.Note, contacts []domain.Contact, tasks []domain.Task, transactions []domain.Transaction) ResolvedNote {
	out := ResolvedNote{Note: n}
	if n.ContactID != "" {
		out.ContactName = ContactName(contacts, n.ContactID)
	}
	if n.TaskID != "" {
		out.TaskTitle = TaskTitle(tasks, n.TaskID)
	}
	if n.TransactionID != "" {
		out.TransactionAddress = TransactionAddress(transactions, n.TransactionID)
	}
	return out
}

// Notes denormalizes a note snapshot for display.
func Notes(notes []domain.Note, contacts []domain.Contact, tasks []domain.Task, transactions []domain.Transaction) []ResolvedNote {
	out := make([]ResolvedNote, 0, len(notes))
	for _, n := range notes {
		out = append(out, Note(n, contacts, tasks, transactions))
	}
	return out
}

// PipelineCard is a pipeline item joined with its contact's display fields.
// The card's stage comes from the pipeline item, which is authoritative; any
// stage stored on the contact is ignored.
type PipelineCard struct {
	domain.PipelineItem
	ContactName  string `json:"contactName"`
	ContactEmail string `json:"contactEmail,omitempty"`
	ContactPhone string `json:"contactPhone,omitempty"`
}

// PipelineCards joins pipeline items with their contacts.
func PipelineCards(items []domain.PipelineItem, contacts []domain.Contact) []PipelineCard {
	byID := make(map[string]domain.Contact, len(contacts))
	for _, c := range contacts {
		byID[c.ID] = c
	}
	out := make([]PipelineCard, 0, len(items))
	for _, item := range items {
		card := PipelineCard{PipelineItem: item, ContactName: Unresolved}
		if c, ok := byID[item.ContactID]; ok {
			card.ContactName = c.Name
			card.ContactEmail = c.Email
			card.ContactPhone = c.Phone
		}
		out = append(out, card)
	}
	return out
}
