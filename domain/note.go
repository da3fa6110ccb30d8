package domain

import "time"

// Note holds rich-text content authored by the agent. Content is stored as
// authored and sanitized at the render boundary, never here. A note relates
// to at most one of a contact, task or transaction.
type Note struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	ContactID     string    `json:"contactId,omitempty"`
	TaskID        string    `json:"taskId,omitempty"`
	TransactionID string    `json:"transactionId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// RelationCount returns how many foreign references the note carries.
func (n Note) RelationCount() int {
	count := 0
	if n.ContactID != "" {
		count++
	}
	if n.TaskID != "" {
		count++
	}
	if n.TransactionID != "" {
		count++
	}
	return count
}
