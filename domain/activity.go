package domain

import "time"

// ActivityType labels an entry in a contact's activity feed.
type ActivityType string

const (
	ActivityNote        ActivityType = "note"
	ActivityTransaction ActivityType = "transaction"
	ActivityTask        ActivityType = "task"
	ActivityEmail       ActivityType = "email"
	ActivityCall        ActivityType = "call"
)

// Valid reports whether t is a known activity type.
func (t ActivityType) Valid() bool {
	switch t {
	case ActivityNote, ActivityTransaction, ActivityTask, ActivityEmail, ActivityCall:
		return true
	}
	return false
}

// Activity is one entry in a contact's history feed.
type Activity struct {
	ID          string         `json:"id"`
	ContactID   string         `json:"contactId"`
	Type        ActivityType   `json:"type"`
	Description string         `json:"description"`
	Date        time.Time      `json:"date"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}
