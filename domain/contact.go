package domain

import "time"

// ContactType classifies a contact's role in a deal.
type ContactType string

const (
	ContactBuyer  ContactType = "Buyer"
	ContactSeller ContactType = "Seller"
	ContactAgent  ContactType = "Agent"
	ContactOther  ContactType = "Other"
)

// Valid reports whether t is a known contact type.
func (t ContactType) Valid() bool {
	switch t {
	case ContactBuyer, ContactSeller, ContactAgent, ContactOther:
		return true
	}
	return false
}

// Contact is a person in the CRM. Stage is a denormalized projection of the
// contact's pipeline item and is never written directly; the pipeline
// collection is authoritative.
type Contact struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Email         string      `json:"email"`
	Phone         string      `json:"phone"`
	Type          ContactType `json:"type"`
	Company       string      `json:"company,omitempty"`
	Stage         string      `json:"stage,omitempty"`
	Source        string      `json:"source,omitempty"`
	InterestLevel string      `json:"interestLevel,omitempty"`
	Budget        string      `json:"budget,omitempty"`
	Timeframe     string      `json:"timeframe,omitempty"`
	Notes         string      `json:"notes,omitempty"`
	Address       string      `json:"address,omitempty"`
	City          string      `json:"city,omitempty"`
	State         string      `json:"state,omitempty"`
	ZipCode       string      `json:"zipCode,omitempty"`
	LastContact   time.Time   `json:"lastContact"`

	RelatedTaskIDs        []string `json:"relatedTaskIds,omitempty"`
	RelatedTransactionIDs []string `json:"relatedTransactionIds,omitempty"`
	RelatedNoteIDs        []string `json:"relatedNoteIds,omitempty"`
}
