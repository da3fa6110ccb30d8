package domain

import "time"

// Stage is a funnel position. The funnel is ordered New → Engage → Future →
// Active → Closed, but stage assignment is unconstrained: items may move
// backward or skip stages.
type Stage string

const (
	StageNew    Stage = "New"
	StageEngage Stage = "Engage"
	StageFuture Stage = "Future"
	StageActive Stage = "Active"
	StageClosed Stage = "Closed"
)

// Stages returns the funnel stages in display order.
func Stages() []Stage {
	return []Stage{StageNew, StageEngage, StageFuture, StageActive, StageClosed}
}

// Valid reports whether s is a known funnel stage.
func (s Stage) Valid() bool {
	switch s {
	case StageNew, StageEngage, StageFuture, StageActive, StageClosed:
		return true
	}
	return false
}

// PipelineItem tracks a contact's progress through the sales funnel. It is
// the authoritative record of the contact's stage.
type PipelineItem struct {
	ID           string      `json:"id"`
	ContactID    string      `json:"contactId"`
	Stage        Stage       `json:"stage"`
	Source       string      `json:"source,omitempty"`
	Type         ContactType `json:"type"`
	AssignedTo   string      `json:"assignedTo,omitempty"`
	Notes        string      `json:"notes,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	LastActivity time.Time   `json:"lastActivity"`
}
