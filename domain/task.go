package domain

import "time"

// TaskStatus is the task's position on the board. Transitions are
// unrestricted: any status may follow any other.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "inProgress"
	TaskDone       TaskStatus = "done"
)

// Valid reports whether s is a known task status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskDone:
		return true
	}
	return false
}

// TaskType categorizes the kind of follow-up a task represents.
type TaskType string

const (
	TaskEmail    TaskType = "email"
	TaskCall     TaskType = "call"
	TaskMeeting  TaskType = "meeting"
	TaskFollowUp TaskType = "followUp"
	TaskShowing  TaskType = "showing"
	TaskOtherTyp TaskType = "other"
)

// Valid reports whether t is a known task type.
func (t TaskType) Valid() bool {
	switch t {
	case TaskEmail, TaskCall, TaskMeeting, TaskFollowUp, TaskShowing, TaskOtherTyp:
		return true
	}
	return false
}

// TaskPriority is ordinal: a lower value is more urgent.
type TaskPriority int

const (
	PriorityHigh   TaskPriority = 1
	PriorityMedium TaskPriority = 2
	PriorityLow    TaskPriority = 3
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	return p >= PriorityHigh && p <= PriorityLow
}

// Task is a to-do item, optionally tied to a contact and/or transaction.
type Task struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description,omitempty"`
	Status        TaskStatus   `json:"status"`
	Type          TaskType     `json:"type"`
	Priority      TaskPriority `json:"priority"`
	DueDate       time.Time    `json:"dueDate"`
	Assignee      string       `json:"assignee,omitempty"`
	ContactID     string       `json:"contactId,omitempty"`
	TransactionID string       `json:"transactionId,omitempty"`
	Category      string       `json:"category,omitempty"`
	EmailTemplate string       `json:"emailTemplate,omitempty"`
	Automated     bool         `json:"automated"`
	Notes         string       `json:"notes,omitempty"`
	CompletedAt   *time.Time   `json:"completedAt,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// TaskTemplate describes a reusable task blueprint for automated follow-ups.
type TaskTemplate struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Description   string       `json:"description,omitempty"`
	Type          TaskType     `json:"type"`
	DueInDays     int          `json:"dueInDays"`
	Priority      TaskPriority `json:"priority"`
	Category      string       `json:"category,omitempty"`
	EmailTemplate string       `json:"emailTemplate,omitempty"`
	Automated     bool         `json:"automated"`
}

// Instantiate materializes a fresh task from the template, due DueInDays days
// from now and starting on the board as todo.
func (t TaskTemplate) Instantiate(now time.Time) Task {
	return Task{
		Title:         t.Name,
		Description:   t.Description,
		Status:        TaskTodo,
		Type:          t.Type,
		Priority:      t.Priority,
		DueDate:       now.AddDate(0, 0, t.DueInDays),
		Category:      t.Category,
		EmailTemplate: t.EmailTemplate,
		Automated:     t.Automated,
	}
}
