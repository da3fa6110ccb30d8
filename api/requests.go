package api

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"crm-api/domain"
)

// validate holds the shared validator. Required-field checks live at this
// boundary; the repositories perform none.
var validate = validator.New(validator.WithRequiredStructEnabled())

// validateDraft returns per-field messages, or nil when the draft is valid.
func validateDraft(v any) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	fields := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Field()] = "failed " + fe.Tag() + " validation"
		}
		return fields
	}
	fields["_"] = err.Error()
	return fields
}

type contactDraft struct {
	Name          string             `json:"name" validate:"required"`
	Email         string             `json:"email" validate:"required,email"`
	Phone         string             `json:"phone" validate:"required"`
	Type          domain.ContactType `json:"type" validate:"required,oneof=Buyer Seller Agent Other"`
	Company       string             `json:"company,omitempty"`
	Source        string             `json:"source,omitempty"`
	InterestLevel string             `json:"interestLevel,omitempty"`
	Budget        string             `json:"budget,omitempty"`
	Timeframe     string             `json:"timeframe,omitempty"`
	Notes         string             `json:"notes,omitempty"`
	Address       string             `json:"address,omitempty"`
	City          string             `json:"city,omitempty"`
	State         string             `json:"state,omitempty"`
	ZipCode       string             `json:"zipCode,omitempty"`
}

func (d contactDraft) toDomain() domain.Contact {
	return domain.Contact{
		Name:          d.Name,
		Email:         d.Email,
		Phone:         d.Phone,
		Type:          d.Type,
		Company:       d.Company,
		Source:        d.Source,
		InterestLevel: d.InterestLevel,
		Budget:        d.Budget,
		Timeframe:     d.Timeframe,
		Notes:         d.Notes,
		Address:       d.Address,
		City:          d.City,
		State:         d.State,
		ZipCode:       d.ZipCode,
	}
}

type taskDraft struct {
	Title         string              `json:"title" validate:"required"`
	Description   string              `json:"description,omitempty"`
	Status        domain.TaskStatus   `json:"status" validate:"required,oneof=todo inProgress done"`
	Type          domain.TaskType     `json:"type" validate:"required,oneof=email call meeting followUp showing other"`
	Priority      domain.TaskPriority `json:"priority" validate:"required,min=1,max=3"`
	DueDate       time.Time           `json:"dueDate" validate:"required"`
	Assignee      string              `json:"assignee,omitempty"`
	ContactID     string              `json:"contactId,omitempty"`
	TransactionID string              `json:"transactionId,omitempty"`
	Category      string              `json:"category,omitempty"`
	EmailTemplate string              `json:"emailTemplate,omitempty"`
	Automated     bool                `json:"automated,omitempty"`
	Notes         string              `json:"notes,omitempty"`
}

func (d taskDraft) toDomain() domain.Task {
	return domain.Task{
		Title:         d.Title,
		Description:   d.Description,
		Status:        d.Status,
		Type:          d.Type,
		Priority:      d.Priority,
		DueDate:       d.DueDate,
		Assignee:      d.Assignee,
		ContactID:     d.ContactID,
		TransactionID: d.TransactionID,
		Category:      d.Category,
		EmailTemplate: d.EmailTemplate,
		Automated:     d.Automated,
		Notes:         d.Notes,
	}
}

type taskTemplateDraft struct {
	Name          string              `json:"name" validate:"required"`
	Description   string              `json:"description,omitempty"`
	Type          domain.TaskType     `json:"type" validate:"required,oneof=email call meeting followUp showing other"`
	DueInDays     int                 `json:"dueInDays" validate:"gte=0"`
	Priority      domain.TaskPriority `json:"priority" validate:"required,min=1,max=3"`
	Category      string              `json:"category,omitempty"`
	EmailTemplate string              `json:"emailTemplate,omitempty"`
	Automated     bool                `json:"automated,omitempty"`
}

func (d taskTemplateDraft) toDomain() domain.TaskTemplate {
	return domain.TaskTemplate{
		Name:          d.Name,
		Description:   d.Description,
		Type:          d.Type,
		DueInDays:     d.DueInDays,
		Priority:      d.Priority,
		Category:      d.Category,
		EmailTemplate: d.EmailTemplate,
		Automated:     d.Automated,
	}
}

// instantiateTemplateRequest attaches the materialized task to CRM records.
type instantiateTemplateRequest struct {
	ContactID     string `json:"contactId,omitempty"`
	TransactionID string `json:"transactionId,omitempty"`
}

type closingPartyDraft struct {
	Name      string                 `json:"name" validate:"required"`
	Role      domain.TransactionRole `json:"role" validate:"required,oneof=Buyer Seller 'Buyer Agent' 'Seller Agent' 'Title Agent' Lender"`
	Email     string                 `json:"email,omitempty"`
	Phone     string                 `json:"phone,omitempty"`
	Company   string                 `json:"company,omitempty"`
	IsPrimary bool                   `json:"isPrimary,omitempty"`
}

type transactionDraft struct {
	Date            *time.Time               `json:"date" validate:"required"`
	PropertyAddress string                   `json:"propertyAddress" validate:"required"`
	ClientName      string                   `json:"clientName" validate:"required"`
	Amount          *float64                 `json:"amount" validate:"required"`
	Status          domain.TransactionStatus `json:"status" validate:"required,oneof=Active Pending Closed Cancelled 'Off Market'"`
	Type            domain.TransactionType   `json:"type" validate:"required,oneof=Listing Closing 'Rental Listing' Lease"`
	ContactID       string                   `json:"contactId,omitempty"`
	ClosingDate     *time.Time               `json:"closingDate,omitempty"`
	ContractDate    *time.Time               `json:"contractDate,omitempty"`
	PropertyDetails *domain.PropertyDetails  `json:"propertyDetails,omitempty"`
	ListingDetails  *domain.ListingDetails   `json:"listingDetails,omitempty"`
	ClosingParties  []closingPartyDraft      `json:"closingParties,omitempty" validate:"dive"`
	Documents       []string                 `json:"documents,omitempty"`
	Notes           string                   `json:"notes,omitempty"`
}

func (d transactionDraft) toDomain() domain.Transaction {
	parties := make([]domain.ClosingParty, 0, len(d.ClosingParties))
	for _, p := range d.ClosingParties {
		parties = append(parties, domain.ClosingParty{
			Name:      p.Name,
			Role:      p.Role,
			Email:     p.Email,
			Phone:     p.Phone,
			Company:   p.Company,
			IsPrimary: p.IsPrimary,
		})
	}
	return domain.Transaction{
		Date:            d.Date,
		PropertyAddress: d.PropertyAddress,
		ClientName:      d.ClientName,
		Amount:          d.Amount,
		Status:          d.Status,
		Type:            d.Type,
		ContactID:       d.ContactID,
		ClosingDate:     d.ClosingDate,
		ContractDate:    d.ContractDate,
		PropertyDetails: d.PropertyDetails,
		ListingDetails:  d.ListingDetails,
		ClosingParties:  parties,
		Documents:       d.Documents,
		Notes:           d.Notes,
	}
}

type noteDraft struct {
	Title         string `json:"title" validate:"required"`
	Content       string `json:"content" validate:"required"`
	ContactID     string `json:"contactId,omitempty"`
	TaskID        string `json:"taskId,omitempty"`
	TransactionID string `json:"transactionId,omitempty"`
}

func (d noteDraft) toDomain() domain.Note {
	return domain.Note{
		Title:         d.Title,
		Content:       d.Content,
		ContactID:     d.ContactID,
		TaskID:        d.TaskID,
		TransactionID: d.TransactionID,
	}
}

type pipelineDraft struct {
	ContactID  string             `json:"contactId" validate:"required"`
	Stage      domain.Stage       `json:"stage,omitempty" validate:"omitempty,oneof=New Engage Future Active Closed"`
	Type       domain.ContactType `json:"type" validate:"required,oneof=Buyer Seller Agent Other"`
	Source     string             `json:"source,omitempty"`
	AssignedTo string             `json:"assignedTo,omitempty"`
	Notes      string             `json:"notes,omitempty"`
}

func (d pipelineDraft) toDomain() domain.PipelineItem {
	return domain.PipelineItem{
		ContactID:  d.ContactID,
		Stage:      d.Stage,
		Type:       d.Type,
		Source:     d.Source,
		AssignedTo: d.AssignedTo,
		Notes:      d.Notes,
	}
}

type moveStageRequest struct {
	Stage domain.Stage `json:"stage" validate:"required,oneof=New Engage Future Active Closed"`
}

type activityDraft struct {
	ContactID   string              `json:"contactId" validate:"required"`
	Type        domain.ActivityType `json:"type" validate:"required,oneof=note transaction task email call"`
	Description string              `json:"description" validate:"required"`
	Date        *time.Time          `json:"date,omitempty"`
	Metadata    map[string]any      `json:"metadata,omitempty"`
}

func (d activityDraft) toDomain() domain.Activity {
	a := domain.Activity{
		ContactID:   d.ContactID,
		Type:        d.Type,
		Description: d.Description,
		Metadata:    d.Metadata,
	}
	if d.Date != nil {
		a.Date = *d.Date
	}
	return a
}

type calendarEventDraft struct {
	Summary     string                 `json:"summary" validate:"required"`
	Description string                 `json:"description,omitempty"`
	Start       domain.EventTime       `json:"start" validate:"required"`
	End         domain.EventTime       `json:"end" validate:"required"`
	Attendees   []domain.EventAttendee `json:"attendees,omitempty"`
	Location    string                 `json:"location,omitempty"`
	ColorID     string                 `json:"colorId,omitempty"`
}

func (d calendarEventDraft) toDomain() domain.CalendarEvent {
	return domain.CalendarEvent{
		Summary:     d.Summary,
		Description: d.Description,
		Start:       d.Start,
		End:         d.End,
		Attendees:   d.Attendees,
		Location:    d.Location,
		ColorID:     d.ColorID,
	}
}
