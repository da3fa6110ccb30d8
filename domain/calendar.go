package domain

// EventTime is a calendar timestamp with an optional IANA time zone.
type EventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone,omitempty"`
}

// EventAttendee identifies an invitee by email.
type EventAttendee struct {
	Email string `json:"email"`
}

// CalendarEvent mirrors the external calendar integration's event shape.
type CalendarEvent struct {
	ID          string          `json:"id"`
	Summary     string          `json:"summary"`
	Description string          `json:"description,omitempty"`
	Start       EventTime       `json:"start"`
	End         EventTime       `json:"end"`
	Attendees   []EventAttendee `json:"attendees,omitempty"`
	Location    string          `json:"location,omitempty"`
	ColorID     string          `json:"colorId,omitempty"`
}
