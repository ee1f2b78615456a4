// Package catalog holds the portal's event and exam-file listings and their filters.
package catalog

import (
	"strings"
	"time"
)

// EventType classifies an event or opportunity.
type EventType string

const (
	EventTypeHackathon  EventType = "hackathon"
	EventTypeWorkshop   EventType = "workshop"
	EventTypeInternship EventType = "internship"
)

// EventTypes lists event types in display order.
func EventTypes() []EventType {
	return []EventType{EventTypeHackathon, EventTypeWorkshop, EventTypeInternship}
}

// Valid reports whether the event type is supported.
func (t EventType) Valid() bool {
	switch t {
	case EventTypeHackathon, EventTypeWorkshop, EventTypeInternship:
		return true
	default:
		return false
	}
}

// Title returns the capitalized type name, e.g. "Workshop".
func (t EventType) Title() string {
	s := string(t)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Event is a posted event or opportunity.
type Event struct {
	ID               string    `json:"id"                          db:"id"`
	Title            string    `json:"title"                       db:"title"`
	Description      string    `json:"description"                 db:"description"`
	Type             EventType `json:"type"                        db:"type"`
	Date             string    `json:"date"                        db:"date"`
	Location         string    `json:"location"                    db:"location"`
	Committee        string    `json:"committee"                   db:"committee"`
	RegistrationLink string    `json:"registration_link,omitempty" db:"registration_link"`
	Attachments      []string  `json:"attachments,omitempty"       db:"attachments"`
	CreatedAt        time.Time `json:"created_at"                  db:"created_at"`
	CreatedBy        string    `json:"created_by"                  db:"created_by"`
}

// PostEventRequest carries a committee head's event submission.
type PostEventRequest struct {
	Title            string   `json:"title"             validate:"notblank"`
	Description      string   `json:"description"       validate:"notblank"`
	Type             string   `json:"type"              validate:"required,oneof=hackathon workshop internship"`
	Date             string   `json:"date"              validate:"required,datetime=2006-01-02"`
	Location         string   `json:"location"          validate:"notblank"`
	Committee        string   `json:"committee"         validate:"notblank"`
	RegistrationLink string   `json:"registration_link" validate:"omitempty,url"`
	Attachments      []string `json:"attachments"       validate:"dive,notblank"`
	PostedBy         string   `json:"-"`
}

// Normalize trims surrounding whitespace from every text field.
func (r *PostEventRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Type = strings.ToLower(strings.TrimSpace(r.Type))
	r.Date = strings.TrimSpace(r.Date)
	r.Location = strings.TrimSpace(r.Location)
	r.Committee = strings.TrimSpace(r.Committee)
	r.RegistrationLink = strings.TrimSpace(r.RegistrationLink)
}

// Event builds the event the request describes, stamped at the given time.
func (r PostEventRequest) Event(id string, now time.Time) Event {
	return Event{
		ID:               id,
		Title:            r.Title,
		Description:      r.Description,
		Type:             EventType(r.Type),
		Date:             r.Date,
		Location:         r.Location,
		Committee:        r.Committee,
		RegistrationLink: r.RegistrationLink,
		Attachments:      append([]string(nil), r.Attachments...),
		CreatedAt:        now.UTC(),
		CreatedBy:        r.PostedBy,
	}
}

// EventPostedMessage is the confirmation shown after an event of the given type is posted.
func EventPostedMessage(t EventType) string {
	if t == EventTypeHackathon {
		return "Hackathon posted successfully! Email notifications have been sent."
	}
	return t.Title() + " posted successfully!"
}
