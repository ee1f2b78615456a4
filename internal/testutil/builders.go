package testutil

import (
	domainauth "github.com/kjsce/kj-connect/internal/domain/auth"
	"github.com/kjsce/kj-connect/internal/domain/catalog"
)

// Demo identities matching the built-in credential table.
var (
	CommitteeHead = domainauth.Identity{ID: "1", Name: "Committee Admin", Email: "committee@somaiya.edu", Role: domainauth.RoleCommitteeHead}
	Student       = domainauth.Identity{ID: "2", Name: "Student User", Email: "student@somaiya.edu", Role: domainauth.RoleStudent}
	ExamCell      = domainauth.Identity{ID: "3", Name: "Exam Cell Admin", Email: "examcell@somaiya.edu", Role: domainauth.RoleExamCell}
)

// EventRequestBuilder provides a fluent interface for building PostEventRequest values.
type EventRequestBuilder struct {
	req catalog.PostEventRequest
}

// NewEventRequest creates a builder with a complete, valid workshop submission.
func NewEventRequest() *EventRequestBuilder {
	return &EventRequestBuilder{
		req: catalog.PostEventRequest{
			Title:       "Go Workshop",
			Description: "Hands-on introduction to Go.",
			Type:        string(catalog.EventTypeWorkshop),
			Date:        "2024-02-10",
			Location:    "Seminar Hall",
			Committee:   "Developer Club",
			PostedBy:    CommitteeHead.Email,
		},
	}
}

// WithType sets the event type.
func (b *EventRequestBuilder) WithType(t string) *EventRequestBuilder {
	b.req.Type = t
	return b
}

// WithTitle sets the title.
func (b *EventRequestBuilder) WithTitle(title string) *EventRequestBuilder {
	b.req.Title = title
	return b
}

// WithDate sets the event date.
func (b *EventRequestBuilder) WithDate(date string) *EventRequestBuilder {
	b.req.Date = date
	return b
}

// WithRegistrationLink sets the optional registration link.
func (b *EventRequestBuilder) WithRegistrationLink(link string) *EventRequestBuilder {
	b.req.RegistrationLink = link
	return b
}

// WithAttachments sets the attachment names.
func (b *EventRequestBuilder) WithAttachments(names ...string) *EventRequestBuilder {
	b.req.Attachments = names
	return b
}

// Build returns the request.
func (b *EventRequestBuilder) Build() catalog.PostEventRequest {
	return b.req
}

// NewExamFileRequest returns a complete, valid timetable upload.
func NewExamFileRequest() catalog.PostExamFileRequest {
	return catalog.PostExamFileRequest{
		Title:      "IT Semester 4 Exam Timetable",
		Type:       string(catalog.ExamFileTimetable),
		Department: "Information Technology",
		Semester:   "4",
		FileName:   "it-sem4.pdf",
		FileSize:   2048,
		PostedBy:   ExamCell.Email,
	}
}
