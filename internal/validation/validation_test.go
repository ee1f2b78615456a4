package validation

import (
	"testing"

	"github.com/kjsce/kj-connect/internal/domain/catalog"
	apperrors "github.com/kjsce/kj-connect/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEvent() catalog.PostEventRequest {
	return catalog.PostEventRequest{
		Title:       "Go Workshop",
		Description: "Hands-on introduction to Go.",
		Type:        "workshop",
		Date:        "2024-02-10",
		Location:    "Seminar Hall",
		Committee:   "Developer Club",
	}
}

func validExamFile() catalog.PostExamFileRequest {
	return catalog.PostExamFileRequest{
		Title:      "IT Semester 4 Exam Timetable",
		Type:       "timetable",
		Department: "Information Technology",
		Semester:   "4",
		FileName:   "it-sem4.pdf",
	}
}

func TestStruct_EventRequest(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*catalog.PostEventRequest)
		field  string
	}{
		{"valid", func(*catalog.PostEventRequest) {}, ""},
		{"valid with link and attachments", func(r *catalog.PostEventRequest) {
			r.RegistrationLink = "https://forms.google.com/x"
			r.Attachments = []string{"brochure.pdf"}
		}, ""},
		{"blank title", func(r *catalog.PostEventRequest) { r.Title = "   " }, "title"},
		{"missing description", func(r *catalog.PostEventRequest) { r.Description = "" }, "description"},
		{"unknown type", func(r *catalog.PostEventRequest) { r.Type = "seminar" }, "type"},
		{"bad date", func(r *catalog.PostEventRequest) { r.Date = "10/02/2024" }, "date"},
		{"bad link", func(r *catalog.PostEventRequest) { r.RegistrationLink = "not a url" }, "registration_link"},
		{"blank attachment", func(r *catalog.PostEventRequest) { r.Attachments = []string{" "} }, "attachments[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validEvent()
			tt.mutate(&req)
			err := v.Struct(req)
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Equal(t, MsgInvalidSubmission, apperrors.UserMessage(err, ""))
			fields := Fields(err)
			require.Contains(t, fields, tt.field)
			assert.NotEmpty(t, fields[tt.field])
		})
	}
}

func TestStruct_ExamFileRequest(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	require.NoError(t, v.Struct(validExamFile()))

	req := validExamFile()
	req.Department = "Astrology"
	req.Semester = "9"
	req.FileName = ""
	err = v.Struct(req)
	require.Error(t, err)

	fields := Fields(err)
	assert.Equal(t, []string{"department", "file_name", "semester"}, fields.Fields())
	assert.Equal(t, "department must be one of the listed departments", fields["department"])
	assert.Equal(t, "file_name cannot be blank", fields["file_name"])
	assert.Equal(t, "department", apperrors.GetField(err))
}

func TestFields_NilForOtherErrors(t *testing.T) {
	assert.Nil(t, Fields(apperrors.Internal("x")))
	assert.Nil(t, Fields(nil))
}

func TestFieldErrors_Error(t *testing.T) {
	fe := FieldErrors{"b": "two", "a": "one"}
	assert.Equal(t, "a: one; b: two", fe.Error())
}

func TestWithMessage(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	req := validEvent()
	req.Title = ""
	err = WithMessage(v.Struct(req), "Please fill all required fields")
	assert.Equal(t, "Please fill all required fields", apperrors.UserMessage(err, ""))
	assert.Contains(t, Fields(err), "title")

	other := apperrors.Internal("boom")
	assert.Same(t, other, WithMessage(other, "ignored"))
}
