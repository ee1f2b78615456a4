package catalog

import (
	"slices"
	"strings"
	"time"
)

// ExamFileType classifies an exam-cell posting.
type ExamFileType string

const (
	ExamFileTimetable ExamFileType = "timetable"
	ExamFileResult    ExamFileType = "result"
)

// Valid reports whether the exam file type is supported.
func (t ExamFileType) Valid() bool {
	return t == ExamFileTimetable || t == ExamFileResult
}

// ExamFile is a timetable or result published by the exam cell.
type ExamFile struct {
	ID         string       `json:"id"          db:"id"`
	Title      string       `json:"title"       db:"title"`
	Type       ExamFileType `json:"type"        db:"type"`
	Department string       `json:"department"  db:"department"`
	Semester   string       `json:"semester"    db:"semester"`
	FileURL    string       `json:"file_url"    db:"file_url"`
	UploadedAt time.Time    `json:"uploaded_at" db:"uploaded_at"`
	UploadedBy string       `json:"uploaded_by" db:"uploaded_by"`
}

// Departments offered on the exam file upload form.
var Departments = []string{
	"Computer Science",
	"Electronics Engineering",
	"Mechanical Engineering",
	"Civil Engineering",
	"Information Technology",
}

// Semesters offered on the exam file upload form.
var Semesters = []string{"1", "2", "3", "4", "5", "6", "7", "8"}

// PostExamFileRequest carries an exam cell upload. The file body is never stored.
type PostExamFileRequest struct {
	Title      string `json:"title"      validate:"notblank"`
	Type       string `json:"type"       validate:"required,oneof=timetable result"`
	Department string `json:"department" validate:"required,department"`
	Semester   string `json:"semester"   validate:"required,oneof=1 2 3 4 5 6 7 8"`
	FileName   string `json:"file_name"  validate:"notblank"`
	FileSize   int64  `json:"file_size"  validate:"gte=0"`
	PostedBy   string `json:"-"`
}

// Normalize trims surrounding whitespace from every text field.
func (r *PostExamFileRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Type = strings.ToLower(strings.TrimSpace(r.Type))
	r.Department = strings.TrimSpace(r.Department)
	r.Semester = strings.TrimSpace(r.Semester)
	r.FileName = strings.TrimSpace(r.FileName)
}

// ExamFilePostedMessage is the confirmation shown after an exam file upload.
func ExamFilePostedMessage(t ExamFileType) string {
	label := "Result"
	if t == ExamFileTimetable {
		label = "Timetable"
	}
	return label + " uploaded successfully! Email notifications have been sent to students."
}

// IsDepartment reports whether name is one of the known departments.
func IsDepartment(name string) bool {
	return slices.Contains(Departments, name)
}
