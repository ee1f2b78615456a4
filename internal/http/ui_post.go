package httpx

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/kjsce/kj-connect/internal/domain/catalog"
	"github.com/kjsce/kj-connect/internal/domain/notify"
	apperrors "github.com/kjsce/kj-connect/internal/errors"
)

// Failure toasts for submissions that fail for reasons other than validation.
const (
	msgPostEventFailed    = "Failed to post event. Please try again."
	msgPostExamFileFailed = "Failed to upload file. Please try again."
)

// parseSubmission reads a form that may or may not be multipart.
func parseSubmission(r *http.Request) error {
	err := r.ParseMultipartForm(maxFormBytes)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

func uploadedFiles(r *http.Request, field string) []*multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	return r.MultipartForm.File[field]
}

// submitter returns the email of the logged-in poster. RequirePolicy guarantees one.
func submitter(ctx context.Context) string {
	identity, _ := CurrentIdentity(ctx)
	return identity.Email
}

// submission carries what the post handlers share between success and failure paths.
type submission struct {
	meta        PageMeta
	failMessage string
	successPath string
	formData    func(b *TemplateDataBuilder) *TemplateDataBuilder
}

// awaitSubmission waits for a posting to settle. Success queues the confirmation and
// redirects; validation failures re-render the form with field errors.
func (h *UIHandlers) awaitSubmission(
	w http.ResponseWriter,
	r *http.Request,
	await func(ctx context.Context) (string, error),
	s submission,
) {
	msg, err := await(r.Context())
	if err == nil {
		notifier(r.Context()).Notify(r.Context(), notify.Success(msg))
		http.Redirect(w, r, s.successPath, http.StatusSeeOther)
		return
	}
	if r.Context().Err() != nil {
		h.logger().DebugContext(r.Context(), "submission request abandoned", "path", r.URL.Path)
		return
	}

	status := http.StatusUnprocessableEntity
	toast := apperrors.UserMessage(err, s.failMessage)
	if !apperrors.IsValidation(err) {
		h.logger().ErrorContext(r.Context(), "submission failed", "path", r.URL.Path, "error", err)
		status = http.StatusInternalServerError
		toast = s.failMessage
	}
	notifier(r.Context()).Notify(r.Context(), notify.Error(toast))

	data := s.formData(NewTemplateData(r, s.meta)).
		WithValidation(err).
		Build()
	h.render(w, r, status, data)
}

var postEventMeta = PageMeta{
	Title:       "Post Event - KJ Connect",
	PageTitle:   "Post a New Event",
	CurrentPage: PagePostEvent,
}

// PostEventForm renders the empty event form.
// GET /post-event.
func (h *UIHandlers) PostEventForm(w http.ResponseWriter, r *http.Request) {
	data := eventFormData(NewTemplateData(r, postEventMeta), catalog.PostEventRequest{}).Build()
	h.render(w, r, http.StatusOK, data)
}

func eventFormData(b *TemplateDataBuilder, form catalog.PostEventRequest) *TemplateDataBuilder {
	return b.With("Form", form).With("TypeOptions", eventTypeOptions(false))
}

// PostEvent submits a committee head's event. Attachments are recorded by name only.
// POST /post-event.
func (h *UIHandlers) PostEvent(w http.ResponseWriter, r *http.Request) {
	if err := parseSubmission(r); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}

	req := catalog.PostEventRequest{
		Title:            r.FormValue("title"),
		Description:      r.FormValue("description"),
		Type:             r.FormValue("type"),
		Date:             r.FormValue("date"),
		Location:         r.FormValue("location"),
		Committee:        r.FormValue("committee"),
		RegistrationLink: r.FormValue("registration_link"),
		PostedBy:         submitter(r.Context()),
	}
	for _, fh := range uploadedFiles(r, "attachments") {
		if name := strings.TrimSpace(fh.Filename); name != "" {
			req.Attachments = append(req.Attachments, name)
		}
	}

	future := h.Catalog.PostEvent(context.WithoutCancel(r.Context()), req)
	h.awaitSubmission(w, r, future.Await, submission{
		meta:        postEventMeta,
		failMessage: msgPostEventFailed,
		successPath: PathEvents,
		formData: func(b *TemplateDataBuilder) *TemplateDataBuilder {
			return eventFormData(b, req)
		},
	})
}

var postExamFileMeta = PageMeta{
	Title:       "Upload Exam File - KJ Connect",
	PageTitle:   "Upload Exam File",
	CurrentPage: PagePostExamFile,
}

// PostExamFileForm renders the empty exam file upload form.
// GET /post-exam-file.
func (h *UIHandlers) PostExamFileForm(w http.ResponseWriter, r *http.Request) {
	data := examFileFormData(NewTemplateData(r, postExamFileMeta), catalog.PostExamFileRequest{}).Build()
	h.render(w, r, http.StatusOK, data)
}

func examFileFormData(b *TemplateDataBuilder, form catalog.PostExamFileRequest) *TemplateDataBuilder {
	return b.With("Form", form).
		With("TypeOptions", examFileTypeOptions(false)).
		With("Departments", catalog.Departments).
		With("Semesters", catalog.Semesters)
}

// PostExamFile submits an exam cell upload. Only the file's name and size are read.
// POST /post-exam-file.
func (h *UIHandlers) PostExamFile(w http.ResponseWriter, r *http.Request) {
	if err := parseSubmission(r); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}

	req := catalog.PostExamFileRequest{
		Title:      r.FormValue("title"),
		Type:       r.FormValue("type"),
		Department: r.FormValue("department"),
		Semester:   r.FormValue("semester"),
		PostedBy:   submitter(r.Context()),
	}
	if files := uploadedFiles(r, "file"); len(files) > 0 {
		req.FileName = files[0].Filename
		req.FileSize = files[0].Size
	}

	future := h.Catalog.PostExamFile(context.WithoutCancel(r.Context()), req)
	h.awaitSubmission(w, r, future.Await, submission{
		meta:        postExamFileMeta,
		failMessage: msgPostExamFileFailed,
		successPath: PathExamCell,
		formData: func(b *TemplateDataBuilder) *TemplateDataBuilder {
			return examFileFormData(b, req)
		},
	})
}
