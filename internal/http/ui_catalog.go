package httpx

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/kjsce/kj-connect/internal/domain/catalog"
	"github.com/kjsce/kj-connect/internal/domain/notify"
	apperrors "github.com/kjsce/kj-connect/internal/errors"
)

// SelectOption is a value/label pair for filter and form dropdowns.
type SelectOption struct {
	Value string
	Label string
}

func eventTypeOptions(withAll bool) []SelectOption {
	var out []SelectOption
	if withAll {
		out = append(out, SelectOption{Value: catalog.FilterAll, Label: "All Types"})
	}
	for _, t := range catalog.EventTypes() {
		label := t.Title()
		if withAll {
			label += "s"
		}
		out = append(out, SelectOption{Value: string(t), Label: label})
	}
	return out
}

func examFileTypeOptions(withAll bool) []SelectOption {
	if withAll {
		return []SelectOption{
			{Value: catalog.FilterAll, Label: "All Types"},
			{Value: string(catalog.ExamFileTimetable), Label: "Timetables"},
			{Value: string(catalog.ExamFileResult), Label: "Results"},
		}
	}
	return []SelectOption{
		{Value: string(catalog.ExamFileTimetable), Label: "Timetable"},
		{Value: string(catalog.ExamFileResult), Label: "Result"},
	}
}

// selector returns the trimmed query value, defaulting to "all".
func selector(q url.Values, key string) string {
	if v := strings.TrimSpace(q.Get(key)); v != "" {
		return v
	}
	return catalog.FilterAll
}

// Home renders the landing page with featured events and recent exam files.
// GET /{$}.
func (h *UIHandlers) Home(w http.ResponseWriter, r *http.Request) {
	h.Page(w, r, PageSpec{
		Meta: PageMeta{Title: "KJ Connect", PageTitle: "Welcome to KJ CONNECT", CurrentPage: PageHome},
		Fetch: func(ctx context.Context, data map[string]any) error {
			featured, err := h.Catalog.Featured(ctx)
			if err != nil {
				return err
			}
			data["FeaturedEvents"] = featured.Events
			data["RecentExamFiles"] = featured.ExamFiles
			return nil
		},
	})
}

// Events renders the event listing filtered by q and type.
// GET /events.
func (h *UIHandlers) Events(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := catalog.EventFilter{Type: selector(q, "type"), Search: strings.TrimSpace(q.Get("q"))}
	h.Page(w, r, PageSpec{
		Meta: PageMeta{Title: "Events - KJ Connect", PageTitle: "Events & Opportunities", CurrentPage: PageEvents},
		Fetch: func(ctx context.Context, data map[string]any) error {
			data["Search"] = filter.Search
			data["Type"] = filter.Type
			data["TypeOptions"] = eventTypeOptions(true)
			events, err := h.Catalog.ListEvents(ctx, filter)
			if err != nil {
				return err
			}
			data["Events"] = events
			return nil
		},
	})
}

// EventDetail renders one event, or the "Event Not Found" page for unknown ids.
// GET /events/{id}.
func (h *UIHandlers) EventDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	event, err := h.Catalog.GetEvent(r.Context(), id)
	switch {
	case apperrors.IsNotFound(err):
		h.Page(w, r, PageSpec{
			Meta:   PageMeta{Title: "Event Not Found - KJ Connect", PageTitle: "Event Not Found", CurrentPage: PageEventDetail},
			Status: http.StatusNotFound,
			Fetch: func(_ context.Context, data map[string]any) error {
				data["NotFound"] = true
				return nil
			},
		})
	case err != nil:
		h.Page(w, r, PageSpec{
			Meta:   PageMeta{Title: "Event - KJ Connect", PageTitle: "Event", CurrentPage: PageEventDetail},
			Status: http.StatusInternalServerError,
			Fetch:  func(context.Context, map[string]any) error { return err },
		})
	default:
		h.Page(w, r, PageSpec{
			Meta: PageMeta{Title: event.Title + " - KJ Connect", PageTitle: event.Title, CurrentPage: PageEventDetail},
			Fetch: func(_ context.Context, data map[string]any) error {
				data["Event"] = event
				return nil
			},
		})
	}
}

// DownloadAttachment acknowledges an attachment download with a notification and
// returns to the event. Attachments are names only; no file is served.
// POST /events/{id}/attachments/{name}/download.
func (h *UIHandlers) DownloadAttachment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	name := r.PathValue("name")
	event, err := h.Catalog.GetEvent(r.Context(), id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			h.NotFound(w, r)
			return
		}
		h.logger().ErrorContext(r.Context(), "load event for download failed", "event_id", id, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if !slices.Contains(event.Attachments, name) {
		h.NotFound(w, r)
		return
	}

	notifier(r.Context()).Notify(r.Context(), notify.Success("Downloading "+name))
	http.Redirect(w, r, PathEvents+"/"+url.PathEscape(event.ID), http.StatusSeeOther)
}

// ExamCell renders the exam file listing filtered by q, type and department.
// GET /exam-cell.
func (h *UIHandlers) ExamCell(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := catalog.ExamFileFilter{
		Type:       selector(q, "type"),
		Department: selector(q, "department"),
		Search:     strings.TrimSpace(q.Get("q")),
	}
	h.Page(w, r, PageSpec{
		Meta: PageMeta{Title: "Exam Cell - KJ Connect", PageTitle: "Exam Cell", CurrentPage: PageExamCell},
		Fetch: func(ctx context.Context, data map[string]any) error {
			data["Search"] = filter.Search
			data["Type"] = filter.Type
			data["Department"] = filter.Department
			data["TypeOptions"] = examFileTypeOptions(true)
			files, err := h.Catalog.ListExamFiles(ctx, filter)
			if err != nil {
				return err
			}
			departments, err := h.Catalog.Departments(ctx)
			if err != nil {
				return err
			}
			data["ExamFiles"] = files
			data["Departments"] = departments
			return nil
		},
	})
}

// NotFound renders the 404 page.
func (h *UIHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	if !IsBrowserRequest(r) {
		WriteError(w, ErrorParams{
			Code:    http.StatusNotFound,
			ErrCode: string(apperrors.ErrCodeNotFound),
			Err:     apperrors.NotFound("resource not found"),
		})
		return
	}
	h.Page(w, r, PageSpec{
		Meta:   PageMeta{Title: "Page Not Found - KJ Connect", PageTitle: "Page Not Found", CurrentPage: PageNotFound},
		Status: http.StatusNotFound,
	})
}
