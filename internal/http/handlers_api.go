package httpx

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	domainauth "github.com/kjsce/kj-connect/internal/domain/auth"
	"github.com/kjsce/kj-connect/internal/domain/catalog"
)

const healthResponse = `{"status":"ok"}`

// healthHandler returns a simple 200 OK status for readiness/liveness checks.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.WriteString(w, healthResponse); err != nil {
		return
	}
}

// APIHandlers serves the JSON routes under /api/.
type APIHandlers struct {
	Catalog CatalogService
	Logger  *slog.Logger
}

func (h *APIHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// UserResponse is the JSON form of the logged-in identity.
type UserResponse struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Email string          `json:"email"`
	Role  domainauth.Role `json:"role"`
}

// SessionResponse reports the requesting client's session.
type SessionResponse struct {
	Authenticated bool          `json:"authenticated"`
	User          *UserResponse `json:"user"`
}

// Session reports whether the client is logged in and as whom.
// GET /api/session.
func (h *APIHandlers) Session(w http.ResponseWriter, r *http.Request) {
	resp := SessionResponse{}
	if identity, ok := CurrentIdentity(r.Context()); ok {
		resp.Authenticated = true
		resp.User = &UserResponse{
			ID:    identity.ID,
			Name:  identity.Name,
			Email: identity.Email,
			Role:  identity.Role,
		}
	}
	WriteJSON(w, http.StatusOK, resp)
}

// ListEvents returns events filtered by q and type.
// GET /api/events.
func (h *APIHandlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	events, err := h.Catalog.ListEvents(r.Context(), catalog.EventFilter{
		Type:   selector(q, "type"),
		Search: strings.TrimSpace(q.Get("q")),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}

// GetEvent returns one event or 404.
// GET /api/events/{id}.
func (h *APIHandlers) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.Catalog.GetEvent(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, event)
}

// ListExamFiles returns exam files filtered by q, type and department.
// GET /api/exam-files.
func (h *APIHandlers) ListExamFiles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	files, err := h.Catalog.ListExamFiles(r.Context(), catalog.ExamFileFilter{
		Type:       selector(q, "type"),
		Department: selector(q, "department"),
		Search:     strings.TrimSpace(q.Get("q")),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"exam_files": files})
}

func (h *APIHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForCodeOf(err)
	if status >= http.StatusInternalServerError {
		h.logger().ErrorContext(r.Context(), "api request failed", "path", r.URL.Path, "error", err)
	}
	WriteAppError(w, err)
}
