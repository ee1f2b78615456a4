package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/kjsce/kj-connect/internal/domain/auth"
	apperrors "github.com/kjsce/kj-connect/internal/errors"
	"github.com/kjsce/kj-connect/internal/domain/notify"
	"github.com/kjsce/kj-connect/internal/http/ui/viewmodel"
	"github.com/kjsce/kj-connect/internal/validation"
)

func TestNewTemplateData_Anonymous(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/events", nil)
	data := NewTemplateData(r, PageMeta{Title: "Events - KJ Connect", PageTitle: "Events", CurrentPage: PageEvents}).Build()

	assert.Equal(t, "Events - KJ Connect", data["Title"])
	assert.Equal(t, "Events", data["PageTitle"])
	assert.Equal(t, PageEvents, data["CurrentPage"])
	assert.Equal(t, false, data["IsAuthenticated"])
	assert.Equal(t, false, data["CanPostEvent"])
	assert.Equal(t, false, data["CanPostExamFile"])
	assert.NotContains(t, data, "User")
}

func TestNewTemplateData_NavigationFollowsRole(t *testing.T) {
	tests := []struct {
		name          string
		identity      *domainauth.Identity
		wantPostEvent bool
		wantPostExam  bool
	}{
		{name: "student", identity: &studentIdentity},
		{name: "committee head", identity: &committeeIdentity, wantPostEvent: true},
		{name: "exam cell", identity: &examCellIdentity, wantPostExam: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := withIdentity(t, httptest.NewRequest(http.MethodGet, "/", nil), tt.identity)
			data := NewTemplateData(r, PageMeta{CurrentPage: PageHome}).Build()

			assert.Equal(t, true, data["IsAuthenticated"])
			assert.Equal(t, tt.wantPostEvent, data["CanPostEvent"])
			assert.Equal(t, tt.wantPostExam, data["CanPostExamFile"])
		})
	}
}

func TestTemplateDataBuilder_DrainsToasts(t *testing.T) {
	r, queue := withIdentity(t, httptest.NewRequest(http.MethodGet, "/", nil), &studentIdentity)
	queue.Notify(context.Background(), notify.Success("Logged in successfully"))

	data := NewTemplateData(r, PageMeta{CurrentPage: PageHome}).Build()
	toasts, ok := data["Toasts"].([]viewmodel.Toast)
	require.True(t, ok)
	require.Len(t, toasts, 1)
	assert.Equal(t, viewmodel.Toast{Severity: "success", Message: "Logged in successfully"}, toasts[0])

	again := NewTemplateData(r, PageMeta{CurrentPage: PageHome}).Build()
	assert.Empty(t, again["Toasts"], "each toast is shown once")

	user, ok := data["User"].(*viewmodel.User)
	require.True(t, ok)
	assert.Equal(t, "Student", user.RoleLabel)
}

func TestTemplateDataBuilder_WithValidation(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/post-event", nil)
	fieldErr := apperrors.Wrap(validation.FieldErrors{"title": "title cannot be blank"}, apperrors.ErrCodeValidation, "invalid")

	data := NewTemplateData(r, PageMeta{CurrentPage: PagePostEvent}).
		WithValidation(fieldErr).
		With("Form", "x").
		Build()
	assert.Equal(t, map[string]string{"title": "title cannot be blank"}, data["Errors"])
	assert.Equal(t, "x", data["Form"])

	plain := NewTemplateData(r, PageMeta{CurrentPage: PagePostEvent}).
		WithValidation(apperrors.Internal("boom")).
		Build()
	assert.NotContains(t, plain, "Errors")
}
