package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/kjsce/kj-connect/internal/domain/auth"
	"github.com/kjsce/kj-connect/internal/domain/notify"
	"github.com/kjsce/kj-connect/internal/observability/metrics"
	"github.com/kjsce/kj-connect/internal/observability/statsd"
	"github.com/kjsce/kj-connect/internal/service"
)

var (
	studentIdentity   = domainauth.Identity{ID: "2", Name: "Student User", Email: "student@somaiya.edu", Role: domainauth.RoleStudent}
	committeeIdentity = domainauth.Identity{ID: "1", Name: "Committee Admin", Email: "committee@somaiya.edu", Role: domainauth.RoleCommitteeHead}
	examCellIdentity  = domainauth.Identity{ID: "3", Name: "Exam Cell Admin", Email: "examcell@somaiya.edu", Role: domainauth.RoleExamCell}
)

func TestRequirePolicy_Browser(t *testing.T) {
	policy := domainauth.RequireRoles(domainauth.RoleCommitteeHead)

	tests := []struct {
		name         string
		identity     *domainauth.Identity
		wantStatus   int
		wantLocation string
		wantToast    string
		wantOutcome  service.Outcome
	}{
		{
			name:         "logged out goes to login",
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/login",
			wantToast:    "You must be logged in to access this page",
			wantOutcome:  service.OutcomeDenyUnauthenticated,
		},
		{
			name:         "student goes home",
			identity:     &studentIdentity,
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/",
			wantToast:    "You do not have permission to access this page",
			wantOutcome:  service.OutcomeDenyForbidden,
		},
		{
			name:        "committee head is allowed",
			identity:    &committeeIdentity,
			wantStatus:  http.StatusOK,
			wantOutcome: service.OutcomeAllow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := &statsd.Recorder{}
			var reached bool
			handler := RequirePolicy(GuardConfig{Metrics: recorder, Logger: discardLogger()}, policy)(
				http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					reached = true
					w.WriteHeader(http.StatusOK)
				}))

			req, queue := withIdentity(t, httptest.NewRequest(http.MethodGet, PathPostEvent, nil), tt.identity)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
			assert.Equal(t, tt.wantOutcome == service.OutcomeAllow, reached)

			toasts, err := queue.Drain(context.Background())
			require.NoError(t, err)
			if tt.wantToast == "" {
				assert.Empty(t, toasts)
			} else {
				require.Len(t, toasts, 1)
				assert.Equal(t, notify.SeverityError, toasts[0].Severity)
				assert.Equal(t, tt.wantToast, toasts[0].Message)
			}

			samples := recorder.Named(metrics.GuardDecision)
			require.Len(t, samples, 1)
			assert.Equal(t, string(tt.wantOutcome), samples[0].Tags["outcome"])
			assert.Equal(t, PathPostEvent, samples[0].Tags["path"])
		})
	}
}

func TestRequirePolicy_JSONClient(t *testing.T) {
	policy := domainauth.RequireRoles(domainauth.RoleExamCell)
	handler := RequirePolicy(GuardConfig{Logger: discardLogger()}, policy)(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }))

	tests := []struct {
		name     string
		identity *domainauth.Identity
		want     int
		wantBody string
	}{
		{name: "logged out", want: http.StatusUnauthorized, wantBody: `"error":"unauthorized"`},
		{name: "wrong role", identity: &committeeIdentity, want: http.StatusForbidden, wantBody: `"error":"forbidden"`},
		{name: "exam cell", identity: &examCellIdentity, want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, PathPostExamFile, nil)
			req.Header.Set("Accept", "application/json")
			req, queue := withIdentity(t, req, tt.identity)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			assert.Empty(t, rec.Header().Get("Location"))
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
			toasts, err := queue.Drain(context.Background())
			require.NoError(t, err)
			assert.Empty(t, toasts, "JSON clients are not sent toasts")
		})
	}
}

func TestRequirePolicy_EmptyPolicyAllowsAnyLoggedInRole(t *testing.T) {
	handler := RequirePolicy(GuardConfig{Logger: discardLogger()}, domainauth.Policy{})(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	for _, id := range []domainauth.Identity{studentIdentity, committeeIdentity, examCellIdentity} {
		req, _ := withIdentity(t, httptest.NewRequest(http.MethodGet, "/anything", nil), &id)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code, id.Role)
	}
}
