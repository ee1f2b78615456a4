package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBrowserRequest(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		accept string
		want   bool
	}{
		{name: "no accept header", path: "/events", want: true},
		{name: "html", path: "/events", accept: "text/html,application/xhtml+xml", want: true},
		{name: "html and json", path: "/events", accept: "text/html, application/json", want: true},
		{name: "json only", path: "/post-event", accept: "application/json"},
		{name: "wildcard", path: "/events", accept: "*/*", want: true},
		{name: "api path with html accept", path: "/api/events", accept: "text/html"},
		{name: "api path without accept", path: "/api/session"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			assert.Equal(t, tt.want, isBrowserRequest(req))
		})
	}
}

func TestBrowserDetection_StoresDecision(t *testing.T) {
	var seen, fromContext bool
	handler := BrowserDetection()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		_, fromContext = r.Context().Value(browserRequestKey{}).(bool)
		// Later header changes do not alter the recorded decision.
		r.Header.Set("Accept", "text/html")
		seen = IsBrowserRequest(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/exam-cell", nil)
	req.Header.Set("Accept", "application/json")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, fromContext)
	assert.False(t, seen)
}

func TestIsBrowserRequest_FallsBackWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(context.Background())
	req.Header.Set("Accept", "application/json")
	assert.False(t, IsBrowserRequest(req))
}
